package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/mocks"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type accountMocks struct {
	tx        *mocks.MockTransactor
	users     *mocks.MockUserRepository
	activity  *mocks.MockActivityRepository
	addresses *mocks.MockAddressRepository
	tokenRepo *mocks.MockTokenRepository
	mail      *mocks.MockMailer
}

func newAccountMocks() (*AccountService, *accountMocks) {
	m := &accountMocks{
		tx:        new(mocks.MockTransactor),
		users:     new(mocks.MockUserRepository),
		activity:  new(mocks.MockActivityRepository),
		addresses: new(mocks.MockAddressRepository),
		tokenRepo: new(mocks.MockTokenRepository),
		mail:      new(mocks.MockMailer),
	}
	m.tx.On("RunInTx", mock.Anything, mock.Anything).Return(nil).Maybe()
	tokens := NewTokenService(m.tokenRepo, m.users, 24*time.Hour, time.Hour)
	service := NewAccountService(m.tx, m.users, m.activity, m.addresses, tokens, m.mail, "https://shop.example.com")
	return service, m
}

func newAccountServiceWithMocks() (*AccountService, *mocks.MockUserRepository, *mocks.MockActivityRepository, *mocks.MockTokenRepository, *mocks.MockMailer) {
	service, m := newAccountMocks()
	return service, m.users, m.activity, m.tokenRepo, m.mail
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	return string(hash)
}

func TestAccountService_Register(t *testing.T) {
	input := RegisterInput{
		Email:     "new@example.com",
		Password:  "s3cret-pass",
		FirstName: "New",
		LastName:  "User",
	}

	t.Run("creates the user, logs activity and emails the token", func(t *testing.T) {
		service, users, activity, tokenRepo, mail := newAccountServiceWithMocks()

		users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil).Run(func(args mock.Arguments) {
			args.Get(1).(*domain.User).ID = 42
		})
		activity.On("Append", mock.Anything, mock.MatchedBy(func(a *domain.UserActivity) bool {
			return a.UserID == 42 && a.ActivityType == domain.ActivityRegistration && a.IPAddress == "10.0.0.1"
		})).Return(nil).Once()

		var issued string
		tokenRepo.On("CreateEmailVerification", mock.Anything, mock.AnythingOfType("*domain.EmailVerification")).
			Return(nil).
			Run(func(args mock.Arguments) {
				issued = args.Get(1).(*domain.EmailVerification).Token
			})
		mail.On("Send", "new@example.com", "Verify your email address", mock.MatchedBy(func(body string) bool {
			return issued != "" && strings.Contains(body, issued)
		})).Return(nil).Once()

		user, err := service.Register(context.Background(), input, "10.0.0.1")

		assert.NoError(t, err)
		if assert.NotNil(t, user) {
			assert.Equal(t, uint64(42), user.ID)
			assert.NotEqual(t, "s3cret-pass", user.PasswordHash)
			assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("s3cret-pass")))
			assert.False(t, user.IsEmailVerified)
		}
		users.AssertExpectations(t)
		activity.AssertExpectations(t)
		tokenRepo.AssertExpectations(t)
		mail.AssertExpectations(t)
	})

	t.Run("duplicate email", func(t *testing.T) {
		service, users, _, _, mail := newAccountServiceWithMocks()

		users.On("FindByEmail", mock.Anything, "new@example.com").
			Return(testUser(1, "new@example.com", "hash"), nil)

		user, err := service.Register(context.Background(), input, "10.0.0.1")

		assert.ErrorIs(t, err, ErrEmailTaken)
		assert.Nil(t, user)
		mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("mail delivery failure is surfaced", func(t *testing.T) {
		service, users, activity, tokenRepo, mail := newAccountServiceWithMocks()

		users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
		activity.On("Append", mock.Anything, mock.AnythingOfType("*domain.UserActivity")).Return(nil)
		tokenRepo.On("CreateEmailVerification", mock.Anything, mock.AnythingOfType("*domain.EmailVerification")).Return(nil)
		mail.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(errors.New("smtp: connection refused"))

		user, err := service.Register(context.Background(), input, "10.0.0.1")

		assert.ErrorIs(t, err, ErrNotificationFailed)
		assert.Nil(t, user)
	})

	t.Run("activity log failure does not block registration", func(t *testing.T) {
		service, users, activity, tokenRepo, mail := newAccountServiceWithMocks()

		users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
		users.On("Create", mock.Anything, mock.AnythingOfType("*domain.User")).Return(nil)
		activity.On("Append", mock.Anything, mock.AnythingOfType("*domain.UserActivity")).
			Return(errors.New("activity table unavailable"))
		tokenRepo.On("CreateEmailVerification", mock.Anything, mock.AnythingOfType("*domain.EmailVerification")).Return(nil)
		mail.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

		user, err := service.Register(context.Background(), input, "10.0.0.1")

		assert.NoError(t, err)
		assert.NotNil(t, user)
	})
}

func TestAccountService_Login(t *testing.T) {
	hash := ""

	tests := []struct {
		name          string
		email         string
		password      string
		setupMocks    func(*testing.T, *mocks.MockUserRepository, *mocks.MockActivityRepository)
		expectedError error
	}{
		{
			name:     "valid credentials",
			email:    "buyer@example.com",
			password: "correct-horse",
			setupMocks: func(t *testing.T, users *mocks.MockUserRepository, activity *mocks.MockActivityRepository) {
				hash = hashFor(t, "correct-horse")
				users.On("FindByEmail", mock.Anything, "buyer@example.com").
					Return(testUser(1, "buyer@example.com", hash), nil)
				activity.On("Append", mock.Anything, mock.MatchedBy(func(a *domain.UserActivity) bool {
					return a.ActivityType == domain.ActivityLogin
				})).Return(nil).Once()
			},
		},
		{
			name:     "wrong password",
			email:    "buyer@example.com",
			password: "wrong",
			setupMocks: func(t *testing.T, users *mocks.MockUserRepository, activity *mocks.MockActivityRepository) {
				hash = hashFor(t, "correct-horse")
				users.On("FindByEmail", mock.Anything, "buyer@example.com").
					Return(testUser(1, "buyer@example.com", hash), nil)
			},
			expectedError: ErrInvalidCredentials,
		},
		{
			name:     "unknown email",
			email:    "nobody@example.com",
			password: "anything",
			setupMocks: func(t *testing.T, users *mocks.MockUserRepository, activity *mocks.MockActivityRepository) {
				users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)
			},
			expectedError: ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			service, users, activity, _, _ := newAccountServiceWithMocks()
			tt.setupMocks(t, users, activity)

			user, err := service.Login(context.Background(), tt.email, tt.password, "10.0.0.1")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
				activity.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
			}
			users.AssertExpectations(t)
			activity.AssertExpectations(t)
		})
	}
}

func TestAccountService_VerifyEmail(t *testing.T) {
	t.Run("marks the account verified", func(t *testing.T) {
		service, users, activity, tokenRepo, _ := newAccountServiceWithMocks()

		tokenRepo.On("ConsumeEmailVerification", mock.Anything, "tok-1").
			Return(&domain.EmailVerification{ID: 1, UserID: 42, Token: "tok-1", IsUsed: true}, nil)
		users.On("FindByID", mock.Anything, uint64(42)).
			Return(testUser(42, "buyer@example.com", "hash"), nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.ID == 42 && u.IsEmailVerified
		})).Return(nil).Once()
		activity.On("Append", mock.Anything, mock.MatchedBy(func(a *domain.UserActivity) bool {
			return a.ActivityType == domain.ActivityEmailVerification
		})).Return(nil).Once()

		user, err := service.VerifyEmail(context.Background(), "tok-1")

		assert.NoError(t, err)
		assert.True(t, user.IsEmailVerified)
		users.AssertExpectations(t)
	})

	t.Run("failed save propagates and shares the token's transaction", func(t *testing.T) {
		service, m := newAccountMocks()

		m.tokenRepo.On("ConsumeEmailVerification", mock.Anything, "tok-1").
			Return(&domain.EmailVerification{ID: 1, UserID: 42, Token: "tok-1", IsUsed: true}, nil)
		m.users.On("FindByID", mock.Anything, uint64(42)).
			Return(testUser(42, "buyer@example.com", "hash"), nil)
		m.users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).
			Return(errors.New("users table unavailable"))

		user, err := service.VerifyEmail(context.Background(), "tok-1")

		assert.Error(t, err)
		assert.Nil(t, user)
		// Redeem and save run in one unit of work, so the rollback
		// un-consumes the token and the link stays usable.
		m.tx.AssertCalled(t, "RunInTx", mock.Anything, mock.Anything)
		m.activity.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})

	t.Run("second redemption of the same token fails", func(t *testing.T) {
		service, users, _, tokenRepo, _ := newAccountServiceWithMocks()

		tokenRepo.On("ConsumeEmailVerification", mock.Anything, "tok-1").Return(nil, nil)

		user, err := service.VerifyEmail(context.Background(), "tok-1")

		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.Nil(t, user)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAccountService_ChangePassword(t *testing.T) {
	t.Run("re-hashes with the new password", func(t *testing.T) {
		service, users, activity, _, _ := newAccountServiceWithMocks()

		oldHash := hashFor(t, "old-pass")
		users.On("FindByID", mock.Anything, uint64(1)).
			Return(testUser(1, "buyer@example.com", oldHash), nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("new-pass")) == nil
		})).Return(nil).Once()
		activity.On("Append", mock.Anything, mock.MatchedBy(func(a *domain.UserActivity) bool {
			return a.ActivityType == domain.ActivityPasswordChange
		})).Return(nil).Once()

		err := service.ChangePassword(context.Background(), 1, "old-pass", "new-pass", "10.0.0.1")

		assert.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("rejects a wrong current password", func(t *testing.T) {
		service, users, _, _, _ := newAccountServiceWithMocks()

		users.On("FindByID", mock.Anything, uint64(1)).
			Return(testUser(1, "buyer@example.com", hashFor(t, "old-pass")), nil)

		err := service.ChangePassword(context.Background(), 1, "not-it", "new-pass", "10.0.0.1")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAccountService_RequestPasswordReset(t *testing.T) {
	t.Run("known email gets a reset link", func(t *testing.T) {
		service, users, _, tokenRepo, mail := newAccountServiceWithMocks()

		users.On("FindByEmail", mock.Anything, "buyer@example.com").
			Return(testUser(7, "buyer@example.com", "hash"), nil)
		tokenRepo.On("CreatePasswordResetToken", mock.Anything, mock.MatchedBy(func(tok *domain.PasswordResetToken) bool {
			return tok.UserID == 7
		})).Return(nil).Once()
		mail.On("Send", "buyer@example.com", "Password Reset Request", mock.Anything).Return(nil).Once()

		err := service.RequestPasswordReset(context.Background(), "buyer@example.com", "10.0.0.1")

		assert.NoError(t, err)
		mail.AssertExpectations(t)
	})

	t.Run("unknown email succeeds without sending anything", func(t *testing.T) {
		service, users, _, tokenRepo, mail := newAccountServiceWithMocks()

		users.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, nil)

		err := service.RequestPasswordReset(context.Background(), "nobody@example.com", "10.0.0.1")

		assert.NoError(t, err)
		tokenRepo.AssertNotCalled(t, "CreatePasswordResetToken", mock.Anything, mock.Anything)
		mail.AssertNotCalled(t, "Send", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestAccountService_ResetPassword(t *testing.T) {
	t.Run("valid token re-hashes the password", func(t *testing.T) {
		service, users, activity, tokenRepo, _ := newAccountServiceWithMocks()

		tokenRepo.On("ConsumePasswordResetToken", mock.Anything, "reset-1").
			Return(&domain.PasswordResetToken{ID: 1, UserID: 7, Token: "reset-1", IsUsed: true}, nil)
		users.On("FindByID", mock.Anything, uint64(7)).
			Return(testUser(7, "buyer@example.com", hashFor(t, "old-pass")), nil)
		users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("brand-new")) == nil
		})).Return(nil).Once()
		activity.On("Append", mock.Anything, mock.MatchedBy(func(a *domain.UserActivity) bool {
			return a.ActivityType == domain.ActivityPasswordReset
		})).Return(nil).Once()

		err := service.ResetPassword(context.Background(), "reset-1", "brand-new")

		assert.NoError(t, err)
		users.AssertExpectations(t)
	})

	t.Run("expired token", func(t *testing.T) {
		service, users, _, tokenRepo, _ := newAccountServiceWithMocks()

		tokenRepo.On("ConsumePasswordResetToken", mock.Anything, "stale").
			Return(&domain.PasswordResetToken{ID: 2, UserID: 7, Token: "stale", IsUsed: false}, nil)

		err := service.ResetPassword(context.Background(), "stale", "brand-new")

		assert.ErrorIs(t, err, ErrTokenExpired)
		users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("failed save propagates and shares the token's transaction", func(t *testing.T) {
		service, m := newAccountMocks()

		m.tokenRepo.On("ConsumePasswordResetToken", mock.Anything, "reset-1").
			Return(&domain.PasswordResetToken{ID: 1, UserID: 7, Token: "reset-1", IsUsed: true}, nil)
		m.users.On("FindByID", mock.Anything, uint64(7)).
			Return(testUser(7, "buyer@example.com", "hash"), nil)
		m.users.On("Update", mock.Anything, mock.AnythingOfType("*domain.User")).
			Return(errors.New("users table unavailable"))

		err := service.ResetPassword(context.Background(), "reset-1", "brand-new")

		assert.Error(t, err)
		m.tx.AssertCalled(t, "RunInTx", mock.Anything, mock.Anything)
		m.activity.AssertNotCalled(t, "Append", mock.Anything, mock.Anything)
	})
}

func TestAccountService_UpdateProfile(t *testing.T) {
	t.Run("updates name and phone", func(t *testing.T) {
		service, m := newAccountMocks()

		m.users.On("FindByID", mock.Anything, uint64(1)).
			Return(testUser(1, "buyer@example.com", "hash"), nil)
		m.users.On("Update", mock.Anything, mock.MatchedBy(func(u *domain.User) bool {
			return u.FirstName == "Updated" && u.LastName == "Name" && u.Phone == "+15550001111"
		})).Return(nil).Once()

		user, err := service.UpdateProfile(context.Background(), 1, UpdateProfileInput{
			FirstName: "Updated",
			LastName:  "Name",
			Phone:     "+15550001111",
		})

		assert.NoError(t, err)
		assert.Equal(t, "Updated", user.FirstName)
		m.users.AssertExpectations(t)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, m := newAccountMocks()

		m.users.On("FindByID", mock.Anything, uint64(404)).Return(nil, nil)

		user, err := service.UpdateProfile(context.Background(), 404, UpdateProfileInput{FirstName: "X", LastName: "Y"})

		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, user)
		m.users.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func testAddressInput(isDefault bool) AddressInput {
	return AddressInput{
		Address: domain.Address{
			FirstName:    "Test",
			LastName:     "User",
			AddressLine1: "1 Main St",
			City:         "Springfield",
			Country:      "US",
			ZipCode:      "12345",
		},
		IsDefault: isDefault,
	}
}

func TestAccountService_CreateAddress(t *testing.T) {
	t.Run("new default demotes the previous one", func(t *testing.T) {
		service, m := newAccountMocks()

		m.users.On("FindByID", mock.Anything, uint64(1)).
			Return(testUser(1, "buyer@example.com", "hash"), nil)
		m.addresses.On("ClearDefault", mock.Anything, uint64(1)).Return(nil).Once()
		m.addresses.On("Create", mock.Anything, mock.MatchedBy(func(a *domain.UserAddress) bool {
			return a.UserID == 1 && a.IsDefault && a.Address.City == "Springfield"
		})).Return(nil).Once()

		addr, err := service.CreateAddress(context.Background(), 1, testAddressInput(true))

		assert.NoError(t, err)
		assert.True(t, addr.IsDefault)
		m.addresses.AssertExpectations(t)
	})

	t.Run("non-default leaves the current default alone", func(t *testing.T) {
		service, m := newAccountMocks()

		m.users.On("FindByID", mock.Anything, uint64(1)).
			Return(testUser(1, "buyer@example.com", "hash"), nil)
		m.addresses.On("Create", mock.Anything, mock.AnythingOfType("*domain.UserAddress")).Return(nil).Once()

		_, err := service.CreateAddress(context.Background(), 1, testAddressInput(false))

		assert.NoError(t, err)
		m.addresses.AssertNotCalled(t, "ClearDefault", mock.Anything, mock.Anything)
	})

	t.Run("unknown user", func(t *testing.T) {
		service, m := newAccountMocks()

		m.users.On("FindByID", mock.Anything, uint64(404)).Return(nil, nil)

		addr, err := service.CreateAddress(context.Background(), 404, testAddressInput(false))

		assert.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, addr)
		m.addresses.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestAccountService_UpdateAddress(t *testing.T) {
	t.Run("owner can update", func(t *testing.T) {
		service, m := newAccountMocks()

		m.addresses.On("FindByID", mock.Anything, uint64(5)).
			Return(&domain.UserAddress{ID: 5, UserID: 1, Address: domain.Address{City: "Old Town"}}, nil)
		m.addresses.On("ClearDefault", mock.Anything, uint64(1)).Return(nil).Once()
		m.addresses.On("Update", mock.Anything, mock.MatchedBy(func(a *domain.UserAddress) bool {
			return a.ID == 5 && a.IsDefault && a.Address.City == "Springfield"
		})).Return(nil).Once()

		addr, err := service.UpdateAddress(context.Background(), 1, 5, testAddressInput(true))

		assert.NoError(t, err)
		assert.Equal(t, "Springfield", addr.Address.City)
		m.addresses.AssertExpectations(t)
	})

	t.Run("someone else's address reads as not found", func(t *testing.T) {
		service, m := newAccountMocks()

		m.addresses.On("FindByID", mock.Anything, uint64(5)).
			Return(&domain.UserAddress{ID: 5, UserID: 2}, nil)

		addr, err := service.UpdateAddress(context.Background(), 1, 5, testAddressInput(false))

		assert.ErrorIs(t, err, ErrAddressNotFound)
		assert.Nil(t, addr)
		m.addresses.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestAccountService_DeleteAddress(t *testing.T) {
	t.Run("owner can delete", func(t *testing.T) {
		service, m := newAccountMocks()

		m.addresses.On("FindByID", mock.Anything, uint64(5)).
			Return(&domain.UserAddress{ID: 5, UserID: 1}, nil)
		m.addresses.On("Delete", mock.Anything, uint64(5)).Return(nil).Once()

		err := service.DeleteAddress(context.Background(), 1, 5)

		assert.NoError(t, err)
		m.addresses.AssertExpectations(t)
	})

	t.Run("missing address", func(t *testing.T) {
		service, m := newAccountMocks()

		m.addresses.On("FindByID", mock.Anything, uint64(99)).Return(nil, nil)

		err := service.DeleteAddress(context.Background(), 1, 99)

		assert.ErrorIs(t, err, ErrAddressNotFound)
		m.addresses.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
	})
}

func TestAccountService_GetProfile(t *testing.T) {
	service, users, _, _, _ := newAccountServiceWithMocks()

	users.On("FindByID", mock.Anything, uint64(404)).Return(nil, nil)

	user, err := service.GetProfile(context.Background(), 404)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Nil(t, user)
}
