package services

import (
	"context"
	"fmt"
	"log"

	"ecommerce-backend/internal/domain"
	"ecommerce-backend/internal/infra/mailer"
	"ecommerce-backend/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
}

type AddressInput struct {
	Address   domain.Address
	IsDefault bool
}

// AccountService owns the user lifecycle: registration, login/logout,
// email verification, password change and reset, profile and address
// book. The acting user and client IP arrive as explicit parameters;
// nothing is read from ambient request state.
type AccountService struct {
	tx        repository.Transactor
	users     repository.UserRepository
	activity  repository.ActivityRepository
	addresses repository.AddressRepository
	tokens    *TokenService
	mail      mailer.Sender

	frontendURL string
}

func NewAccountService(tx repository.Transactor, users repository.UserRepository, activity repository.ActivityRepository, addresses repository.AddressRepository, tokens *TokenService, mail mailer.Sender, frontendURL string) *AccountService {
	return &AccountService{
		tx:          tx,
		users:       users,
		activity:    activity,
		addresses:   addresses,
		tokens:      tokens,
		mail:        mail,
		frontendURL: frontendURL,
	}
}

// Register creates the account, logs the activity and emails a
// verification link. A failed delivery is returned to the caller: the
// user cannot verify without the email, so silence here is worse than
// an error.
func (s *AccountService) Register(ctx context.Context, in RegisterInput, ip string) (*domain.User, error) {
	existing, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Email:        in.Email,
		PasswordHash: string(hash),
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Phone:        in.Phone,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logActivity(ctx, user.ID, domain.ActivityRegistration, "User registered successfully", ip)

	token, err := s.tokens.IssueVerificationToken(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	verifyURL := fmt.Sprintf("%s/verify-email/%s/", s.frontendURL, token)
	body := fmt.Sprintf("Please click the link to verify your email: %s", verifyURL)
	if err := s.mail.Send(user.Email, "Verify your email address", body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return user, nil
}

func (s *AccountService) Login(ctx context.Context, email, password, ip string) (*domain.User, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	s.logActivity(ctx, user.ID, domain.ActivityLogin, "User logged in successfully", ip)

	return user, nil
}

func (s *AccountService) Logout(ctx context.Context, userID uint64, ip string) {
	s.logActivity(ctx, userID, domain.ActivityLogout, "User logged out", ip)
}

// VerifyEmail redeems a verification token and flips the user's
// verified flag. Redemption and the user save share one transaction, so
// a failed save rolls the consumption back and the link stays live.
func (s *AccountService) VerifyEmail(ctx context.Context, token string) (*domain.User, error) {
	var user *domain.User
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		u, err := s.tokens.RedeemVerificationToken(ctx, token)
		if err != nil {
			return err
		}

		u.IsEmailVerified = true
		if err := s.users.Update(ctx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logActivity(ctx, user.ID, domain.ActivityEmailVerification, "User verified email address", "")

	return user, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID uint64, current, newPassword, ip string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrUserNotFound
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(current)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	user.PasswordHash = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}

	s.logActivity(ctx, userID, domain.ActivityPasswordChange, "User changed password successfully", ip)

	return nil
}

// RequestPasswordReset returns nil for unknown emails so the response
// shape never reveals whether an account exists.
func (s *AccountService) RequestPasswordReset(ctx context.Context, email, ip string) error {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return err
	}
	if user == nil {
		return nil
	}

	token, err := s.tokens.IssuePasswordResetToken(ctx, user.ID)
	if err != nil {
		return err
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s/", s.frontendURL, token)
	body := fmt.Sprintf("Click the link to reset your password: %s", resetURL)
	if err := s.mail.Send(user.Email, "Password Reset Request", body); err != nil {
		return fmt.Errorf("%w: %v", ErrNotificationFailed, err)
	}

	return nil
}

// ResetPassword redeems inside the same transaction as the password
// save; a failed save does not burn the link.
func (s *AccountService) ResetPassword(ctx context.Context, token, newPassword string) error {
	var userID uint64
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		user, err := s.tokens.RedeemPasswordResetToken(ctx, token)
		if err != nil {
			return err
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}
		user.PasswordHash = string(hash)
		if err := s.users.Update(ctx, user); err != nil {
			return err
		}
		userID = user.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.logActivity(ctx, userID, domain.ActivityPasswordReset, "User reset password via email", "")

	return nil
}

func (s *AccountService) GetProfile(ctx context.Context, userID uint64) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uint64, in UpdateProfileInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	user.FirstName = in.FirstName
	user.LastName = in.LastName
	user.Phone = in.Phone
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *AccountService) ListActivity(ctx context.Context, userID uint64) ([]domain.UserActivity, error) {
	return s.activity.ListByUser(ctx, userID)
}

// CreateAddress adds an address-book entry. Promoting it to default
// demotes the previous default inside the same transaction.
func (s *AccountService) CreateAddress(ctx context.Context, userID uint64, in AddressInput) (*domain.UserAddress, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	addr := &domain.UserAddress{
		UserID:    userID,
		Address:   in.Address,
		IsDefault: in.IsDefault,
	}
	err = s.tx.RunInTx(ctx, func(ctx context.Context) error {
		if in.IsDefault {
			if err := s.addresses.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		return s.addresses.Create(ctx, addr)
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *AccountService) ListAddresses(ctx context.Context, userID uint64) ([]domain.UserAddress, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func (s *AccountService) GetAddress(ctx context.Context, userID, addressID uint64) (*domain.UserAddress, error) {
	return s.ownedAddress(ctx, userID, addressID)
}

func (s *AccountService) UpdateAddress(ctx context.Context, userID, addressID uint64, in AddressInput) (*domain.UserAddress, error) {
	var addr *domain.UserAddress
	err := s.tx.RunInTx(ctx, func(ctx context.Context) error {
		a, err := s.ownedAddress(ctx, userID, addressID)
		if err != nil {
			return err
		}
		if in.IsDefault && !a.IsDefault {
			if err := s.addresses.ClearDefault(ctx, userID); err != nil {
				return err
			}
		}
		a.Address = in.Address
		a.IsDefault = in.IsDefault
		if err := s.addresses.Update(ctx, a); err != nil {
			return err
		}
		addr = a
		return nil
	})
	if err != nil {
		return nil, err
	}
	return addr, nil
}

func (s *AccountService) DeleteAddress(ctx context.Context, userID, addressID uint64) error {
	addr, err := s.ownedAddress(ctx, userID, addressID)
	if err != nil {
		return err
	}
	return s.addresses.Delete(ctx, addr.ID)
}

// ownedAddress scopes lookups to the acting user: someone else's entry
// reads as not found.
func (s *AccountService) ownedAddress(ctx context.Context, userID, addressID uint64) (*domain.UserAddress, error) {
	addr, err := s.addresses.FindByID(ctx, addressID)
	if err != nil {
		return nil, err
	}
	if addr == nil || addr.UserID != userID {
		return nil, ErrAddressNotFound
	}
	return addr, nil
}

// The activity log is best effort; a failed append never blocks the
// flow it records.
func (s *AccountService) logActivity(ctx context.Context, userID uint64, activityType, description, ip string) {
	err := s.activity.Append(ctx, &domain.UserActivity{
		UserID:       userID,
		ActivityType: activityType,
		Description:  description,
		IPAddress:    ip,
	})
	if err != nil {
		log.Printf("Failed to log %s activity for user %d: %v", activityType, userID, err)
	}
}
