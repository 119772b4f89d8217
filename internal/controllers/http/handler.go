package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"ecommerce-backend/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

type Handler struct {
	orders   *services.OrderService
	accounts *services.AccountService
	rdb      *redis.Client
}

func NewHandler(orders *services.OrderService, accounts *services.AccountService, rdb *redis.Client) *Handler {
	return &Handler{orders: orders, accounts: accounts, rdb: rdb}
}

func (h *Handler) RegisterRoutes(r *gin.Engine) {
	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })

	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
		auth.POST("/verify-email/:token", h.VerifyEmail)
		auth.POST("/change-password", h.ChangePassword)
		auth.POST("/password-reset", h.RequestPasswordReset)
		auth.POST("/password-reset/:token", h.ResetPassword)
		auth.GET("/profile/:id", h.GetProfile)
		auth.PUT("/profile/:id", h.UpdateProfile)
		auth.GET("/activity/:id", h.ListActivity)
		auth.GET("/profile/:id/addresses", h.ListAddresses)
		auth.POST("/profile/:id/addresses", h.CreateAddress)
		auth.GET("/profile/:id/addresses/:addressId", h.GetAddress)
		auth.PUT("/profile/:id/addresses/:addressId", h.UpdateAddress)
		auth.DELETE("/profile/:id/addresses/:addressId", h.DeleteAddress)
	}

	orders := r.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.GET("/:id/history", h.GetOrderHistory)
		orders.GET("/user/:userId", h.GetOrdersByUser)
		orders.PATCH("/:id/status", h.TransitionOrder)
	}

	r.GET("/products/:id", h.GetProduct)
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Register(c.Request.Context(), services.RegisterInput{
		Email:     req.Email,
		Password:  req.Password,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	}, c.ClientIP())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully. Please check your email for verification.",
		"userId":  user.ID,
	})
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.Login(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Login successful", "user": user})
}

func (h *Handler) Logout(c *gin.Context) {
	var req LogoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	h.accounts.Logout(c.Request.Context(), req.UserID, c.ClientIP())
	c.JSON(http.StatusOK, gin.H{"message": "Logout successful"})
}

func (h *Handler) VerifyEmail(c *gin.Context) {
	user, err := h.accounts.VerifyEmail(c.Request.Context(), c.Param("token"))
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": verifyErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Email verified successfully", "userId": user.ID})
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	err := h.accounts.ChangePassword(c.Request.Context(), req.UserID, req.CurrentPassword, req.NewPassword, c.ClientIP())
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// RequestPasswordReset answers identically whether or not the email
// exists, so the endpoint cannot be used to enumerate accounts.
func (h *Handler) RequestPasswordReset(c *gin.Context) {
	var req PasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Email, c.ClientIP()); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "If the email exists, a reset link has been sent"})
}

func (h *Handler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.accounts.ResetPassword(c.Request.Context(), c.Param("token"), req.NewPassword); err != nil {
		c.JSON(statusFor(err), gin.H{"error": resetErrorMessage(err)})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset successfully"})
}

func (h *Handler) GetProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	user, err := h.accounts.GetProfile(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) UpdateProfile(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.accounts.UpdateProfile(c.Request.Context(), id, services.UpdateProfileInput{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) ListAddresses(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	addresses, err := h.accounts.ListAddresses(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, addresses)
}

func (h *Handler) CreateAddress(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addr, err := h.accounts.CreateAddress(c.Request.Context(), id, services.AddressInput{
		Address:   req.toDomain(),
		IsDefault: req.IsDefault,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, addr)
}

func (h *Handler) GetAddress(c *gin.Context) {
	userID, addressID, ok := addressParams(c)
	if !ok {
		return
	}

	addr, err := h.accounts.GetAddress(c.Request.Context(), userID, addressID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, addr)
}

func (h *Handler) UpdateAddress(c *gin.Context) {
	userID, addressID, ok := addressParams(c)
	if !ok {
		return
	}

	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	addr, err := h.accounts.UpdateAddress(c.Request.Context(), userID, addressID, services.AddressInput{
		Address:   req.toDomain(),
		IsDefault: req.IsDefault,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, addr)
}

func (h *Handler) DeleteAddress(c *gin.Context) {
	userID, addressID, ok := addressParams(c)
	if !ok {
		return
	}

	if err := h.accounts.DeleteAddress(c.Request.Context(), userID, addressID); err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Address deleted"})
}

func addressParams(c *gin.Context) (userID, addressID uint64, ok bool) {
	userID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return 0, 0, false
	}
	addressID, err = strconv.ParseUint(c.Param("addressId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid address id"})
		return 0, 0, false
	}
	return userID, addressID, true
}

func (h *Handler) ListActivity(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	activity, err := h.accounts.ListActivity(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, activity)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	items := make([]services.CreateOrderItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, services.CreateOrderItemInput{ProductID: it.ProductID, Quantity: it.Quantity})
	}

	order, err := h.orders.CreateOrder(c.Request.Context(), services.CreateOrderInput{
		UserID:          req.UserID,
		CustomerEmail:   req.CustomerEmail,
		CustomerPhone:   req.CustomerPhone,
		PaymentMethod:   req.PaymentMethod,
		TaxAmount:       req.TaxAmount,
		ShippingCost:    req.ShippingCost,
		DiscountAmount:  req.DiscountAmount,
		ShippingAddress: req.ShippingAddress.toDomain(),
		BillingAddress:  req.BillingAddress.toDomain(),
		CustomerNotes:   req.CustomerNotes,
		Items:           items,
	})
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, order)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	cacheKey := "orders:" + c.Param("id")
	ctx := c.Request.Context()
	if b, err := h.rdb.Get(ctx, cacheKey).Result(); err == nil {
		var cached map[string]any
		if json.Unmarshal([]byte(b), &cached) == nil {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	order, err := h.orders.GetOrder(ctx, id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	if data, err := json.Marshal(order); err == nil {
		h.rdb.Set(ctx, cacheKey, data, 10*time.Second)
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetOrderHistory(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	history, err := h.orders.GetHistory(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, history)
}

func (h *Handler) GetOrdersByUser(c *gin.Context) {
	userID, err := strconv.ParseUint(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	orders, err := h.orders.GetOrdersByUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, orders)
}

func (h *Handler) TransitionOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return
	}

	var req TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// ApplyTransition invalidates the cache entry itself.
	order, err := h.orders.ApplyTransition(c.Request.Context(), id, req.Status, req.PaymentStatus, req.ActorID)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, order)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return
	}

	product, err := h.orders.GetProduct(c.Request.Context(), id)
	if err != nil {
		c.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, product)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidToken),
		errors.Is(err, services.ErrTokenExpired):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrOrderNotFound),
		errors.Is(err, services.ErrProductNotFound),
		errors.Is(err, services.ErrUserNotFound),
		errors.Is(err, services.ErrAddressNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConcurrentModification),
		errors.Is(err, services.ErrEmailTaken):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

func verifyErrorMessage(err error) string {
	if errors.Is(err, services.ErrTokenExpired) {
		return "Verification link has expired"
	}
	if errors.Is(err, services.ErrInvalidToken) {
		return "Invalid verification link"
	}
	return err.Error()
}

func resetErrorMessage(err error) string {
	if errors.Is(err, services.ErrTokenExpired) {
		return "Reset link has expired"
	}
	if errors.Is(err, services.ErrInvalidToken) {
		return "Invalid reset link"
	}
	return err.Error()
}
