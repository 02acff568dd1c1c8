package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/recipeshare/backend/internal/models"
	"github.com/pageza/recipeshare/backend/internal/service"
	"github.com/pageza/recipeshare/backend/internal/types"
	"github.com/pageza/recipeshare/backend/internal/validation"
)

// AuthHandler serves registration, login, email verification and password reset
type AuthHandler struct {
	authService service.IAuthService
}

func NewAuthHandler(authService service.IAuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.POST("/verify-email", h.VerifyEmail)
		auth.POST("/resend-verification", h.ResendVerification)
		auth.POST("/reset-password/request", h.RequestPasswordReset)
		auth.POST("/reset-password/confirm", h.ConfirmPasswordReset)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if !bindJSON(c, &req) {
		return
	}

	user, token, err := h.authService.Register(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	verified := user.IsEmailVerified
	resp := types.AuthResponse{
		Token:   token,
		User:    userView(user),
		Message: "Registration successful! Please check your email to verify your account.",
	}
	resp.User.IsEmailVerified = &verified
	c.JSON(http.StatusCreated, resp)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.Validate(req); err != nil {
		respondError(c, err)
		return
	}

	user, token, err := h.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.AuthResponse{Token: token, User: userView(user)})
}

func (h *AuthHandler) VerifyEmail(c *gin.Context) {
	var req types.VerifyEmailRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.Validate(req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.authService.VerifyEmail(c.Request.Context(), req.Token); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Email verified successfully!"})
}

func (h *AuthHandler) ResendVerification(c *gin.Context) {
	var req types.ResendVerificationRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.authService.ResendVerification(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Verification email sent successfully!"})
}

func (h *AuthHandler) RequestPasswordReset(c *gin.Context) {
	var req types.ResetPasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.Validate(req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.authService.RequestPasswordReset(c.Request.Context(), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset email sent!"})
}

func (h *AuthHandler) ConfirmPasswordReset(c *gin.Context) {
	var req types.ConfirmResetRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := validation.Validate(req); err != nil {
		respondError(c, err)
		return
	}

	if err := h.authService.ConfirmPasswordReset(c.Request.Context(), req.Token, req.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, MessageResponse{Message: "Password reset successfully!"})
}

func userView(u *models.User) types.UserView {
	return types.UserView{ID: u.ID, Name: u.Name, Email: u.Email}
}
