package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"arc-backend/internal/platform/apierr"
)

type Handler struct{ svc *Service }

// RegisterRoutes wires the open endpoints (login) on open, and the
// account-management endpoints on protected.
func RegisterRoutes(open gin.IRoutes, protected gin.IRoutes, admin gin.IRoutes, svc *Service) {
	h := &Handler{svc: svc}
	open.POST("/auth/login", h.Login)
	admin.POST("/auth/register", h.Register)
	protected.POST("/auth/password", h.ChangePassword)
	protected.POST("/auth/2fa/enable", h.EnableTOTP)
	protected.POST("/auth/2fa/verify", h.VerifyTOTP)
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	OTPCode  string `json:"otp_code,omitempty"`
}

// Login godoc
// @Summary  Authenticate and obtain a bearer token
// @Tags     auth
// @Accept   json
// @Produce  json
// @Param    body body LoginRequest true "credentials"
// @Success  200 {object} map[string]string
// @Router   /auth/login [post]
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid json or missing required fields")))
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password, req.OTPCode)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"token": token})
}

type RegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	Role     string `json:"role,omitempty"` // defaults to EMPLOYEE
}

func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid json or missing required fields")))
		return
	}

	acct, err := h.svc.Register(c.Request.Context(), req.Email, req.Password, req.Role)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{"account_id": acct.ID, "email": acct.Email, "role": acct.Role})
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid json or missing required fields")))
		return
	}

	email := c.GetString(CtxUserIDKey)
	if err := h.svc.ChangePassword(c.Request.Context(), email, req.CurrentPassword, req.NewPassword); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "password changed"})
}

func (h *Handler) EnableTOTP(c *gin.Context) {
	email := c.GetString(CtxUserIDKey)
	secret, uri, err := h.svc.EnableTOTP(c.Request.Context(), email)
	if err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "otpauth_url": uri})
}

type VerifyTOTPRequest struct {
	Code string `json:"code" binding:"required"`
}

func (h *Handler) VerifyTOTP(c *gin.Context) {
	var req VerifyTOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, apierr.Body(apierr.Invalid("invalid json or missing required fields")))
		return
	}

	email := c.GetString(CtxUserIDKey)
	if err := h.svc.VerifyTOTP(c.Request.Context(), email, req.Code); err != nil {
		c.JSON(apierr.ToHTTPStatus(err), apierr.Body(err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "2fa enabled"})
}
