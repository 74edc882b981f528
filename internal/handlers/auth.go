package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/mahora/task-tracker/internal/dto"
	apierrors "github.com/mahora/task-tracker/internal/errors"
	"github.com/mahora/task-tracker/internal/middleware"
	"github.com/mahora/task-tracker/internal/services"
)

// AuthHandler coordinates authentication-related HTTP handlers.
type AuthHandler struct {
	authService *services.AuthService
	logger      *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		logger:      logger,
	}
}

// Login checks a credential pair. A wrong pair is not an HTTP error: it is
// answered with 200 and success=false so the client can show the message.
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apierrors.BadRequest(c, "Invalid request body")
		return
	}

	user, err := h.authService.Login(c.Request.Context(), services.LoginInput{
		CredentialID:     req.CredentialID,
		CredentialSecret: req.CredentialSecret,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingCredentials):
			apierrors.MissingField(c, "Missing credentials")
		case errors.Is(err, services.ErrInvalidCredentials):
			c.JSON(http.StatusOK, dto.LoginResponse{
				Success: false,
				Message: "Invalid credentials",
			})
		default:
			h.logger.Error("login failed",
				"request_id", middleware.GetRequestID(c),
				"error", err,
			)
			apierrors.InternalError(c, "Server error")
		}
		return
	}

	userDTO := dto.ToUserDTO(*user)
	c.JSON(http.StatusOK, dto.LoginResponse{
		Success: true,
		Message: "Login successful",
		User:    &userDTO,
	})
}
