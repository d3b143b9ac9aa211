package controllers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/HSouheill/salon_backend/models"
	"github.com/HSouheill/salon_backend/services"
	"github.com/HSouheill/salon_backend/utils"
	"github.com/labstack/echo/v4"
)

// OperatorLogin issues operator tokens
type OperatorLogin interface {
	Login(ctx context.Context, email, password string) (*models.LoginResponse, error)
}

// AuthController handles operator login
type AuthController struct {
	auth OperatorLogin
}

// NewAuthController creates a new auth controller
func NewAuthController(auth OperatorLogin) *AuthController {
	return &AuthController{auth: auth}
}

// Login exchanges operator credentials for a JWT
func (ac *AuthController) Login(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 10*time.Second)
	defer cancel()

	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	email, err := utils.SanitizeEmail(req.Email)
	if err != nil {
		return badRequest(c, "Invalid email format")
	}
	req.Email = email
	if err := c.Validate(&req); err != nil {
		return badRequest(c, "Validation failed: "+err.Error())
	}

	res, err := ac.auth.Login(ctx, req.Email, req.Password)
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, models.Response{
			Status:  http.StatusUnauthorized,
			Message: "Invalid credentials",
		})
	case errors.Is(err, services.ErrTooManyAttempts):
		return c.JSON(http.StatusTooManyRequests, models.Response{
			Status:  http.StatusTooManyRequests,
			Message: "Too many failed login attempts. Please try again later.",
		})
	case err != nil:
		log.Printf("❌ operator login failed email=%s err=%v", req.Email, err)
		return c.JSON(http.StatusInternalServerError, models.Response{
			Status:  http.StatusInternalServerError,
			Message: "Login failed",
		})
	}

	return c.JSON(http.StatusOK, models.Response{
		Status:  http.StatusOK,
		Message: "Login successful",
		Data:    res,
	})
}
