package handler

import (
	"net/http"

	"worksphere-portal/internal/dto"
	"worksphere-portal/internal/middleware"
	"worksphere-portal/internal/service"

	"github.com/labstack/echo/v4"
)

type AuthHandler struct {
	authService service.AuthService
}

func NewAuthHandler(authService service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

func (h *AuthHandler) Signup(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.Signup(ctx, middleware.SessionFrom(c), &req); err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "account created",
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.Login(ctx, middleware.SessionFrom(c), req.Email, req.Password); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"redirect": "/dashboard",
	})
}

func (h *AuthHandler) Refresh(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.authService.Refresh(ctx, middleware.SessionFrom(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "session refreshed",
	})
}

func (h *AuthHandler) Logout(c echo.Context) error {
	ctx := c.Request().Context()

	if err := h.authService.Logout(ctx, middleware.SessionFrom(c)); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"redirect": "/login",
	})
}

func (h *AuthHandler) ForgotPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ForgotPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ForgotPassword(ctx, middleware.SessionFrom(c), req.Email); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "reset email sent",
	})
}

func (h *AuthHandler) ResetPassword(c echo.Context) error {
	ctx := c.Request().Context()

	var req dto.ResetPasswordRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if err := h.authService.ResetPassword(ctx, middleware.SessionFrom(c), req.Token, req.NewPassword); err != nil {
		return err
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message":  "password updated",
		"redirect": "/login",
	})
}
