package server

import (
	"errors"
	"net/http"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/handler"
	appmiddleware "worksphere-portal/internal/middleware"
	"worksphere-portal/internal/service"
	"worksphere-portal/internal/session"
	"worksphere-portal/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

type Server struct {
	echo           *echo.Echo
	authHandler    *handler.AuthHandler
	paymentHandler *handler.PaymentHandler
	viewHandler    *handler.ViewHandler
}

func NewServer(sessionStore *session.Store, authService service.AuthService, checkoutService service.CheckoutService, historyService service.HistoryService) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Validator = validation.NewRequestValidator()
	e.HTTPErrorHandler = errorHandler

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(appmiddleware.LoadSession(sessionStore))

	s := &Server{
		echo:           e,
		authHandler:    handler.NewAuthHandler(authService),
		paymentHandler: handler.NewPaymentHandler(checkoutService, historyService),
		viewHandler:    handler.NewViewHandler(),
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// -------- pages --------
	s.echo.GET("/", func(c echo.Context) error {
		return c.Redirect(http.StatusFound, "/login")
	})
	s.echo.GET("/login", s.viewHandler.Login)

	pages := s.echo.Group("", appmiddleware.RequireAuth())
	pages.GET("/dashboard", s.viewHandler.Dashboard)
	pages.GET("/dashboard/membership", s.viewHandler.Membership)
	pages.GET("/dashboard/installments", s.viewHandler.Installments)

	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- auth --------
	auth := api.Group("/auth")
	auth.POST("/signup", s.authHandler.Signup)
	auth.POST("/login", s.authHandler.Login)
	auth.POST("/refresh", s.authHandler.Refresh)
	auth.POST("/logout", s.authHandler.Logout)
	auth.POST("/forgot-password", s.authHandler.ForgotPassword)
	auth.POST("/reset-password", s.authHandler.ResetPassword)

	// -------- payments --------
	payments := api.Group("", appmiddleware.RequireAuth())
	payments.POST("/membership/pay", s.paymentHandler.StartMembershipPayment)
	payments.POST("/installments/pay", s.paymentHandler.StartInstallmentPayment)
	payments.POST("/installments/refund", s.paymentHandler.Refund)
	payments.POST("/checkout/:id/confirm", s.paymentHandler.ConfirmCheckout)
	payments.POST("/checkout/:id/cancel", s.paymentHandler.CancelCheckout)
	payments.GET("/payments/history", s.paymentHandler.History)
}

// errorHandler maps the error taxonomy onto responses. An authorization
// failure always lands on the login entry point, no matter which call
// raised it; the credential store was already cleared by the gateway.
func errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		_ = c.JSON(httpErr.Code, map[string]interface{}{"error": httpErr.Message})
		return
	}

	switch {
	case errors.Is(err, apperr.ErrUnauthorized):
		_ = c.Redirect(http.StatusFound, "/login")
	case errors.Is(err, apperr.ErrValidation):
		_ = c.JSON(http.StatusUnprocessableEntity, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrProcessor):
		_ = c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrMissingReference):
		_ = c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrNetwork):
		_ = c.JSON(http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound), errors.Is(err, apperr.ErrCheckoutNotFound):
		_ = c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, apperr.ErrCheckoutActive),
		errors.Is(err, apperr.ErrConfirmInFlight),
		errors.Is(err, apperr.ErrAlreadyConfirmed),
		errors.Is(err, apperr.ErrInvalidState):
		_ = c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	default:
		_ = c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.echo.ServeHTTP(w, r)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
