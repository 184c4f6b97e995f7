package handler

import (
	"net/http"

	"worksphere-portal/internal/middleware"
	"worksphere-portal/internal/service"

	"github.com/labstack/echo/v4"
)

// ViewHandler serves the shell's navigation surface. The pages are
// thin; everything interesting happens through the /api routes.
type ViewHandler struct{}

func NewViewHandler() *ViewHandler {
	return &ViewHandler{}
}

func (h *ViewHandler) Login(c echo.Context) error {
	if middleware.SessionFrom(c).Authenticated() {
		return c.Redirect(http.StatusFound, "/dashboard")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"view": "login",
	})
}

func (h *ViewHandler) Dashboard(c echo.Context) error {
	sess := middleware.SessionFrom(c)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"view":           "dashboard",
		"userEmail":      sess.UserEmail(),
		"paymentOutcome": c.QueryParam("payment"),
		"tabs":           []string{"membership", "installments"},
	})
}

func (h *ViewHandler) Membership(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"view":      "membership",
		"title":     service.MembershipTitle,
		"amount":    service.MembershipAmount,
		"currency":  service.DefaultCurrency,
		"validTill": service.PlanValidTill,
	})
}

func (h *ViewHandler) Installments(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"view":          "installments",
		"title":         service.EMIPlanTitle,
		"monthlyAmount": service.EMIMonthlyAmount,
		"currency":      service.DefaultCurrency,
		"validTill":     service.PlanValidTill,
	})
}
