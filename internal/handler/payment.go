package handler

import (
	"errors"
	"net/http"

	"worksphere-portal/internal/apperr"
	"worksphere-portal/internal/dto"
	"worksphere-portal/internal/middleware"
	"worksphere-portal/internal/model"
	"worksphere-portal/internal/service"

	"github.com/labstack/echo/v4"
)

const successRedirectURL = "/dashboard?payment=success"

type PaymentHandler struct {
	checkoutService service.CheckoutService
	historyService  service.HistoryService
}

func NewPaymentHandler(checkoutService service.CheckoutService, historyService service.HistoryService) *PaymentHandler {
	return &PaymentHandler{
		checkoutService: checkoutService,
		historyService:  historyService,
	}
}

// StartMembershipPayment opens a one-time checkout for the annual fee.
func (h *PaymentHandler) StartMembershipPayment(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFrom(c)

	var req dto.PayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	co, err := h.checkoutService.StartOneTimePayment(ctx, sess, req.Amount)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.StartCheckoutResponse{
		CheckoutID:   co.ID,
		ClientSecret: co.Session.ClientSecret,
		Amount:       co.Session.Amount,
		Currency:     co.Session.Currency,
	})
}

// StartInstallmentPayment opens an EMI checkout scoped to the account
// email from the session.
func (h *PaymentHandler) StartInstallmentPayment(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFrom(c)

	var req dto.PayRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	co, err := h.checkoutService.StartInstallmentPayment(ctx, sess, req.Amount, sess.UserEmail())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, &dto.StartCheckoutResponse{
		CheckoutID:   co.ID,
		ClientSecret: co.Session.ClientSecret,
		Amount:       co.Session.Amount,
		Currency:     co.Session.Currency,
	})
}

// ConfirmCheckout runs the collect-then-confirm sequence for one user
// action. The widget's output comes in; the confirmation outcome goes
// back with the navigation target for terminal success.
func (h *PaymentHandler) ConfirmCheckout(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFrom(c)
	checkoutID := c.Param("id")

	var req dto.ConfirmRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	token, err := h.checkoutService.CollectPaymentMethod(ctx, sess, checkoutID, req.PaymentMethodRef)
	if err != nil {
		return err
	}

	result, err := h.checkoutService.Confirm(ctx, sess, checkoutID, token)
	if err != nil {
		return err
	}

	resp := &dto.ConfirmResponse{
		Outcome:   string(result.Outcome),
		Status:    result.Status,
		PaymentID: result.PaymentID,
	}

	switch result.Outcome {
	case service.OutcomeSucceeded:
		resp.RedirectURL = successRedirectURL
	case service.OutcomeRequiresAction:
		// challenge handling is not implemented; the page shows this
		// message instead of pretending the payment settled
		resp.Message = "Additional authentication required."
	default:
		resp.Message = "Payment status: " + result.Status
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *PaymentHandler) CancelCheckout(c echo.Context) error {
	sess := middleware.SessionFrom(c)
	checkoutID := c.Param("id")

	if err := h.checkoutService.Cancel(sess, checkoutID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

// Refund dispatches a refund for an installment payment. The blocking
// user confirmation happens here, at the UI boundary; without it
// nothing is sent.
func (h *PaymentHandler) Refund(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFrom(c)

	var req dto.RefundRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid req body")
	}

	if req.SubscriptionID == "" {
		return echo.NewHTTPError(http.StatusBadRequest,
			"Refund not available for this transaction (Reference missing)")
	}
	if !req.Confirmed {
		return echo.NewHTTPError(http.StatusConflict,
			"refund requires explicit confirmation")
	}

	result, err := h.checkoutService.Refund(ctx, sess, req.SubscriptionID)
	if err != nil {
		if errors.Is(err, apperr.ErrMissingReference) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return err
	}

	return c.JSON(http.StatusOK, &dto.RefundResponse{
		Status: result.Status,
	})
}

// History serves the reconciled payment list for one view. The three
// display states stay distinguishable: a backend failure becomes an
// error response (retry affordance), an empty list an explicit empty
// state, and loading is the page's own concern.
func (h *PaymentHandler) History(c echo.Context) error {
	ctx := c.Request().Context()
	sess := middleware.SessionFrom(c)

	filterType := model.PaymentType(c.QueryParam("type"))
	switch filterType {
	case "", model.PaymentTypeOneTime, model.PaymentTypeSubscription:
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "unknown history filter")
	}

	items, err := h.historyService.FetchHistory(ctx, sess, filterType, c.QueryParam("email"))
	if err != nil {
		return err
	}

	resp := &dto.HistoryResponse{State: "loaded", Items: historyRows(items)}
	if len(items) == 0 {
		resp.State = "empty"
	}
	return c.JSON(http.StatusOK, resp)
}

// historyRows keeps the backend's ordering and derives the countdown
// sequence numbers the table shows. Purely presentational: if the
// backend ever changes its ordering, these numbers follow it.
func historyRows(items []*model.PaymentHistoryItem) []dto.HistoryRow {
	rows := make([]dto.HistoryRow, len(items))
	for i, item := range items {
		rows[i] = dto.HistoryRow{
			Seq:  len(items) - i,
			Item: *item,
		}
	}
	return rows
}
