package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/service"
)

type checkoutService interface {
	Enter(ctx context.Context, sessionID, registrationID string) (*service.CheckoutView, error)
	WidgetLoaded(ctx context.Context, sessionID, registrationID, attemptID string, prefill *domain.CheckoutPrefill) (*domain.CheckoutOptions, error)
	Verify(ctx context.Context, sessionID, registrationID, attemptID string, result domain.CheckoutResult) (*domain.CheckoutFlow, error)
	Reopen(ctx context.Context, sessionID, registrationID, attemptID string, prefill *domain.CheckoutPrefill) (*domain.CheckoutOptions, error)
	Status(ctx context.Context, sessionID, registrationID string) (*domain.CheckoutFlow, error)
	MyPayments(ctx context.Context) ([]domain.Payment, error)
}

// PaymentHandler relays the payment hand-off between the page, the checkout
// widget and the backend.
type PaymentHandler struct {
	checkout checkoutService
}

func NewPaymentHandler(checkout checkoutService) *PaymentHandler {
	return &PaymentHandler{checkout: checkout}
}

type attemptRequest struct {
	AttemptID string `json:"attempt_id" validate:"required"`
}

type verifyRequest struct {
	AttemptID         string `json:"attempt_id"          validate:"required"`
	RazorpayOrderID   string `json:"razorpay_order_id"   validate:"required"`
	RazorpayPaymentID string `json:"razorpay_payment_id" validate:"required"`
	RazorpaySignature string `json:"razorpay_signature"  validate:"required"`
}

type widgetResponse struct {
	domain.CheckoutOptions
	VerifyURL string `json:"verify_url"`
}

type verifyResponse struct {
	State    domain.CheckoutState `json:"state"`
	Redirect string               `json:"redirect,omitempty"`
	Error    string               `json:"error,omitempty"`
	RetryURL string               `json:"retry_url,omitempty"`
}

type paymentsResponse struct {
	Payments []domain.Payment `json:"payments"`
}

// Page handles GET /payments/:registrationId: starts a checkout attempt and
// creates the order.
//
// @Summary      Enter the payment page
// @Tags         payments
// @Produce      json
// @Security     SessionCookie
// @Param        registrationId  path      string  true  "Registration ID"
// @Success      200             {object}  service.CheckoutView
// @Failure      400             {object}  errorResponse
// @Failure      502             {object}  errorResponse
// @Router       /payments/{registrationId} [get]
func (h *PaymentHandler) Page(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	view, err := h.checkout.Enter(c.Request().Context(), sess.ID(), c.Param("registrationId"))
	if err != nil {
		return backendFailure(err, "Could not create payment order")
	}
	return c.JSON(http.StatusOK, view)
}

// WidgetLoaded handles POST /payments/:registrationId/widget: the checkout
// script is loaded; answers the widget options.
//
// @Summary      Report the checkout widget loaded
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        registrationId  path      string          true  "Registration ID"
// @Param        body            body      attemptRequest  true  "Attempt"
// @Success      200             {object}  widgetResponse
// @Failure      409             {object}  errorResponse
// @Router       /payments/{registrationId}/widget [post]
func (h *PaymentHandler) WidgetLoaded(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req attemptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	regID := c.Param("registrationId")
	opts, err := h.checkout.WidgetLoaded(c.Request().Context(), sess.ID(), regID, req.AttemptID, ctxPrefill(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, widgetResponse{CheckoutOptions: *opts, VerifyURL: verifyURL(regID)})
}

// Verify handles POST /payments/:registrationId/verify: the widget's
// completion callback.
//
// @Summary      Verify a completed checkout
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        registrationId  path      string         true  "Registration ID"
// @Param        body            body      verifyRequest  true  "Widget result"
// @Success      200             {object}  verifyResponse
// @Failure      409             {object}  errorResponse
// @Failure      422             {object}  verifyResponse
// @Router       /payments/{registrationId}/verify [post]
func (h *PaymentHandler) Verify(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req verifyRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	regID := c.Param("registrationId")
	flow, err := h.checkout.Verify(c.Request().Context(), sess.ID(), regID, req.AttemptID, domain.CheckoutResult{
		OrderID:   req.RazorpayOrderID,
		PaymentID: req.RazorpayPaymentID,
		Signature: req.RazorpaySignature,
	})
	if errors.Is(err, domain.ErrVerificationFailed) && flow != nil {
		return c.JSON(http.StatusUnprocessableEntity, verifyResponse{
			State:    flow.State,
			Error:    flow.Failure,
			RetryURL: "/payments/" + regID + "/reopen",
		})
	}
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, verifyResponse{State: flow.State, Redirect: "/my-registrations"})
}

// Reopen handles POST /payments/:registrationId/reopen: retry after a failed
// verification with the same order.
//
// @Summary      Retry a failed payment
// @Tags         payments
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        registrationId  path      string          true  "Registration ID"
// @Param        body            body      attemptRequest  true  "Attempt"
// @Success      200             {object}  widgetResponse
// @Failure      422             {object}  errorResponse
// @Router       /payments/{registrationId}/reopen [post]
func (h *PaymentHandler) Reopen(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req attemptRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	regID := c.Param("registrationId")
	opts, err := h.checkout.Reopen(c.Request().Context(), sess.ID(), regID, req.AttemptID, ctxPrefill(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, widgetResponse{CheckoutOptions: *opts, VerifyURL: verifyURL(regID)})
}

// Status handles GET /payments/:registrationId/status.
//
// @Summary      Checkout state
// @Tags         payments
// @Produce      json
// @Security     SessionCookie
// @Param        registrationId  path      string  true  "Registration ID"
// @Success      200             {object}  domain.CheckoutFlow
// @Failure      404             {object}  errorResponse
// @Router       /payments/{registrationId}/status [get]
func (h *PaymentHandler) Status(c echo.Context) error {
	sess, err := ctxSession(c)
	if err != nil {
		return err
	}
	flow, err := h.checkout.Status(c.Request().Context(), sess.ID(), c.Param("registrationId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, flow)
}

// MyPayments handles GET /my-payments.
//
// @Summary      My payments
// @Tags         payments
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  paymentsResponse
// @Router       /my-payments [get]
func (h *PaymentHandler) MyPayments(c echo.Context) error {
	payments, err := h.checkout.MyPayments(c.Request().Context())
	if err != nil {
		return backendFailure(err, "Could not load payments")
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return c.JSON(http.StatusOK, paymentsResponse{Payments: payments})
}

func verifyURL(registrationID string) string {
	return "/payments/" + registrationID + "/verify"
}
