package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/service"
	"github.com/cascadeforum/portal/internal/infrastructure/backend"
	"github.com/cascadeforum/portal/internal/infrastructure/db/memory"
)

type fakePayments struct {
	orders     int
	verifyErrs []error
}

func (f *fakePayments) CreateOrder(context.Context, string) (*domain.PaymentOrder, error) {
	f.orders++
	return &domain.PaymentOrder{OrderID: "order_1", Amount: domain.Amount("499.00"), Currency: "INR"}, nil
}

func (f *fakePayments) VerifyPayment(context.Context, domain.CheckoutResult) error {
	if len(f.verifyErrs) == 0 {
		return nil
	}
	err := f.verifyErrs[0]
	f.verifyErrs = f.verifyErrs[1:]
	return err
}

func (f *fakePayments) MyPayments(context.Context) ([]domain.Payment, error) {
	return nil, nil
}

func newPaymentHandler(payments *fakePayments) *PaymentHandler {
	svc := service.NewCheckoutService(payments, memory.NewCheckoutStore(time.Hour), nil, service.CheckoutConfig{
		Profile:   domain.CheckoutProfile{Key: "rzp_test", Name: "Cascade Forum", ThemeColor: "#7B2CBF"},
		ScriptURL: "https://checkout.example.com/v1/checkout.js",
	}, zerolog.Nop())
	return NewPaymentHandler(svc)
}

func TestPaymentHandler_FailedVerificationThenRetry(t *testing.T) {
	env := newTestEnv()
	payments := &fakePayments{verifyErrs: []error{
		&backend.APIError{Status: http.StatusBadRequest, Message: "Invalid payment signature"},
	}}
	h := newPaymentHandler(payments)
	sid := env.login(t, domain.Identity{ID: "u1", Email: "ana@example.com", FullName: "Ana", Role: domain.RoleClient})
	reg := []string{"registrationId", "reg-1"}

	rec, _, err := env.call(http.MethodGet, "/payments/reg-1", "", sid, h.Page, reg...)
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	var view service.CheckoutView
	if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if view.State != domain.CheckoutWidgetLoading || view.ScriptURL == "" {
		t.Fatalf("unexpected view %+v", view)
	}

	body := `{"attempt_id":"` + view.AttemptID + `"}`
	rec, _, err = env.call(http.MethodPost, "/payments/reg-1/widget", body, sid, h.WidgetLoaded, reg...)
	if err != nil {
		t.Fatalf("widget: %v", err)
	}
	var widget widgetResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &widget)
	if widget.Amount != 49900 || widget.OrderID != "order_1" || widget.Key != "rzp_test" {
		t.Fatalf("unexpected widget options %+v", widget)
	}
	if widget.Prefill == nil || widget.Prefill.Email != "ana@example.com" {
		t.Fatalf("expected prefill from the session, got %+v", widget.Prefill)
	}
	if widget.VerifyURL != "/payments/reg-1/verify" {
		t.Fatalf("unexpected verify url %q", widget.VerifyURL)
	}

	verify := `{"attempt_id":"` + view.AttemptID + `","razorpay_order_id":"order_1","razorpay_payment_id":"pay_1","razorpay_signature":"sig"}`
	rec, _, err = env.call(http.MethodPost, "/payments/reg-1/verify", verify, sid, h.Verify, reg...)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	var failed verifyResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &failed)
	if failed.State != domain.CheckoutVerificationFailed || failed.Error != "Invalid payment signature" {
		t.Fatalf("unexpected failure response %+v", failed)
	}

	rec, _, err = env.call(http.MethodPost, failed.RetryURL, body, sid, h.Reopen, reg...)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	var retry widgetResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &retry)
	if retry.Amount != 49900 || retry.OrderID != "order_1" {
		t.Fatalf("retry must reuse the order, got %+v", retry)
	}
	if payments.orders != 1 {
		t.Fatalf("expected a single order, got %d", payments.orders)
	}

	rec, _, err = env.call(http.MethodPost, "/payments/reg-1/verify", verify, sid, h.Verify, reg...)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	var ok verifyResponse
	_ = json.Unmarshal(rec.Body.Bytes(), &ok)
	if rec.Code != http.StatusOK || ok.State != domain.CheckoutVerified || ok.Redirect != "/my-registrations" {
		t.Fatalf("unexpected success response %d %+v", rec.Code, ok)
	}
}

func TestPaymentHandler_WidgetBeforeEntry(t *testing.T) {
	env := newTestEnv()
	h := newPaymentHandler(&fakePayments{})
	sid := env.login(t, domain.Identity{ID: "u1", Role: domain.RoleClient})

	_, _, err := env.call(http.MethodPost, "/payments/reg-1/widget", `{"attempt_id":"nope"}`, sid, h.WidgetLoaded,
		"registrationId", "reg-1")
	if err == nil {
		t.Fatalf("expected error without an entered flow")
	}
}

func TestPaymentHandler_VerifyValidation(t *testing.T) {
	env := newTestEnv()
	h := newPaymentHandler(&fakePayments{})
	sid := env.login(t, domain.Identity{ID: "u1", Role: domain.RoleClient})

	_, _, err := env.call(http.MethodPost, "/payments/reg-1/verify", `{"attempt_id":"a"}`, sid, h.Verify,
		"registrationId", "reg-1")
	if httpStatus(t, err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for a missing widget result")
	}
}
