package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/infrastructure/db/memory"
)

var testProfile = domain.CheckoutProfile{
	Key:         "rzp_test_key",
	Name:        "Cascade Forum",
	Description: "Event Registration Payment",
	ThemeColor:  "#7B2CBF",
}

func newTestCheckout(payments *stubPaymentBackend) (*CheckoutService, *recordingJournal) {
	journal := &recordingJournal{}
	svc := NewCheckoutService(payments, memory.NewCheckoutStore(time.Hour), journal, CheckoutConfig{
		Profile:   testProfile,
		ScriptURL: "https://checkout.example.com/v1/checkout.js",
	}, zerolog.Nop())

	n := 0
	svc.newID = func() string {
		n++
		return fmt.Sprintf("attempt-%d", n)
	}
	return svc, journal
}

func paidOrder() domain.PaymentOrder {
	return domain.PaymentOrder{OrderID: "order_Q1", Amount: "499.00", Currency: "INR"}
}

var prefill = &domain.CheckoutPrefill{Name: "Ana", Email: "ana@example.com"}

func TestCheckout_HappyPath(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{order: paidOrder()}
	svc, journal := newTestCheckout(payments)

	view, err := svc.Enter(ctx, "sid", "reg-1")
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	if view.State != domain.CheckoutWidgetLoading || view.Order.OrderID != "order_Q1" {
		t.Fatalf("unexpected view %+v", view)
	}
	if view.ScriptURL == "" {
		t.Fatalf("expected script url")
	}

	opts, err := svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, prefill)
	if err != nil {
		t.Fatalf("widget loaded: %v", err)
	}
	if opts.Amount != 49900 || opts.Key != "rzp_test_key" || opts.OrderID != "order_Q1" {
		t.Fatalf("unexpected options %+v", opts)
	}
	if opts.Prefill.Email != "ana@example.com" || opts.Theme.Color != "#7B2CBF" {
		t.Fatalf("unexpected options %+v", opts)
	}

	flow, err := svc.Verify(ctx, "sid", "reg-1", view.AttemptID, domain.CheckoutResult{
		OrderID: "order_Q1", PaymentID: "pay_1", Signature: "sig",
	})
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if flow.State != domain.CheckoutVerified {
		t.Fatalf("expected verified, got %s", flow.State)
	}

	want := []domain.CheckoutState{
		domain.CheckoutOrderRequested,
		domain.CheckoutWidgetLoading,
		domain.CheckoutWidgetOpen,
		domain.CheckoutVerificationPending,
		domain.CheckoutVerified,
	}
	got := journal.states()
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Fatalf("expected journal %v, got %v", want, got)
	}
}

func TestCheckout_RetryReusesOrderAndAmount(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{
		order:      paidOrder(),
		verifyErrs: []error{&detailErr{detail: "Invalid payment signature"}},
	}
	svc, _ := newTestCheckout(payments)

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	if _, err := svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, prefill); err != nil {
		t.Fatalf("widget loaded: %v", err)
	}

	result := domain.CheckoutResult{OrderID: "order_Q1", PaymentID: "pay_1", Signature: "bad"}
	flow, err := svc.Verify(ctx, "sid", "reg-1", view.AttemptID, result)
	if !errors.Is(err, domain.ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if flow.State != domain.CheckoutVerificationFailed || flow.Failure != "Invalid payment signature" {
		t.Fatalf("unexpected flow %+v", flow)
	}

	opts, err := svc.Reopen(ctx, "sid", "reg-1", view.AttemptID, prefill)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if opts.Amount != 49900 {
		t.Fatalf("expected 49900 after retry, got %d", opts.Amount)
	}
	if opts.OrderID != "order_Q1" {
		t.Fatalf("expected order id reused, got %s", opts.OrderID)
	}
	if payments.orders != 1 {
		t.Fatalf("expected a single create-order call, got %d", payments.orders)
	}

	result.Signature = "good"
	flow, err = svc.Verify(ctx, "sid", "reg-1", view.AttemptID, result)
	if err != nil || flow.State != domain.CheckoutVerified {
		t.Fatalf("second verify: %+v %v", flow, err)
	}
}

func TestCheckout_OrderFailureLeavesFlowIdle(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{orderErr: &detailErr{detail: "Registration must be accepted before payment"}}
	svc, _ := newTestCheckout(payments)

	_, err := svc.Enter(ctx, "sid", "reg-1")
	if MessageOr(err, "Could not create payment order") != "Registration must be accepted before payment" {
		t.Fatalf("expected backend detail, got %v", err)
	}

	flow, err := svc.Status(ctx, "sid", "reg-1")
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if flow.State != domain.CheckoutIdle || flow.Order != nil {
		t.Fatalf("expected idle flow without order, got %+v", flow)
	}
	if payments.orders != 1 {
		t.Fatalf("order creation must not be retried automatically, got %d calls", payments.orders)
	}
}

func TestCheckout_NoOptionsBeforeWidgetLoads(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCheckout(&stubPaymentBackend{order: paidOrder()})

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	_, err := svc.Verify(ctx, "sid", "reg-1", view.AttemptID, domain.CheckoutResult{OrderID: "order_Q1"})
	if !errors.Is(err, domain.ErrWidgetNotReady) {
		t.Fatalf("expected ErrWidgetNotReady, got %v", err)
	}
	if _, err := svc.Reopen(ctx, "sid", "reg-1", view.AttemptID, nil); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestCheckout_WidgetLoadedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc, journal := newTestCheckout(&stubPaymentBackend{order: paidOrder()})

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	first, err := svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, nil)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, nil)
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if *first != *second {
		t.Fatalf("expected identical options, got %+v and %+v", first, second)
	}
	if n := len(journal.states()); n != 3 {
		t.Fatalf("repeated load must not be journaled again, got %d entries", n)
	}
}

func TestCheckout_StaleAttemptRejected(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestCheckout(&stubPaymentBackend{order: paidOrder()})

	old, _ := svc.Enter(ctx, "sid", "reg-1")
	fresh, _ := svc.Enter(ctx, "sid", "reg-1")
	if old.AttemptID == fresh.AttemptID {
		t.Fatalf("each entry must start a new attempt")
	}

	if _, err := svc.WidgetLoaded(ctx, "sid", "reg-1", old.AttemptID, nil); !errors.Is(err, domain.ErrStaleAttempt) {
		t.Fatalf("expected ErrStaleAttempt, got %v", err)
	}
	if _, err := svc.WidgetLoaded(ctx, "other-sid", "reg-1", fresh.AttemptID, nil); !errors.Is(err, ports.ErrFlowNotFound) {
		t.Fatalf("flows must not leak across sessions, got %v", err)
	}
}

func TestCheckout_SingleOutstandingVerification(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{order: paidOrder()}
	svc, _ := newTestCheckout(payments)

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	_, _ = svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, nil)

	result := domain.CheckoutResult{OrderID: "order_Q1", PaymentID: "pay_1", Signature: "sig"}
	var secondErr error
	payments.verifyHook = func() {
		payments.verifyHook = nil
		_, secondErr = svc.Verify(ctx, "sid", "reg-1", view.AttemptID, result)
	}

	if _, err := svc.Verify(ctx, "sid", "reg-1", view.AttemptID, result); err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if !errors.Is(secondErr, domain.ErrVerificationPending) {
		t.Fatalf("expected ErrVerificationPending, got %v", secondErr)
	}
	if len(payments.verified) != 1 {
		t.Fatalf("expected one verification call, got %d", len(payments.verified))
	}
}

func TestCheckout_MismatchedOrderFailsVerification(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{order: paidOrder()}
	svc, _ := newTestCheckout(payments)

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	_, _ = svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, nil)

	flow, err := svc.Verify(ctx, "sid", "reg-1", view.AttemptID, domain.CheckoutResult{OrderID: "order_OTHER"})
	if !errors.Is(err, domain.ErrVerificationFailed) {
		t.Fatalf("expected ErrVerificationFailed, got %v", err)
	}
	if flow.State != domain.CheckoutVerificationFailed {
		t.Fatalf("expected verification_failed, got %s", flow.State)
	}
	if len(payments.verified) != 0 {
		t.Fatalf("mismatched result must not reach the backend")
	}
}

func TestCheckout_VerifyRejectionPropagates(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{order: paidOrder(), verifyErrs: []error{domain.ErrAuthRejected}}
	svc, _ := newTestCheckout(payments)

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	_, _ = svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, nil)

	_, err := svc.Verify(ctx, "sid", "reg-1", view.AttemptID, domain.CheckoutResult{OrderID: "order_Q1"})
	if !errors.Is(err, domain.ErrAuthRejected) {
		t.Fatalf("expected ErrAuthRejected, got %v", err)
	}
}

func TestCheckout_EnterAfterVerifiedKeepsFlow(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{order: paidOrder()}
	svc, _ := newTestCheckout(payments)

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	_, _ = svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, nil)
	_, _ = svc.Verify(ctx, "sid", "reg-1", view.AttemptID, domain.CheckoutResult{OrderID: "order_Q1"})

	again, err := svc.Enter(ctx, "sid", "reg-1")
	if err != nil {
		t.Fatalf("enter: %v", err)
	}
	if again.State != domain.CheckoutVerified || payments.orders != 1 {
		t.Fatalf("verified flow must not create another order: %+v, %d orders", again, payments.orders)
	}
}

func TestCheckout_EnterDuringVerificationKeepsAttempt(t *testing.T) {
	ctx := context.Background()
	payments := &stubPaymentBackend{order: paidOrder()}
	svc, _ := newTestCheckout(payments)

	view, _ := svc.Enter(ctx, "sid", "reg-1")
	_, _ = svc.WidgetLoaded(ctx, "sid", "reg-1", view.AttemptID, nil)

	var during *CheckoutView
	var enterErr error
	payments.verifyHook = func() {
		payments.verifyHook = nil
		during, enterErr = svc.Enter(ctx, "sid", "reg-1")
	}

	flow, err := svc.Verify(ctx, "sid", "reg-1", view.AttemptID, domain.CheckoutResult{OrderID: "order_Q1", PaymentID: "pay_1"})
	if err != nil {
		t.Fatalf("verify after re-entry: %v", err)
	}
	if flow.State != domain.CheckoutVerified {
		t.Fatalf("expected verified, got %s", flow.State)
	}
	if enterErr != nil {
		t.Fatalf("enter: %v", enterErr)
	}
	if during.AttemptID != view.AttemptID || during.State != domain.CheckoutVerificationPending {
		t.Fatalf("re-entry must return the pending attempt, got %+v", during)
	}
	if during.Order == nil || during.Order.OrderID != "order_Q1" {
		t.Fatalf("re-entry must keep the order, got %+v", during.Order)
	}
	if payments.orders != 1 {
		t.Fatalf("re-entry must not create another order, got %d", payments.orders)
	}
}
