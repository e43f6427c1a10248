package domain

import (
	"fmt"
	"time"
)

// CheckoutState is the single state of a payment hand-off.
type CheckoutState string

const (
	CheckoutIdle                CheckoutState = "idle"
	CheckoutOrderRequested      CheckoutState = "order_requested"
	CheckoutWidgetLoading       CheckoutState = "widget_loading"
	CheckoutWidgetOpen          CheckoutState = "widget_open"
	CheckoutVerificationPending CheckoutState = "verification_pending"
	CheckoutVerified            CheckoutState = "verified"
	CheckoutVerificationFailed  CheckoutState = "verification_failed"
)

// checkoutTransitions defines the allowed state machine transitions.
var checkoutTransitions = map[CheckoutState][]CheckoutState{
	CheckoutIdle:                {CheckoutOrderRequested},
	CheckoutOrderRequested:      {CheckoutWidgetLoading, CheckoutIdle},
	CheckoutWidgetLoading:       {CheckoutWidgetOpen},
	CheckoutWidgetOpen:          {CheckoutVerificationPending},
	CheckoutVerificationPending: {CheckoutVerified, CheckoutVerificationFailed},
	CheckoutVerificationFailed:  {CheckoutWidgetOpen},
}

// CanTransitionTo reports whether a transition from s to next is valid.
func (s CheckoutState) CanTransitionTo(next CheckoutState) bool {
	for _, allowed := range checkoutTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsFinal reports whether the hand-off is complete.
func (s CheckoutState) IsFinal() bool {
	return s == CheckoutVerified
}

// CheckoutFlow is one attempt at paying for a registration.
//
// Order is set from widget_loading on and never changes afterwards; Failure
// is only meaningful in verification_failed, or on an idle flow whose order
// could not be created.
type CheckoutFlow struct {
	AttemptID      string        `json:"attempt_id"`
	RegistrationID string        `json:"registration_id"`
	State          CheckoutState `json:"state"`
	Order          *PaymentOrder `json:"order,omitempty"`
	Failure        string        `json:"failure,omitempty"`
	UpdatedAt      time.Time     `json:"updated_at"`
}

// NewCheckoutFlow returns an idle flow for a new attempt.
func NewCheckoutFlow(attemptID, registrationID string, now time.Time) *CheckoutFlow {
	return &CheckoutFlow{
		AttemptID:      attemptID,
		RegistrationID: registrationID,
		State:          CheckoutIdle,
		UpdatedAt:      now.UTC(),
	}
}

// RequestOrder marks the order creation call as in flight.
func (f *CheckoutFlow) RequestOrder(now time.Time) error {
	f.Failure = ""
	return f.transition(CheckoutOrderRequested, now)
}

// OrderCreated records the backend order and starts waiting for the widget.
func (f *CheckoutFlow) OrderCreated(order PaymentOrder, now time.Time) error {
	if order.OrderID == "" {
		return fmt.Errorf("%w: order without id", ErrInvalidTransition)
	}
	amount, err := ParseAmount(string(order.Amount))
	if err != nil {
		return err
	}
	if err := f.transition(CheckoutWidgetLoading, now); err != nil {
		return err
	}
	order.Amount = amount
	f.Order = &order
	return nil
}

// OrderFailed returns the flow to idle; the caller has to start over.
func (f *CheckoutFlow) OrderFailed(reason string, now time.Time) error {
	if err := f.transition(CheckoutIdle, now); err != nil {
		return err
	}
	f.Failure = reason
	return nil
}

// WidgetLoaded opens the widget. Until this happens no checkout options are
// released, so a widget that never loads keeps payment disabled.
func (f *CheckoutFlow) WidgetLoaded(now time.Time) error {
	return f.transition(CheckoutWidgetOpen, now)
}

// BeginVerification records that the widget reported a completed checkout.
func (f *CheckoutFlow) BeginVerification(now time.Time) error {
	switch f.State {
	case CheckoutVerificationPending:
		return ErrVerificationPending
	case CheckoutIdle, CheckoutOrderRequested, CheckoutWidgetLoading:
		return ErrWidgetNotReady
	}
	return f.transition(CheckoutVerificationPending, now)
}

// Verified completes the flow.
func (f *CheckoutFlow) Verified(now time.Time) error {
	return f.transition(CheckoutVerified, now)
}

// VerificationFailed keeps the order so the caller can retry with it.
func (f *CheckoutFlow) VerificationFailed(reason string, now time.Time) error {
	if err := f.transition(CheckoutVerificationFailed, now); err != nil {
		return err
	}
	f.Failure = reason
	return nil
}

// Reopen re-invokes the widget for the same order after a failed verification.
func (f *CheckoutFlow) Reopen(now time.Time) error {
	if f.State != CheckoutVerificationFailed {
		return fmt.Errorf("%w (reopen from %s)", ErrInvalidTransition, f.State)
	}
	if err := f.transition(CheckoutWidgetOpen, now); err != nil {
		return err
	}
	f.Failure = ""
	return nil
}

func (f *CheckoutFlow) transition(to CheckoutState, now time.Time) error {
	if !f.State.CanTransitionTo(to) {
		return fmt.Errorf("%w (from %s to %s)", ErrInvalidTransition, f.State, to)
	}
	f.State = to
	f.UpdatedAt = now.UTC()
	return nil
}

// CheckoutProfile is the merchant-side part of the widget configuration.
type CheckoutProfile struct {
	Key         string
	Name        string
	Description string
	ThemeColor  string
}

// CheckoutPrefill pre-populates the widget's contact fields.
type CheckoutPrefill struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CheckoutTheme styles the widget.
type CheckoutTheme struct {
	Color string `json:"color,omitempty"`
}

// CheckoutOptions is the configuration object the widget is invoked with.
// Amount is in minor units.
type CheckoutOptions struct {
	Key         string           `json:"key"`
	Amount      int64            `json:"amount"`
	Currency    string           `json:"currency"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	OrderID     string           `json:"order_id"`
	Prefill     *CheckoutPrefill `json:"prefill,omitempty"`
	Theme       CheckoutTheme    `json:"theme"`
}

// Options builds the widget configuration. It is only available while the
// widget is open, and is the one place amounts are converted to minor units.
func (f *CheckoutFlow) Options(p CheckoutProfile, prefill *CheckoutPrefill) (CheckoutOptions, error) {
	if f.State != CheckoutWidgetOpen || f.Order == nil {
		return CheckoutOptions{}, ErrWidgetNotReady
	}

	minor, err := f.Order.Amount.MinorUnits()
	if err != nil {
		return CheckoutOptions{}, err
	}

	key := f.Order.Key
	if key == "" {
		key = p.Key
	}

	return CheckoutOptions{
		Key:         key,
		Amount:      minor,
		Currency:    f.Order.Currency,
		Name:        p.Name,
		Description: p.Description,
		OrderID:     f.Order.OrderID,
		Prefill:     prefill,
		Theme:       CheckoutTheme{Color: p.ThemeColor},
	}, nil
}

// CheckoutJournalEntry records one committed transition of a flow.
type CheckoutJournalEntry struct {
	RegistrationID string        `json:"registration_id" bson:"registration_id"`
	AttemptID      string        `json:"attempt_id" bson:"attempt_id"`
	From           CheckoutState `json:"from" bson:"from"`
	To             CheckoutState `json:"to" bson:"to"`
	OrderID        string        `json:"order_id,omitempty" bson:"order_id,omitempty"`
	Amount         Amount        `json:"amount,omitempty" bson:"amount,omitempty"`
	Reason         string        `json:"reason,omitempty" bson:"reason,omitempty"`
	At             time.Time     `json:"at" bson:"at"`
}
