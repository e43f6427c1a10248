package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// Journal receives committed checkout transitions. Recording must not block
// on storage.
type Journal interface {
	Record(entry *domain.CheckoutJournalEntry)
}

// CheckoutConfig is the merchant side of the widget configuration.
type CheckoutConfig struct {
	Profile   domain.CheckoutProfile
	ScriptURL string
}

// CheckoutService drives the payment hand-off: order creation, widget
// configuration and verification relay. Flows are stored per session and
// registration so every leg may arrive as its own request.
type CheckoutService struct {
	payments ports.PaymentBackend
	flows    ports.CheckoutRepository
	journal  Journal
	cfg      CheckoutConfig
	log      zerolog.Logger
	now      func() time.Time
	newID    func() string
}

func NewCheckoutService(
	payments ports.PaymentBackend,
	flows ports.CheckoutRepository,
	journal Journal,
	cfg CheckoutConfig,
	log zerolog.Logger,
) *CheckoutService {
	return &CheckoutService{
		payments: payments,
		flows:    flows,
		journal:  journal,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		newID:    uuid.NewString,
	}
}

// CheckoutView is what the payment page receives on entry.
type CheckoutView struct {
	AttemptID string               `json:"attempt_id"`
	State     domain.CheckoutState `json:"state"`
	Order     *domain.PaymentOrder `json:"order,omitempty"`
	ScriptURL string               `json:"script_url"`
	Failure   string               `json:"failure,omitempty"`
}

// Enter starts a new attempt for the registration and creates its order.
// Any earlier attempt becomes stale, except one whose payment is being
// verified: that flow is returned as is. A failed order creation leaves the
// flow idle; entering again is the retry.
func (s *CheckoutService) Enter(ctx context.Context, sessionID, registrationID string) (*CheckoutView, error) {
	key := CheckoutKey(sessionID, registrationID)

	existing, err := s.flows.Load(ctx, key)
	switch {
	case err == nil && (existing.State.IsFinal() || existing.State == domain.CheckoutVerificationPending):
		return s.view(existing), nil
	case err != nil && !errors.Is(err, ports.ErrFlowNotFound):
		return nil, fmt.Errorf("load checkout flow: %w", err)
	}

	now := s.now()
	flow := domain.NewCheckoutFlow(s.newID(), registrationID, now)
	if err := flow.RequestOrder(now); err != nil {
		return nil, err
	}
	if err := s.flows.Save(ctx, key, flow); err != nil {
		return nil, fmt.Errorf("save checkout flow: %w", err)
	}
	s.record(domain.CheckoutIdle, flow)

	attempt := flow.AttemptID
	order, orderErr := s.payments.CreateOrder(ctx, registrationID)
	if orderErr != nil {
		reason := MessageOr(orderErr, "Could not create payment order")
		if _, err := s.advance(context.WithoutCancel(ctx), key, attempt, func(f *domain.CheckoutFlow) error {
			return f.OrderFailed(reason, s.now())
		}); err != nil {
			s.log.Warn().Err(err).Str("registration_id", registrationID).Msg("could not record order failure")
		}
		s.log.Warn().Err(orderErr).Str("registration_id", registrationID).Msg("order creation failed")
		return nil, orderErr
	}

	flow, err = s.advance(ctx, key, attempt, func(f *domain.CheckoutFlow) error {
		return f.OrderCreated(*order, s.now())
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("registration_id", registrationID).
		Str("order_id", order.OrderID).
		Msg("payment order created")
	return s.view(flow), nil
}

// WidgetLoaded opens the widget and releases its options. Repeated reports
// for an open widget return the same options.
func (s *CheckoutService) WidgetLoaded(ctx context.Context, sessionID, registrationID, attemptID string, prefill *domain.CheckoutPrefill) (*domain.CheckoutOptions, error) {
	key := CheckoutKey(sessionID, registrationID)
	flow, err := s.advance(ctx, key, attemptID, func(f *domain.CheckoutFlow) error {
		if f.State == domain.CheckoutWidgetOpen {
			return errUnchanged
		}
		return f.WidgetLoaded(s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.options(flow, prefill)
}

// Verify relays the widget's completion result to the backend. Exactly one
// verification may be outstanding per flow.
func (s *CheckoutService) Verify(ctx context.Context, sessionID, registrationID, attemptID string, result domain.CheckoutResult) (*domain.CheckoutFlow, error) {
	key := CheckoutKey(sessionID, registrationID)
	flow, err := s.advance(ctx, key, attemptID, func(f *domain.CheckoutFlow) error {
		return f.BeginVerification(s.now())
	})
	if err != nil {
		return nil, err
	}

	// The backend may already have captured the payment; finish even if the
	// caller goes away.
	ctx = context.WithoutCancel(ctx)

	var verifyErr error
	if result.OrderID != flow.Order.OrderID {
		verifyErr = fmt.Errorf("%w: payment belongs to order %q, expected %q",
			domain.ErrVerificationFailed, result.OrderID, flow.Order.OrderID)
	} else {
		verifyErr = s.payments.VerifyPayment(ctx, result)
	}

	if verifyErr == nil {
		flow, err = s.advance(ctx, key, attemptID, func(f *domain.CheckoutFlow) error {
			return f.Verified(s.now())
		})
		if err != nil {
			return nil, err
		}
		s.log.Info().
			Str("registration_id", registrationID).
			Str("order_id", result.OrderID).
			Str("payment_id", result.PaymentID).
			Msg("payment verified")
		return flow, nil
	}

	reason := MessageOr(verifyErr, "Payment verification failed")
	flow, err = s.advance(ctx, key, attemptID, func(f *domain.CheckoutFlow) error {
		return f.VerificationFailed(reason, s.now())
	})
	if err != nil {
		return nil, err
	}
	s.log.Warn().Err(verifyErr).Str("registration_id", registrationID).Msg("payment verification failed")

	if errors.Is(verifyErr, domain.ErrAuthRejected) {
		return flow, verifyErr
	}
	return flow, fmt.Errorf("%w: %s", domain.ErrVerificationFailed, reason)
}

// Reopen re-invokes the widget for the same order after a failed
// verification. No new order is created.
func (s *CheckoutService) Reopen(ctx context.Context, sessionID, registrationID, attemptID string, prefill *domain.CheckoutPrefill) (*domain.CheckoutOptions, error) {
	key := CheckoutKey(sessionID, registrationID)
	flow, err := s.advance(ctx, key, attemptID, func(f *domain.CheckoutFlow) error {
		return f.Reopen(s.now())
	})
	if err != nil {
		return nil, err
	}
	return s.options(flow, prefill)
}

// Status returns the stored flow for a registration.
func (s *CheckoutService) Status(ctx context.Context, sessionID, registrationID string) (*domain.CheckoutFlow, error) {
	return s.flows.Load(ctx, CheckoutKey(sessionID, registrationID))
}

// MyPayments lists the caller's payment records.
func (s *CheckoutService) MyPayments(ctx context.Context) ([]domain.Payment, error) {
	return s.payments.MyPayments(ctx)
}

var errUnchanged = errors.New("checkout flow unchanged")

// advance applies step to the stored flow of attemptID and journals the
// transition. Steps returning errUnchanged leave the flow as it is.
func (s *CheckoutService) advance(ctx context.Context, key, attemptID string, step func(*domain.CheckoutFlow) error) (*domain.CheckoutFlow, error) {
	var (
		from      domain.CheckoutState
		unchanged bool
		current   *domain.CheckoutFlow
	)

	updated, err := s.flows.Update(ctx, key, func(f *domain.CheckoutFlow) (*domain.CheckoutFlow, error) {
		current = f
		if f == nil {
			return nil, ports.ErrFlowNotFound
		}
		if f.AttemptID != attemptID {
			return nil, domain.ErrStaleAttempt
		}
		from = f.State
		next := *f
		if err := step(&next); err != nil {
			return nil, err
		}
		return &next, nil
	})
	if errors.Is(err, errUnchanged) {
		unchanged = true
		err = nil
		updated = current
	}
	if err != nil {
		return nil, err
	}
	if !unchanged {
		s.record(from, updated)
	}
	return updated, nil
}

func (s *CheckoutService) record(from domain.CheckoutState, flow *domain.CheckoutFlow) {
	if s.journal == nil {
		return
	}
	entry := &domain.CheckoutJournalEntry{
		RegistrationID: flow.RegistrationID,
		AttemptID:      flow.AttemptID,
		From:           from,
		To:             flow.State,
		Reason:         flow.Failure,
		At:             flow.UpdatedAt,
	}
	if flow.Order != nil {
		entry.OrderID = flow.Order.OrderID
		entry.Amount = flow.Order.Amount
	}
	s.journal.Record(entry)
}

func (s *CheckoutService) options(flow *domain.CheckoutFlow, prefill *domain.CheckoutPrefill) (*domain.CheckoutOptions, error) {
	opts, err := flow.Options(s.cfg.Profile, prefill)
	if err != nil {
		return nil, err
	}
	return &opts, nil
}

func (s *CheckoutService) view(flow *domain.CheckoutFlow) *CheckoutView {
	return &CheckoutView{
		AttemptID: flow.AttemptID,
		State:     flow.State,
		Order:     flow.Order,
		ScriptURL: s.cfg.ScriptURL,
		Failure:   flow.Failure,
	}
}
