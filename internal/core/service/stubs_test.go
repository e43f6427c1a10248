package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// detailErr mimics a backend error carrying a user-facing message.
type detailErr struct {
	detail string
	cause  error
}

func (e *detailErr) Error() string  { return "backend: " + e.detail }
func (e *detailErr) Detail() string { return e.detail }
func (e *detailErr) Unwrap() error  { return e.cause }

type stubAuthBackend struct {
	login    *ports.LoginResult
	loginErr error
	me       *domain.Identity
	meErr    error
	signups  []ports.SignupInput
}

func (b *stubAuthBackend) Login(context.Context, string, string) (*ports.LoginResult, error) {
	return b.login, b.loginErr
}

func (b *stubAuthBackend) Register(_ context.Context, in ports.SignupInput) (*domain.Identity, error) {
	b.signups = append(b.signups, in)
	return &domain.Identity{ID: "new", Email: in.Email, FullName: in.FullName, Role: domain.RoleClient}, nil
}

func (b *stubAuthBackend) Me(context.Context) (*domain.Identity, error) {
	return b.me, b.meErr
}

type stubEventBackend struct {
	events    []domain.Event
	err       error
	lastState domain.EventStatus
}

func (b *stubEventBackend) PublicEvents(context.Context, ports.Page) ([]domain.Event, error) {
	return b.events, b.err
}

func (b *stubEventBackend) PublicEvent(_ context.Context, id string) (*domain.Event, error) {
	return b.find(id)
}

func (b *stubEventBackend) Events(_ context.Context, status domain.EventStatus, _ ports.Page) ([]domain.Event, error) {
	b.lastState = status
	return b.events, b.err
}

func (b *stubEventBackend) Event(_ context.Context, id string) (*domain.Event, error) {
	return b.find(id)
}

func (b *stubEventBackend) find(id string) (*domain.Event, error) {
	if b.err != nil {
		return nil, b.err
	}
	for i := range b.events {
		if b.events[i].ID == id {
			e := b.events[i]
			return &e, nil
		}
	}
	return nil, domain.ErrNotFound
}

type stubRegistrationBackend struct {
	mine    []domain.Registration
	created []json.RawMessage
}

func (b *stubRegistrationBackend) CreateRegistration(_ context.Context, eventID string, form json.RawMessage) (*domain.Registration, error) {
	b.created = append(b.created, form)
	return &domain.Registration{ID: "reg-new", EventID: eventID, Status: domain.RegistrationPending, FormData: form}, nil
}

func (b *stubRegistrationBackend) MyRegistrations(context.Context) ([]domain.Registration, error) {
	return b.mine, nil
}

func (b *stubRegistrationBackend) Registration(_ context.Context, id string) (*domain.Registration, error) {
	for i := range b.mine {
		if b.mine[i].ID == id {
			r := b.mine[i]
			return &r, nil
		}
	}
	return nil, domain.ErrNotFound
}

// stubPaymentBackend counts order creations and records verifications.
type stubPaymentBackend struct {
	mu         sync.Mutex
	order      domain.PaymentOrder
	orderErr   error
	verifyErrs []error
	orders     int
	verified   []domain.CheckoutResult
	// verifyHook runs inside VerifyPayment, before it answers.
	verifyHook func()
}

func (b *stubPaymentBackend) CreateOrder(context.Context, string) (*domain.PaymentOrder, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders++
	if b.orderErr != nil {
		return nil, b.orderErr
	}
	o := b.order
	return &o, nil
}

func (b *stubPaymentBackend) VerifyPayment(_ context.Context, result domain.CheckoutResult) error {
	if b.verifyHook != nil {
		b.verifyHook()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.verified = append(b.verified, result)
	if len(b.verifyErrs) == 0 {
		return nil
	}
	err := b.verifyErrs[0]
	b.verifyErrs = b.verifyErrs[1:]
	return err
}

func (b *stubPaymentBackend) MyPayments(context.Context) ([]domain.Payment, error) {
	return nil, nil
}

type recordingJournal struct {
	mu      sync.Mutex
	entries []domain.CheckoutJournalEntry
}

func (j *recordingJournal) Record(e *domain.CheckoutJournalEntry) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, *e)
}

func (j *recordingJournal) states() []domain.CheckoutState {
	j.mu.Lock()
	defer j.mu.Unlock()
	out := make([]domain.CheckoutState, len(j.entries))
	for i, e := range j.entries {
		out[i] = e.To
	}
	return out
}
