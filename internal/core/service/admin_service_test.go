package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

type stubAdminBackend struct {
	statuses []domain.RegistrationStatus
	created  int
}

func (b *stubAdminBackend) CreateEvent(_ context.Context, in domain.EventInput) (*domain.Event, error) {
	b.created++
	return &domain.Event{ID: "e-new", Title: *in.Title, Status: domain.EventPublished}, nil
}

func (b *stubAdminBackend) UpdateEvent(_ context.Context, id string, _ domain.EventInput) (*domain.Event, error) {
	return &domain.Event{ID: id}, nil
}

func (b *stubAdminBackend) MyEvents(context.Context) ([]domain.Event, error) { return nil, nil }

func (b *stubAdminBackend) EventRegistrations(context.Context, string) ([]domain.Registration, error) {
	return nil, nil
}

func (b *stubAdminBackend) SetRegistrationStatus(_ context.Context, id string, status domain.RegistrationStatus) (*domain.Registration, error) {
	b.statuses = append(b.statuses, status)
	return &domain.Registration{ID: id, Status: status, PaymentStatus: domain.PaymentPending}, nil
}

func TestAdminService_Review(t *testing.T) {
	backend := &stubAdminBackend{}
	svc := NewAdminService(backend, zerolog.Nop())

	reg, err := svc.Review(context.Background(), "r1", domain.RegistrationAccepted)
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if !reg.AwaitingPayment() {
		t.Fatalf("accepted unpaid registration should await payment")
	}

	if _, err := svc.Review(context.Background(), "r1", domain.RegistrationPending); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	if len(backend.statuses) != 1 {
		t.Fatalf("invalid review must not reach the backend")
	}
}

func TestAdminService_CreatePaidEventNeedsPrice(t *testing.T) {
	backend := &stubAdminBackend{}
	svc := NewAdminService(backend, zerolog.Nop())

	title, paid := "Workshop", true
	if _, err := svc.CreateEvent(context.Background(), domain.EventInput{Title: &title, IsPaid: &paid}); !errors.Is(err, domain.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	price := domain.Amount("499.00")
	event, err := svc.CreateEvent(context.Background(), domain.EventInput{Title: &title, IsPaid: &paid, Price: &price})
	if err != nil || event.Title != "Workshop" {
		t.Fatalf("create: %+v %v", event, err)
	}
	if backend.created != 1 {
		t.Fatalf("expected one create call, got %d", backend.created)
	}
}

// pagedDeveloperBackend serves listings of fixed sizes in pages.
type pagedDeveloperBackend struct {
	users, events, registrations, payments int
	failPayments                           bool
}

func window(total int, p ports.Page) int {
	n := total - p.Skip
	if n < 0 {
		return 0
	}
	if n > p.Limit {
		return p.Limit
	}
	return n
}

func (b *pagedDeveloperBackend) Users(_ context.Context, f ports.UserFilter) ([]domain.Identity, error) {
	return make([]domain.Identity, window(b.users, f.Page)), nil
}

func (b *pagedDeveloperBackend) User(_ context.Context, id string) (*domain.Identity, error) {
	return &domain.Identity{ID: id, Role: domain.RoleClient}, nil
}

func (b *pagedDeveloperBackend) UserRegistrations(context.Context, string) ([]domain.Registration, error) {
	return []domain.Registration{{ID: "r1"}}, nil
}

func (b *pagedDeveloperBackend) UserPayments(context.Context, string) ([]domain.Payment, error) {
	return []domain.Payment{{ID: "p1"}, {ID: "p2"}}, nil
}

func (b *pagedDeveloperBackend) AllEvents(_ context.Context, p ports.Page) ([]domain.Event, error) {
	return make([]domain.Event, window(b.events, p)), nil
}

func (b *pagedDeveloperBackend) AllRegistrations(_ context.Context, p ports.Page) ([]domain.Registration, error) {
	return make([]domain.Registration, window(b.registrations, p)), nil
}

func (b *pagedDeveloperBackend) AllPayments(_ context.Context, p ports.Page) ([]domain.Payment, error) {
	if b.failPayments {
		return nil, domain.ErrBackendUnavailable
	}
	return make([]domain.Payment, window(b.payments, p)), nil
}

func (b *pagedDeveloperBackend) AuditLogs(context.Context, ports.AuditFilter) ([]domain.AuditLog, error) {
	return nil, nil
}

func (b *pagedDeveloperBackend) OverrideRegistration(_ context.Context, id string, status domain.RegistrationStatus) (*domain.Registration, error) {
	return &domain.Registration{ID: id, Status: status}, nil
}

func TestDeveloperService_Stats(t *testing.T) {
	backend := &pagedDeveloperBackend{users: 250, events: 7, registrations: 100, payments: 0}
	svc := NewDeveloperService(backend, zerolog.Nop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	want := Stats{Users: 250, Events: 7, Registrations: 100, Payments: 0}
	if *stats != want {
		t.Fatalf("expected %+v, got %+v", want, *stats)
	}
}

func TestDeveloperService_StatsTruncated(t *testing.T) {
	backend := &pagedDeveloperBackend{users: countPageSize*countMaxPages + 1}
	svc := NewDeveloperService(backend, zerolog.Nop())

	stats, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.Truncated || stats.Users != countPageSize*countMaxPages {
		t.Fatalf("expected truncated user count, got %+v", stats)
	}
}

func TestDeveloperService_StatsPropagatesFailure(t *testing.T) {
	svc := NewDeveloperService(&pagedDeveloperBackend{failPayments: true}, zerolog.Nop())
	if _, err := svc.Stats(context.Background()); !errors.Is(err, domain.ErrBackendUnavailable) {
		t.Fatalf("expected ErrBackendUnavailable, got %v", err)
	}
}

func TestDeveloperService_UserProfile(t *testing.T) {
	svc := NewDeveloperService(&pagedDeveloperBackend{}, zerolog.Nop())

	profile, err := svc.UserProfile(context.Background(), "u9")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if profile.User.ID != "u9" || len(profile.Registrations) != 1 || len(profile.Payments) != 2 {
		t.Fatalf("unexpected profile %+v", profile)
	}
}

func TestDeveloperService_Override(t *testing.T) {
	svc := NewDeveloperService(&pagedDeveloperBackend{}, zerolog.Nop())

	if _, err := svc.Override(context.Background(), "r1", "cancelled"); !errors.Is(err, domain.ErrInvalidStatus) {
		t.Fatalf("expected ErrInvalidStatus, got %v", err)
	}
	reg, err := svc.Override(context.Background(), "r1", domain.RegistrationPending)
	if err != nil || reg.Status != domain.RegistrationPending {
		t.Fatalf("override: %+v %v", reg, err)
	}
}
