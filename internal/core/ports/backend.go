package ports

import (
	"context"
	"encoding/json"

	"github.com/cascadeforum/portal/internal/core/domain"
)

// LoginResult is the backend's answer to a successful login.
type LoginResult struct {
	AccessToken string          `json:"access_token"`
	TokenType   string          `json:"token_type"`
	User        domain.Identity `json:"user"`
}

// SignupInput carries a self-service client registration.
type SignupInput struct {
	Email    string
	Password string
	FullName string
}

// AuthBackend covers the backend's /auth endpoints.
type AuthBackend interface {
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	Register(ctx context.Context, in SignupInput) (*domain.Identity, error)
	Me(ctx context.Context) (*domain.Identity, error)
}

// Page selects a window of a listing.
type Page struct {
	Skip  int
	Limit int
}

// EventBackend covers public and authenticated event reads.
type EventBackend interface {
	PublicEvents(ctx context.Context, page Page) ([]domain.Event, error)
	PublicEvent(ctx context.Context, eventID string) (*domain.Event, error)
	Events(ctx context.Context, status domain.EventStatus, page Page) ([]domain.Event, error)
	Event(ctx context.Context, eventID string) (*domain.Event, error)
}

// RegistrationBackend covers the client's own registrations.
type RegistrationBackend interface {
	CreateRegistration(ctx context.Context, eventID string, formData json.RawMessage) (*domain.Registration, error)
	MyRegistrations(ctx context.Context) ([]domain.Registration, error)
	Registration(ctx context.Context, registrationID string) (*domain.Registration, error)
}

// AdminBackend covers event management and registration review.
type AdminBackend interface {
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, eventID string, in domain.EventInput) (*domain.Event, error)
	MyEvents(ctx context.Context) ([]domain.Event, error)
	EventRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error)
	SetRegistrationStatus(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error)
}

// PaymentBackend covers order creation and verification.
type PaymentBackend interface {
	CreateOrder(ctx context.Context, registrationID string) (*domain.PaymentOrder, error)
	VerifyPayment(ctx context.Context, result domain.CheckoutResult) error
	MyPayments(ctx context.Context) ([]domain.Payment, error)
}

// UserFilter narrows the developer user listing.
type UserFilter struct {
	Role domain.Role
	Page Page
}

// AuditFilter narrows the developer audit log listing.
type AuditFilter struct {
	AdminID    string
	ActionType string
	Page       Page
}

// DeveloperBackend covers the read-only system-wide listings.
type DeveloperBackend interface {
	Users(ctx context.Context, filter UserFilter) ([]domain.Identity, error)
	User(ctx context.Context, userID string) (*domain.Identity, error)
	UserRegistrations(ctx context.Context, userID string) ([]domain.Registration, error)
	UserPayments(ctx context.Context, userID string) ([]domain.Payment, error)
	AllEvents(ctx context.Context, page Page) ([]domain.Event, error)
	AllRegistrations(ctx context.Context, page Page) ([]domain.Registration, error)
	AllPayments(ctx context.Context, page Page) ([]domain.Payment, error)
	AuditLogs(ctx context.Context, filter AuditFilter) ([]domain.AuditLog, error)
	OverrideRegistration(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error)
}
