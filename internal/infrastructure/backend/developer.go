package backend

import (
	"context"
	"net/http"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

func (c *Client) Users(ctx context.Context, filter ports.UserFilter) ([]domain.Identity, error) {
	q := pageQuery(filter.Page)
	if filter.Role != "" {
		q.Set("role", string(filter.Role))
	}
	var out []domain.Identity
	err := c.do(ctx, call{method: http.MethodGet, path: "/developer/users", query: q}, &out)
	return out, err
}

func (c *Client) User(ctx context.Context, userID string) (*domain.Identity, error) {
	var out domain.Identity
	if err := c.do(ctx, call{method: http.MethodGet, path: "/developer/users/" + escape(userID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UserRegistrations(ctx context.Context, userID string) ([]domain.Registration, error) {
	var out []domain.Registration
	err := c.do(ctx, call{method: http.MethodGet, path: "/developer/users/" + escape(userID) + "/registrations"}, &out)
	return out, err
}

func (c *Client) UserPayments(ctx context.Context, userID string) ([]domain.Payment, error) {
	var out []domain.Payment
	err := c.do(ctx, call{method: http.MethodGet, path: "/developer/users/" + escape(userID) + "/payments"}, &out)
	return out, err
}

func (c *Client) AllEvents(ctx context.Context, page ports.Page) ([]domain.Event, error) {
	var out []domain.Event
	err := c.do(ctx, call{method: http.MethodGet, path: "/developer/events", query: pageQuery(page)}, &out)
	return out, err
}

func (c *Client) AllRegistrations(ctx context.Context, page ports.Page) ([]domain.Registration, error) {
	var out []domain.Registration
	err := c.do(ctx, call{method: http.MethodGet, path: "/developer/registrations", query: pageQuery(page)}, &out)
	return out, err
}

func (c *Client) AllPayments(ctx context.Context, page ports.Page) ([]domain.Payment, error) {
	var out []domain.Payment
	err := c.do(ctx, call{method: http.MethodGet, path: "/developer/payments", query: pageQuery(page)}, &out)
	return out, err
}

func (c *Client) AuditLogs(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditLog, error) {
	q := pageQuery(filter.Page)
	if filter.AdminID != "" {
		q.Set("admin_id", filter.AdminID)
	}
	if filter.ActionType != "" {
		q.Set("action_type", filter.ActionType)
	}
	var out []domain.AuditLog
	err := c.do(ctx, call{method: http.MethodGet, path: "/developer/audit-logs", query: q}, &out)
	return out, err
}

func (c *Client) OverrideRegistration(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error) {
	var out domain.Registration
	err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   "/developer/registrations/" + escape(registrationID) + "/override",
		body:   statusRequest{Status: status},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
