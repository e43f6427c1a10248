package backend

import (
	"context"
	"net/http"

	"github.com/cascadeforum/portal/internal/core/domain"
)

type statusRequest struct {
	Status domain.RegistrationStatus `json:"status"`
}

func (c *Client) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	var out domain.Event
	if err := c.do(ctx, call{method: http.MethodPost, path: "/admin/events", body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateEvent(ctx context.Context, eventID string, in domain.EventInput) (*domain.Event, error) {
	var out domain.Event
	if err := c.do(ctx, call{method: http.MethodPut, path: "/admin/events/" + escape(eventID), body: in}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyEvents(ctx context.Context) ([]domain.Event, error) {
	var out []domain.Event
	err := c.do(ctx, call{method: http.MethodGet, path: "/admin/events/my-events"}, &out)
	return out, err
}

func (c *Client) EventRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error) {
	var out []domain.Registration
	err := c.do(ctx, call{method: http.MethodGet, path: "/admin/events/" + escape(eventID) + "/registrations"}, &out)
	return out, err
}

func (c *Client) SetRegistrationStatus(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error) {
	var out domain.Registration
	err := c.do(ctx, call{
		method: http.MethodPatch,
		path:   "/admin/registrations/" + escape(registrationID),
		body:   statusRequest{Status: status},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
