package backend

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

func (c *Client) PublicEvents(ctx context.Context, page ports.Page) ([]domain.Event, error) {
	var out []domain.Event
	err := c.do(ctx, call{method: http.MethodGet, path: "/events/public", query: pageQuery(page)}, &out)
	return out, err
}

func (c *Client) PublicEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	var out domain.Event
	if err := c.do(ctx, call{method: http.MethodGet, path: "/events/public/" + escape(eventID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Events(ctx context.Context, status domain.EventStatus, page ports.Page) ([]domain.Event, error) {
	q := pageQuery(page)
	if status != "" {
		q.Set("status", string(status))
	}
	var out []domain.Event
	err := c.do(ctx, call{method: http.MethodGet, path: "/events", query: q}, &out)
	return out, err
}

func (c *Client) Event(ctx context.Context, eventID string) (*domain.Event, error) {
	var out domain.Event
	if err := c.do(ctx, call{method: http.MethodGet, path: "/events/" + escape(eventID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

type registrationRequest struct {
	EventID  string          `json:"event_id"`
	FormData json.RawMessage `json:"form_data"`
}

func (c *Client) CreateRegistration(ctx context.Context, eventID string, formData json.RawMessage) (*domain.Registration, error) {
	var out domain.Registration
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/registrations",
		body:   registrationRequest{EventID: eventID, FormData: formData},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) MyRegistrations(ctx context.Context) ([]domain.Registration, error) {
	var out []domain.Registration
	err := c.do(ctx, call{method: http.MethodGet, path: "/registrations/my-registrations"}, &out)
	return out, err
}

func (c *Client) Registration(ctx context.Context, registrationID string) (*domain.Registration, error) {
	var out domain.Registration
	if err := c.do(ctx, call{method: http.MethodGet, path: "/registrations/" + escape(registrationID)}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
