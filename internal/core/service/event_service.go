package service

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// EventService serves event browsing and the client's own registrations.
type EventService struct {
	events        ports.EventBackend
	registrations ports.RegistrationBackend
	log           zerolog.Logger
}

func NewEventService(events ports.EventBackend, registrations ports.RegistrationBackend, log zerolog.Logger) *EventService {
	return &EventService{events: events, registrations: registrations, log: log}
}

// PublicEvents is a best-effort anonymous read: any failure degrades to an
// empty listing so the page stays usable.
func (s *EventService) PublicEvents(ctx context.Context, page ports.Page) []domain.Event {
	events, err := s.events.PublicEvents(ctx, page)
	if err != nil {
		s.log.Warn().Err(err).Msg("public events unavailable, serving empty listing")
		return []domain.Event{}
	}
	if events == nil {
		return []domain.Event{}
	}
	return events
}

// PublicEvent returns one published event for anonymous callers.
func (s *EventService) PublicEvent(ctx context.Context, eventID string) (*domain.Event, error) {
	return s.events.PublicEvent(ctx, eventID)
}

// Events lists events visible to the authenticated caller. Failures propagate.
func (s *EventService) Events(ctx context.Context, status domain.EventStatus, page ports.Page) ([]domain.Event, error) {
	return s.events.Events(ctx, status, page)
}

// EventDetail is an event together with the caller's registration for it, if any.
type EventDetail struct {
	Event        *domain.Event        `json:"event"`
	Registration *domain.Registration `json:"registration"`
}

// EventDetail loads the event and the caller's registrations concurrently.
func (s *EventService) EventDetail(ctx context.Context, eventID string) (*EventDetail, error) {
	var (
		event *domain.Event
		mine  []domain.Registration
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		event, err = s.events.Event(gctx, eventID)
		return err
	})
	g.Go(func() error {
		var err error
		mine, err = s.registrations.MyRegistrations(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	detail := &EventDetail{Event: event}
	for i := range mine {
		if mine[i].EventID == eventID {
			detail.Registration = &mine[i]
			break
		}
	}
	return detail, nil
}

// Register creates a registration for the caller with the submitted form data.
func (s *EventService) Register(ctx context.Context, eventID string, formData json.RawMessage) (*domain.Registration, error) {
	if len(formData) == 0 {
		formData = json.RawMessage("{}")
	}
	reg, err := s.registrations.CreateRegistration(ctx, eventID, formData)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("event_id", eventID).Str("registration_id", reg.ID).Msg("registration created")
	return reg, nil
}

// MyRegistrations lists the caller's registrations.
func (s *EventService) MyRegistrations(ctx context.Context) ([]domain.Registration, error) {
	return s.registrations.MyRegistrations(ctx)
}

// Registration returns one of the caller's registrations.
func (s *EventService) Registration(ctx context.Context, registrationID string) (*domain.Registration, error) {
	return s.registrations.Registration(ctx, registrationID)
}
