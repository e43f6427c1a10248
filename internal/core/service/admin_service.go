package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

// AdminService covers event management and registration review.
type AdminService struct {
	backend ports.AdminBackend
	log     zerolog.Logger
}

func NewAdminService(backend ports.AdminBackend, log zerolog.Logger) *AdminService {
	return &AdminService{backend: backend, log: log}
}

func (s *AdminService) MyEvents(ctx context.Context) ([]domain.Event, error) {
	return s.backend.MyEvents(ctx)
}

// CreateEvent publishes (or drafts) an event. A paid event needs a positive price.
func (s *AdminService) CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error) {
	if err := checkPricing(in); err != nil {
		return nil, err
	}
	event, err := s.backend.CreateEvent(ctx, in)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("event_id", event.ID).Str("status", string(event.Status)).Msg("event created")
	return event, nil
}

func (s *AdminService) UpdateEvent(ctx context.Context, eventID string, in domain.EventInput) (*domain.Event, error) {
	if err := checkPricing(in); err != nil {
		return nil, err
	}
	return s.backend.UpdateEvent(ctx, eventID, in)
}

func (s *AdminService) EventRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error) {
	return s.backend.EventRegistrations(ctx, eventID)
}

// Review accepts or rejects a registration.
func (s *AdminService) Review(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error) {
	if status != domain.RegistrationAccepted && status != domain.RegistrationRejected {
		return nil, fmt.Errorf("%w: admins may only accept or reject, got %q", domain.ErrInvalidStatus, status)
	}
	reg, err := s.backend.SetRegistrationStatus(ctx, registrationID, status)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("registration_id", registrationID).Str("status", string(status)).Msg("registration reviewed")
	return reg, nil
}

func checkPricing(in domain.EventInput) error {
	if in.IsPaid == nil || !*in.IsPaid {
		return nil
	}
	if in.Price == nil || in.Price.IsZero() {
		return fmt.Errorf("%w: paid events need a positive price", domain.ErrInvalidAmount)
	}
	return nil
}
