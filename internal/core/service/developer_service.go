package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
)

const (
	countPageSize = 100
	countMaxPages = 50
)

// DeveloperService serves the read-only system-wide views and the
// registration override.
type DeveloperService struct {
	backend ports.DeveloperBackend
	log     zerolog.Logger
}

func NewDeveloperService(backend ports.DeveloperBackend, log zerolog.Logger) *DeveloperService {
	return &DeveloperService{backend: backend, log: log}
}

// Stats are the developer dashboard totals. Truncated is set when a count hit
// the paging cap and is therefore a lower bound.
type Stats struct {
	Users         int  `json:"users"`
	Events        int  `json:"events"`
	Registrations int  `json:"registrations"`
	Payments      int  `json:"payments"`
	Truncated     bool `json:"truncated"`
}

// Stats counts users, events, registrations and payments concurrently.
func (s *DeveloperService) Stats(ctx context.Context) (*Stats, error) {
	var (
		stats     Stats
		truncated [4]bool
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		stats.Users, truncated[0], err = countPages(gctx, func(ctx context.Context, p ports.Page) (int, error) {
			users, err := s.backend.Users(ctx, ports.UserFilter{Page: p})
			return len(users), err
		})
		return err
	})
	g.Go(func() (err error) {
		stats.Events, truncated[1], err = countPages(gctx, func(ctx context.Context, p ports.Page) (int, error) {
			events, err := s.backend.AllEvents(ctx, p)
			return len(events), err
		})
		return err
	})
	g.Go(func() (err error) {
		stats.Registrations, truncated[2], err = countPages(gctx, func(ctx context.Context, p ports.Page) (int, error) {
			regs, err := s.backend.AllRegistrations(ctx, p)
			return len(regs), err
		})
		return err
	})
	g.Go(func() (err error) {
		stats.Payments, truncated[3], err = countPages(gctx, func(ctx context.Context, p ports.Page) (int, error) {
			payments, err := s.backend.AllPayments(ctx, p)
			return len(payments), err
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, t := range truncated {
		stats.Truncated = stats.Truncated || t
	}
	return &stats, nil
}

// countPages walks a listing until a short page comes back.
func countPages(ctx context.Context, fetch func(context.Context, ports.Page) (int, error)) (int, bool, error) {
	total := 0
	for i := 0; i < countMaxPages; i++ {
		n, err := fetch(ctx, ports.Page{Skip: i * countPageSize, Limit: countPageSize})
		if err != nil {
			return 0, false, err
		}
		total += n
		if n < countPageSize {
			return total, false, nil
		}
	}
	return total, true, nil
}

// UserProfile is a user with everything they registered for and paid.
type UserProfile struct {
	User          *domain.Identity      `json:"user"`
	Registrations []domain.Registration `json:"registrations"`
	Payments      []domain.Payment      `json:"payments"`
}

// UserProfile loads the three parts of a user's profile concurrently.
func (s *DeveloperService) UserProfile(ctx context.Context, userID string) (*UserProfile, error) {
	var profile UserProfile

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		profile.User, err = s.backend.User(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.Registrations, err = s.backend.UserRegistrations(gctx, userID)
		return err
	})
	g.Go(func() (err error) {
		profile.Payments, err = s.backend.UserPayments(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *DeveloperService) Users(ctx context.Context, filter ports.UserFilter) ([]domain.Identity, error) {
	if filter.Role != "" && !filter.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", domain.ErrInvalidStatus, filter.Role)
	}
	return s.backend.Users(ctx, filter)
}

func (s *DeveloperService) Events(ctx context.Context, page ports.Page) ([]domain.Event, error) {
	return s.backend.AllEvents(ctx, page)
}

func (s *DeveloperService) Registrations(ctx context.Context, page ports.Page) ([]domain.Registration, error) {
	return s.backend.AllRegistrations(ctx, page)
}

func (s *DeveloperService) Payments(ctx context.Context, page ports.Page) ([]domain.Payment, error) {
	return s.backend.AllPayments(ctx, page)
}

func (s *DeveloperService) AuditLogs(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditLog, error) {
	return s.backend.AuditLogs(ctx, filter)
}

// Override forces a registration into any known status.
func (s *DeveloperService) Override(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", domain.ErrInvalidStatus, status)
	}
	reg, err := s.backend.OverrideRegistration(ctx, registrationID, status)
	if err != nil {
		return nil, err
	}
	s.log.Warn().Str("registration_id", registrationID).Str("status", string(status)).Msg("registration overridden")
	return reg, nil
}
