package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/core/service"
)

const defaultJournalLimit = 200

type developerService interface {
	Stats(ctx context.Context) (*service.Stats, error)
	UserProfile(ctx context.Context, userID string) (*service.UserProfile, error)
	Users(ctx context.Context, filter ports.UserFilter) ([]domain.Identity, error)
	Events(ctx context.Context, page ports.Page) ([]domain.Event, error)
	Registrations(ctx context.Context, page ports.Page) ([]domain.Registration, error)
	Payments(ctx context.Context, page ports.Page) ([]domain.Payment, error)
	AuditLogs(ctx context.Context, filter ports.AuditFilter) ([]domain.AuditLog, error)
	Override(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error)
}

// JournalReader reads back checkout history.
type JournalReader interface {
	History(ctx context.Context, registrationID string, limit int64) ([]domain.CheckoutJournalEntry, error)
}

// DeveloperHandler serves the system-wide developer views.
type DeveloperHandler struct {
	dev     developerService
	journal JournalReader
}

// NewDeveloperHandler builds the handler. journal may be nil when the
// checkout journal is disabled.
func NewDeveloperHandler(dev developerService, journal JournalReader) *DeveloperHandler {
	return &DeveloperHandler{dev: dev, journal: journal}
}

type usersResponse struct {
	Users []domain.Identity `json:"users"`
}

type auditLogsResponse struct {
	Logs []domain.AuditLog `json:"logs"`
}

type journalResponse struct {
	Entries []domain.CheckoutJournalEntry `json:"entries"`
}

type overrideRequest struct {
	Status domain.RegistrationStatus `json:"status" validate:"required,oneof=pending accepted rejected"`
}

// Dashboard handles GET /developer/dashboard.
//
// @Summary      System totals
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  service.Stats
// @Router       /developer/dashboard [get]
func (h *DeveloperHandler) Dashboard(c echo.Context) error {
	stats, err := h.dev.Stats(c.Request().Context())
	if err != nil {
		return backendFailure(err, "Could not load statistics")
	}
	return c.JSON(http.StatusOK, stats)
}

// Users handles GET /developer/users.
//
// @Summary      Users
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Param        role   query     string  false  "client, admin or developer"
// @Param        skip   query     int     false  "Offset"
// @Param        limit  query     int     false  "Page size (max 100)"
// @Success      200    {object}  usersResponse
// @Router       /developer/users [get]
func (h *DeveloperHandler) Users(c echo.Context) error {
	users, err := h.dev.Users(c.Request().Context(), ports.UserFilter{
		Role: domain.Role(c.QueryParam("role")),
		Page: pageParam(c, 0),
	})
	if err != nil {
		return backendFailure(err, "Could not load users")
	}
	if users == nil {
		users = []domain.Identity{}
	}
	return c.JSON(http.StatusOK, usersResponse{Users: users})
}

// User handles GET /developer/users/:id.
//
// @Summary      User profile with registrations and payments
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "User ID"
// @Success      200  {object}  service.UserProfile
// @Router       /developer/users/{id} [get]
func (h *DeveloperHandler) User(c echo.Context) error {
	profile, err := h.dev.UserProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendFailure(err, "User not found")
	}
	return c.JSON(http.StatusOK, profile)
}

// Events handles GET /developer/events.
//
// @Summary      All events
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  eventsResponse
// @Router       /developer/events [get]
func (h *DeveloperHandler) Events(c echo.Context) error {
	events, err := h.dev.Events(c.Request().Context(), pageParam(c, 0))
	if err != nil {
		return backendFailure(err, "Could not load events")
	}
	if events == nil {
		events = []domain.Event{}
	}
	return c.JSON(http.StatusOK, eventsResponse{Events: events})
}

// Registrations handles GET /developer/registrations.
//
// @Summary      All registrations
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  registrationsResponse
// @Router       /developer/registrations [get]
func (h *DeveloperHandler) Registrations(c echo.Context) error {
	regs, err := h.dev.Registrations(c.Request().Context(), pageParam(c, 0))
	if err != nil {
		return backendFailure(err, "Could not load registrations")
	}
	if regs == nil {
		regs = []domain.Registration{}
	}
	return c.JSON(http.StatusOK, registrationsResponse{Registrations: regs})
}

// Payments handles GET /developer/payments.
//
// @Summary      All payments
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  paymentsResponse
// @Router       /developer/payments [get]
func (h *DeveloperHandler) Payments(c echo.Context) error {
	payments, err := h.dev.Payments(c.Request().Context(), pageParam(c, 0))
	if err != nil {
		return backendFailure(err, "Could not load payments")
	}
	if payments == nil {
		payments = []domain.Payment{}
	}
	return c.JSON(http.StatusOK, paymentsResponse{Payments: payments})
}

// AuditLogs handles GET /developer/audit-logs.
//
// @Summary      Admin audit trail
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Param        admin_id     query     string  false  "Admin ID"
// @Param        action_type  query     string  false  "Action type"
// @Success      200          {object}  auditLogsResponse
// @Router       /developer/audit-logs [get]
func (h *DeveloperHandler) AuditLogs(c echo.Context) error {
	logs, err := h.dev.AuditLogs(c.Request().Context(), ports.AuditFilter{
		AdminID:    c.QueryParam("admin_id"),
		ActionType: c.QueryParam("action_type"),
		Page:       pageParam(c, 0),
	})
	if err != nil {
		return backendFailure(err, "Could not load audit logs")
	}
	if logs == nil {
		logs = []domain.AuditLog{}
	}
	return c.JSON(http.StatusOK, auditLogsResponse{Logs: logs})
}

// Override handles PATCH /developer/registrations/:id/override.
//
// @Summary      Force a registration status
// @Tags         developer
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string           true  "Registration ID"
// @Param        body  body      overrideRequest  true  "New status"
// @Success      200   {object}  domain.Registration
// @Router       /developer/registrations/{id}/override [patch]
func (h *DeveloperHandler) Override(c echo.Context) error {
	var req overrideRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	reg, err := h.dev.Override(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return backendFailure(err, "Could not override registration")
	}
	return c.JSON(http.StatusOK, reg)
}

// CheckoutJournal handles GET /developer/checkout-journal/:registrationId.
//
// @Summary      Checkout history of a registration
// @Tags         developer
// @Produce      json
// @Security     SessionCookie
// @Param        registrationId  path      string  true   "Registration ID"
// @Param        limit           query     int     false  "Max entries"
// @Success      200             {object}  journalResponse
// @Failure      503             {object}  errorResponse
// @Router       /developer/checkout-journal/{registrationId} [get]
func (h *DeveloperHandler) CheckoutJournal(c echo.Context) error {
	if h.journal == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "checkout journal is disabled")
	}
	limit := int64(defaultJournalLimit)
	if v, err := strconv.ParseInt(c.QueryParam("limit"), 10, 64); err == nil && v > 0 {
		limit = v
	}
	entries, err := h.journal.History(c.Request().Context(), c.Param("registrationId"), limit)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []domain.CheckoutJournalEntry{}
	}
	return c.JSON(http.StatusOK, journalResponse{Entries: entries})
}
