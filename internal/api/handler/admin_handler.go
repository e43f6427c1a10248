package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/cascadeforum/portal/internal/core/domain"
)

type adminService interface {
	MyEvents(ctx context.Context) ([]domain.Event, error)
	CreateEvent(ctx context.Context, in domain.EventInput) (*domain.Event, error)
	UpdateEvent(ctx context.Context, eventID string, in domain.EventInput) (*domain.Event, error)
	EventRegistrations(ctx context.Context, eventID string) ([]domain.Registration, error)
	Review(ctx context.Context, registrationID string, status domain.RegistrationStatus) (*domain.Registration, error)
}

// AdminHandler serves event management and registration review.
type AdminHandler struct {
	admin adminService
}

func NewAdminHandler(admin adminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

type createEventRequest struct {
	Title                string             `json:"title"                 validate:"required"`
	Description          *string            `json:"description"`
	EventDate            time.Time          `json:"event_date"            validate:"required"`
	RegistrationDeadline time.Time          `json:"registration_deadline" validate:"required"`
	IsPaid               bool               `json:"is_paid"`
	Price                *domain.Amount     `json:"price"                 validate:"omitempty,amount"`
	MaxParticipants      *int               `json:"max_participants"      validate:"omitempty,gt=0"`
	Status               domain.EventStatus `json:"status"                validate:"omitempty,oneof=draft published"`
	FormSchema           json.RawMessage    `json:"form_schema"`
}

type updateEventRequest struct {
	Title                *string             `json:"title"                 validate:"omitempty,min=1"`
	Description          *string             `json:"description"`
	EventDate            *time.Time          `json:"event_date"`
	RegistrationDeadline *time.Time          `json:"registration_deadline"`
	IsPaid               *bool               `json:"is_paid"`
	Price                *domain.Amount      `json:"price"                 validate:"omitempty,amount"`
	MaxParticipants      *int                `json:"max_participants"      validate:"omitempty,gt=0"`
	Status               *domain.EventStatus `json:"status"                validate:"omitempty,oneof=draft published cancelled completed"`
	FormSchema           json.RawMessage     `json:"form_schema"`
}

type reviewRequest struct {
	Status domain.RegistrationStatus `json:"status" validate:"required,oneof=accepted rejected"`
}

func (r createEventRequest) toInput() domain.EventInput {
	in := domain.EventInput{
		Title:                &r.Title,
		Description:          r.Description,
		EventDate:            &r.EventDate,
		RegistrationDeadline: &r.RegistrationDeadline,
		IsPaid:               &r.IsPaid,
		Price:                r.Price,
		MaxParticipants:      r.MaxParticipants,
		FormSchema:           r.FormSchema,
	}
	if r.Status != "" {
		in.Status = &r.Status
	}
	return in
}

func (r updateEventRequest) toInput() domain.EventInput {
	return domain.EventInput{
		Title:                r.Title,
		Description:          r.Description,
		EventDate:            r.EventDate,
		RegistrationDeadline: r.RegistrationDeadline,
		IsPaid:               r.IsPaid,
		Price:                r.Price,
		MaxParticipants:      r.MaxParticipants,
		Status:               r.Status,
		FormSchema:           r.FormSchema,
	}
}

// Dashboard handles GET /admin/dashboard: the admin's own events.
//
// @Summary      Admin dashboard
// @Tags         admin
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  eventsResponse
// @Router       /admin/dashboard [get]
func (h *AdminHandler) Dashboard(c echo.Context) error {
	events, err := h.admin.MyEvents(c.Request().Context())
	if err != nil {
		return backendFailure(err, "Could not load events")
	}
	if events == nil {
		events = []domain.Event{}
	}
	return c.JSON(http.StatusOK, eventsResponse{Events: events})
}

// CreateEvent handles POST /admin/events.
//
// @Summary      Create an event
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        body  body      createEventRequest  true  "Event"
// @Success      201   {object}  domain.Event
// @Failure      422   {object}  errorResponse
// @Router       /admin/events [post]
func (h *AdminHandler) CreateEvent(c echo.Context) error {
	var req createEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.RegistrationDeadline.After(req.EventDate) {
		return echo.NewHTTPError(http.StatusUnprocessableEntity, "registration_deadline must not be after event_date")
	}

	event, err := h.admin.CreateEvent(c.Request().Context(), req.toInput())
	if err != nil {
		return backendFailure(err, "Could not create event")
	}
	return c.JSON(http.StatusCreated, event)
}

// UpdateEvent handles PUT /admin/events/:id. Omitted fields are left as they are.
//
// @Summary      Update an event
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string              true  "Event ID"
// @Param        body  body      updateEventRequest  true  "Changed fields"
// @Success      200   {object}  domain.Event
// @Router       /admin/events/{id} [put]
func (h *AdminHandler) UpdateEvent(c echo.Context) error {
	var req updateEventRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	event, err := h.admin.UpdateEvent(c.Request().Context(), c.Param("id"), req.toInput())
	if err != nil {
		return backendFailure(err, "Could not update event")
	}
	return c.JSON(http.StatusOK, event)
}

// EventRegistrations handles GET /admin/events/:id/registrations.
//
// @Summary      Registrations of an event
// @Tags         admin
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  registrationsResponse
// @Router       /admin/events/{id}/registrations [get]
func (h *AdminHandler) EventRegistrations(c echo.Context) error {
	regs, err := h.admin.EventRegistrations(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendFailure(err, "Could not load registrations")
	}
	if regs == nil {
		regs = []domain.Registration{}
	}
	return c.JSON(http.StatusOK, registrationsResponse{Registrations: regs})
}

// Review handles PATCH /admin/registrations/:id.
//
// @Summary      Accept or reject a registration
// @Tags         admin
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string         true  "Registration ID"
// @Param        body  body      reviewRequest  true  "Decision"
// @Success      200   {object}  domain.Registration
// @Failure      422   {object}  errorResponse
// @Router       /admin/registrations/{id} [patch]
func (h *AdminHandler) Review(c echo.Context) error {
	var req reviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	reg, err := h.admin.Review(c.Request().Context(), c.Param("id"), req.Status)
	if err != nil {
		return backendFailure(err, "Could not update registration")
	}
	return c.JSON(http.StatusOK, reg)
}
