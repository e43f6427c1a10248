package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cascadeforum/portal/internal/core/domain"
	"github.com/cascadeforum/portal/internal/core/ports"
	"github.com/cascadeforum/portal/internal/core/service"
)

const homeListingSize = 6

type eventService interface {
	PublicEvents(ctx context.Context, page ports.Page) []domain.Event
	PublicEvent(ctx context.Context, eventID string) (*domain.Event, error)
	Events(ctx context.Context, status domain.EventStatus, page ports.Page) ([]domain.Event, error)
	EventDetail(ctx context.Context, eventID string) (*service.EventDetail, error)
	Register(ctx context.Context, eventID string, formData json.RawMessage) (*domain.Registration, error)
	MyRegistrations(ctx context.Context) ([]domain.Registration, error)
	Registration(ctx context.Context, registrationID string) (*domain.Registration, error)
}

// EventHandler serves event browsing and client registrations.
type EventHandler struct {
	events eventService
}

func NewEventHandler(events eventService) *EventHandler {
	return &EventHandler{events: events}
}

type eventsResponse struct {
	Events []domain.Event `json:"events"`
}

type registerForEventRequest struct {
	FormData json.RawMessage `json:"form_data"`
}

type registrationResponse struct {
	Registration *domain.Registration `json:"registration"`
	Redirect     string               `json:"redirect"`
}

type registrationsResponse struct {
	Registrations []domain.Registration `json:"registrations"`
}

// Home handles GET /: the latest public events. Never fails.
//
// @Summary      Home page events
// @Tags         events
// @Produce      json
// @Success      200  {object}  eventsResponse
// @Router       / [get]
func (h *EventHandler) Home(c echo.Context) error {
	events := h.events.PublicEvents(c.Request().Context(), ports.Page{Limit: homeListingSize})
	return c.JSON(http.StatusOK, eventsResponse{Events: events})
}

// PublicList handles GET /public/events.
//
// @Summary      Public events
// @Tags         events
// @Produce      json
// @Param        skip   query     int  false  "Offset"
// @Param        limit  query     int  false  "Page size (max 100)"
// @Success      200    {object}  eventsResponse
// @Router       /public/events [get]
func (h *EventHandler) PublicList(c echo.Context) error {
	events := h.events.PublicEvents(c.Request().Context(), pageParam(c, 0))
	return c.JSON(http.StatusOK, eventsResponse{Events: events})
}

// PublicDetail handles GET /public/events/:id.
//
// @Summary      Public event
// @Tags         events
// @Produce      json
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  domain.Event
// @Failure      404  {object}  errorResponse
// @Router       /public/events/{id} [get]
func (h *EventHandler) PublicDetail(c echo.Context) error {
	event, err := h.events.PublicEvent(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendFailure(err, "Event not found")
	}
	return c.JSON(http.StatusOK, event)
}

// List handles GET /events: published events unless ?status= says otherwise.
//
// @Summary      Events
// @Tags         events
// @Produce      json
// @Security     SessionCookie
// @Param        status  query     string  false  "draft, published, cancelled or completed"
// @Success      200     {object}  eventsResponse
// @Router       /events [get]
func (h *EventHandler) List(c echo.Context) error {
	status := domain.EventStatus(c.QueryParam("status"))
	if status == "" {
		status = domain.EventPublished
	}
	events, err := h.events.Events(c.Request().Context(), status, pageParam(c, 0))
	if err != nil {
		return backendFailure(err, "Could not load events")
	}
	if events == nil {
		events = []domain.Event{}
	}
	return c.JSON(http.StatusOK, eventsResponse{Events: events})
}

// Detail handles GET /events/:id with the caller's registration, if any.
//
// @Summary      Event detail
// @Tags         events
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "Event ID"
// @Success      200  {object}  service.EventDetail
// @Failure      404  {object}  errorResponse
// @Router       /events/{id} [get]
func (h *EventHandler) Detail(c echo.Context) error {
	detail, err := h.events.EventDetail(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendFailure(err, "Event not found")
	}
	return c.JSON(http.StatusOK, detail)
}

// Register handles POST /events/:id/register.
//
// @Summary      Register for an event
// @Tags         registrations
// @Accept       json
// @Produce      json
// @Security     SessionCookie
// @Param        id    path      string                   true  "Event ID"
// @Param        body  body      registerForEventRequest  true  "Answers to the event's form"
// @Success      201   {object}  registrationResponse
// @Failure      400   {object}  errorResponse
// @Router       /events/{id}/register [post]
func (h *EventHandler) Register(c echo.Context) error {
	var req registerForEventRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	reg, err := h.events.Register(c.Request().Context(), c.Param("id"), req.FormData)
	if err != nil {
		return backendFailure(err, "Registration failed")
	}
	return c.JSON(http.StatusCreated, registrationResponse{Registration: reg, Redirect: "/my-registrations"})
}

// MyRegistrations handles GET /my-registrations.
//
// @Summary      My registrations
// @Tags         registrations
// @Produce      json
// @Security     SessionCookie
// @Success      200  {object}  registrationsResponse
// @Router       /my-registrations [get]
func (h *EventHandler) MyRegistrations(c echo.Context) error {
	regs, err := h.events.MyRegistrations(c.Request().Context())
	if err != nil {
		return backendFailure(err, "Could not load registrations")
	}
	if regs == nil {
		regs = []domain.Registration{}
	}
	return c.JSON(http.StatusOK, registrationsResponse{Registrations: regs})
}

// Registration handles GET /registrations/:id.
//
// @Summary      Registration
// @Tags         registrations
// @Produce      json
// @Security     SessionCookie
// @Param        id   path      string  true  "Registration ID"
// @Success      200  {object}  domain.Registration
// @Router       /registrations/{id} [get]
func (h *EventHandler) Registration(c echo.Context) error {
	reg, err := h.events.Registration(c.Request().Context(), c.Param("id"))
	if err != nil {
		return backendFailure(err, "Registration not found")
	}
	return c.JSON(http.StatusOK, reg)
}
