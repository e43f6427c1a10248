package domain

import (
	"encoding/json"
	"time"
)

// EventStatus is the publication state of an event.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

// Event is a published (or draft) event clients can register for.
type Event struct {
	ID                   string          `json:"id"`
	Title                string          `json:"title"`
	Description          *string         `json:"description"`
	EventDate            time.Time       `json:"event_date"`
	RegistrationDeadline time.Time       `json:"registration_deadline"`
	IsPaid               bool            `json:"is_paid"`
	Price                Amount          `json:"price"`
	MaxParticipants      *int            `json:"max_participants"`
	CurrentParticipants  int             `json:"current_participants"`
	Status               EventStatus     `json:"status"`
	CreatedBy            string          `json:"created_by"`
	CreatorName          *string         `json:"creator_name"`
	FormSchema           json.RawMessage `json:"form_schema,omitempty"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// IsFull reports whether the event has reached its participant cap.
func (e *Event) IsFull() bool {
	return e.MaxParticipants != nil && e.CurrentParticipants >= *e.MaxParticipants
}

// RegistrationOpen reports whether registrations are still accepted at now.
func (e *Event) RegistrationOpen(now time.Time) bool {
	return e.Status == EventPublished && now.Before(e.RegistrationDeadline) && !e.IsFull()
}

// EventInput carries the writable fields of an event for create and update.
// Nil fields are left untouched on update.
type EventInput struct {
	Title                *string         `json:"title,omitempty"`
	Description          *string         `json:"description,omitempty"`
	EventDate            *time.Time      `json:"event_date,omitempty"`
	RegistrationDeadline *time.Time      `json:"registration_deadline,omitempty"`
	IsPaid               *bool           `json:"is_paid,omitempty"`
	Price                *Amount         `json:"price,omitempty"`
	MaxParticipants      *int            `json:"max_participants,omitempty"`
	Status               *EventStatus    `json:"status,omitempty"`
	FormSchema           json.RawMessage `json:"form_schema,omitempty"`
}
