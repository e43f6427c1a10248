package domain

import (
	"encoding/json"
	"time"
)

// RegistrationStatus is the admin-controlled review state of a registration.
type RegistrationStatus string

const (
	RegistrationPending  RegistrationStatus = "pending"
	RegistrationAccepted RegistrationStatus = "accepted"
	RegistrationRejected RegistrationStatus = "rejected"
)

// Valid reports whether s is a known registration status.
func (s RegistrationStatus) Valid() bool {
	switch s {
	case RegistrationPending, RegistrationAccepted, RegistrationRejected:
		return true
	}
	return false
}

// PaymentStatus is the payment progress recorded on a registration.
type PaymentStatus string

const (
	PaymentNotRequired PaymentStatus = "not_required"
	PaymentPending     PaymentStatus = "pending"
	PaymentCompleted   PaymentStatus = "completed"
	PaymentFailed      PaymentStatus = "failed"
	PaymentRefunded    PaymentStatus = "refunded"
)

// Registration links a client to an event.
// Status changes come from an admin; PaymentStatus from the payment flow.
type Registration struct {
	ID             string             `json:"id"`
	EventID        string             `json:"event_id"`
	UserID         string             `json:"user_id"`
	Status         RegistrationStatus `json:"status"`
	FormData       json.RawMessage    `json:"form_data"`
	PaymentStatus  PaymentStatus      `json:"payment_status"`
	PaymentOrderID *string            `json:"payment_order_id"`
	PaymentID      *string            `json:"payment_id"`
	EventTitle     *string            `json:"event_title"`
	UserName       *string            `json:"user_name"`
	CreatedAt      time.Time          `json:"created_at"`
	UpdatedAt      time.Time          `json:"updated_at"`
}

// AwaitingPayment reports whether the registration was accepted but is not paid yet.
func (r *Registration) AwaitingPayment() bool {
	return r.Status == RegistrationAccepted &&
		(r.PaymentStatus == PaymentPending || r.PaymentStatus == PaymentFailed)
}
