package domain

import "time"

// OrderStatus is the lifecycle of a gateway order as recorded by the backend.
type OrderStatus string

const (
	OrderCreated  OrderStatus = "created"
	OrderPaid     OrderStatus = "paid"
	OrderFailed   OrderStatus = "failed"
	OrderRefunded OrderStatus = "refunded"
)

// IsFinal reports whether no further transition is possible.
func (s OrderStatus) IsFinal() bool {
	return s == OrderPaid || s == OrderFailed || s == OrderRefunded
}

// PaymentOrder is what the backend returns when asked to create an order.
// Amount stays in major units.
type PaymentOrder struct {
	OrderID  string `json:"order_id"`
	Amount   Amount `json:"amount"`
	Currency string `json:"currency"`
	Key      string `json:"key,omitempty"`
}

// Payment is the backend's record of a payment attempt.
type Payment struct {
	ID                string      `json:"id"`
	RegistrationID    string      `json:"registration_id"`
	RazorpayOrderID   string      `json:"razorpay_order_id"`
	RazorpayPaymentID *string     `json:"razorpay_payment_id"`
	Amount            Amount      `json:"amount"`
	Currency          string      `json:"currency"`
	Status            OrderStatus `json:"status"`
	CreatedAt         time.Time   `json:"created_at"`
}

// CheckoutResult is the triple the checkout widget hands to its completion callback.
type CheckoutResult struct {
	OrderID   string
	PaymentID string
	Signature string
}
