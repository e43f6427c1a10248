package backend

import (
	"context"
	"net/http"

	"github.com/cascadeforum/portal/internal/core/domain"
)

type createOrderRequest struct {
	RegistrationID string `json:"registration_id"`
}

type verifyRequest struct {
	OrderID   string `json:"order_id"`
	PaymentID string `json:"payment_id"`
	Signature string `json:"signature"`
}

func (c *Client) CreateOrder(ctx context.Context, registrationID string) (*domain.PaymentOrder, error) {
	var out domain.PaymentOrder
	err := c.do(ctx, call{
		method: http.MethodPost,
		path:   "/payments/create-order",
		body:   createOrderRequest{RegistrationID: registrationID},
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyPayment asks the backend to check the gateway signature and mark the
// registration paid.
func (c *Client) VerifyPayment(ctx context.Context, result domain.CheckoutResult) error {
	return c.do(ctx, call{
		method: http.MethodPost,
		path:   "/payments/verify",
		body: verifyRequest{
			OrderID:   result.OrderID,
			PaymentID: result.PaymentID,
			Signature: result.Signature,
		},
	}, nil)
}

func (c *Client) MyPayments(ctx context.Context) ([]domain.Payment, error) {
	var out []domain.Payment
	err := c.do(ctx, call{method: http.MethodGet, path: "/payments/my-payments"}, &out)
	return out, err
}
