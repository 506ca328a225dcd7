package apiclient

import (
	"context"

	"github.com/partshub/internal/checkout"
)

type checkoutBackend struct {
	client *Client
}

// CheckoutBackend 把客户端适配为结算协调器的后端
func (c *Client) CheckoutBackend() checkout.Backend {
	return checkoutBackend{client: c}
}

func (b checkoutBackend) CreateOrder(ctx context.Context, req checkout.OrderRequest, idempotencyKey string) (checkout.OrderRef, error) {
	order, err := b.client.CreateOrder(ctx, req, idempotencyKey)
	if err != nil {
		return checkout.OrderRef{}, err
	}
	return checkout.OrderRef{
		ID:            order.ID,
		Status:        order.Status,
		PaymentStatus: order.PaymentStatus,
		Total:         order.TotalAmount.Decimal,
	}, nil
}

func (b checkoutBackend) InitializePayment(ctx context.Context, orderID uint, email string) (checkout.PaymentInit, error) {
	result, err := b.client.InitializePayment(ctx, orderID, email)
	if err != nil {
		return checkout.PaymentInit{}, err
	}
	return checkout.PaymentInit{
		AuthorizationURL: result.AuthorizationURL,
		Reference:        result.Reference,
		AccessCode:       result.AccessCode,
		Mock:             result.Mock,
	}, nil
}

func (b checkoutBackend) VerifyPayment(ctx context.Context, reference string) error {
	_, err := b.client.VerifyPayment(ctx, reference)
	return err
}
