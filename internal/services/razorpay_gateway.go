package services

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"app-builder-api/internal/apperrors"

	razorpay "github.com/razorpay/razorpay-go"
)

// Order is the gateway order returned to the client for checkout
type Order struct {
	ID       string `json:"id"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Receipt  string `json:"receipt"`
	Status   string `json:"status,omitempty"`
}

// PaymentGateway creates orders and authenticates payment confirmations
type PaymentGateway interface {
	CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error)
	VerifySignature(orderID, paymentID, signature string) bool
}

// RazorpayGateway talks to Razorpay
type RazorpayGateway struct {
	client *razorpay.Client
	secret string
}

// NewRazorpayGateway creates a new Razorpay gateway
func NewRazorpayGateway(keyID, keySecret string) *RazorpayGateway {
	return &RazorpayGateway{
		client: razorpay.NewClient(keyID, keySecret),
		secret: keySecret,
	}
}

// CreateOrder creates an order for amount minor units. The SDK call is not
// context aware, so ctx only bounds how long we wait for it.
func (g *RazorpayGateway) CreateOrder(ctx context.Context, amount int64, currency, receipt string) (*Order, error) {
	type result struct {
		body map[string]interface{}
		err  error
	}
	ch := make(chan result, 1)

	go func() {
		body, err := g.client.Order.Create(map[string]interface{}{
			"amount":   amount,
			"currency": currency,
			"receipt":  receipt,
		}, nil)
		ch <- result{body: body, err: err}
	}()

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: create order: %v", apperrors.ErrGateway, ctx.Err())
	case res := <-ch:
		if res.err != nil {
			return nil, fmt.Errorf("%w: create order: %v", apperrors.ErrGateway, res.err)
		}
		return orderFromBody(res.body)
	}
}

// VerifySignature checks a checkout confirmation against the key secret
func (g *RazorpayGateway) VerifySignature(orderID, paymentID, signature string) bool {
	return VerifyPaymentSignature(g.secret, orderID, paymentID, signature)
}

// PaymentSignature is hex(HMAC-SHA256(secret, orderID + "|" + paymentID))
func PaymentSignature(secret, orderID, paymentID string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyPaymentSignature compares signature with the expected value in
// constant time
func VerifyPaymentSignature(secret, orderID, paymentID, signature string) bool {
	if secret == "" || signature == "" {
		return false
	}
	expected := PaymentSignature(secret, orderID, paymentID)
	return hmac.Equal([]byte(expected), []byte(signature))
}

func orderFromBody(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("%w: order response without id", apperrors.ErrGateway)
	}

	order := &Order{ID: id}
	order.Currency, _ = body["currency"].(string)
	order.Receipt, _ = body["receipt"].(string)
	order.Status, _ = body["status"].(string)

	switch v := body["amount"].(type) {
	case float64:
		order.Amount = int64(v)
	case int64:
		order.Amount = v
	case int:
		order.Amount = int64(v)
	}
	return order, nil
}
