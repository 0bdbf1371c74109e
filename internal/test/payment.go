package test

import (
	"context"
	"sync"

	"github.com/polkiloo/youwow/internal/adapter/payment"
	"github.com/polkiloo/youwow/internal/domain/model"
)

// PaymentProviderStub is a scriptable payment.Provider.
type PaymentProviderStub struct {
	ProviderName string
	CreateFn     func(ctx context.Context, req payment.CreatePaymentRequest) (*payment.CreatePaymentResult, error)
	VerifyFn     func(ctx context.Context, req payment.WebhookRequest) (*model.PaymentEvent, error)
	StatusFn     func(ctx context.Context, paymentID string) (*payment.StatusResult, error)

	mu       sync.Mutex
	Requests []payment.CreatePaymentRequest
}

var _ payment.Provider = (*PaymentProviderStub)(nil)

func (s *PaymentProviderStub) Name() string {
	if s.ProviderName == "" {
		return payment.ProviderOnePlat
	}
	return s.ProviderName
}

// CreatePayment records the request and answers with a guid payment by default.
func (s *PaymentProviderStub) CreatePayment(ctx context.Context, req payment.CreatePaymentRequest) (*payment.CreatePaymentResult, error) {
	s.mu.Lock()
	s.Requests = append(s.Requests, req)
	s.mu.Unlock()
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &payment.CreatePaymentResult{
		Success:    true,
		GUID:       "guid-" + req.OrderID,
		PaymentID:  "guid-" + req.OrderID,
		PaymentURL: "https://pay.example/" + req.OrderID,
	}, nil
}

func (s *PaymentProviderStub) VerifyWebhook(ctx context.Context, req payment.WebhookRequest) (*model.PaymentEvent, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, req)
	}
	return nil, payment.ErrInvalidSignature
}

func (s *PaymentProviderStub) GetPaymentStatus(ctx context.Context, paymentID string) (*payment.StatusResult, error) {
	if s.StatusFn != nil {
		return s.StatusFn(ctx, paymentID)
	}
	return &payment.StatusResult{Status: model.PaymentStatusPending}, nil
}

// DispatcherStub accepts orders until Reject is set.
type DispatcherStub struct {
	mu        sync.Mutex
	Reject    bool
	Submitted []string
}

func (d *DispatcherStub) Submit(order *model.Order) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Reject {
		return false
	}
	d.Submitted = append(d.Submitted, order.ID)
	return true
}

// Count returns how many orders were accepted.
func (d *DispatcherStub) Count() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Submitted)
}

// HealthStub reports Err as the storage health.
type HealthStub struct {
	Err error
}

func (h HealthStub) HealthCheck(context.Context) error { return h.Err }
