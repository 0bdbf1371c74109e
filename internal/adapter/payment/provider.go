package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/polkiloo/youwow/internal/domain/model"
)

// Provider names accepted by PAYMENT_PROVIDER.
const (
	ProviderOnePlat   = "oneplat"
	ProviderFreeKassa = "freekassa"
	ProviderYooKassa  = "yookassa"
)

var (
	// ErrConfiguration indicates missing provider credentials.
	ErrConfiguration = errors.New("missing provider configuration")
	// ErrUnknownProvider indicates PAYMENT_PROVIDER names no known provider.
	ErrUnknownProvider = errors.New("unknown payment provider")
	// ErrInvalidSignature indicates that no declared signature matched.
	ErrInvalidSignature = errors.New("invalid webhook signature")
	// ErrInvalidMerchant indicates the payload belongs to another shop.
	ErrInvalidMerchant = errors.New("merchant id mismatch")
	// ErrInvalidWebhookType indicates an unrecognized notification envelope.
	ErrInvalidWebhookType = errors.New("unrecognized webhook type")
	// ErrForbiddenSource indicates a notification from a non allowlisted address.
	ErrForbiddenSource = errors.New("webhook source not allowed")
	// ErrMissingParams indicates required notification fields are absent.
	ErrMissingParams = errors.New("missing webhook parameters")
	// ErrRejected indicates the provider refused to create a payment.
	ErrRejected = errors.New("payment rejected by provider")
)

// ProviderError annotates failures with provider and operation.
type ProviderError struct {
	Provider string
	Op       string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Provider, e.Op, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// CreatePaymentRequest describes a payment for an order.
type CreatePaymentRequest struct {
	OrderID     string
	UserID      string
	Amount      float64
	Email       string
	Method      string
	UseWidget   bool
	Description string
}

// CreatePaymentResult carries either a redirect URL or a widget token.
type CreatePaymentResult struct {
	Success           bool
	GUID              string
	PaymentID         string
	PaymentURL        string
	ConfirmationToken string
	PaymentData       json.RawMessage
}

// StatusResult is the reconciliation answer of a provider.
type StatusResult struct {
	Status model.PaymentStatus
	Paid   bool
}

// WebhookRequest is a raw provider notification.
type WebhookRequest struct {
	Body     []byte
	Form     url.Values
	RemoteIP string
	Header   http.Header
}

// Provider is implemented by every payment backend.
type Provider interface {
	Name() string
	CreatePayment(ctx context.Context, req CreatePaymentRequest) (*CreatePaymentResult, error)
	VerifyWebhook(ctx context.Context, req WebhookRequest) (*model.PaymentEvent, error)
	GetPaymentStatus(ctx context.Context, paymentID string) (*StatusResult, error)
}

func newStatusResult(status model.PaymentStatus) *StatusResult {
	return &StatusResult{Status: status, Paid: status == model.PaymentStatusPaid}
}

func missingConfig(provider string, fields ...string) error {
	return &ProviderError{Provider: provider, Op: "configure", Err: fmt.Errorf("%w: %v", ErrConfiguration, fields)}
}
