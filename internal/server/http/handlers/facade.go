package handlers

import (
	"context"

	"github.com/polkiloo/youwow/internal/adapter/payment"
	"github.com/polkiloo/youwow/internal/app"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/usecase"
)

// AuthFacade describes admin authentication required by handlers.
type AuthFacade interface {
	Authenticate(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
}

// OrderFacade encapsulates the public order flow.
type OrderFacade interface {
	CreateOrder(ctx context.Context, req usecase.CreateOrderRequest) (*model.Order, error)
	Order(ctx context.Context, id string) (*model.Order, error)
	TriggerProcessing(ctx context.Context, id string) (*model.Order, error)
	VerifyPayment(ctx context.Context, id string) (*model.Order, error)
	ServiceOptions(ctx context.Context) ([]model.ServiceOption, error)
}

// PaymentFacade creates payments and consumes provider notifications.
type PaymentFacade interface {
	CreatePayment(ctx context.Context, req usecase.CheckoutRequest) (*payment.CreatePaymentResult, error)
	HandleWebhook(ctx context.Context, provider string, req payment.WebhookRequest) (*model.PaymentEvent, error)
}

// AdminFacade manages partners, payouts and the catalog.
type AdminFacade interface {
	CreatePartner(ctx context.Context, partner model.Partner) (*model.Partner, error)
	UpdatePartner(ctx context.Context, partner model.Partner) (*model.Partner, error)
	SetPartnerStatus(ctx context.Context, id string, status model.PartnerStatus) (*model.Partner, error)
	Partner(ctx context.Context, id string) (*model.Partner, error)
	Partners(ctx context.Context) ([]model.Partner, error)
	PartnerStats(ctx context.Context, id string) (*model.PartnerStats, error)
	PartnerConversions(ctx context.Context, id string) ([]model.PartnerConversion, error)
	CreatePayout(ctx context.Context, req usecase.PayoutRequest) (*model.PartnerPayout, error)
	Payouts(ctx context.Context, partnerID string) ([]model.PartnerPayout, error)
	ServiceOptions(ctx context.Context) ([]model.ServiceOption, error)
	SetServiceOption(ctx context.Context, option model.ServiceOption) error
}

// HealthFacade reports storage availability.
type HealthFacade interface {
	Health(ctx context.Context) error
}

// GiftFacade aggregates the full set of operations used across handlers.
type GiftFacade interface {
	AuthFacade
	OrderFacade
	PaymentFacade
	AdminFacade
	HealthFacade
}

var _ GiftFacade = (*app.GiftFacade)(nil)
