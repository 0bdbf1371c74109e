// Package facadestub provides in-memory facades for HTTP layer tests.
package facadestub

import (
	"context"
	"time"

	"github.com/polkiloo/youwow/internal/adapter/payment"
	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	testhelpers "github.com/polkiloo/youwow/internal/test"
	"github.com/polkiloo/youwow/internal/usecase"
)

// StubOrderID is the id of orders produced by OrderFacadeStub defaults.
const StubOrderID = "9a1b2c3d-4e5f-4a6b-8c7d-0e1f2a3b4c5d"

// StubOrder returns an order in the given status.
func StubOrder(status model.OrderStatus) *model.Order {
	return &model.Order{
		ID:            StubOrderID,
		ServiceType:   model.ServiceSong,
		CustomerEmail: "buyer@example.com",
		Amount:        590,
		Status:        status,
		CreatedAt:     time.Unix(0, 0).UTC(),
		UpdatedAt:     time.Unix(0, 0).UTC(),
	}
}

// OrderFacadeStub allows overriding public order operations in tests.
type OrderFacadeStub struct {
	CreateFn         func(context.Context, usecase.CreateOrderRequest) (*model.Order, error)
	OrderFn          func(context.Context, string) (*model.Order, error)
	TriggerFn        func(context.Context, string) (*model.Order, error)
	VerifyFn         func(context.Context, string) (*model.Order, error)
	ServiceOptionsFn func(context.Context) ([]model.ServiceOption, error)
}

func (s OrderFacadeStub) CreateOrder(ctx context.Context, req usecase.CreateOrderRequest) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return StubOrder(model.OrderStatusPending), nil
}

func (s OrderFacadeStub) Order(ctx context.Context, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return StubOrder(model.OrderStatusPending), nil
}

func (s OrderFacadeStub) TriggerProcessing(ctx context.Context, id string) (*model.Order, error) {
	if s.TriggerFn != nil {
		return s.TriggerFn(ctx, id)
	}
	return StubOrder(model.OrderStatusProcessing), nil
}

func (s OrderFacadeStub) VerifyPayment(ctx context.Context, id string) (*model.Order, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, id)
	}
	return StubOrder(model.OrderStatusProcessing), nil
}

func (s OrderFacadeStub) ServiceOptions(ctx context.Context) ([]model.ServiceOption, error) {
	if s.ServiceOptionsFn != nil {
		return s.ServiceOptionsFn(ctx)
	}
	return []model.ServiceOption{
		{ServiceType: model.ServiceSong, Title: "Song", Price: 590, IsActive: true},
		{ServiceType: model.ServiceSanta, Title: "Santa", Price: 490},
	}, nil
}

// PaymentFacadeStub allows overriding payment operations in tests.
type PaymentFacadeStub struct {
	CreatePaymentFn func(context.Context, usecase.CheckoutRequest) (*payment.CreatePaymentResult, error)
	WebhookFn       func(context.Context, string, payment.WebhookRequest) (*model.PaymentEvent, error)
}

func (s PaymentFacadeStub) CreatePayment(ctx context.Context, req usecase.CheckoutRequest) (*payment.CreatePaymentResult, error) {
	if s.CreatePaymentFn != nil {
		return s.CreatePaymentFn(ctx, req)
	}
	return &payment.CreatePaymentResult{Success: true, PaymentID: "pay-1", PaymentURL: "https://pay.example/1"}, nil
}

func (s PaymentFacadeStub) HandleWebhook(ctx context.Context, provider string, req payment.WebhookRequest) (*model.PaymentEvent, error) {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, provider, req)
	}
	return &model.PaymentEvent{Provider: provider, OrderID: StubOrderID, Status: model.PaymentStatusPaid}, nil
}

// AdminFacadeStub keeps partners in memory and lets tests inject errors.
type AdminFacadeStub struct {
	PartnerList []model.Partner
	Err         error
	PayoutFn    func(context.Context, usecase.PayoutRequest) (*model.PartnerPayout, error)
	Options     []model.ServiceOption
}

func (s *AdminFacadeStub) find(id string) (*model.Partner, error) {
	for i := range s.PartnerList {
		if s.PartnerList[i].ID == id {
			p := s.PartnerList[i]
			return &p, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *AdminFacadeStub) CreatePartner(_ context.Context, partner model.Partner) (*model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if _, err := s.find(partner.ID); err == nil {
		return nil, domainErrors.ErrAlreadyExists
	}
	if partner.Status == "" {
		partner.Status = model.PartnerStatusActive
	}
	s.PartnerList = append(s.PartnerList, partner)
	return &partner, nil
}

func (s *AdminFacadeStub) UpdatePartner(_ context.Context, partner model.Partner) (*model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	for i := range s.PartnerList {
		if s.PartnerList[i].ID == partner.ID {
			s.PartnerList[i] = partner
			return &partner, nil
		}
	}
	return nil, domainErrors.ErrNotFound
}

func (s *AdminFacadeStub) SetPartnerStatus(ctx context.Context, id string, status model.PartnerStatus) (*model.Partner, error) {
	if !status.Valid() {
		return nil, domainErrors.ErrInvalidInput
	}
	partner, err := s.Partner(ctx, id)
	if err != nil {
		return nil, err
	}
	partner.Status = status
	return s.UpdatePartner(ctx, *partner)
}

func (s *AdminFacadeStub) Partner(_ context.Context, id string) (*model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.find(id)
}

func (s *AdminFacadeStub) Partners(context.Context) ([]model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.PartnerList, nil
}

func (s *AdminFacadeStub) PartnerStats(ctx context.Context, id string) (*model.PartnerStats, error) {
	if _, err := s.Partner(ctx, id); err != nil {
		return nil, err
	}
	return &model.PartnerStats{Conversions: 2, TotalCommission: 200, PendingCommission: 100, PaidCommission: 100, Revenue: 1180}, nil
}

func (s *AdminFacadeStub) PartnerConversions(ctx context.Context, id string) ([]model.PartnerConversion, error) {
	if _, err := s.Partner(ctx, id); err != nil {
		return nil, err
	}
	return []model.PartnerConversion{{ID: 1, PartnerID: id, OrderID: StubOrderID, ServiceType: model.ServiceSong, Amount: 590, Commission: 100}}, nil
}

func (s *AdminFacadeStub) CreatePayout(ctx context.Context, req usecase.PayoutRequest) (*model.PartnerPayout, error) {
	if s.PayoutFn != nil {
		return s.PayoutFn(ctx, req)
	}
	if s.Err != nil {
		return nil, s.Err
	}
	return &model.PartnerPayout{ID: 1, PartnerID: req.PartnerID, Amount: 100, ConversionsCount: 1, PeriodStart: req.PeriodStart, PeriodEnd: req.PeriodEnd}, nil
}

func (s *AdminFacadeStub) Payouts(_ context.Context, partnerID string) ([]model.PartnerPayout, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return []model.PartnerPayout{{ID: 1, PartnerID: partnerID, Amount: 100, ConversionsCount: 1}}, nil
}

func (s *AdminFacadeStub) ServiceOptions(context.Context) ([]model.ServiceOption, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	return s.Options, nil
}

func (s *AdminFacadeStub) SetServiceOption(_ context.Context, option model.ServiceOption) error {
	if s.Err != nil {
		return s.Err
	}
	if option.Price <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	s.Options = append(s.Options, option)
	return nil
}

// HealthFacadeStub reports Err as the service health.
type HealthFacadeStub struct {
	Err error
}

func (s HealthFacadeStub) Health(context.Context) error { return s.Err }

// GiftFacadeStub composes the individual facade stubs.
type GiftFacadeStub struct {
	testhelpers.AuthFacadeStub
	OrderFacadeStub
	PaymentFacadeStub
	*AdminFacadeStub
	HealthFacadeStub
}

// ServiceOptions resolves the method promoted by both order and admin stubs.
func (s GiftFacadeStub) ServiceOptions(ctx context.Context) ([]model.ServiceOption, error) {
	return s.OrderFacadeStub.ServiceOptions(ctx)
}
