package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/domain/repository"
)

// CreateOrderRequest is a submitted gift form.
type CreateOrderRequest struct {
	ServiceType model.ServiceType
	Email       string
	Name        string
	Input       json.RawMessage
	// Ref is the referral partner id captured from the landing link.
	Ref string
}

// CheckoutRequest asks the active payment provider to charge an order.
type CheckoutRequest struct {
	OrderID   string
	Method    string
	UseWidget bool
}

// OrderUseCase encapsulates order lifecycle logic.
type OrderUseCase struct {
	orders   repository.OrderRepository
	options  repository.ServiceOptionRepository
	partners repository.PartnerRepository
	logger   *slog.Logger
}

// NewOrderUseCase constructs OrderUseCase.
func NewOrderUseCase(orders repository.OrderRepository, options repository.ServiceOptionRepository, partners repository.PartnerRepository, logger *slog.Logger) *OrderUseCase {
	return &OrderUseCase{orders: orders, options: options, partners: partners, logger: logger}
}

// Create registers a pending order priced from the service catalog.
func (u *OrderUseCase) Create(ctx context.Context, req CreateOrderRequest) (*model.Order, error) {
	email := strings.TrimSpace(req.Email)
	if !ValidateEmail(email) {
		return nil, fmt.Errorf("%w: email", domainErrors.ErrInvalidInput)
	}

	input := req.Input
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	var fields map[string]any
	if err := json.Unmarshal(input, &fields); err != nil {
		return nil, fmt.Errorf("%w: input must be a JSON object", domainErrors.ErrInvalidInput)
	}

	option, err := u.options.Get(ctx, req.ServiceType)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, domainErrors.ErrUnsupportedService
		}
		return nil, err
	}
	if !option.IsActive {
		return nil, domainErrors.ErrUnsupportedService
	}
	if option.Price <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}

	order := model.NewOrder{
		ServiceType:   option.ServiceType,
		CustomerEmail: email,
		InputData:     input,
		Amount:        option.Price,
		PartnerID:     u.referral(ctx, req.Ref),
	}
	if name := strings.TrimSpace(req.Name); name != "" {
		order.CustomerName = &name
	}

	return u.orders.Create(ctx, order)
}

// referral resolves the partner to attribute. Unknown or inactive partners
// are ignored so a stale link never blocks a purchase.
func (u *OrderUseCase) referral(ctx context.Context, ref string) *string {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" || !ValidatePartnerID(ref) {
		return nil
	}

	partner, err := u.partners.Get(ctx, ref)
	if err != nil {
		if !errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("referral lookup failed", slog.String("ref", ref), slog.String("error", err.Error()))
		}
		return nil
	}
	if partner.Status != model.PartnerStatusActive {
		return nil
	}
	return &partner.ID
}

// Get returns an order by id.
func (u *OrderUseCase) Get(ctx context.Context, id string) (*model.Order, error) {
	if !ValidateOrderID(id) {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.orders.Get(ctx, id)
}

// AttachPayment records the provider payment created for an order.
func (u *OrderUseCase) AttachPayment(ctx context.Context, id, paymentID, provider string) (*model.Order, error) {
	if paymentID == "" {
		return nil, fmt.Errorf("%w: empty payment id", domainErrors.ErrInvalidInput)
	}
	return u.orders.AttachPayment(ctx, id, paymentID, provider)
}

// MarkPaid moves a pending order to paid. False means it already left pending.
func (u *OrderUseCase) MarkPaid(ctx context.Context, id, paymentID, provider string) (bool, error) {
	if !ValidateOrderID(id) {
		return false, domainErrors.ErrNotFound
	}
	return u.orders.MarkPaid(ctx, id, paymentID, provider)
}

// Claim grants exclusive permission to run generation for the order.
func (u *OrderUseCase) Claim(ctx context.Context, id string) (*model.Order, error) {
	if !ValidateOrderID(id) {
		return nil, domainErrors.ErrInvalidInput
	}
	return u.orders.Claim(ctx, id)
}

// Fail records a terminal failure of a claimed order.
func (u *OrderUseCase) Fail(ctx context.Context, id, message string) (*model.Order, error) {
	return u.orders.Fail(ctx, id, message)
}

// ServiceOptions lists the catalog.
func (u *OrderUseCase) ServiceOptions(ctx context.Context) ([]model.ServiceOption, error) {
	return u.options.List(ctx)
}

// SetServiceOption creates or updates a catalog entry.
func (u *OrderUseCase) SetServiceOption(ctx context.Context, option model.ServiceOption) error {
	if option.ServiceType == "" || strings.TrimSpace(option.Title) == "" {
		return domainErrors.ErrInvalidInput
	}
	if option.Price <= 0 {
		return domainErrors.ErrInvalidAmount
	}
	return u.options.Upsert(ctx, option)
}
