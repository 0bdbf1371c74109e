package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/polkiloo/youwow/internal/adapter/payment"
	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/metrics"
	"github.com/polkiloo/youwow/internal/usecase"
)

const queueFullMessage = "The service is busy right now. Please contact support and we will create your gift."

// Dispatcher schedules a claimed order for generation without blocking.
type Dispatcher interface {
	Submit(order *model.Order) bool
}

// HealthChecker reports storage availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// GiftFacade is the single entry point of the HTTP layer and the CLI.
type GiftFacade struct {
	auth       *usecase.AuthUseCase
	orders     *usecase.OrderUseCase
	affiliate  *usecase.AffiliateUseCase
	payments   *payment.Registry
	dispatcher Dispatcher
	health     HealthChecker
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

func NewGiftFacade(
	auth *usecase.AuthUseCase,
	orders *usecase.OrderUseCase,
	affiliate *usecase.AffiliateUseCase,
	payments *payment.Registry,
	dispatcher Dispatcher,
	health HealthChecker,
	m *metrics.Metrics,
	logger *slog.Logger,
) *GiftFacade {
	return &GiftFacade{
		auth:       auth,
		orders:     orders,
		affiliate:  affiliate,
		payments:   payments,
		dispatcher: dispatcher,
		health:     health,
		metrics:    m,
		logger:     logger,
	}
}

func (f *GiftFacade) Authenticate(ctx context.Context, login, password string) (string, error) {
	_, token, err := f.auth.Authenticate(ctx, login, password)
	return token, err
}

func (f *GiftFacade) ParseToken(token string) (int64, error) {
	return f.auth.ParseToken(token)
}

func (f *GiftFacade) CreateAdmin(ctx context.Context, login, password string) (*model.User, error) {
	return f.auth.CreateAdmin(ctx, login, password)
}

func (f *GiftFacade) CreateOrder(ctx context.Context, req usecase.CreateOrderRequest) (*model.Order, error) {
	order, err := f.orders.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	f.logger.Info("order created",
		slog.String("order_id", order.ID),
		slog.String("service", string(order.ServiceType)),
		slog.Float64("amount", order.Amount),
	)
	return order, nil
}

func (f *GiftFacade) Order(ctx context.Context, id string) (*model.Order, error) {
	return f.orders.Get(ctx, id)
}

func (f *GiftFacade) ServiceOptions(ctx context.Context) ([]model.ServiceOption, error) {
	return f.orders.ServiceOptions(ctx)
}

func (f *GiftFacade) SetServiceOption(ctx context.Context, option model.ServiceOption) error {
	return f.orders.SetServiceOption(ctx, option)
}

// CreatePayment charges a pending order through the active provider.
func (f *GiftFacade) CreatePayment(ctx context.Context, req usecase.CheckoutRequest) (*payment.CreatePaymentResult, error) {
	order, err := f.orders.Get(ctx, req.OrderID)
	if err != nil {
		return nil, err
	}
	if order.Status != model.OrderStatusPending {
		return nil, fmt.Errorf("%w: status %s", domainErrors.ErrOrderAlreadyProcessed, order.Status)
	}

	provider := f.payments.Active()
	result, err := provider.CreatePayment(ctx, payment.CreatePaymentRequest{
		OrderID:     order.ID,
		UserID:      order.CustomerEmail,
		Amount:      order.Amount,
		Email:       order.CustomerEmail,
		Method:      req.Method,
		UseWidget:   req.UseWidget,
		Description: fmt.Sprintf("YouWow %s #%s", order.ServiceType, order.ID),
	})
	if err != nil {
		return nil, err
	}
	if result == nil || !result.Success || result.PaymentID == "" {
		return nil, &payment.ProviderError{Provider: provider.Name(), Op: "create", Err: payment.ErrRejected}
	}

	if _, err := f.orders.AttachPayment(ctx, order.ID, result.PaymentID, provider.Name()); err != nil {
		return nil, err
	}
	f.logger.Info("payment created",
		slog.String("order_id", order.ID),
		slog.String("provider", provider.Name()),
		slog.String("payment_id", result.PaymentID),
	)
	return result, nil
}

// HandleWebhook verifies a provider notification and, for a paid event,
// marks the order paid and starts processing. Events with other statuses
// are acknowledged without a state change.
func (f *GiftFacade) HandleWebhook(ctx context.Context, providerName string, req payment.WebhookRequest) (*model.PaymentEvent, error) {
	provider, ok := f.payments.Get(providerName)
	if !ok {
		f.metrics.WebhookReceived(providerName, "unconfigured")
		return nil, &payment.ProviderError{Provider: providerName, Op: "webhook", Err: payment.ErrConfiguration}
	}

	event, err := provider.VerifyWebhook(ctx, req)
	if err != nil {
		f.metrics.WebhookReceived(providerName, webhookRejection(err))
		f.logger.Warn("webhook rejected",
			slog.String("provider", providerName),
			slog.String("remote_ip", req.RemoteIP),
			slog.String("error", err.Error()),
		)
		return nil, err
	}

	logger := f.logger.With(slog.String("provider", providerName), slog.String("order_id", event.OrderID))
	if event.Status != model.PaymentStatusPaid {
		f.metrics.WebhookReceived(providerName, "ignored")
		logger.Info("webhook acknowledged", slog.String("payment_status", event.Status.String()))
		return event, nil
	}

	if _, err := f.orders.MarkPaid(ctx, event.OrderID, event.PaymentID, providerName); err != nil {
		f.metrics.WebhookReceived(providerName, "error")
		return nil, err
	}
	f.metrics.WebhookReceived(providerName, "accepted")
	logger.Info("payment confirmed", slog.Float64("amount", event.Amount))

	if _, err := f.startProcessing(ctx, event.OrderID); err != nil && !acknowledgedClaimError(err) {
		return nil, err
	}
	return event, nil
}

// TriggerProcessing claims the order and queues its generation. Exactly one
// of concurrent callers wins; the rest get ErrOrderAlreadyProcessed.
func (f *GiftFacade) TriggerProcessing(ctx context.Context, orderID string) (*model.Order, error) {
	return f.startProcessing(ctx, orderID)
}

// VerifyPayment reconciles a pending order with its provider and starts
// processing once the payment is confirmed.
func (f *GiftFacade) VerifyPayment(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := f.orders.Get(ctx, orderID)
	if err != nil {
		return nil, err
	}

	switch order.Status {
	case model.OrderStatusPending:
		if order.PaymentID == nil || order.PaymentProvider == nil {
			return nil, domainErrors.ErrPaymentNotConfirmed
		}
		provider, ok := f.payments.Get(*order.PaymentProvider)
		if !ok {
			return nil, &payment.ProviderError{Provider: *order.PaymentProvider, Op: "status", Err: payment.ErrConfiguration}
		}
		status, err := provider.GetPaymentStatus(ctx, *order.PaymentID)
		if err != nil {
			return nil, err
		}
		if !status.Paid {
			return nil, fmt.Errorf("%w: %s", domainErrors.ErrPaymentNotConfirmed, status.Status)
		}
		if _, err := f.orders.MarkPaid(ctx, order.ID, *order.PaymentID, provider.Name()); err != nil {
			return nil, err
		}
		f.logger.Info("payment confirmed by reconciliation", slog.String("order_id", order.ID), slog.String("provider", provider.Name()))
	case model.OrderStatusPaid:
	default:
		return order, nil
	}

	if _, err := f.startProcessing(ctx, order.ID); err != nil && !acknowledgedClaimError(err) {
		return nil, err
	}
	return f.orders.Get(ctx, order.ID)
}

func (f *GiftFacade) startProcessing(ctx context.Context, orderID string) (*model.Order, error) {
	order, err := f.orders.Claim(ctx, orderID)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrOrderAlreadyProcessed):
			f.metrics.ClaimAttempt("conflict")
		case errors.Is(err, domainErrors.ErrNotFound):
			f.metrics.ClaimAttempt("not_found")
		case errors.Is(err, domainErrors.ErrInvalidInput):
			f.metrics.ClaimAttempt("invalid")
		default:
			f.metrics.ClaimAttempt("error")
		}
		return nil, err
	}
	f.metrics.ClaimAttempt("claimed")

	if !f.dispatcher.Submit(order) {
		f.logger.Error("generation queue is full", slog.String("order_id", order.ID))
		if _, err := f.orders.Fail(context.WithoutCancel(ctx), order.ID, queueFullMessage); err != nil {
			f.logger.Error("failed to record queue overflow", slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
		return nil, domainErrors.ErrQueueFull
	}

	f.logger.Info("order queued for generation", slog.String("order_id", order.ID))
	return order, nil
}

func (f *GiftFacade) CreatePartner(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	return f.affiliate.CreatePartner(ctx, partner)
}

func (f *GiftFacade) UpdatePartner(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	return f.affiliate.UpdatePartner(ctx, partner)
}

func (f *GiftFacade) SetPartnerStatus(ctx context.Context, id string, status model.PartnerStatus) (*model.Partner, error) {
	return f.affiliate.SetPartnerStatus(ctx, id, status)
}

func (f *GiftFacade) Partner(ctx context.Context, id string) (*model.Partner, error) {
	return f.affiliate.Partner(ctx, id)
}

func (f *GiftFacade) Partners(ctx context.Context) ([]model.Partner, error) {
	return f.affiliate.Partners(ctx)
}

func (f *GiftFacade) PartnerStats(ctx context.Context, id string) (*model.PartnerStats, error) {
	return f.affiliate.Stats(ctx, id)
}

func (f *GiftFacade) PartnerConversions(ctx context.Context, id string) ([]model.PartnerConversion, error) {
	return f.affiliate.Conversions(ctx, id)
}

func (f *GiftFacade) CreatePayout(ctx context.Context, req usecase.PayoutRequest) (*model.PartnerPayout, error) {
	return f.affiliate.CreatePayout(ctx, req)
}

func (f *GiftFacade) Payouts(ctx context.Context, partnerID string) ([]model.PartnerPayout, error) {
	return f.affiliate.Payouts(ctx, partnerID)
}

func (f *GiftFacade) Health(ctx context.Context) error {
	return f.health.HealthCheck(ctx)
}

// acknowledgedClaimError lists claim outcomes that still count as a
// successful payment confirmation.
func acknowledgedClaimError(err error) bool {
	return errors.Is(err, domainErrors.ErrOrderAlreadyProcessed) || errors.Is(err, domainErrors.ErrQueueFull)
}

func webhookRejection(err error) string {
	switch {
	case errors.Is(err, payment.ErrForbiddenSource):
		return "forbidden"
	case errors.Is(err, payment.ErrInvalidSignature), errors.Is(err, payment.ErrInvalidMerchant):
		return "invalid_signature"
	case errors.Is(err, payment.ErrMissingParams), errors.Is(err, payment.ErrInvalidWebhookType):
		return "malformed"
	default:
		return "error"
	}
}
