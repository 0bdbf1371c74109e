package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/domain/repository"
	"github.com/polkiloo/youwow/internal/metrics"
)

// PayoutRequest settles a partner's unpaid conversions of a period.
type PayoutRequest struct {
	PartnerID     string
	PeriodStart   time.Time
	PeriodEnd     time.Time
	PaymentMethod string
	Notes         string
}

// AffiliateUseCase tracks partner conversions and settles payouts.
type AffiliateUseCase struct {
	orders      repository.OrderRepository
	partners    repository.PartnerRepository
	conversions repository.ConversionRepository
	payouts     repository.PayoutRepository
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// NewAffiliateUseCase constructs AffiliateUseCase.
func NewAffiliateUseCase(
	orders repository.OrderRepository,
	partners repository.PartnerRepository,
	conversions repository.ConversionRepository,
	payouts repository.PayoutRepository,
	m *metrics.Metrics,
	logger *slog.Logger,
) *AffiliateUseCase {
	return &AffiliateUseCase{
		orders:      orders,
		partners:    partners,
		conversions: conversions,
		payouts:     payouts,
		metrics:     m,
		logger:      logger,
	}
}

// TrackConversion credits the partner attributed to a completed order with
// its flat commission. Repeated calls for one order record nothing new.
func (u *AffiliateUseCase) TrackConversion(ctx context.Context, orderID string, serviceType model.ServiceType, amount float64) error {
	order, err := u.orders.Get(ctx, orderID)
	if err != nil {
		return fmt.Errorf("load order: %w", err)
	}
	if order.PartnerID == nil || *order.PartnerID == "" {
		u.metrics.ConversionTracked("unattributed")
		return nil
	}

	partner, err := u.partners.Get(ctx, *order.PartnerID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			u.logger.Warn("attributed partner not found", slog.String("order_id", orderID), slog.String("partner_id", *order.PartnerID))
			u.metrics.ConversionTracked("unknown_partner")
			return nil
		}
		return fmt.Errorf("load partner: %w", err)
	}
	if partner.Status != model.PartnerStatusActive {
		u.metrics.ConversionTracked("inactive_partner")
		return nil
	}

	conversion, created, err := u.conversions.Track(ctx, model.PartnerConversion{
		PartnerID:   partner.ID,
		OrderID:     orderID,
		ServiceType: serviceType,
		Amount:      amount,
		Commission:  partner.CommissionRate,
	})
	if err != nil {
		return fmt.Errorf("track conversion: %w", err)
	}
	if !created {
		u.metrics.ConversionTracked("duplicate")
		return nil
	}

	u.metrics.ConversionTracked("created")
	u.logger.Info("conversion tracked",
		slog.String("order_id", orderID),
		slog.String("partner_id", partner.ID),
		slog.Float64("commission", conversion.Commission),
	)
	return nil
}

// CreatePartner registers an affiliate. Status defaults to active.
func (u *AffiliateUseCase) CreatePartner(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	partner.ID = strings.ToLower(strings.TrimSpace(partner.ID))
	if partner.Status == "" {
		partner.Status = model.PartnerStatusActive
	}
	if err := validatePartner(partner); err != nil {
		return nil, err
	}
	return u.partners.Create(ctx, partner)
}

// UpdatePartner replaces the mutable fields of a partner. The id is immutable.
func (u *AffiliateUseCase) UpdatePartner(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	if err := validatePartner(partner); err != nil {
		return nil, err
	}
	return u.partners.Update(ctx, partner)
}

// SetPartnerStatus activates, deactivates or archives a partner.
func (u *AffiliateUseCase) SetPartnerStatus(ctx context.Context, id string, status model.PartnerStatus) (*model.Partner, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: status %q", domainErrors.ErrInvalidInput, status)
	}
	partner, err := u.partners.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	partner.Status = status
	return u.partners.Update(ctx, *partner)
}

func (u *AffiliateUseCase) Partner(ctx context.Context, id string) (*model.Partner, error) {
	return u.partners.Get(ctx, id)
}

func (u *AffiliateUseCase) Partners(ctx context.Context) ([]model.Partner, error) {
	return u.partners.List(ctx)
}

// Stats aggregates conversions of an existing partner.
func (u *AffiliateUseCase) Stats(ctx context.Context, partnerID string) (*model.PartnerStats, error) {
	if _, err := u.partners.Get(ctx, partnerID); err != nil {
		return nil, err
	}
	return u.conversions.Stats(ctx, partnerID)
}

func (u *AffiliateUseCase) Conversions(ctx context.Context, partnerID string) ([]model.PartnerConversion, error) {
	return u.conversions.ListByPartner(ctx, partnerID)
}

func (u *AffiliateUseCase) Payouts(ctx context.Context, partnerID string) ([]model.PartnerPayout, error) {
	return u.payouts.ListByPartner(ctx, partnerID)
}

// CreatePayout settles exactly the unpaid conversions of the period.
// Returns ErrNoPendingConversions instead of an empty payout.
func (u *AffiliateUseCase) CreatePayout(ctx context.Context, req PayoutRequest) (*model.PartnerPayout, error) {
	if req.PartnerID == "" || req.PeriodStart.IsZero() || req.PeriodEnd.IsZero() {
		return nil, fmt.Errorf("%w: partner and period are required", domainErrors.ErrInvalidInput)
	}
	if req.PeriodEnd.Before(req.PeriodStart) {
		return nil, fmt.Errorf("%w: period ends before it starts", domainErrors.ErrInvalidInput)
	}
	if _, err := u.partners.Get(ctx, req.PartnerID); err != nil {
		return nil, err
	}

	payout, err := u.payouts.Create(ctx, req.PartnerID, req.PeriodStart, req.PeriodEnd, optional(req.PaymentMethod), optional(req.Notes))
	if err != nil {
		return nil, err
	}

	u.logger.Info("payout created",
		slog.String("partner_id", req.PartnerID),
		slog.Float64("amount", payout.Amount),
		slog.Int("conversions", payout.ConversionsCount),
	)
	return payout, nil
}

func validatePartner(p model.Partner) error {
	switch {
	case !ValidatePartnerID(p.ID):
		return fmt.Errorf("%w: partner id %q", domainErrors.ErrInvalidInput, p.ID)
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: partner name is empty", domainErrors.ErrInvalidInput)
	case p.CommissionRate < 0:
		return domainErrors.ErrInvalidAmount
	case !p.Status.Valid():
		return fmt.Errorf("%w: status %q", domainErrors.ErrInvalidInput, p.Status)
	}
	return nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}
