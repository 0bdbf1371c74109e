package repository

import (
	"context"
	"time"

	"github.com/polkiloo/youwow/internal/domain/model"
)

// PartnerRepository manages affiliate partners.
type PartnerRepository interface {
	Create(ctx context.Context, partner model.Partner) (*model.Partner, error)
	Get(ctx context.Context, id string) (*model.Partner, error)
	List(ctx context.Context) ([]model.Partner, error)
	Update(ctx context.Context, partner model.Partner) (*model.Partner, error)
}

// ConversionRepository records affiliate conversions.
type ConversionRepository interface {
	// Track inserts a conversion unless one already exists for the order.
	Track(ctx context.Context, conversion model.PartnerConversion) (*model.PartnerConversion, bool, error)
	ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerConversion, error)
	Stats(ctx context.Context, partnerID string) (*model.PartnerStats, error)
}

// PayoutRepository settles conversions into payouts.
type PayoutRepository interface {
	Create(ctx context.Context, partnerID string, periodStart, periodEnd time.Time, paymentMethod, notes *string) (*model.PartnerPayout, error)
	ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerPayout, error)
}
