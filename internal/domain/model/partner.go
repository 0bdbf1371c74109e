package model

import "time"

// PartnerStatus controls whether an affiliate earns commission.
type PartnerStatus string

const (
	PartnerStatusActive   PartnerStatus = "active"
	PartnerStatusInactive PartnerStatus = "inactive"
	PartnerStatusArchived PartnerStatus = "archived"
)

// Valid reports whether the status is known.
func (s PartnerStatus) Valid() bool {
	switch s {
	case PartnerStatusActive, PartnerStatusInactive, PartnerStatusArchived:
		return true
	}
	return false
}

// Partner is an affiliate receiving a flat commission per conversion.
type Partner struct {
	ID             string
	Name           string
	Website        *string
	PaymentInfo    *string
	CommissionRate float64
	Notes          *string
	Status         PartnerStatus
	CreatedAt      time.Time
}

// PartnerConversion is a commission-bearing completed order.
type PartnerConversion struct {
	ID          int64
	PartnerID   string
	OrderID     string
	ServiceType ServiceType
	Amount      float64
	Commission  float64
	ConvertedAt time.Time
	IsPaidOut   bool
}

// PartnerPayout settles a batch of conversions.
type PartnerPayout struct {
	ID               int64
	PartnerID        string
	Amount           float64
	ConversionsCount int
	PeriodStart      time.Time
	PeriodEnd        time.Time
	PaymentMethod    *string
	Notes            *string
	ConversionIDs    []int64
	CreatedAt        time.Time
}

// PartnerStats aggregates conversions of a partner.
type PartnerStats struct {
	Conversions       int
	TotalCommission   float64
	PendingCommission float64
	PaidCommission    float64
	Revenue           float64
}
