package dto

import "time"

// AuthRequest carries admin panel credentials.
type AuthRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// TokenResponse returns an issued admin token.
type TokenResponse struct {
	Token string `json:"token"`
}

// PartnerRequest creates or updates a partner.
type PartnerRequest struct {
	ID             string   `json:"id"`
	Name           string   `json:"name"`
	Website        string   `json:"website,omitempty"`
	PaymentInfo    string   `json:"payment_info,omitempty"`
	CommissionRate *float64 `json:"commission_rate,omitempty"`
	Notes          string   `json:"notes,omitempty"`
	Status         string   `json:"status,omitempty"`
}

// PartnerStatusRequest changes a partner status.
type PartnerStatusRequest struct {
	Status string `json:"status"`
}

// PartnerResponse describes an affiliate partner.
type PartnerResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Website        *string   `json:"website,omitempty"`
	PaymentInfo    *string   `json:"payment_info,omitempty"`
	CommissionRate float64   `json:"commission_rate"`
	Notes          *string   `json:"notes,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

// PartnerStatsResponse aggregates partner earnings.
type PartnerStatsResponse struct {
	Conversions       int     `json:"conversions"`
	TotalCommission   float64 `json:"total_commission"`
	PendingCommission float64 `json:"pending_commission"`
	PaidCommission    float64 `json:"paid_commission"`
	Revenue           float64 `json:"revenue"`
}

// ConversionResponse is a single credited order.
type ConversionResponse struct {
	ID          int64     `json:"id"`
	OrderID     string    `json:"order_id"`
	ServiceType string    `json:"service_type"`
	Amount      float64   `json:"amount"`
	Commission  float64   `json:"commission"`
	ConvertedAt time.Time `json:"converted_at"`
	IsPaidOut   bool      `json:"is_paid_out"`
}

// PayoutRequest settles conversions of a period. Dates are YYYY-MM-DD.
type PayoutRequest struct {
	PeriodStart   string `json:"period_start"`
	PeriodEnd     string `json:"period_end"`
	PaymentMethod string `json:"payment_method,omitempty"`
	Notes         string `json:"notes,omitempty"`
}

// PayoutResponse describes a settled payout.
type PayoutResponse struct {
	ID               int64     `json:"id"`
	PartnerID        string    `json:"partner_id"`
	Amount           float64   `json:"amount"`
	ConversionsCount int       `json:"conversions_count"`
	PeriodStart      time.Time `json:"period_start"`
	PeriodEnd        time.Time `json:"period_end"`
	PaymentMethod    *string   `json:"payment_method,omitempty"`
	Notes            *string   `json:"notes,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// ServiceOptionRequest upserts a catalog entry.
type ServiceOptionRequest struct {
	Title    string  `json:"title"`
	Price    float64 `json:"price"`
	IsActive bool    `json:"is_active"`
}

// ServiceOptionResponse is a catalog entry.
type ServiceOptionResponse struct {
	ServiceType string  `json:"service_type"`
	Title       string  `json:"title"`
	Price       float64 `json:"price"`
	IsActive    bool    `json:"is_active"`
}
