package model

import (
	"encoding/json"
	"time"
)

// OrderStatus describes the generation order lifecycle.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusPaid       OrderStatus = "paid"
	OrderStatusProcessing OrderStatus = "processing"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusFailed     OrderStatus = "failed"
)

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusPaid, OrderStatusProcessing},
	OrderStatusPaid:       {OrderStatusProcessing, OrderStatusFailed},
	OrderStatusProcessing: {OrderStatusCompleted, OrderStatusFailed},
}

// Claimable reports whether processing may be triggered from the status.
func (s OrderStatus) Claimable() bool {
	return s == OrderStatusPending || s == OrderStatusPaid
}

// IsTerminal reports whether no further status writes are permitted.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusFailed
}

// CanTransition reports whether the state machine allows from -> to.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ServiceType identifies the kind of generated gift.
type ServiceType string

const (
	ServiceSong  ServiceType = "song"
	ServiceTarot ServiceType = "tarot"
	ServiceSanta ServiceType = "santa"
)

// Order is a single purchase and generation request.
type Order struct {
	ID                  string
	ServiceType         ServiceType
	CustomerEmail       string
	CustomerName        *string
	InputData           json.RawMessage
	Amount              float64
	Status              OrderStatus
	PaymentID           *string
	PaymentProvider     *string
	PartnerID           *string
	ResultURL           *string
	ResultMetadata      json.RawMessage
	ErrorMessage        *string
	CreatedAt           time.Time
	UpdatedAt           time.Time
	ProcessingStartedAt *time.Time
	CompletedAt         *time.Time
}

// NewOrder describes the data required to register an order.
type NewOrder struct {
	ServiceType   ServiceType
	CustomerEmail string
	CustomerName  *string
	InputData     json.RawMessage
	Amount        float64
	PartnerID     *string
}

// ServiceOption is a sellable service with its authoritative price.
type ServiceOption struct {
	ServiceType ServiceType
	Title       string
	Price       float64
	IsActive    bool
}
