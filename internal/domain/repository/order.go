package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/polkiloo/youwow/internal/domain/model"
)

// OrderRepository persists orders and guards their status transitions.
type OrderRepository interface {
	Create(ctx context.Context, order model.NewOrder) (*model.Order, error)
	Get(ctx context.Context, id string) (*model.Order, error)
	AttachPayment(ctx context.Context, id, paymentID, provider string) (*model.Order, error)
	// MarkPaid moves a pending order to paid. Returns false when the order
	// had already left pending.
	MarkPaid(ctx context.Context, id, paymentID, provider string) (bool, error)
	// Claim atomically moves a pending or paid order to processing.
	Claim(ctx context.Context, id string) (*model.Order, error)
	Checkpoint(ctx context.Context, id string, metadata json.RawMessage) error
	Complete(ctx context.Context, id, resultURL string, metadata json.RawMessage) (*model.Order, error)
	Fail(ctx context.Context, id, message string) (*model.Order, error)
	FailStale(ctx context.Context, startedBefore time.Time, message string, limit int) ([]model.Order, error)
}

// ServiceOptionRepository exposes the service catalog.
type ServiceOptionRepository interface {
	Get(ctx context.Context, serviceType model.ServiceType) (*model.ServiceOption, error)
	List(ctx context.Context) ([]model.ServiceOption, error)
	Upsert(ctx context.Context, option model.ServiceOption) error
}
