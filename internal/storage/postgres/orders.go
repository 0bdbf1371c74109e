package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
)

const orderColumns = `id, service_type, customer_email, customer_name, input_data, amount, status,
    payment_id, payment_provider, partner_id, result_url, result_metadata, error_message,
    created_at, updated_at, processing_started_at, completed_at`

var newOrderID = uuid.NewString

func scanOrder(row pgx.Row) (*model.Order, error) {
	var o model.Order
	err := row.Scan(
		&o.ID, &o.ServiceType, &o.CustomerEmail, &o.CustomerName, &o.InputData, &o.Amount, &o.Status,
		&o.PaymentID, &o.PaymentProvider, &o.PartnerID, &o.ResultURL, &o.ResultMetadata, &o.ErrorMessage,
		&o.CreatedAt, &o.UpdatedAt, &o.ProcessingStartedAt, &o.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

// --- OrderRepository implementation ---

func (r *orderRepository) Create(ctx context.Context, order model.NewOrder) (*model.Order, error) {
	query := `INSERT INTO orders (id, service_type, customer_email, customer_name, input_data, amount, status, partner_id)
              VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
              RETURNING ` + orderColumns

	input := order.InputData
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}

	created, err := scanOrder(r.storage.pool.QueryRow(ctx, query,
		newOrderID(), order.ServiceType, order.CustomerEmail, order.CustomerName, input,
		order.Amount, model.OrderStatusPending, order.PartnerID,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	if err := verifyStatus(created, model.OrderStatusPending); err != nil {
		return nil, err
	}
	return created, nil
}

func (r *orderRepository) Get(ctx context.Context, id string) (*model.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id=$1`
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) AttachPayment(ctx context.Context, id, paymentID, provider string) (*model.Order, error) {
	query := `UPDATE orders SET payment_id=$2, payment_provider=$3, updated_at=NOW()
              WHERE id=$1 AND status IN ('pending', 'paid')
              RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id, paymentID, provider))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missed(ctx, id, domainErrors.ErrOrderAlreadyProcessed)
		}
		return nil, err
	}
	if order.PaymentID == nil || *order.PaymentID != paymentID {
		return nil, fmt.Errorf("%w: payment id of order %s", domainErrors.ErrWriteNotVerified, id)
	}
	return order, nil
}

func (r *orderRepository) MarkPaid(ctx context.Context, id, paymentID, provider string) (bool, error) {
	const query = `UPDATE orders
                   SET status='paid',
                       payment_id=COALESCE(NULLIF($2, ''), payment_id),
                       payment_provider=COALESCE(NULLIF($3, ''), payment_provider),
                       updated_at=NOW()
                   WHERE id=$1 AND status='pending'
                   RETURNING status`
	var status model.OrderStatus
	err := r.storage.pool.QueryRow(ctx, query, id, paymentID, provider).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			if _, err := r.Get(ctx, id); err != nil {
				return false, err
			}
			return false, nil
		}
		return false, err
	}
	if status != model.OrderStatusPaid {
		return false, fmt.Errorf("%w: order %s is %s", domainErrors.ErrWriteNotVerified, id, status)
	}
	return true, nil
}

// Claim is a single-statement compare-and-swap on the order row, so at most
// one concurrent caller observes the transition.
func (r *orderRepository) Claim(ctx context.Context, id string) (*model.Order, error) {
	query := `UPDATE orders
              SET status='processing', processing_started_at=NOW(), updated_at=NOW()
              WHERE id=$1 AND status IN ('pending', 'paid')
              RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missed(ctx, id, domainErrors.ErrOrderAlreadyProcessed)
		}
		return nil, err
	}
	if err := verifyStatus(order, model.OrderStatusProcessing); err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepository) Checkpoint(ctx context.Context, id string, metadata json.RawMessage) error {
	const query = `UPDATE orders
                   SET result_metadata=COALESCE(result_metadata, '{}'::jsonb) || $2::jsonb, updated_at=NOW()
                   WHERE id=$1 AND status='processing'
                   RETURNING status`
	var status model.OrderStatus
	err := r.storage.pool.QueryRow(ctx, query, id, nonEmptyJSON(metadata)).Scan(&status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return r.missed(ctx, id, domainErrors.ErrInvalidTransition)
		}
		return err
	}
	if status != model.OrderStatusProcessing {
		return fmt.Errorf("%w: order %s is %s", domainErrors.ErrWriteNotVerified, id, status)
	}
	return nil
}

func (r *orderRepository) Complete(ctx context.Context, id, resultURL string, metadata json.RawMessage) (*model.Order, error) {
	query := `UPDATE orders
              SET status='completed', result_url=$2,
                  result_metadata=COALESCE(result_metadata, '{}'::jsonb) || $3::jsonb,
                  error_message=NULL, completed_at=NOW(), updated_at=NOW()
              WHERE id=$1 AND status='processing'
              RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id, resultURL, nonEmptyJSON(metadata)))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missed(ctx, id, domainErrors.ErrInvalidTransition)
		}
		return nil, err
	}
	if err := verifyStatus(order, model.OrderStatusCompleted); err != nil {
		return nil, err
	}
	if order.ResultURL == nil || *order.ResultURL != resultURL {
		return nil, fmt.Errorf("%w: result url of order %s", domainErrors.ErrWriteNotVerified, id)
	}
	return order, nil
}

func (r *orderRepository) Fail(ctx context.Context, id, message string) (*model.Order, error) {
	query := `UPDATE orders
              SET status='failed', error_message=$2, result_url=NULL, updated_at=NOW()
              WHERE id=$1 AND status IN ('paid', 'processing')
              RETURNING ` + orderColumns
	order, err := scanOrder(r.storage.pool.QueryRow(ctx, query, id, message))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.missed(ctx, id, domainErrors.ErrInvalidTransition)
		}
		return nil, err
	}
	if err := verifyStatus(order, model.OrderStatusFailed); err != nil {
		return nil, err
	}
	return order, nil
}

// FailStale fails orders stuck in processing since before the given moment.
func (r *orderRepository) FailStale(ctx context.Context, startedBefore time.Time, message string, limit int) ([]model.Order, error) {
	query := `UPDATE orders
              SET status='failed', error_message=$2, result_url=NULL, updated_at=NOW()
              WHERE id IN (
                  SELECT id FROM orders
                  WHERE status='processing' AND processing_started_at < $1
                  ORDER BY processing_started_at
                  LIMIT $3
                  FOR UPDATE SKIP LOCKED
              )
              RETURNING ` + orderColumns
	rows, err := r.storage.pool.Query(ctx, query, startedBefore, message, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// missed explains why a guarded update matched no row.
func (r *orderRepository) missed(ctx context.Context, id string, conflict error) error {
	current, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	return fmt.Errorf("%w: order %s is %s", conflict, id, current.Status)
}

func verifyStatus(order *model.Order, want model.OrderStatus) error {
	if order.Status != want {
		return fmt.Errorf("%w: order %s is %s, expected %s", domainErrors.ErrWriteNotVerified, order.ID, order.Status, want)
	}
	return nil
}

func nonEmptyJSON(v json.RawMessage) json.RawMessage {
	if len(v) == 0 {
		return json.RawMessage(`{}`)
	}
	return v
}

// --- ServiceOptionRepository implementation ---

func (r *serviceOptionRepository) Get(ctx context.Context, serviceType model.ServiceType) (*model.ServiceOption, error) {
	const query = `SELECT service_type, title, price, is_active FROM service_options WHERE service_type=$1`
	var o model.ServiceOption
	err := r.storage.pool.QueryRow(ctx, query, serviceType).Scan(&o.ServiceType, &o.Title, &o.Price, &o.IsActive)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

func (r *serviceOptionRepository) List(ctx context.Context) ([]model.ServiceOption, error) {
	const query = `SELECT service_type, title, price, is_active FROM service_options ORDER BY service_type`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.ServiceOption
	for rows.Next() {
		var o model.ServiceOption
		if err := rows.Scan(&o.ServiceType, &o.Title, &o.Price, &o.IsActive); err != nil {
			return nil, err
		}
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *serviceOptionRepository) Upsert(ctx context.Context, option model.ServiceOption) error {
	const query = `INSERT INTO service_options (service_type, title, price, is_active) VALUES ($1, $2, $3, $4)
                   ON CONFLICT (service_type) DO UPDATE
                   SET title=EXCLUDED.title, price=EXCLUDED.price, is_active=EXCLUDED.is_active`
	_, err := r.storage.pool.Exec(ctx, query, option.ServiceType, option.Title, option.Price, option.IsActive)
	return err
}
