package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
)

// --- PartnerRepository implementation ---

const partnerColumns = `id, name, website, payment_info, commission_rate, notes, status, created_at`

func scanPartner(row pgx.Row) (*model.Partner, error) {
	var p model.Partner
	if err := row.Scan(&p.ID, &p.Name, &p.Website, &p.PaymentInfo, &p.CommissionRate, &p.Notes, &p.Status, &p.CreatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *partnerRepository) Create(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	query := `INSERT INTO partners (id, name, website, payment_info, commission_rate, notes, status)
              VALUES ($1, $2, $3, $4, $5, $6, $7)
              RETURNING ` + partnerColumns
	created, err := scanPartner(r.storage.pool.QueryRow(ctx, query,
		partner.ID, partner.Name, partner.Website, partner.PaymentInfo, partner.CommissionRate, partner.Notes, partner.Status,
	))
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domainErrors.ErrAlreadyExists
		}
		return nil, err
	}
	return created, nil
}

func (r *partnerRepository) Get(ctx context.Context, id string) (*model.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners WHERE id=$1`
	partner, err := scanPartner(r.storage.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return partner, nil
}

func (r *partnerRepository) List(ctx context.Context) ([]model.Partner, error) {
	query := `SELECT ` + partnerColumns + ` FROM partners ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.Partner
	for rows.Next() {
		p, err := scanPartner(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *partnerRepository) Update(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	query := `UPDATE partners
              SET name=$2, website=$3, payment_info=$4, commission_rate=$5, notes=$6, status=$7
              WHERE id=$1
              RETURNING ` + partnerColumns
	updated, err := scanPartner(r.storage.pool.QueryRow(ctx, query,
		partner.ID, partner.Name, partner.Website, partner.PaymentInfo, partner.CommissionRate, partner.Notes, partner.Status,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrNotFound
		}
		return nil, err
	}
	return updated, nil
}

// --- ConversionRepository implementation ---

const conversionColumns = `id, partner_id, order_id, service_type, amount, commission, converted_at, is_paid_out`

func scanConversion(row pgx.Row) (*model.PartnerConversion, error) {
	var c model.PartnerConversion
	if err := row.Scan(&c.ID, &c.PartnerID, &c.OrderID, &c.ServiceType, &c.Amount, &c.Commission, &c.ConvertedAt, &c.IsPaidOut); err != nil {
		return nil, err
	}
	return &c, nil
}

// Track relies on the unique order_id, so repeated calls record one conversion.
func (r *conversionRepository) Track(ctx context.Context, conversion model.PartnerConversion) (*model.PartnerConversion, bool, error) {
	query := `INSERT INTO partner_conversions (partner_id, order_id, service_type, amount, commission)
              VALUES ($1, $2, $3, $4, $5)
              ON CONFLICT (order_id) DO NOTHING
              RETURNING ` + conversionColumns
	created, err := scanConversion(r.storage.pool.QueryRow(ctx, query,
		conversion.PartnerID, conversion.OrderID, conversion.ServiceType, conversion.Amount, conversion.Commission,
	))
	if err == nil {
		return created, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, false, err
	}

	existing, err := scanConversion(r.storage.pool.QueryRow(ctx,
		`SELECT `+conversionColumns+` FROM partner_conversions WHERE order_id=$1`, conversion.OrderID))
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (r *conversionRepository) ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerConversion, error) {
	query := `SELECT ` + conversionColumns + ` FROM partner_conversions WHERE partner_id=$1 ORDER BY converted_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PartnerConversion
	for rows.Next() {
		c, err := scanConversion(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *conversionRepository) Stats(ctx context.Context, partnerID string) (*model.PartnerStats, error) {
	const query = `SELECT COUNT(*),
                          COALESCE(SUM(commission), 0),
                          COALESCE(SUM(commission) FILTER (WHERE NOT is_paid_out), 0),
                          COALESCE(SUM(commission) FILTER (WHERE is_paid_out), 0),
                          COALESCE(SUM(amount), 0)
                   FROM partner_conversions WHERE partner_id=$1`
	var s model.PartnerStats
	err := r.storage.pool.QueryRow(ctx, query, partnerID).Scan(
		&s.Conversions, &s.TotalCommission, &s.PendingCommission, &s.PaidCommission, &s.Revenue,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// --- PayoutRepository implementation ---

const payoutColumns = `id, partner_id, amount, conversions_count, period_start, period_end,
    payment_method, notes, conversion_ids, created_at`

func scanPayout(row pgx.Row) (*model.PartnerPayout, error) {
	var p model.PartnerPayout
	err := row.Scan(&p.ID, &p.PartnerID, &p.Amount, &p.ConversionsCount, &p.PeriodStart, &p.PeriodEnd,
		&p.PaymentMethod, &p.Notes, &p.ConversionIDs, &p.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Create settles every unpaid conversion of the partner converted within
// [periodStart, periodEnd] in a single transaction.
func (r *payoutRepository) Create(ctx context.Context, partnerID string, periodStart, periodEnd time.Time, paymentMethod, notes *string) (*model.PartnerPayout, error) {
	const selectPending = `SELECT id, commission FROM partner_conversions
                           WHERE partner_id=$1 AND is_paid_out=FALSE AND converted_at BETWEEN $2 AND $3
                           ORDER BY id
                           FOR UPDATE`
	const markPaid = `UPDATE partner_conversions SET is_paid_out=TRUE WHERE id = ANY($1) AND is_paid_out=FALSE`
	insertPayout := `INSERT INTO partner_payouts
                         (partner_id, amount, conversions_count, period_start, period_end, payment_method, notes, conversion_ids)
                     VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
                     RETURNING ` + payoutColumns

	var payout *model.PartnerPayout
	err := r.storage.WithinTransaction(ctx, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx, selectPending, partnerID, periodStart, periodEnd)
		if err != nil {
			return err
		}

		var (
			ids   []int64
			total float64
		)
		for rows.Next() {
			var (
				id         int64
				commission float64
			)
			if err := rows.Scan(&id, &commission); err != nil {
				rows.Close()
				return err
			}
			ids = append(ids, id)
			total += commission
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		if len(ids) == 0 {
			return domainErrors.ErrNoPendingConversions
		}

		payout, err = scanPayout(tx.QueryRow(ctx, insertPayout,
			partnerID, total, len(ids), periodStart, periodEnd, paymentMethod, notes, ids,
		))
		if err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, markPaid, ids)
		if err != nil {
			return err
		}
		if tag.RowsAffected() != int64(len(ids)) {
			return fmt.Errorf("%w: marked %d of %d conversions", domainErrors.ErrWriteNotVerified, tag.RowsAffected(), len(ids))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payout, nil
}

func (r *payoutRepository) ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerPayout, error) {
	query := `SELECT ` + payoutColumns + ` FROM partner_payouts WHERE partner_id=$1 ORDER BY created_at DESC`
	rows, err := r.storage.pool.Query(ctx, query, partnerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []model.PartnerPayout
	for rows.Next() {
		p, err := scanPayout(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
