package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmockv3 "github.com/pashagolub/pgxmock/v3"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
)

var orderCols = []string{
	"id", "service_type", "customer_email", "customer_name", "input_data", "amount", "status",
	"payment_id", "payment_provider", "partner_id", "result_url", "result_metadata", "error_message",
	"created_at", "updated_at", "processing_started_at", "completed_at",
}

const (
	colPaymentID    = 7
	colResultURL    = 10
	colErrorMessage = 12
)

func ptr[T any](v T) *T { return &v }

func orderRow(id string, status model.OrderStatus) []any {
	now := time.Now()
	return []any{
		id, model.ServiceSong, "u@example.com", nil, json.RawMessage(`{}`), 590.0, status,
		nil, nil, nil, nil, nil, nil,
		now, now, nil, nil,
	}
}

func orderRows(values ...[]any) *pgxmockv3.Rows {
	rows := pgxmockv3.NewRows(orderCols)
	for _, v := range values {
		rows.AddRow(v...)
	}
	return rows
}

const getOrderQuery = "FROM orders WHERE id="

func TestOrderRepositoryCreate(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	t.Cleanup(func() { newOrderID = uuid.NewString })
	newOrderID = func() string { return "o-1" }

	partner := ptr("blogger")
	input := json.RawMessage(`{"recipient":"mom"}`)
	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("o-1", model.ServiceSong, "u@example.com", (*string)(nil), input, 590.0, model.OrderStatusPending, partner).
		WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusPending)))
	order, err := repo.Create(context.Background(), model.NewOrder{
		ServiceType: model.ServiceSong, CustomerEmail: "u@example.com", InputData: input, Amount: 590, PartnerID: partner,
	})
	if err != nil || order.ID != "o-1" || order.Status != model.OrderStatusPending {
		t.Fatalf("unexpected result: order=%+v err=%v", order, err)
	}

	mock.ExpectQuery("INSERT INTO orders").
		WithArgs("o-1", model.ServiceTarot, "u@example.com", (*string)(nil), json.RawMessage(`{}`), 390.0, model.OrderStatusPending, (*string)(nil)).
		WillReturnError(&pgconn.PgError{Code: "23505"})
	if _, err := repo.Create(context.Background(), model.NewOrder{ServiceType: model.ServiceTarot, CustomerEmail: "u@example.com", Amount: 390}); !errors.Is(err, domainErrors.ErrAlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(anyArgs(8)...).WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusPaid)))
	if _, err := repo.Create(context.Background(), model.NewOrder{ServiceType: model.ServiceSong, Amount: 590}); !errors.Is(err, domainErrors.ErrWriteNotVerified) {
		t.Fatalf("expected verification error, got %v", err)
	}

	mock.ExpectQuery("INSERT INTO orders").WithArgs(anyArgs(8)...).WillReturnError(errors.New("insert"))
	if _, err := repo.Create(context.Background(), model.NewOrder{ServiceType: model.ServiceSong, Amount: 590}); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryGet(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}

	row := orderRow("o-1", model.OrderStatusCompleted)
	row[colResultURL] = ptr("https://example/a.mp3")
	mock.ExpectQuery(getOrderQuery).WithArgs("o-1").WillReturnRows(orderRows(row))
	order, err := repo.Get(context.Background(), "o-1")
	if err != nil || order.ResultURL == nil || *order.ResultURL != "https://example/a.mp3" {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery(getOrderQuery).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery(getOrderQuery).WithArgs("err").WillReturnError(errors.New("fail"))
	if _, err := repo.Get(context.Background(), "err"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryClaim(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	const claimQuery = "SET status='processing'"

	mock.ExpectQuery(claimQuery).WithArgs("o-1").WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusProcessing)))
	order, err := repo.Claim(context.Background(), "o-1")
	if err != nil || order.Status != model.OrderStatusProcessing {
		t.Fatalf("unexpected claim: %+v err=%v", order, err)
	}

	mock.ExpectQuery(claimQuery).WithArgs("o-1").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("o-1").WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusProcessing)))
	if _, err := repo.Claim(context.Background(), "o-1"); !errors.Is(err, domainErrors.ErrOrderAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}

	mock.ExpectQuery(claimQuery).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Claim(context.Background(), "missing"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery(claimQuery).WithArgs("o-2").WillReturnRows(orderRows(orderRow("o-2", model.OrderStatusPaid)))
	if _, err := repo.Claim(context.Background(), "o-2"); !errors.Is(err, domainErrors.ErrWriteNotVerified) {
		t.Fatalf("expected verification error, got %v", err)
	}

	mock.ExpectQuery(claimQuery).WithArgs("o-3").WillReturnError(errors.New("db"))
	if _, err := repo.Claim(context.Background(), "o-3"); err == nil {
		t.Fatal("expected error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryMarkPaidAndAttachPayment(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	const markPaidQuery = "SET status='paid'"
	const attachQuery = "SET payment_id="

	mock.ExpectQuery(markPaidQuery).WithArgs("o-1", "pay-1", "oneplat").WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusPaid))
	if ok, err := repo.MarkPaid(context.Background(), "o-1", "pay-1", "oneplat"); err != nil || !ok {
		t.Fatalf("expected paid transition, got ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery(markPaidQuery).WithArgs("o-1", "pay-1", "oneplat").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("o-1").WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusProcessing)))
	if ok, err := repo.MarkPaid(context.Background(), "o-1", "pay-1", "oneplat"); err != nil || ok {
		t.Fatalf("expected no-op, got ok=%v err=%v", ok, err)
	}

	mock.ExpectQuery(markPaidQuery).WithArgs("missing", "", "").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("missing").WillReturnError(pgx.ErrNoRows)
	if _, err := repo.MarkPaid(context.Background(), "missing", "", ""); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	row := orderRow("o-1", model.OrderStatusPending)
	row[colPaymentID] = ptr("pay-1")
	mock.ExpectQuery(attachQuery).WithArgs("o-1", "pay-1", "oneplat").WillReturnRows(orderRows(row))
	order, err := repo.AttachPayment(context.Background(), "o-1", "pay-1", "oneplat")
	if err != nil || *order.PaymentID != "pay-1" {
		t.Fatalf("unexpected order: %+v err=%v", order, err)
	}

	mock.ExpectQuery(attachQuery).WithArgs("o-1", "pay-2", "oneplat").WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusPending)))
	if _, err := repo.AttachPayment(context.Background(), "o-1", "pay-2", "oneplat"); !errors.Is(err, domainErrors.ErrWriteNotVerified) {
		t.Fatalf("expected verification error, got %v", err)
	}

	mock.ExpectQuery(attachQuery).WithArgs("o-1", "pay-3", "oneplat").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("o-1").WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusCompleted)))
	if _, err := repo.AttachPayment(context.Background(), "o-1", "pay-3", "oneplat"); !errors.Is(err, domainErrors.ErrOrderAlreadyProcessed) {
		t.Fatalf("expected already processed, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCheckpoint(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	const checkpointQuery = "SET result_metadata=COALESCE"

	meta := json.RawMessage(`{"step":"text_generated"}`)
	mock.ExpectQuery(checkpointQuery).WithArgs("o-1", meta).WillReturnRows(pgxmockv3.NewRows([]string{"status"}).AddRow(model.OrderStatusProcessing))
	if err := repo.Checkpoint(context.Background(), "o-1", meta); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	mock.ExpectQuery(checkpointQuery).WithArgs("o-1", json.RawMessage(`{}`)).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("o-1").WillReturnRows(orderRows(orderRow("o-1", model.OrderStatusFailed)))
	if err := repo.Checkpoint(context.Background(), "o-1", nil); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryCompleteAndFail(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	const completeQuery = "SET status='completed'"
	failQuery := regexp.QuoteMeta("SET status='failed', error_message=$2, result_url=NULL, updated_at=NOW() WHERE id=$1")

	meta := json.RawMessage(`{"step":"completed"}`)
	row := orderRow("o-1", model.OrderStatusCompleted)
	row[colResultURL] = ptr("https://example/a.mp3")
	mock.ExpectQuery(completeQuery).WithArgs("o-1", "https://example/a.mp3", meta).WillReturnRows(orderRows(row))
	order, err := repo.Complete(context.Background(), "o-1", "https://example/a.mp3", meta)
	if err != nil || order.Status != model.OrderStatusCompleted {
		t.Fatalf("unexpected completion: %+v err=%v", order, err)
	}

	mock.ExpectQuery(completeQuery).WithArgs("o-2", "https://example/b.mp3", meta).WillReturnRows(orderRows(orderRow("o-2", model.OrderStatusCompleted)))
	if _, err := repo.Complete(context.Background(), "o-2", "https://example/b.mp3", meta); !errors.Is(err, domainErrors.ErrWriteNotVerified) {
		t.Fatalf("expected verification error, got %v", err)
	}

	mock.ExpectQuery(completeQuery).WithArgs("o-3", "u", meta).WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("o-3").WillReturnRows(orderRows(orderRow("o-3", model.OrderStatusFailed)))
	if _, err := repo.Complete(context.Background(), "o-3", "u", meta); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	failed := orderRow("o-4", model.OrderStatusFailed)
	failed[colErrorMessage] = ptr("boom")
	mock.ExpectQuery(failQuery).WithArgs("o-4", "boom").WillReturnRows(orderRows(failed))
	order, err = repo.Fail(context.Background(), "o-4", "boom")
	if err != nil || order.ErrorMessage == nil || order.ResultURL != nil {
		t.Fatalf("unexpected failure write: %+v err=%v", order, err)
	}

	mock.ExpectQuery(failQuery).WithArgs("o-5", "boom").WillReturnError(pgx.ErrNoRows)
	mock.ExpectQuery(getOrderQuery).WithArgs("o-5").WillReturnRows(orderRows(orderRow("o-5", model.OrderStatusCompleted)))
	if _, err := repo.Fail(context.Background(), "o-5", "boom"); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryFailStale(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &orderRepository{storage: storage}
	const staleQuery = "WHERE id IN"

	before := time.Now().Add(-time.Hour)
	mock.ExpectQuery(staleQuery).WithArgs(before, "timeout", 10).WillReturnRows(orderRows(
		orderRow("o-1", model.OrderStatusFailed),
		orderRow("o-2", model.OrderStatusFailed),
	))
	orders, err := repo.FailStale(context.Background(), before, "timeout", 10)
	if err != nil || len(orders) != 2 {
		t.Fatalf("unexpected result: %v err=%v", orders, err)
	}

	mock.ExpectQuery(staleQuery).WithArgs(before, "timeout", 10).WillReturnError(errors.New("query"))
	if _, err := repo.FailStale(context.Background(), before, "timeout", 10); err == nil {
		t.Fatal("expected error")
	}

	bad := orderRow("o-3", model.OrderStatusFailed)
	bad[0] = true
	mock.ExpectQuery(staleQuery).WithArgs(before, "timeout", 10).WillReturnRows(orderRows(bad))
	if _, err := repo.FailStale(context.Background(), before, "timeout", 10); err == nil {
		t.Fatal("expected scan error")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

func TestOrderRepositoryFailStaleRowsError(t *testing.T) {
	storage := &Storage{pool: &rowsErrorPool{rows: &errorRows{err: errors.New("rows err")}}}
	repo := &orderRepository{storage: storage}

	if _, err := repo.FailStale(context.Background(), time.Now(), "timeout", 1); err == nil || err.Error() != "rows err" {
		t.Fatalf("expected rows err, got %v", err)
	}
}

func TestServiceOptionRepository(t *testing.T) {
	storage, mock := newMockStorage(t)
	defer mock.Close()
	repo := &serviceOptionRepository{storage: storage}
	cols := []string{"service_type", "title", "price", "is_active"}

	mock.ExpectQuery("FROM service_options WHERE service_type=").WithArgs(model.ServiceSong).WillReturnRows(
		pgxmockv3.NewRows(cols).AddRow(model.ServiceSong, "Personal song", 590.0, true))
	option, err := repo.Get(context.Background(), model.ServiceSong)
	if err != nil || option.Price != 590 || !option.IsActive {
		t.Fatalf("unexpected option: %+v err=%v", option, err)
	}

	mock.ExpectQuery("FROM service_options WHERE service_type=").WithArgs(model.ServiceType("video")).WillReturnError(pgx.ErrNoRows)
	if _, err := repo.Get(context.Background(), "video"); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}

	mock.ExpectQuery("FROM service_options ORDER BY service_type").WillReturnRows(
		pgxmockv3.NewRows(cols).
			AddRow(model.ServiceSanta, "Santa", 490.0, false).
			AddRow(model.ServiceSong, "Song", 590.0, true))
	list, err := repo.List(context.Background())
	if err != nil || len(list) != 2 {
		t.Fatalf("unexpected list: %v err=%v", list, err)
	}

	mock.ExpectExec("INSERT INTO service_options").WithArgs(model.ServiceTarot, "Tarot", 450.0, true).WillReturnResult(pgxmockv3.NewResult("INSERT", 1))
	if err := repo.Upsert(context.Background(), model.ServiceOption{ServiceType: model.ServiceTarot, Title: "Tarot", Price: 450, IsActive: true}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations not met: %v", err)
	}
}

// anyArgs matches n query arguments regardless of their values.
func anyArgs(n int) []any {
	args := make([]any, n)
	for i := range args {
		args[i] = pgxmockv3.AnyArg()
	}
	return args
}
