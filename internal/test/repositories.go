package test

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/youwow/internal/domain/errors"
	"github.com/polkiloo/youwow/internal/domain/model"
	"github.com/polkiloo/youwow/internal/domain/repository"
)

// UserRepositoryStub stores users in-memory for tests.
type UserRepositoryStub struct {
	Users map[string]*model.User
	ByID  map[int64]*model.User
	Next  int64
	Err   error
}

// NewUserRepositoryStub constructs stub repository with initialized maps.
func NewUserRepositoryStub() *UserRepositoryStub {
	return &UserRepositoryStub{
		Users: make(map[string]*model.User),
		ByID:  make(map[int64]*model.User),
		Next:  1,
	}
}

// Create registers user unless already exists or stub has explicit error.
func (s *UserRepositoryStub) Create(ctx context.Context, login, passwordHash string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Users == nil {
		s.Users = make(map[string]*model.User)
	}
	if s.ByID == nil {
		s.ByID = make(map[int64]*model.User)
	}
	if _, exists := s.Users[login]; exists {
		return nil, domainErrors.ErrAlreadyExists
	}
	if s.Next == 0 {
		s.Next = 1
	}
	user := &model.User{ID: s.Next, Login: login, PasswordHash: passwordHash, CreatedAt: time.Now()}
	s.Next++
	s.Users[login] = user
	s.ByID[user.ID] = user
	return user, nil
}

// GetByLogin fetches user by login or returns not found.
func (s *UserRepositoryStub) GetByLogin(ctx context.Context, login string) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.Users[login]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// GetByID fetches user by identifier or returns not found.
func (s *UserRepositoryStub) GetByID(ctx context.Context, id int64) (*model.User, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if user, ok := s.ByID[id]; ok {
		return user, nil
	}
	return nil, domainErrors.ErrNotFound
}

// OrderRepositoryStub is an in-memory order store honoring the status
// guards of the real repository. Safe for concurrent use.
type OrderRepositoryStub struct {
	mu     sync.Mutex
	orders map[string]*model.Order

	// Err, when set, is returned by every operation.
	Err         error
	CompleteErr error
	FailErr     error

	Checkpoints []json.RawMessage
	ClaimCalls  int
}

// NewOrderRepositoryStub seeds the store with copies of orders.
func NewOrderRepositoryStub(orders ...model.Order) *OrderRepositoryStub {
	s := &OrderRepositoryStub{orders: make(map[string]*model.Order)}
	for _, o := range orders {
		order := o
		if order.Status == "" {
			order.Status = model.OrderStatusPending
		}
		s.orders[order.ID] = &order
	}
	return s
}

// Snapshot returns a copy of the stored order.
func (s *OrderRepositoryStub) Snapshot(id string) (model.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return model.Order{}, false
	}
	return *o, true
}

func (s *OrderRepositoryStub) lookup(id string) (*model.Order, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	o, ok := s.orders[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return o, nil
}

func (s *OrderRepositoryStub) Create(ctx context.Context, in model.NewOrder) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	if s.orders == nil {
		s.orders = make(map[string]*model.Order)
	}
	now := time.Now()
	order := &model.Order{
		ID:            uuid.NewString(),
		ServiceType:   in.ServiceType,
		CustomerEmail: in.CustomerEmail,
		CustomerName:  in.CustomerName,
		InputData:     in.InputData,
		Amount:        in.Amount,
		Status:        model.OrderStatusPending,
		PartnerID:     in.PartnerID,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	s.orders[order.ID] = order
	copied := *order
	return &copied, nil
}

func (s *OrderRepositoryStub) Get(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	copied := *o
	return &copied, nil
}

func (s *OrderRepositoryStub) AttachPayment(ctx context.Context, id, paymentID, provider string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !o.Status.Claimable() {
		return nil, fmt.Errorf("%w: status %s", domainErrors.ErrOrderAlreadyProcessed, o.Status)
	}
	o.PaymentID, o.PaymentProvider = &paymentID, &provider
	copied := *o
	return &copied, nil
}

func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, id, paymentID, provider string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.lookup(id)
	if err != nil {
		return false, err
	}
	if o.Status != model.OrderStatusPending {
		return false, nil
	}
	o.Status = model.OrderStatusPaid
	if paymentID != "" {
		o.PaymentID = &paymentID
	}
	o.PaymentProvider = &provider
	return true, nil
}

func (s *OrderRepositoryStub) Claim(ctx context.Context, id string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ClaimCalls++
	o, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !o.Status.Claimable() {
		return nil, fmt.Errorf("%w: status %s", domainErrors.ErrOrderAlreadyProcessed, o.Status)
	}
	now := time.Now()
	o.Status = model.OrderStatusProcessing
	o.ProcessingStartedAt = &now
	copied := *o
	return &copied, nil
}

func (s *OrderRepositoryStub) Checkpoint(ctx context.Context, id string, metadata json.RawMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, err := s.lookup(id)
	if err != nil {
		return err
	}
	if o.Status != model.OrderStatusProcessing {
		return domainErrors.ErrInvalidTransition
	}
	merged, err := mergeJSON(o.ResultMetadata, metadata)
	if err != nil {
		return err
	}
	o.ResultMetadata = merged
	s.Checkpoints = append(s.Checkpoints, metadata)
	return nil
}

func (s *OrderRepositoryStub) Complete(ctx context.Context, id, resultURL string, metadata json.RawMessage) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.CompleteErr != nil {
		return nil, s.CompleteErr
	}
	o, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if o.Status != model.OrderStatusProcessing {
		return nil, domainErrors.ErrInvalidTransition
	}
	merged, err := mergeJSON(o.ResultMetadata, metadata)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	o.Status = model.OrderStatusCompleted
	o.ResultURL = &resultURL
	o.ResultMetadata = merged
	o.ErrorMessage = nil
	o.CompletedAt = &now
	copied := *o
	return &copied, nil
}

func (s *OrderRepositoryStub) Fail(ctx context.Context, id, message string) (*model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailErr != nil {
		return nil, s.FailErr
	}
	o, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	if !model.CanTransition(o.Status, model.OrderStatusFailed) {
		return nil, domainErrors.ErrInvalidTransition
	}
	o.Status = model.OrderStatusFailed
	o.ErrorMessage = &message
	o.ResultURL = nil
	copied := *o
	return &copied, nil
}

func (s *OrderRepositoryStub) FailStale(ctx context.Context, startedBefore time.Time, message string, limit int) ([]model.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var failed []model.Order
	for _, o := range s.orders {
		if len(failed) >= limit {
			break
		}
		if o.Status != model.OrderStatusProcessing || o.ProcessingStartedAt == nil || !o.ProcessingStartedAt.Before(startedBefore) {
			continue
		}
		msg := message
		o.Status = model.OrderStatusFailed
		o.ErrorMessage = &msg
		failed = append(failed, *o)
	}
	return failed, nil
}

func mergeJSON(base, patch json.RawMessage) (json.RawMessage, error) {
	out := map[string]json.RawMessage{}
	if len(base) > 0 {
		if err := json.Unmarshal(base, &out); err != nil {
			return nil, err
		}
	}
	var add map[string]json.RawMessage
	if err := json.Unmarshal(patch, &add); err != nil {
		return nil, err
	}
	for k, v := range add {
		out[k] = v
	}
	return json.Marshal(out)
}

// ServiceOptionRepositoryStub serves the default catalog.
type ServiceOptionRepositoryStub struct {
	Options map[model.ServiceType]model.ServiceOption
	Err     error
}

// NewServiceOptionRepositoryStub seeds the catalog used in production.
func NewServiceOptionRepositoryStub() *ServiceOptionRepositoryStub {
	return &ServiceOptionRepositoryStub{Options: map[model.ServiceType]model.ServiceOption{
		model.ServiceSong:  {ServiceType: model.ServiceSong, Title: "Personal song", Price: 590, IsActive: true},
		model.ServiceTarot: {ServiceType: model.ServiceTarot, Title: "Tarot reading", Price: 390, IsActive: true},
		model.ServiceSanta: {ServiceType: model.ServiceSanta, Title: "Video from Santa", Price: 490, IsActive: false},
	}}
}

func (s *ServiceOptionRepositoryStub) Get(ctx context.Context, serviceType model.ServiceType) (*model.ServiceOption, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	opt, ok := s.Options[serviceType]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &opt, nil
}

func (s *ServiceOptionRepositoryStub) List(ctx context.Context) ([]model.ServiceOption, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.ServiceOption, 0, len(s.Options))
	for _, opt := range s.Options {
		out = append(out, opt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ServiceType < out[j].ServiceType })
	return out, nil
}

func (s *ServiceOptionRepositoryStub) Upsert(ctx context.Context, option model.ServiceOption) error {
	if s.Err != nil {
		return s.Err
	}
	if s.Options == nil {
		s.Options = make(map[model.ServiceType]model.ServiceOption)
	}
	s.Options[option.ServiceType] = option
	return nil
}

// PartnerRepositoryStub keeps partners in memory.
type PartnerRepositoryStub struct {
	Partners map[string]model.Partner
	Err      error
}

func NewPartnerRepositoryStub(partners ...model.Partner) *PartnerRepositoryStub {
	s := &PartnerRepositoryStub{Partners: make(map[string]model.Partner)}
	for _, p := range partners {
		s.Partners[p.ID] = p
	}
	return s
}

func (s *PartnerRepositoryStub) Create(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if s.Partners == nil {
		s.Partners = make(map[string]model.Partner)
	}
	if _, ok := s.Partners[partner.ID]; ok {
		return nil, domainErrors.ErrAlreadyExists
	}
	partner.CreatedAt = time.Now()
	s.Partners[partner.ID] = partner
	return &partner, nil
}

func (s *PartnerRepositoryStub) Get(ctx context.Context, id string) (*model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	p, ok := s.Partners[id]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	return &p, nil
}

func (s *PartnerRepositoryStub) List(ctx context.Context) ([]model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]model.Partner, 0, len(s.Partners))
	for _, p := range s.Partners {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *PartnerRepositoryStub) Update(ctx context.Context, partner model.Partner) (*model.Partner, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	current, ok := s.Partners[partner.ID]
	if !ok {
		return nil, domainErrors.ErrNotFound
	}
	partner.CreatedAt = current.CreatedAt
	s.Partners[partner.ID] = partner
	return &partner, nil
}

// ConversionRepositoryStub records conversions keyed by order id.
type ConversionRepositoryStub struct {
	mu          sync.Mutex
	Conversions []model.PartnerConversion
	Err         error
}

func (s *ConversionRepositoryStub) Track(ctx context.Context, c model.PartnerConversion) (*model.PartnerConversion, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, false, s.Err
	}
	for _, existing := range s.Conversions {
		if existing.OrderID == c.OrderID {
			found := existing
			return &found, false, nil
		}
	}
	c.ID = int64(len(s.Conversions) + 1)
	if c.ConvertedAt.IsZero() {
		c.ConvertedAt = time.Now()
	}
	s.Conversions = append(s.Conversions, c)
	return &c, true, nil
}

func (s *ConversionRepositoryStub) ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerConversion, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.PartnerConversion
	for _, c := range s.Conversions {
		if c.PartnerID == partnerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *ConversionRepositoryStub) Stats(ctx context.Context, partnerID string) (*model.PartnerStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	stats := &model.PartnerStats{}
	for _, c := range s.Conversions {
		if c.PartnerID != partnerID {
			continue
		}
		stats.Conversions++
		stats.Revenue += c.Amount
		stats.TotalCommission += c.Commission
		if c.IsPaidOut {
			stats.PaidCommission += c.Commission
		} else {
			stats.PendingCommission += c.Commission
		}
	}
	return stats, nil
}

// PayoutRepositoryStub settles conversions of the linked conversion stub.
type PayoutRepositoryStub struct {
	Conversions *ConversionRepositoryStub
	Payouts     []model.PartnerPayout
	Err         error
}

func (s *PayoutRepositoryStub) Create(ctx context.Context, partnerID string, periodStart, periodEnd time.Time, paymentMethod, notes *string) (*model.PartnerPayout, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	payout := model.PartnerPayout{
		ID:            int64(len(s.Payouts) + 1),
		PartnerID:     partnerID,
		PeriodStart:   periodStart,
		PeriodEnd:     periodEnd,
		PaymentMethod: paymentMethod,
		Notes:         notes,
		CreatedAt:     time.Now(),
	}

	if s.Conversions != nil {
		s.Conversions.mu.Lock()
		for i := range s.Conversions.Conversions {
			c := &s.Conversions.Conversions[i]
			if c.PartnerID != partnerID || c.IsPaidOut || c.ConvertedAt.Before(periodStart) || c.ConvertedAt.After(periodEnd) {
				continue
			}
			c.IsPaidOut = true
			payout.Amount += c.Commission
			payout.ConversionIDs = append(payout.ConversionIDs, c.ID)
		}
		s.Conversions.mu.Unlock()
	}

	if len(payout.ConversionIDs) == 0 {
		return nil, domainErrors.ErrNoPendingConversions
	}
	payout.ConversionsCount = len(payout.ConversionIDs)
	s.Payouts = append(s.Payouts, payout)
	return &payout, nil
}

func (s *PayoutRepositoryStub) ListByPartner(ctx context.Context, partnerID string) ([]model.PartnerPayout, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	var out []model.PartnerPayout
	for _, p := range s.Payouts {
		if p.PartnerID == partnerID {
			out = append(out, p)
		}
	}
	return out, nil
}

var (
	_ repository.UserRepository          = (*UserRepositoryStub)(nil)
	_ repository.OrderRepository         = (*OrderRepositoryStub)(nil)
	_ repository.ServiceOptionRepository = (*ServiceOptionRepositoryStub)(nil)
	_ repository.PartnerRepository       = (*PartnerRepositoryStub)(nil)
	_ repository.ConversionRepository    = (*ConversionRepositoryStub)(nil)
	_ repository.PayoutRepository        = (*PayoutRepositoryStub)(nil)
)
