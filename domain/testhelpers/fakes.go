package testhelpers

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gambler/challenge-service/domain/entities"
	"gambler/challenge-service/domain/events"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// FakeAccountRepository is an in-memory AccountRepository with the same conditional
// debit semantics as the SQL store. Errors placed in FailCredit/FailDebit are returned
// for that account instead of writing.
type FakeAccountRepository struct {
	mu         sync.Mutex
	accounts   map[uuid.UUID]*entities.Account
	FailCredit map[uuid.UUID]error
	FailDebit  map[uuid.UUID]error
}

func NewFakeAccountRepository() *FakeAccountRepository {
	return &FakeAccountRepository{
		accounts:   make(map[uuid.UUID]*entities.Account),
		FailCredit: make(map[uuid.UUID]error),
		FailDebit:  make(map[uuid.UUID]error),
	}
}

// Seed adds an account with the given balance and returns its ID
func (r *FakeAccountRepository) Seed(username string, balance string) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.accounts[id] = &entities.Account{
		ID:               id,
		Username:         username,
		Balance:          entities.MustMoney(balance),
		LifetimeDeposits: decimal.Zero,
		LifetimeWinnings: decimal.Zero,
		CreatedAt:        time.Now(),
		UpdatedAt:        time.Now(),
	}
	return id
}

// Balance returns the current balance of an account
func (r *FakeAccountRepository) Balance(id uuid.UUID) decimal.Decimal {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.accounts[id].Balance
}

func (r *FakeAccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a, ok := r.accounts[id]; ok {
		copied := *a
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeAccountRepository) GetByUsername(ctx context.Context, username string) (*entities.Account, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.accounts {
		if a.Username == username {
			copied := *a
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *FakeAccountRepository) Create(ctx context.Context, username string, initialBalance decimal.Decimal) (*entities.Account, error) {
	id := r.Seed(username, initialBalance.StringFixed(entities.MoneyPlaces))
	return r.GetByID(ctx, id)
}

func (r *FakeAccountRepository) Debit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailDebit[id]; err != nil {
		return err
	}
	a, ok := r.accounts[id]
	if !ok {
		return entities.ErrNotFound
	}
	if a.Balance.LessThan(amount) {
		return entities.ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	return nil
}

func (r *FakeAccountRepository) Credit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailCredit[id]; err != nil {
		return err
	}
	a, ok := r.accounts[id]
	if !ok {
		return entities.ErrNotFound
	}
	a.Balance = a.Balance.Add(amount)
	return nil
}

func (r *FakeAccountRepository) CreditWinnings(ctx context.Context, id uuid.UUID, totalPayout, winnings decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailCredit[id]; err != nil {
		return err
	}
	a, ok := r.accounts[id]
	if !ok {
		return entities.ErrNotFound
	}
	a.Balance = a.Balance.Add(totalPayout)
	a.LifetimeWinnings = a.LifetimeWinnings.Add(winnings)
	return nil
}

func (r *FakeAccountRepository) ApplyDeposit(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entities.Account, error) {
	r.mu.Lock()
	a, ok := r.accounts[id]
	if !ok {
		r.mu.Unlock()
		return nil, entities.ErrNotFound
	}
	a.Balance = a.Balance.Add(amount)
	a.LifetimeDeposits = a.LifetimeDeposits.Add(amount)
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

func (r *FakeAccountRepository) ReserveWithdrawal(ctx context.Context, id uuid.UUID, amount decimal.Decimal) (*entities.Account, error) {
	r.mu.Lock()
	a, ok := r.accounts[id]
	if !ok {
		r.mu.Unlock()
		return nil, entities.ErrNotFound
	}
	if a.Balance.LessThan(amount) {
		r.mu.Unlock()
		return nil, entities.ErrInsufficientFunds
	}
	a.Balance = a.Balance.Sub(amount)
	a.PendingWithdrawal = a.PendingWithdrawal.Add(amount)
	r.mu.Unlock()
	return r.GetByID(ctx, id)
}

// FakeChallengeRepository is an in-memory ChallengeRepository enforcing the status and
// version guard on every update
type FakeChallengeRepository struct {
	mu         sync.Mutex
	challenges map[uuid.UUID]*entities.Challenge
	FailCreate error
	// BeforeUpdate runs inside UpdateIfStatus before the guard is checked, letting tests
	// interleave a competing write
	BeforeUpdate func(challenge *entities.Challenge)
}

func NewFakeChallengeRepository() *FakeChallengeRepository {
	return &FakeChallengeRepository{challenges: make(map[uuid.UUID]*entities.Challenge)}
}

func (r *FakeChallengeRepository) Create(ctx context.Context, challenge *entities.Challenge) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	if challenge.ID == uuid.Nil {
		challenge.ID = uuid.New()
	}
	challenge.Version = 1
	copied := *challenge
	r.challenges[challenge.ID] = &copied
	return nil
}

func (r *FakeChallengeRepository) GetByID(ctx context.Context, id uuid.UUID) (*entities.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.challenges[id]; ok {
		copied := *c
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeChallengeRepository) UpdateIfStatus(ctx context.Context, challenge *entities.Challenge, expected entities.ChallengeStatus) (bool, error) {
	if hook := r.BeforeUpdate; hook != nil {
		r.BeforeUpdate = nil
		hook(challenge)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.challenges[challenge.ID]
	if !ok || stored.Status != expected || stored.Version != challenge.Version {
		return false, nil
	}
	challenge.Version++
	copied := *challenge
	r.challenges[challenge.ID] = &copied
	return true, nil
}

// Mutate applies a change to the stored challenge directly, bumping its version
func (r *FakeChallengeRepository) Mutate(id uuid.UUID, change func(c *entities.Challenge)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	change(r.challenges[id])
	r.challenges[id].Version++
}

func (r *FakeChallengeRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Challenge
	for _, c := range r.challenges {
		if c.IsParticipant(userID) {
			copied := *c
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FakeChallengeRepository) ListStaleNegotiations(ctx context.Context, cutoff time.Time, limit int) ([]*entities.Challenge, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.Challenge
	for _, c := range r.challenges {
		if c.Status.IsNegotiating() && c.UpdatedAt.Before(cutoff) {
			copied := *c
			out = append(out, &copied)
		}
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// FakeRatingRepository is an in-memory RatingRepository keyed like the SQL store
type FakeRatingRepository struct {
	mu       sync.Mutex
	records  map[string]*entities.RatingRecord
	applied  map[uuid.UUID]bool
	History  []*entities.RatingChange
	FailNext error
	// BeforeApply runs once at the start of the next ApplyMatchUpdate, outside the lock,
	// so tests can land a competing write
	BeforeApply func()
}

func NewFakeRatingRepository() *FakeRatingRepository {
	return &FakeRatingRepository{
		records: make(map[string]*entities.RatingRecord),
		applied: make(map[uuid.UUID]bool),
	}
}

func ratingKey(userID uuid.UUID, gameType entities.GameType) string {
	return userID.String() + "/" + string(gameType)
}

// Seed stores a rating record
func (r *FakeRatingRepository) Seed(record *entities.RatingRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	copied := *record
	r.records[ratingKey(record.UserID, record.GameType)] = &copied
}

func (r *FakeRatingRepository) Get(ctx context.Context, userID uuid.UUID, gameType entities.GameType) (*entities.RatingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[ratingKey(userID, gameType)]; ok {
		copied := *rec
		return &copied, nil
	}
	return nil, nil
}

func (r *FakeRatingRepository) ApplyMatchUpdate(ctx context.Context, update *entities.MatchRatingUpdate) (bool, error) {
	if hook := r.BeforeApply; hook != nil {
		r.BeforeApply = nil
		hook()
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailNext; err != nil {
		r.FailNext = nil
		return false, err
	}
	if r.applied[update.ChallengeID] {
		return false, nil
	}
	for _, rec := range []*entities.RatingRecord{update.Winner, update.Loser} {
		stored := 0
		if current, ok := r.records[ratingKey(rec.UserID, rec.GameType)]; ok {
			stored = current.GamesPlayed
		}
		if stored != rec.PriorGamesPlayed() {
			return false, fmt.Errorf("%w: %s", entities.ErrStaleRating, rec.UserID)
		}
	}
	r.applied[update.ChallengeID] = true
	for _, rec := range []*entities.RatingRecord{update.Winner, update.Loser} {
		copied := *rec
		r.records[ratingKey(rec.UserID, rec.GameType)] = &copied
	}
	r.History = append(r.History, update.WinnerChange, update.LoserChange)
	return true, nil
}

func (r *FakeRatingRepository) GetLeaderboard(ctx context.Context, gameType entities.GameType, limit int) ([]*entities.RatingRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.RatingRecord
	for _, rec := range r.records {
		if rec.GameType == gameType {
			copied := *rec
			out = append(out, &copied)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EloRating > out[j].EloRating })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *FakeRatingRepository) GetHistory(ctx context.Context, userID uuid.UUID, gameType entities.GameType, limit int) ([]*entities.RatingChange, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.RatingChange
	for i := len(r.History) - 1; i >= 0 && len(out) < limit; i-- {
		if h := r.History[i]; h.UserID == userID && h.GameType == gameType {
			out = append(out, h)
		}
	}
	return out, nil
}

// FakeLedgerRepository collects ledger entries in memory. A non-nil FailRecord rejects every write.
type FakeLedgerRepository struct {
	mu         sync.Mutex
	Entries    []*entities.LedgerEntry
	FailRecord error
}

func (r *FakeLedgerRepository) Record(ctx context.Context, entry *entities.LedgerEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailRecord != nil {
		return r.FailRecord
	}
	entry.ID = int64(len(r.Entries) + 1)
	r.Entries = append(r.Entries, entry)
	return nil
}

func (r *FakeLedgerRepository) GetByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*entities.LedgerEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entities.LedgerEntry
	for i := len(r.Entries) - 1; i >= 0 && len(out) < limit; i-- {
		if r.Entries[i].UserID == userID {
			out = append(out, r.Entries[i])
		}
	}
	return out, nil
}

// RecordingEventPublisher keeps every published event
type RecordingEventPublisher struct {
	mu     sync.Mutex
	Events []events.Event
}

func (p *RecordingEventPublisher) Publish(event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Events = append(p.Events, event)
	return nil
}

// Types returns the types of the published events in order
func (p *RecordingEventPublisher) Types() []events.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]events.EventType, 0, len(p.Events))
	for _, e := range p.Events {
		types = append(types, e.Type())
	}
	return types
}
