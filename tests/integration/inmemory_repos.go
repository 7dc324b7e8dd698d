package integration

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"tokensale-platform/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

// --- In-Memory Account Repo ---

type inMemoryAccountRepo struct {
	mu       sync.RWMutex
	accounts map[string]*domain.Account
}

func newInMemoryAccountRepo() *inMemoryAccountRepo {
	return &inMemoryAccountRepo{accounts: make(map[string]*domain.Account)}
}

func (r *inMemoryAccountRepo) Create(ctx context.Context, a *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Conflict-free, mirroring the ON CONFLICT DO NOTHING insert.
	if _, ok := r.accounts[a.WalletAddress]; ok {
		return nil
	}
	clone := *a
	r.accounts[a.WalletAddress] = &clone
	return nil
}

func (r *inMemoryAccountRepo) GetByWallet(ctx context.Context, wallet string) (*domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.accounts[wallet]
	if !ok {
		return nil, nil
	}
	clone := *a
	return &clone, nil
}

func (r *inMemoryAccountRepo) UpdateLastLogin(ctx context.Context, wallet string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[wallet]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.LastLogin = &at
	return nil
}

func (r *inMemoryAccountRepo) UpdateProfile(ctx context.Context, upd *domain.Account) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[upd.WalletAddress]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.Username = upd.Username
	a.Email = upd.Email
	a.PreferredLanguage = upd.PreferredLanguage
	return nil
}

func (r *inMemoryAccountRepo) SetReferrer(ctx context.Context, tx pgx.Tx, wallet, referrer string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[wallet]
	if !ok {
		return fmt.Errorf("account not found")
	}
	if a.ReferredBy != nil {
		return nil
	}
	a.ReferredBy = &referrer
	return nil
}

func (r *inMemoryAccountRepo) AddAffiliateEarnings(ctx context.Context, tx pgx.Tx, wallet string, amount decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.accounts[wallet]
	if !ok {
		return fmt.Errorf("account not found")
	}
	a.AffiliateEarnings = a.AffiliateEarnings.Add(amount)
	return nil
}

func (r *inMemoryAccountRepo) List(ctx context.Context) ([]domain.Account, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.Account, 0, len(r.accounts))
	for _, a := range r.accounts {
		result = append(result, *a)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].RegistrationDate.After(result[j].RegistrationDate)
	})
	return result, nil
}

func (r *inMemoryAccountRepo) Count(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return int64(len(r.accounts)), nil
}

func (r *inMemoryAccountRepo) CountActiveSince(ctx context.Context, since time.Time) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, a := range r.accounts {
		if a.LastLogin != nil && a.LastLogin.After(since) {
			n++
		}
	}
	return n, nil
}

// --- In-Memory Token Repo ---

type inMemoryTokenRepo struct {
	mu       sync.RWMutex
	balances map[string]*domain.TokenBalance
}

func newInMemoryTokenRepo() *inMemoryTokenRepo {
	return &inMemoryTokenRepo{balances: make(map[string]*domain.TokenBalance)}
}

func (r *inMemoryTokenRepo) Create(ctx context.Context, b *domain.TokenBalance) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	// Conflict-free, mirroring the ON CONFLICT DO NOTHING insert.
	if _, ok := r.balances[b.WalletAddress]; ok {
		return nil
	}
	clone := *b
	r.balances[b.WalletAddress] = &clone
	return nil
}

func (r *inMemoryTokenRepo) GetByWallet(ctx context.Context, wallet string) (*domain.TokenBalance, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.balances[wallet]
	if !ok {
		return nil, nil
	}
	clone := *b
	return &clone, nil
}

func (r *inMemoryTokenRepo) GetByWalletForUpdate(ctx context.Context, tx pgx.Tx, wallet string) (*domain.TokenBalance, error) {
	// Row locking is simulated by the serializing transactor; the read
	// itself is plain.
	return r.GetByWallet(ctx, wallet)
}

func (r *inMemoryTokenRepo) UpdateBalances(ctx context.Context, tx pgx.Tx, wallet string, liquid, staked decimal.Decimal, stakeStart *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[wallet]
	if !ok {
		return fmt.Errorf("balance not found")
	}
	b.Liquid = liquid
	b.Staked = staked
	b.StakeStart = stakeStart
	return nil
}

func (r *inMemoryTokenRepo) SetLiquid(ctx context.Context, wallet string, liquid decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.balances[wallet]
	if !ok {
		return fmt.Errorf("balance not found")
	}
	b.Liquid = liquid
	return nil
}

func (r *inMemoryTokenRepo) SumStaked(ctx context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, b := range r.balances {
		sum = sum.Add(b.Staked)
	}
	return sum, nil
}

func (r *inMemoryTokenRepo) SumTotal(ctx context.Context) (decimal.Decimal, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sum := decimal.Zero
	for _, b := range r.balances {
		sum = sum.Add(b.Total())
	}
	return sum, nil
}

// --- In-Memory Transaction Repo ---

type inMemoryTransactionRepo struct {
	mu      sync.RWMutex
	entries []domain.Transaction
}

func newInMemoryTransactionRepo() *inMemoryTransactionRepo {
	return &inMemoryTransactionRepo{}
}

func (r *inMemoryTransactionRepo) Create(ctx context.Context, tx pgx.Tx, t *domain.Transaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, *t)
	return nil
}

func (r *inMemoryTransactionRepo) ListByWallet(ctx context.Context, wallet string, limit int) ([]domain.Transaction, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Transaction
	for _, t := range r.entries {
		if t.WalletAddress == wallet {
			result = append(result, t)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if len(result) > limit {
		result = result[:limit]
	}
	return result, nil
}

func (r *inMemoryTransactionRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status domain.TransactionStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.entries {
		if r.entries[i].ID == id && r.entries[i].Status == domain.TransactionStatusPending {
			r.entries[i].Status = status
			return nil
		}
	}
	return fmt.Errorf("pending transaction not found")
}

// --- In-Memory Content Repo ---

type inMemoryContentRepo struct {
	mu      sync.RWMutex
	nextID  int64
	entries []domain.ContentEntry
}

func newInMemoryContentRepo() *inMemoryContentRepo {
	return &inMemoryContentRepo{nextID: 1}
}

func (r *inMemoryContentRepo) GetPage(ctx context.Context, pageID, language string) ([]domain.ContentEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.ContentEntry
	for _, e := range r.entries {
		if e.PageID == pageID && e.LanguageCode == language {
			result = append(result, e)
		}
	}
	return result, nil
}

func (r *inMemoryContentRepo) Translations(ctx context.Context) (map[string][]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	seen := make(map[string]map[string]bool)
	for _, e := range r.entries {
		if seen[e.PageID] == nil {
			seen[e.PageID] = make(map[string]bool)
		}
		seen[e.PageID][e.LanguageCode] = true
	}
	result := make(map[string][]string, len(seen))
	for page, langs := range seen {
		for l := range langs {
			result[page] = append(result[page], l)
		}
		sort.Strings(result[page])
	}
	return result, nil
}

func (r *inMemoryContentRepo) Upsert(ctx context.Context, entry *domain.ContentEntry) (*domain.ContentEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *entry
	saved.LastUpdated = time.Now().UTC()
	for i, e := range r.entries {
		if e.PageID == entry.PageID && e.SectionID == entry.SectionID && e.LanguageCode == entry.LanguageCode {
			saved.ID = e.ID
			r.entries[i] = saved
			return &saved, nil
		}
	}
	saved.ID = r.nextID
	r.nextID++
	r.entries = append(r.entries, saved)
	return &saved, nil
}

func (r *inMemoryContentRepo) CountByLanguage(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]int64)
	for _, e := range r.entries {
		result[e.LanguageCode]++
	}
	return result, nil
}

// --- In-Memory Config Repo ---

type inMemoryConfigRepo struct {
	mu      sync.RWMutex
	nextID  int64
	configs map[string]*domain.ConfigEntry
}

func newInMemoryConfigRepo() *inMemoryConfigRepo {
	return &inMemoryConfigRepo{nextID: 1, configs: make(map[string]*domain.ConfigEntry)}
}

func (r *inMemoryConfigRepo) Get(ctx context.Context, key string) (*domain.ConfigEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.configs[key]
	if !ok {
		return nil, nil
	}
	clone := *e
	return &clone, nil
}

func (r *inMemoryConfigRepo) List(ctx context.Context) ([]domain.ConfigEntry, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]domain.ConfigEntry, 0, len(r.configs))
	for _, e := range r.configs {
		result = append(result, *e)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Key < result[j].Key })
	return result, nil
}

func (r *inMemoryConfigRepo) Upsert(ctx context.Context, entry *domain.ConfigEntry) (*domain.ConfigEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	saved := *entry
	saved.LastUpdated = time.Now().UTC()
	if existing, ok := r.configs[entry.Key]; ok {
		saved.ID = existing.ID
	} else {
		saved.ID = r.nextID
		r.nextID++
	}
	r.configs[entry.Key] = &saved
	clone := saved
	return &clone, nil
}

// --- In-Memory Newsletter Repo ---

type inMemoryNewsletterRepo struct {
	mu   sync.RWMutex
	subs map[string]*domain.Subscription
}

func newInMemoryNewsletterRepo() *inMemoryNewsletterRepo {
	return &inMemoryNewsletterRepo{subs: make(map[string]*domain.Subscription)}
}

func (r *inMemoryNewsletterRepo) Get(ctx context.Context, email string) (*domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.subs[email]
	if !ok {
		return nil, nil
	}
	clone := *s
	return &clone, nil
}

func (r *inMemoryNewsletterRepo) Save(ctx context.Context, sub *domain.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	clone := *sub
	r.subs[sub.Email] = &clone
	return nil
}

func (r *inMemoryNewsletterRepo) ListActive(ctx context.Context) ([]domain.Subscription, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var result []domain.Subscription
	for _, s := range r.subs {
		if s.IsActive {
			result = append(result, *s)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].SubscribedAt.After(result[j].SubscribedAt)
	})
	return result, nil
}

func (r *inMemoryNewsletterRepo) CountActive(ctx context.Context) (int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var n int64
	for _, s := range r.subs {
		if s.IsActive {
			n++
		}
	}
	return n, nil
}

func (r *inMemoryNewsletterRepo) CountActiveByLanguage(ctx context.Context) (map[string]int64, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make(map[string]int64)
	for _, s := range r.subs {
		if s.IsActive {
			result[s.LanguagePreference]++
		}
	}
	return result, nil
}

// --- Serializing Transactor ---

// serializingTransactor models the pessimistic row lock with a single
// mutex held from Begin until Commit or Rollback, so concurrent balance
// mutations run one at a time like they would against the real database.
type serializingTransactor struct {
	mu sync.Mutex
}

func newSerializingTransactor() *serializingTransactor {
	return &serializingTransactor{}
}

func (t *serializingTransactor) Begin(ctx context.Context) (pgx.Tx, error) {
	t.mu.Lock()
	return &memTx{release: &t.mu}, nil
}

// memTx is a no-op pgx.Tx that releases the transactor lock exactly once
// on Commit or Rollback.
type memTx struct {
	release *sync.Mutex
	once    sync.Once
}

func (t *memTx) done() {
	t.once.Do(func() { t.release.Unlock() })
}

func (t *memTx) Begin(ctx context.Context) (pgx.Tx, error) { return t, nil }
func (t *memTx) Commit(ctx context.Context) error          { t.done(); return nil }
func (t *memTx) Rollback(ctx context.Context) error        { t.done(); return nil }
func (t *memTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	return 0, nil
}
func (t *memTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults { return nil }
func (t *memTx) LargeObjects() pgx.LargeObjects                               { return pgx.LargeObjects{} }
func (t *memTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	return nil, nil
}
func (t *memTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (t *memTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}
func (t *memTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return nil
}
func (t *memTx) Conn() *pgx.Conn { return nil }
