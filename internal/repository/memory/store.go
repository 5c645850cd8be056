// Package memory repository arayüzlerinin bellek içi karşılığı.
// Her unit state'in kopyası üzerinde çalışır, hata yoksa kopya commit edilir.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

type state struct {
	balances     map[string]*models.Balance
	transactions []*models.Transaction
	dailyLimits  map[string]*models.DailyLimit
	profiles     map[models.AccountKind]map[string]*models.Profile
	conversions  []*models.ConversionRecord
	audit        []*models.AuditLog
	nextAuditID  int64
}

func newState() *state {
	st := &state{
		balances:    make(map[string]*models.Balance),
		dailyLimits: make(map[string]*models.DailyLimit),
		profiles:    make(map[models.AccountKind]map[string]*models.Profile),
	}
	for _, kind := range models.ResolutionOrder {
		st.profiles[kind] = make(map[string]*models.Profile)
	}
	return st
}

func (s *state) clone() *state {
	c := &state{
		balances:     make(map[string]*models.Balance, len(s.balances)),
		transactions: make([]*models.Transaction, len(s.transactions)),
		dailyLimits:  make(map[string]*models.DailyLimit, len(s.dailyLimits)),
		profiles:     make(map[models.AccountKind]map[string]*models.Profile, len(s.profiles)),
		conversions:  append([]*models.ConversionRecord(nil), s.conversions...),
		audit:        append([]*models.AuditLog(nil), s.audit...),
		nextAuditID:  s.nextAuditID,
	}
	for k, b := range s.balances {
		cp := *b
		c.balances[k] = &cp
	}
	for i, tx := range s.transactions {
		cp := *tx
		c.transactions[i] = &cp
	}
	for k, d := range s.dailyLimits {
		c.dailyLimits[k] = copyLimit(d)
	}
	for kind, m := range s.profiles {
		cm := make(map[string]*models.Profile, len(m))
		for id, p := range m {
			cp := *p
			cm[id] = &cp
		}
		c.profiles[kind] = cm
	}
	return c
}

// Store bellek içi store; unit'ler tek bir mutex ile sıraya girer
type Store struct {
	mu  sync.Mutex
	st  *state
	now func() time.Time
}

// NewStore boş store oluşturur
func NewStore() *Store {
	return &Store{st: newState(), now: time.Now}
}

// WithClock zaman kaynağını değiştirir (testler için)
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// RunInTx fn'i state kopyası üzerinde çalıştırır; hata yoksa kopyayı commit eder.
// Hata durumunda hiçbir değişiklik görünmez.
// Kopya state boyutuyla orantılıdır ve unit'ler sıralı çalışır; production'da
// config.Validate memory driver'ı reddeder.
func (s *Store) RunInTx(ctx context.Context, fn func(repos *interfaces.Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.st.clone()
	u := &unit{state: func() *state { return work }, lock: noLock, now: s.now}
	if err := fn(u.repositories()); err != nil {
		return err
	}
	s.st = work
	return nil
}

// Repos transaction dışı okuma/yazma; her çağrı ayrı kilitlenir
func (s *Store) Repos() *interfaces.Repositories {
	u := &unit{
		state: func() *state { return s.st },
		lock: func() func() {
			s.mu.Lock()
			return s.mu.Unlock
		},
		now: s.now,
	}
	return u.repositories()
}

// PutProfile profil ekler veya değiştirir
func (s *Store) PutProfile(p *models.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	if cp.CreatedAt.IsZero() {
		cp.CreatedAt = s.now()
	}
	cp.UpdatedAt = cp.CreatedAt
	s.st.profiles[p.Kind][p.ID] = &cp
}

// PutBalance bakiyeyi doğrudan yazar
func (s *Store) PutBalance(b *models.Balance) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *b
	s.st.balances[b.UserID] = &cp
}

// PutTransaction ledger'a kaydı olduğu gibi ekler (drift senaryoları için)
func (s *Store) PutTransaction(tx *models.Transaction) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *tx
	s.st.transactions = append(s.st.transactions, &cp)
}

type unit struct {
	state func() *state
	lock  func() func()
	now   func() time.Time
}

func noLock() func() { return func() {} }

func (u *unit) repositories() *interfaces.Repositories {
	return &interfaces.Repositories{
		Balances:     &balanceRepo{u},
		Transactions: &transactionRepo{u},
		DailyLimits:  &dailyLimitRepo{u},
		Profiles:     &profileRepo{u},
		Conversions:  &conversionRepo{u},
		Audit:        &auditRepo{u},
	}
}

func copyLimit(d *models.DailyLimit) *models.DailyLimit {
	cp := *d
	cp.ThankedTechnicians = append([]string(nil), d.ThankedTechnicians...)
	return &cp
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func page[T any](items []T, limit, offset int) []T {
	if offset >= len(items) {
		return nil
	}
	end := len(items)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return items[offset:end]
}

// sortedTransactions zaman sırasına göre; eşitlikte ekleme sırası korunur
func sortedTransactions(txs []*models.Transaction) []*models.Transaction {
	out := append([]*models.Transaction(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.Before(out[j].Timestamp)
	})
	return out
}

func sortProfiles(profiles []*models.Profile) {
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].ID < profiles[j].ID })
}
