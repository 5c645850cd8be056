package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/onerilhan/thankatech-ledger/internal/catalog"
	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/repository/memory"
)

// fixedClock testlerde ilerletilebilen saat
type fixedClock struct {
	mu sync.Mutex
	t  time.Time
}

func newFixedClock() *fixedClock {
	return &fixedClock{t: time.Date(2026, 10, 17, 14, 30, 0, 0, time.UTC)}
}

func (c *fixedClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fixedClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

// recordingNotifier kuyruğa bırakılan bildirimleri saklar
type recordingNotifier struct {
	mu   sync.Mutex
	jobs []NotificationJob
}

func (n *recordingNotifier) Enqueue(job NotificationJob) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.jobs = append(n.jobs, job)
	return true
}

func (n *recordingNotifier) Jobs() []NotificationJob {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]NotificationJob(nil), n.jobs...)
}

type fixture struct {
	store        *memory.Store
	catalog      *catalog.Catalog
	clock        *fixedClock
	notifier     *recordingNotifier
	appreciation *AppreciationService
	purchases    *PurchaseService
	conversions  *ConversionService
	balances     *BalanceService
	reconcile    *ReconciliationService
}

// newFixture bir teknisyen (tech-1 / uid-tech-1), bir müşteri (cust-1 / uid-cust-1)
// ve ikinci bir teknisyen (tech-2) ile store kurar
func newFixture(t *testing.T) *fixture {
	t.Helper()

	clock := newFixedClock()
	store := memory.NewStore().WithClock(clock.Now)
	cat := catalog.Default()
	notifier := &recordingNotifier{}

	for _, p := range []*models.Profile{
		{ID: "tech-1", AuthUID: "uid-tech-1", Kind: models.KindTechnician, Name: "Mehmet", Email: "mehmet@example.com"},
		{ID: "tech-2", AuthUID: "uid-tech-2", Kind: models.KindTechnician, Name: "Zeynep", Email: "zeynep@example.com"},
		{ID: "cust-1", AuthUID: "uid-cust-1", Kind: models.KindCustomer, Name: "Ayşe", Email: "ayse@example.com"},
		{ID: "adm-1", Kind: models.KindAdmin, Name: "Ops"},
	} {
		p.TotalToaValue = decimal.Zero
		p.TotalEarnings = decimal.Zero
		store.PutProfile(p)
	}

	return &fixture{
		store:        store,
		catalog:      cat,
		clock:        clock,
		notifier:     notifier,
		appreciation: NewAppreciationService(store, cat, nil, notifier, clock.Now, time.UTC),
		purchases:    NewPurchaseService(store, clock.Now),
		conversions:  NewConversionService(store, cat, clock.Now),
		balances:     NewBalanceService(store),
		reconcile:    NewReconciliationService(store, cat, clock.Now),
	}
}

func (f *fixture) profile(t *testing.T, kind models.AccountKind, id string) *models.Profile {
	t.Helper()
	p, err := f.store.Repos().Profiles.FindByIdentity(context.Background(), kind, id)
	if err != nil {
		t.Fatalf("profil %s bulunamadı: %v", id, err)
	}
	return p
}

func (f *fixture) balance(t *testing.T, userID string) *models.Balance {
	t.Helper()
	b, err := f.store.Repos().Balances.GetByUserID(context.Background(), userID)
	if err != nil {
		t.Fatalf("bakiye okunamadı: %v", err)
	}
	return b
}

func (f *fixture) ledger(t *testing.T) []*models.Transaction {
	t.Helper()
	txs, err := f.store.Repos().Transactions.List(context.Background(), 1000, 0)
	if err != nil {
		t.Fatalf("ledger okunamadı: %v", err)
	}
	return txs
}

var (
	_ interfaces.AppreciationServiceInterface   = (*AppreciationService)(nil)
	_ interfaces.PurchaseServiceInterface       = (*PurchaseService)(nil)
	_ interfaces.ConversionServiceInterface     = (*ConversionService)(nil)
	_ interfaces.BalanceServiceInterface        = (*BalanceService)(nil)
	_ interfaces.ReconciliationServiceInterface = (*ReconciliationService)(nil)
)
