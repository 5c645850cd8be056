package memory

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
)

type balanceRepo struct{ u *unit }

func (r *balanceRepo) get(userID string) *models.Balance {
	st := r.u.state()
	b, ok := st.balances[userID]
	if !ok {
		b = &models.Balance{UserID: userID, LastUpdated: r.u.now()}
		st.balances[userID] = b
	}
	return b
}

func (r *balanceRepo) GetByUserID(_ context.Context, userID string) (*models.Balance, error) {
	defer r.u.lock()()
	cp := *r.get(userID)
	return &cp, nil
}

func (r *balanceRepo) GetForUpdate(ctx context.Context, userID string) (*models.Balance, error) {
	return r.GetByUserID(ctx, userID)
}

func (r *balanceRepo) Credit(_ context.Context, userID string, tokens int64) (*models.Balance, error) {
	defer r.u.lock()()
	b := r.get(userID)
	b.Tokens += tokens
	b.TotalPurchased += tokens
	b.LastUpdated = r.u.now()
	cp := *b
	return &cp, nil
}

func (r *balanceRepo) Debit(_ context.Context, userID string, tokens int64) (*models.Balance, error) {
	defer r.u.lock()()
	b := r.get(userID)
	if b.Tokens < tokens {
		return nil, repository.ErrInsufficientTokens
	}
	b.Tokens -= tokens
	b.TotalSpent += tokens
	b.LastUpdated = r.u.now()
	cp := *b
	return &cp, nil
}

type transactionRepo struct{ u *unit }

func (r *transactionRepo) Create(_ context.Context, tx *models.Transaction) error {
	defer r.u.lock()()
	st := r.u.state()

	if tx.ExternalReference != nil {
		for _, existing := range st.transactions {
			if existing.ExternalReference != nil && *existing.ExternalReference == *tx.ExternalReference {
				return fmt.Errorf("external_reference %q: %w", *tx.ExternalReference, db.ErrConflict)
			}
		}
	}
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	if tx.Timestamp.IsZero() {
		tx.Timestamp = r.u.now()
	}
	cp := *tx
	st.transactions = append(st.transactions, &cp)
	return nil
}

func (r *transactionRepo) GetByID(_ context.Context, id string) (*models.Transaction, error) {
	defer r.u.lock()()
	for _, tx := range r.u.state().transactions {
		if tx.ID == id {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *transactionRepo) GetByExternalReference(_ context.Context, ref string) (*models.Transaction, error) {
	defer r.u.lock()()
	for _, tx := range r.u.state().transactions {
		if tx.ExternalReference != nil && *tx.ExternalReference == ref {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *transactionRepo) GetByUserID(_ context.Context, userIDs []string, limit, offset int) ([]*models.Transaction, error) {
	defer r.u.lock()()

	sorted := sortedTransactions(r.u.state().transactions)
	var matched []*models.Transaction
	for i := len(sorted) - 1; i >= 0; i-- {
		tx := sorted[i]
		if contains(userIDs, tx.FromUserID) || contains(userIDs, tx.ToTechnicianID) {
			cp := *tx
			matched = append(matched, &cp)
		}
	}
	return page(matched, limit, offset), nil
}

func (r *transactionRepo) List(_ context.Context, limit, offset int) ([]*models.Transaction, error) {
	defer r.u.lock()()

	var out []*models.Transaction
	for _, tx := range page(sortedTransactions(r.u.state().transactions), limit, offset) {
		cp := *tx
		out = append(out, &cp)
	}
	return out, nil
}

func (r *transactionRepo) ApplyPatch(_ context.Context, patch *models.TransactionPatch) (bool, error) {
	defer r.u.lock()()

	for _, tx := range r.u.state().transactions {
		if tx.ID != patch.TransactionID {
			continue
		}
		if !sameInt(tx.PointsAwarded, patch.ObservedPoints) ||
			!sameInt(tx.SenderPointsAwarded, patch.ObservedSenderPoints) ||
			!sameDecimal(tx.DollarValue, patch.ObservedDollarValue) ||
			!sameDecimal(tx.TechnicianPayout, patch.ObservedTechnicianPayout) ||
			!sameDecimal(tx.PlatformFee, patch.ObservedPlatformFee) {
			return false, nil
		}
		now := r.u.now()
		tx.PointsAwarded = models.Int64Ptr(patch.PointsAwarded)
		tx.SenderPointsAwarded = models.Int64Ptr(patch.SenderPointsAwarded)
		tx.DollarValue = patch.DollarValue
		tx.TechnicianPayout = patch.TechnicianPayout
		tx.PlatformFee = patch.PlatformFee
		tx.ReconciledAt = &now
		return true, nil
	}
	return false, nil
}

func (r *transactionRepo) SumPointsFor(_ context.Context, identities []string) (int64, error) {
	defer r.u.lock()()

	var total int64
	for _, tx := range r.u.state().transactions {
		if contains(identities, tx.ToTechnicianID) {
			total += tx.Points()
		}
		if contains(identities, tx.FromUserID) {
			total += tx.SenderPoints()
		}
	}
	return total, nil
}

func sameInt(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

func sameDecimal(a, b decimal.NullDecimal) bool {
	if !a.Valid || !b.Valid {
		return a.Valid == b.Valid
	}
	return a.Decimal.Equal(b.Decimal)
}

type dailyLimitRepo struct{ u *unit }

func limitKey(userID, date string) string {
	return userID + "|" + date
}

func (r *dailyLimitRepo) Get(_ context.Context, userID, date string) (*models.DailyLimit, error) {
	defer r.u.lock()()

	d, ok := r.u.state().dailyLimits[limitKey(userID, date)]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return copyLimit(d), nil
}

func (r *dailyLimitRepo) GetForUpdate(_ context.Context, userID, date string, maxDailyThanks int64) (*models.DailyLimit, error) {
	defer r.u.lock()()

	st := r.u.state()
	key := limitKey(userID, date)
	d, ok := st.dailyLimits[key]
	if !ok {
		d = &models.DailyLimit{
			UserID:             userID,
			Date:               date,
			ThankedTechnicians: []string{},
			MaxDailyThanks:     maxDailyThanks,
			UpdatedAt:          r.u.now(),
		}
		st.dailyLimits[key] = d
	}
	return copyLimit(d), nil
}

func (r *dailyLimitRepo) AddTechnician(_ context.Context, userID, date, technicianID string) error {
	defer r.u.lock()()

	d, ok := r.u.state().dailyLimits[limitKey(userID, date)]
	if !ok {
		return repository.ErrNotFound
	}
	if !contains(d.ThankedTechnicians, technicianID) {
		d.ThankedTechnicians = append(d.ThankedTechnicians, technicianID)
		d.UpdatedAt = r.u.now()
	}
	return nil
}

type profileRepo struct{ u *unit }

func (r *profileRepo) table(kind models.AccountKind) (map[string]*models.Profile, error) {
	m, ok := r.u.state().profiles[kind]
	if !ok {
		return nil, fmt.Errorf("bilinmeyen hesap tipi: %q", kind)
	}
	return m, nil
}

func (r *profileRepo) find(kind models.AccountKind, identity string) (*models.Profile, error) {
	m, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	if identity == "" {
		return nil, repository.ErrNotFound
	}
	if p, ok := m[identity]; ok {
		return p, nil
	}
	// auth uid eşleşmesi; deterministik olsun diye en küçük id
	var found *models.Profile
	for _, p := range m {
		if p.AuthUID == identity && (found == nil || strings.Compare(p.ID, found.ID) < 0) {
			found = p
		}
	}
	if found == nil {
		return nil, repository.ErrNotFound
	}
	return found, nil
}

func (r *profileRepo) FindByIdentity(_ context.Context, kind models.AccountKind, identity string) (*models.Profile, error) {
	defer r.u.lock()()

	p, err := r.find(kind, identity)
	if err != nil {
		return nil, err
	}
	cp := *p
	return &cp, nil
}

func (r *profileRepo) FindByIdentityForUpdate(ctx context.Context, kind models.AccountKind, identity string) (*models.Profile, error) {
	return r.FindByIdentity(ctx, kind, identity)
}

func (r *profileRepo) ApplyDelta(_ context.Context, kind models.AccountKind, id string, delta models.ProfileDelta) (*models.Profile, error) {
	defer r.u.lock()()

	m, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	p, ok := m[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.Points += delta.Points
	p.ThankYousSent += delta.ThankYousSent
	p.TokensSent += delta.TokensSent
	p.TotalThankYous += delta.TotalThankYous
	p.TotalTokensReceived += delta.TotalTokensReceived
	p.TotalToaValue = p.TotalToaValue.Add(delta.TotalToaValue)
	p.TotalEarnings = p.TotalEarnings.Add(delta.TotalEarnings)
	p.UpdatedAt = r.u.now()

	cp := *p
	return &cp, nil
}

func (r *profileRepo) DeductPoints(_ context.Context, kind models.AccountKind, id string, points int64) (*models.Profile, error) {
	defer r.u.lock()()

	m, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	p, ok := m[id]
	if !ok || p.Points < points {
		return nil, repository.ErrInsufficientPoints
	}
	p.Points -= points
	p.UpdatedAt = r.u.now()

	cp := *p
	return &cp, nil
}

func (r *profileRepo) SetPoints(_ context.Context, kind models.AccountKind, id string, observed, points int64) (bool, error) {
	defer r.u.lock()()

	m, err := r.table(kind)
	if err != nil {
		return false, err
	}
	p, ok := m[id]
	if !ok || p.Points != observed {
		return false, nil
	}
	p.Points = points
	p.UpdatedAt = r.u.now()
	return true, nil
}

func (r *profileRepo) List(_ context.Context, kind models.AccountKind, limit, offset int) ([]*models.Profile, error) {
	defer r.u.lock()()

	m, err := r.table(kind)
	if err != nil {
		return nil, err
	}
	all := make([]*models.Profile, 0, len(m))
	for _, p := range m {
		cp := *p
		all = append(all, &cp)
	}
	sortProfiles(all)
	return page(all, limit, offset), nil
}

type conversionRepo struct{ u *unit }

func (r *conversionRepo) Create(_ context.Context, rec *models.ConversionRecord) error {
	defer r.u.lock()()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.ConversionDate.IsZero() {
		rec.ConversionDate = r.u.now()
	}
	cp := *rec
	st := r.u.state()
	st.conversions = append(st.conversions, &cp)
	return nil
}

func (r *conversionRepo) GetByUserID(_ context.Context, userIDs []string, limit, offset int) ([]*models.ConversionRecord, error) {
	defer r.u.lock()()

	all := r.u.state().conversions
	var matched []*models.ConversionRecord
	for i := len(all) - 1; i >= 0; i-- {
		if contains(userIDs, all[i].UserID) {
			cp := *all[i]
			matched = append(matched, &cp)
		}
	}
	return page(matched, limit, offset), nil
}

func (r *conversionRepo) SumPointsConverted(_ context.Context, identities []string) (int64, error) {
	defer r.u.lock()()

	var total int64
	for _, c := range r.u.state().conversions {
		if contains(identities, c.UserID) {
			total += c.PointsConverted
		}
	}
	return total, nil
}

type auditRepo struct{ u *unit }

func (r *auditRepo) Create(_ context.Context, log *models.AuditLog) error {
	defer r.u.lock()()

	st := r.u.state()
	st.nextAuditID++
	log.ID = st.nextAuditID
	log.CreatedAt = r.u.now()
	cp := *log
	st.audit = append(st.audit, &cp)
	return nil
}

func (r *auditRepo) GetByEntity(_ context.Context, entityType, entityID string, limit, offset int) ([]*models.AuditLog, error) {
	defer r.u.lock()()

	all := r.u.state().audit
	var matched []*models.AuditLog
	for i := len(all) - 1; i >= 0; i-- {
		if all[i].EntityType == entityType && all[i].EntityID == entityID {
			cp := *all[i]
			matched = append(matched, &cp)
		}
	}
	return page(matched, limit, offset), nil
}
