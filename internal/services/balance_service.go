package services

import (
	"context"
	"errors"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
)

// BalanceService bakiye ve ledger okuma işlemleri
type BalanceService struct {
	store interfaces.StoreInterface
}

// NewBalanceService yeni service oluşturur
func NewBalanceService(store interfaces.StoreInterface) *BalanceService {
	return &BalanceService{store: store}
}

// GetBalance token bakiyesi ve (varsa) profildeki puanlar
func (s *BalanceService) GetBalance(ctx context.Context, userID string) (*models.BalanceSummary, error) {
	repos := s.store.Repos()

	key, account, err := ledgerKeyOf(ctx, repos.Profiles, userID)
	if err != nil {
		return nil, translate("get_balance", err)
	}

	balance, err := repos.Balances.GetByUserID(ctx, key)
	if err != nil {
		return nil, translate("get_balance", err)
	}

	summary := &models.BalanceSummary{Balance: balance}
	// profili olmayan kullanıcı: sadece bakiye
	if account != nil {
		summary.Points = account.Profile.Points
		summary.Kind = account.Kind
	}
	return summary, nil
}

// GetUserTransactions kullanıcının gönderdiği ve aldığı kayıtlar, yeniden eskiye
func (s *BalanceService) GetUserTransactions(ctx context.Context, userID string, limit, offset int) ([]*models.Transaction, error) {
	limit, offset = normalizePage(limit, offset)
	repos := s.store.Repos()

	identities, err := identitiesOf(ctx, repos, userID)
	if err != nil {
		return nil, translate("get_user_transactions", err)
	}

	txs, err := repos.Transactions.GetByUserID(ctx, identities, limit, offset)
	if err != nil {
		return nil, translate("get_user_transactions", err)
	}
	return txs, nil
}

// GetTransactionByID ID ile ledger kaydı
func (s *BalanceService) GetTransactionByID(ctx context.Context, id string) (*models.Transaction, error) {
	tx, err := s.store.Repos().Transactions.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTransactionNotFound
	}
	if err != nil {
		return nil, translate("get_transaction", err)
	}
	return tx, nil
}

// GetTransactionForUser kayıt kullanıcının gönderdiği veya aldığı bir işlem değilse bulunamadı döner
func (s *BalanceService) GetTransactionForUser(ctx context.Context, userID, id string) (*models.Transaction, error) {
	tx, err := s.GetTransactionByID(ctx, id)
	if err != nil {
		return nil, err
	}

	identities, err := identitiesOf(ctx, s.store.Repos(), userID)
	if err != nil {
		return nil, translate("get_transaction", err)
	}
	for _, identity := range identities {
		if tx.FromUserID == identity || tx.ToTechnicianID == identity {
			return tx, nil
		}
	}
	// başkasının kaydının varlığı sızdırılmaz
	return nil, ErrTransactionNotFound
}

// identitiesOf kullanıcının bilinen tüm kimlikleri (profil varsa id + auth uid)
func identitiesOf(ctx context.Context, repos *interfaces.Repositories, userID string) ([]string, error) {
	account, err := NewIdentityResolver(repos.Profiles).Resolve(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return []string{userID}, nil
	}
	if err != nil {
		return nil, err
	}

	ids := account.Profile.Identities()
	for _, id := range ids {
		if id == userID {
			return ids, nil
		}
	}
	return append(ids, userID), nil
}

// normalizePage sayfalama parametrelerini sınırlar
func normalizePage(limit, offset int) (int, int) {
	if limit <= 0 || limit > 100 {
		limit = 10 // default limit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
