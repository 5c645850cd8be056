package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

const balanceColumns = `user_id, tokens, total_purchased, total_spent, last_updated`

// BalanceRepository balance database işlemleri
type BalanceRepository struct {
	q db.Querier
}

// NewBalanceRepository yeni repository oluşturur
func NewBalanceRepository(q db.Querier) *BalanceRepository {
	return &BalanceRepository{q: q}
}

// GetByUserID kullanıcının bakiyesini getirir, yoksa sıfır bakiye oluşturur
func (r *BalanceRepository) GetByUserID(ctx context.Context, userID string) (*models.Balance, error) {
	query := `SELECT ` + balanceColumns + ` FROM balances WHERE user_id = $1`

	balance, err := scanBalance(r.q.QueryRowContext(ctx, query, userID))
	if errors.Is(err, sql.ErrNoRows) {
		// Bakiye yoksa sıfır bakiye oluştur
		if err := r.ensure(ctx, userID); err != nil {
			return nil, err
		}
		balance, err = scanBalance(r.q.QueryRowContext(ctx, query, userID))
	}
	if err != nil {
		return nil, fmt.Errorf("bakiye arama hatası: %w", err)
	}
	return balance, nil
}

// GetForUpdate bakiyeyi transaction sonuna kadar kilitler
func (r *BalanceRepository) GetForUpdate(ctx context.Context, userID string) (*models.Balance, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}

	query := `SELECT ` + balanceColumns + ` FROM balances WHERE user_id = $1 FOR UPDATE`
	balance, err := scanBalance(r.q.QueryRowContext(ctx, query, userID))
	if err != nil {
		return nil, fmt.Errorf("bakiye kilitlenemedi: %w", err)
	}
	return balance, nil
}

// Credit satın alma veya dönüşüm sonrası bakiyeyi artırır
func (r *BalanceRepository) Credit(ctx context.Context, userID string, tokens int64) (*models.Balance, error) {
	if err := r.ensure(ctx, userID); err != nil {
		return nil, err
	}

	query := `
		UPDATE balances
		SET tokens = tokens + $2, total_purchased = total_purchased + $2, last_updated = NOW()
		WHERE user_id = $1
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRowContext(ctx, query, userID, tokens))
	if err != nil {
		return nil, fmt.Errorf("bakiye artırılamadı: %w", err)
	}
	return balance, nil
}

// Debit gönderim sonrası bakiyeyi düşer; tokens asla negatife inmez
func (r *BalanceRepository) Debit(ctx context.Context, userID string, tokens int64) (*models.Balance, error) {
	query := `
		UPDATE balances
		SET tokens = tokens - $2, total_spent = total_spent + $2, last_updated = NOW()
		WHERE user_id = $1 AND tokens >= $2
		RETURNING ` + balanceColumns

	balance, err := scanBalance(r.q.QueryRowContext(ctx, query, userID, tokens))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInsufficientTokens
		}
		return nil, fmt.Errorf("bakiye düşülemedi: %w", err)
	}
	return balance, nil
}

func (r *BalanceRepository) ensure(ctx context.Context, userID string) error {
	query := `INSERT INTO balances (user_id) VALUES ($1) ON CONFLICT (user_id) DO NOTHING`
	if _, err := r.q.ExecContext(ctx, query, userID); err != nil {
		return fmt.Errorf("bakiye oluşturulamadı: %w", err)
	}
	return nil
}

func scanBalance(row scanner) (*models.Balance, error) {
	var b models.Balance
	if err := row.Scan(&b.UserID, &b.Tokens, &b.TotalPurchased, &b.TotalSpent, &b.LastUpdated); err != nil {
		return nil, err
	}
	return &b, nil
}
