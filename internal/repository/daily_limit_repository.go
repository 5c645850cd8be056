package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

const dailyLimitColumns = `user_id, limit_date::text, thanked_technicians, max_daily_thanks, updated_at`

// DailyLimitRepository gönderen başına günlük teşekkür kayıtları
type DailyLimitRepository struct {
	q db.Querier
}

// NewDailyLimitRepository yeni repository oluşturur
func NewDailyLimitRepository(q db.Querier) *DailyLimitRepository {
	return &DailyLimitRepository{q: q}
}

// Get günün kaydını kilitlemeden okur
func (r *DailyLimitRepository) Get(ctx context.Context, userID, date string) (*models.DailyLimit, error) {
	query := `SELECT ` + dailyLimitColumns + ` FROM daily_limits WHERE user_id = $1 AND limit_date = $2`

	limit, err := scanDailyLimit(r.q.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("günlük limit okunamadı: %w", err)
	}
	return limit, nil
}

// GetForUpdate günün kaydını oluşturur (yoksa) ve satırı kilitler.
// Aynı gönderenin eşzamanlı teşekkürleri bu kilitte sıraya girer.
func (r *DailyLimitRepository) GetForUpdate(ctx context.Context, userID, date string, maxDailyThanks int64) (*models.DailyLimit, error) {
	insert := `
		INSERT INTO daily_limits (user_id, limit_date, max_daily_thanks)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, limit_date) DO NOTHING
	`
	if _, err := r.q.ExecContext(ctx, insert, userID, date, maxDailyThanks); err != nil {
		return nil, fmt.Errorf("günlük limit oluşturulamadı: %w", err)
	}

	query := `SELECT ` + dailyLimitColumns + ` FROM daily_limits WHERE user_id = $1 AND limit_date = $2 FOR UPDATE`
	limit, err := scanDailyLimit(r.q.QueryRowContext(ctx, query, userID, date))
	if err != nil {
		return nil, fmt.Errorf("günlük limit kilitlenemedi: %w", err)
	}
	return limit, nil
}

// AddTechnician teknisyeni günün setine ekler (zaten varsa değişiklik yok)
func (r *DailyLimitRepository) AddTechnician(ctx context.Context, userID, date, technicianID string) error {
	query := `
		UPDATE daily_limits
		SET thanked_technicians = array_append(thanked_technicians, $3::text), updated_at = NOW()
		WHERE user_id = $1 AND limit_date = $2 AND NOT ($3::text = ANY(thanked_technicians))
	`
	if _, err := r.q.ExecContext(ctx, query, userID, date, technicianID); err != nil {
		return fmt.Errorf("teknisyen günlük limite eklenemedi: %w", err)
	}
	return nil
}

func scanDailyLimit(row scanner) (*models.DailyLimit, error) {
	var d models.DailyLimit
	err := row.Scan(&d.UserID, &d.Date, pq.Array(&d.ThankedTechnicians), &d.MaxDailyThanks, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}
