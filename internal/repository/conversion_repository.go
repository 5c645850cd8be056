package repository

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// ConversionRepository puan dönüşüm geçmişi
type ConversionRepository struct {
	q db.Querier
}

// NewConversionRepository yeni repository oluşturur
func NewConversionRepository(q db.Querier) *ConversionRepository {
	return &ConversionRepository{q: q}
}

// Create dönüşüm kaydı ekler
func (r *ConversionRepository) Create(ctx context.Context, rec *models.ConversionRecord) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}

	query := `
		INSERT INTO conversions (id, user_id, points_converted, tokens_generated, conversion_date, conversion_rate)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.q.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.PointsConverted, rec.TokensGenerated, rec.ConversionDate, rec.ConversionRate)
	if err != nil {
		return fmt.Errorf("dönüşüm kaydı oluşturulamadı: %w", err)
	}
	return nil
}

// GetByUserID kullanıcının dönüşümleri, yeniden eskiye
func (r *ConversionRepository) GetByUserID(ctx context.Context, userIDs []string, limit, offset int) ([]*models.ConversionRecord, error) {
	query := `
		SELECT id, user_id, points_converted, tokens_generated, conversion_date, conversion_rate
		FROM conversions
		WHERE user_id = ANY($1)
		ORDER BY conversion_date DESC, id
		LIMIT $2 OFFSET $3
	`

	rows, err := r.q.QueryContext(ctx, query, pq.Array(userIDs), limit, offset)
	if err != nil {
		return nil, fmt.Errorf("dönüşüm geçmişi alınamadı: %w", err)
	}
	defer rows.Close()

	var records []*models.ConversionRecord
	for rows.Next() {
		var c models.ConversionRecord
		if err := rows.Scan(&c.ID, &c.UserID, &c.PointsConverted, &c.TokensGenerated, &c.ConversionDate, &c.ConversionRate); err != nil {
			return nil, fmt.Errorf("dönüşüm scan hatası: %w", err)
		}
		records = append(records, &c)
	}
	return records, rows.Err()
}

// SumPointsConverted kimliklerin dönüştürdüğü toplam puan
func (r *ConversionRepository) SumPointsConverted(ctx context.Context, identities []string) (int64, error) {
	query := `SELECT COALESCE(SUM(points_converted), 0) FROM conversions WHERE user_id = ANY($1)`

	var total int64
	if err := r.q.QueryRowContext(ctx, query, pq.Array(identities)).Scan(&total); err != nil {
		return 0, fmt.Errorf("dönüşüm toplamı hesaplanamadı: %w", err)
	}
	return total, nil
}
