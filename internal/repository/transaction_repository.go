package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

const transactionColumns = `id, from_user_id, to_technician_id, from_name, to_name, tokens, message, type, created_at,
	dollar_value, technician_payout, platform_fee, points_awarded, sender_points_awarded,
	external_reference, reconciled_at`

// TransactionRepository append-only ledger'ın PostgreSQL karşılığı
type TransactionRepository struct {
	q db.Querier
}

// NewTransactionRepository yeni repository oluşturur
func NewTransactionRepository(q db.Querier) *TransactionRepository {
	return &TransactionRepository{q: q}
}

// Create yeni ledger kaydı ekler. ID boşsa üretilir.
// external_reference unique index'e takılırsa pq 23505 döner ve unit tekrar denenir.
func (r *TransactionRepository) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}

	query := `
		INSERT INTO transactions (id, from_user_id, to_technician_id, from_name, to_name, tokens, message, type, created_at,
			dollar_value, technician_payout, platform_fee, points_awarded, sender_points_awarded, external_reference)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`

	_, err := r.q.ExecContext(ctx, query,
		tx.ID,
		tx.FromUserID,
		tx.ToTechnicianID,
		tx.FromName,
		tx.ToName,
		tx.Tokens,
		tx.Message,
		string(tx.Type),
		tx.Timestamp,
		tx.DollarValue,
		tx.TechnicianPayout,
		tx.PlatformFee,
		tx.PointsAwarded,
		tx.SenderPointsAwarded,
		tx.ExternalReference,
	)
	if err != nil {
		return fmt.Errorf("transaction oluşturulamadı: %w", err)
	}
	return nil
}

// GetByID ID ile transaction getirir
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE id = $1`
	return r.getOne(ctx, query, id)
}

// GetByExternalReference ödeme referansıyla kayıt getirir
func (r *TransactionRepository) GetByExternalReference(ctx context.Context, ref string) (*models.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE external_reference = $1`
	return r.getOne(ctx, query, ref)
}

// GetByUserID kullanıcının gönderdiği veya aldığı transaction'ları getirir
func (r *TransactionRepository) GetByUserID(ctx context.Context, userIDs []string, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE from_user_id = ANY($1) OR to_technician_id = ANY($1)
		ORDER BY created_at DESC, id
		LIMIT $2 OFFSET $3
	`
	return r.list(ctx, query, pq.Array(userIDs), limit, offset)
}

// List ledger'ı eskiden yeniye sayfalı döner
func (r *TransactionRepository) List(ctx context.Context, limit, offset int) ([]*models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		ORDER BY created_at, id
		LIMIT $1 OFFSET $2
	`
	return r.list(ctx, query, limit, offset)
}

// ApplyPatch düzeltmeyi sadece gözlemlenen değerler hâlâ geçerliyse uygular.
// Yarışı kaybeden patch false döner, üzerine yazılmaz.
func (r *TransactionRepository) ApplyPatch(ctx context.Context, patch *models.TransactionPatch) (bool, error) {
	query := `
		UPDATE transactions
		SET points_awarded = $2,
			sender_points_awarded = $3,
			dollar_value = $4,
			technician_payout = $5,
			platform_fee = $6,
			reconciled_at = NOW()
		WHERE id = $1
			AND points_awarded IS NOT DISTINCT FROM $7
			AND sender_points_awarded IS NOT DISTINCT FROM $8
			AND dollar_value IS NOT DISTINCT FROM $9
			AND technician_payout IS NOT DISTINCT FROM $10
			AND platform_fee IS NOT DISTINCT FROM $11
	`

	res, err := r.q.ExecContext(ctx, query,
		patch.TransactionID,
		patch.PointsAwarded,
		patch.SenderPointsAwarded,
		patch.DollarValue,
		patch.TechnicianPayout,
		patch.PlatformFee,
		patch.ObservedPoints,
		patch.ObservedSenderPoints,
		patch.ObservedDollarValue,
		patch.ObservedTechnicianPayout,
		patch.ObservedPlatformFee,
	)
	if err != nil {
		return false, fmt.Errorf("transaction düzeltilemedi: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("etkilenen satır okunamadı: %w", err)
	}
	return n == 1, nil
}

// SumPointsFor kimliklerin aldığı pointsAwarded ile gönderen olarak aldığı senderPointsAwarded toplamı
func (r *TransactionRepository) SumPointsFor(ctx context.Context, identities []string) (int64, error) {
	query := `
		SELECT
			COALESCE(SUM(CASE WHEN to_technician_id = ANY($1) THEN COALESCE(points_awarded, 0) ELSE 0 END), 0) +
			COALESCE(SUM(CASE WHEN from_user_id = ANY($1) THEN COALESCE(sender_points_awarded, 0) ELSE 0 END), 0)
		FROM transactions
		WHERE to_technician_id = ANY($1) OR from_user_id = ANY($1)
	`

	var total int64
	if err := r.q.QueryRowContext(ctx, query, pq.Array(identities)).Scan(&total); err != nil {
		return 0, fmt.Errorf("puan toplamı hesaplanamadı: %w", err)
	}
	return total, nil
}

func (r *TransactionRepository) getOne(ctx context.Context, query string, arg any) (*models.Transaction, error) {
	tx, err := scanTransaction(r.q.QueryRowContext(ctx, query, arg))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("transaction arama hatası: %w", err)
	}
	return tx, nil
}

func (r *TransactionRepository) list(ctx context.Context, query string, args ...any) ([]*models.Transaction, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("transaction listesi alınamadı: %w", err)
	}
	defer rows.Close()

	var transactions []*models.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("transaction scan hatası: %w", err)
		}
		transactions = append(transactions, tx)
	}
	return transactions, rows.Err()
}

func scanTransaction(row scanner) (*models.Transaction, error) {
	var (
		tx     models.Transaction
		txType string
	)
	err := row.Scan(
		&tx.ID,
		&tx.FromUserID,
		&tx.ToTechnicianID,
		&tx.FromName,
		&tx.ToName,
		&tx.Tokens,
		&tx.Message,
		&txType,
		&tx.Timestamp,
		&tx.DollarValue,
		&tx.TechnicianPayout,
		&tx.PlatformFee,
		&tx.PointsAwarded,
		&tx.SenderPointsAwarded,
		&tx.ExternalReference,
		&tx.ReconciledAt,
	)
	if err != nil {
		return nil, err
	}
	tx.Type = models.TransactionType(txType)
	return &tx, nil
}
