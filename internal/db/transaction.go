package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

// Querier *sql.DB ve *sql.Tx'in ortak yüzü; repository'ler ikisiyle de çalışır
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// TransactionFunc database transaction içinde çalışacak fonksiyon tipi
type TransactionFunc func(tx *sql.Tx) error

var (
	// ErrConflict eşzamanlı yazma çakışması; unit baştan tekrar denenebilir
	ErrConflict = errors.New("eşzamanlı yazma çakışması")

	// ErrTxContention tekrar deneme limiti aşıldı
	ErrTxContention = errors.New("transaction çakışması: tekrar deneme limiti aşıldı")
)

// PostgreSQL SQLSTATE kodları
const (
	codeSerializationFailure = "40001"
	codeDeadlockDetected     = "40P01"
	codeUniqueViolation      = "23505"
)

// RetryPolicy çakışmada tekrar deneme ayarları
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	OnRetry     func(attempt int, err error) // opsiyonel (metrics)
}

// DefaultRetryPolicy varsayılan ayarlar
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   10 * time.Millisecond,
	}
}

// WithTransaction database transaction'ı yönetir
// Hata durumunda otomatik rollback, başarı durumunda commit yapar
func WithTransaction(ctx context.Context, db *sql.DB, fn TransactionFunc) error {
	// Transaction başlat
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("transaction başlatılamadı: %w", err)
	}

	// Defer ile transaction'ı yönet
	defer func() {
		if r := recover(); r != nil {
			// Panic durumunda rollback
			if rollbackErr := tx.Rollback(); rollbackErr != nil {
				log.Error().Err(rollbackErr).Msg("Rollback hatası (panic)")
			}
			log.Error().Interface("panic", r).Msg("Transaction panic ile rollback yapıldı")
			panic(r) // Panic'i yeniden fırlat
		}
	}()

	// İş mantığını çalıştır
	if err := fn(tx); err != nil {
		// Hata durumunda rollback
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("Rollback hatası")
			return fmt.Errorf("transaction hatası ve rollback hatası: %w, rollback: %v", err, rollbackErr)
		}
		log.Debug().Err(err).Msg("Transaction rollback yapıldı")
		return err
	}

	// Başarı durumunda commit
	if err := tx.Commit(); err != nil {
		log.Error().Err(err).Msg("Commit hatası")
		return fmt.Errorf("transaction commit hatası: %w", err)
	}

	log.Debug().Msg("Transaction başarıyla commit edildi")
	return nil
}

// WithRetry WithTransaction'ı çakışma hatalarında policy'ye göre tekrar çalıştırır
func WithRetry(ctx context.Context, db *sql.DB, policy RetryPolicy, fn TransactionFunc) error {
	return Retry(ctx, policy, func() error {
		return WithTransaction(ctx, db, fn)
	})
}

// Retry fn'i retryable hatalarda tekrar çalıştırır. Limit aşılırsa ErrTxContention döner.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil || !IsRetryable(err) {
			return err
		}

		if attempt >= policy.MaxAttempts {
			log.Warn().Err(err).Int("attempts", attempt).Msg("⚠️ Transaction tekrar deneme limiti aşıldı")
			return fmt.Errorf("%w: %v", ErrTxContention, err)
		}

		if policy.OnRetry != nil {
			policy.OnRetry(attempt, err)
		}
		log.Debug().Err(err).Int("attempt", attempt).Msg("🔁 Transaction çakışması, tekrar deneniyor")

		if err := sleep(ctx, backoff(policy.BaseDelay, attempt)); err != nil {
			return err
		}
	}
}

// IsRetryable hata eşzamanlılık kaynaklı mı (serialization, deadlock, unique race)
func IsRetryable(err error) bool {
	if errors.Is(err, ErrConflict) {
		return true
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch string(pqErr.Code) {
		case codeSerializationFailure, codeDeadlockDetected, codeUniqueViolation:
			return true
		}
	}
	return false
}

func backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		return 0
	}
	d := base * time.Duration(1<<(attempt-1))
	// jitter: [d/2, d)
	return d/2 + time.Duration(rand.Int63n(int64(d/2)+1))
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
