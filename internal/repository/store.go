package repository

import (
	"context"
	"database/sql"

	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
)

// Store PostgreSQL üzerinde atomik unit sağlar
type Store struct {
	db     *sql.DB
	policy db.RetryPolicy
}

// NewStore yeni store oluşturur
func NewStore(database *sql.DB, policy db.RetryPolicy) *Store {
	return &Store{db: database, policy: policy}
}

// RunInTx fn'i tek bir database transaction'ında çalıştırır; çakışmalarda baştan tekrar dener
func (s *Store) RunInTx(ctx context.Context, fn func(repos *interfaces.Repositories) error) error {
	return db.WithRetry(ctx, s.db, s.policy, func(tx *sql.Tx) error {
		return fn(NewRepositories(tx))
	})
}

// Repos transaction dışı okuma için repository seti
func (s *Store) Repos() *interfaces.Repositories {
	return NewRepositories(s.db)
}

// NewRepositories verilen querier (db veya tx) üzerinde tüm repository'leri kurar
func NewRepositories(q db.Querier) *interfaces.Repositories {
	return &interfaces.Repositories{
		Balances:     NewBalanceRepository(q),
		Transactions: NewTransactionRepository(q),
		DailyLimits:  NewDailyLimitRepository(q),
		Profiles:     NewProfileRepository(q),
		Conversions:  NewConversionRepository(q),
		Audit:        NewAuditRepository(q),
	}
}
