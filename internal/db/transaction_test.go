package db

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	database, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database, mock
}

// TestWithTransaction_Commit başarılı fn sonrası commit yapılır
func TestWithTransaction_Commit(t *testing.T) {
	// Arrange
	database, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE balances").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := WithTransaction(context.Background(), database, func(tx *sql.Tx) error {
		_, err := tx.Exec("UPDATE balances SET tokens = tokens + 1")
		return err
	})

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestWithTransaction_Rollback hata durumunda rollback yapılır ve hata aynen döner
func TestWithTransaction_Rollback(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("yetersiz bakiye")
	err := WithTransaction(context.Background(), database, func(tx *sql.Tx) error {
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestWithRetry_RetriesSerializationFailure 40001 sonrası ikinci deneme commit edilir
func TestWithRetry_RetriesSerializationFailure(t *testing.T) {
	database, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectRollback()
	mock.ExpectBegin()
	mock.ExpectCommit()

	calls := 0
	retries := 0
	policy := RetryPolicy{MaxAttempts: 3, OnRetry: func(int, error) { retries++ }}

	err := WithRetry(context.Background(), database, policy, func(tx *sql.Tx) error {
		calls++
		if calls == 1 {
			return &pq.Error{Code: "40001"}
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, retries)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// TestRetry_ExhaustedReturnsContention limit aşılınca ErrTxContention döner
func TestRetry_ExhaustedReturnsContention(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 3}, func() error {
		calls++
		return ErrConflict
	})

	assert.ErrorIs(t, err, ErrTxContention)
	assert.Equal(t, 3, calls)
}

// TestRetry_NonRetryableReturnsImmediately iş kuralı hataları tekrar denenmez
func TestRetry_NonRetryableReturnsImmediately(t *testing.T) {
	boom := errors.New("kendinize teşekkür edemezsiniz")
	calls := 0
	err := Retry(context.Background(), RetryPolicy{MaxAttempts: 5}, func() error {
		calls++
		return boom
	})

	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(&pq.Error{Code: "40P01"}))
	assert.True(t, IsRetryable(&pq.Error{Code: "23505"}))
	assert.False(t, IsRetryable(&pq.Error{Code: "23503"}))
	assert.False(t, IsRetryable(sql.ErrNoRows))
	assert.True(t, IsRetryable(ErrConflict))
}
