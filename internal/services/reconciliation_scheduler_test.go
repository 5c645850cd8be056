package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// MockReconciliationService, ReconciliationServiceInterface için sahte (mock) bir yapıdır.
type MockReconciliationService struct {
	mock.Mock
}

var _ interfaces.ReconciliationServiceInterface = (*MockReconciliationService)(nil)

func (m *MockReconciliationService) Run(ctx context.Context, opts models.ReconcileOptions) (*models.ReconciliationReport, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ReconciliationReport), args.Error(1)
}

func TestNewReconciliationScheduler_InvalidSpec(t *testing.T) {
	_, err := NewReconciliationScheduler(new(MockReconciliationService), "her gün", models.ReconcileOptions{}, nil)

	assert.Error(t, err)
}

func TestReconciliationScheduler_RunUsesCronActor(t *testing.T) {
	// Arrange
	svc := new(MockReconciliationService)
	svc.On("Run", mock.Anything, models.ReconcileOptions{FixPoints: true, Actor: "cron"}).
		Return(&models.ReconciliationReport{}, nil).Once()

	s, err := NewReconciliationScheduler(svc, "@daily", models.ReconcileOptions{FixPoints: true}, time.UTC)
	require.NoError(t, err)

	// Act
	s.run()

	// Assert
	svc.AssertExpectations(t)
}

func TestReconciliationScheduler_RunSwallowsErrors(t *testing.T) {
	svc := new(MockReconciliationService)
	svc.On("Run", mock.Anything, mock.Anything).Return(nil, errors.New("db kapalı")).Once()

	s, err := NewReconciliationScheduler(svc, "0 3 * * *", models.ReconcileOptions{Actor: "ops"}, nil)
	require.NoError(t, err)

	assert.NotPanics(t, s.run)
	svc.AssertExpectations(t)
}

func TestReconciliationScheduler_StartStop(t *testing.T) {
	s, err := NewReconciliationScheduler(new(MockReconciliationService), "@hourly", models.ReconcileOptions{}, nil)
	require.NoError(t, err)

	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
