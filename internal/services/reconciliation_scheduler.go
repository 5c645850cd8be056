package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/models"
)

// ReconciliationScheduler reconciliation'ı cron ifadesine göre çalıştırır
type ReconciliationScheduler struct {
	cron    *cron.Cron
	service interfaces.ReconciliationServiceInterface
	opts    models.ReconcileOptions
	timeout time.Duration
}

// NewReconciliationScheduler yeni scheduler oluşturur; spec standart 5 alanlı cron ifadesi veya @every/@daily
func NewReconciliationScheduler(service interfaces.ReconciliationServiceInterface, spec string, opts models.ReconcileOptions, loc *time.Location) (*ReconciliationScheduler, error) {
	if loc == nil {
		loc = time.UTC
	}
	if opts.Actor == "" {
		opts.Actor = "cron"
	}

	s := &ReconciliationScheduler{
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		service: service,
		opts:    opts,
		timeout: 30 * time.Minute,
	}

	if _, err := s.cron.AddFunc(spec, s.run); err != nil {
		return nil, fmt.Errorf("geçersiz reconcile cron ifadesi %q: %w", spec, err)
	}
	return s, nil
}

// Start zamanlayıcıyı başlatır
func (s *ReconciliationScheduler) Start() {
	s.cron.Start()
	log.Info().Msg("⏰ Reconciliation zamanlayıcısı başlatıldı")
}

// Stop yeni çalıştırmaları durdurur ve süren işi bekler
func (s *ReconciliationScheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		log.Warn().Msg("⚠️ Reconciliation bitmeden zamanlayıcı kapatıldı")
	}
	log.Info().Msg("⏹️ Reconciliation zamanlayıcısı durduruldu")
}

func (s *ReconciliationScheduler) run() {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	if _, err := s.service.Run(ctx, s.opts); err != nil {
		log.Error().Err(err).Msg("❌ Zamanlanmış reconciliation başarısız")
	}
}
