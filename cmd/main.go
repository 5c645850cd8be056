package main

import (
	"context"
	stdlog "log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/app"
	"github.com/onerilhan/thankatech-ledger/internal/auth"
	"github.com/onerilhan/thankatech-ledger/internal/catalog"
	"github.com/onerilhan/thankatech-ledger/internal/config"
	"github.com/onerilhan/thankatech-ledger/internal/handlers"
	"github.com/onerilhan/thankatech-ledger/internal/logger"
	"github.com/onerilhan/thankatech-ledger/internal/middleware"
	"github.com/onerilhan/thankatech-ledger/internal/middleware/errors"
	"github.com/onerilhan/thankatech-ledger/internal/models"
	"github.com/onerilhan/thankatech-ledger/internal/services"
)

func main() {
	// .env dosyasını yükle
	if err := godotenv.Load(); err != nil {
		stdlog.Println(".env dosyası bulunamadı, ortam değişkenlerinden okunacak.")
	}

	// config yükle
	cfg := config.LoadConfig()

	// logger başlat
	logger.Init(cfg.AppEnv, cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("❌ Geçersiz yapılandırma")
	}

	log.Info().
		Str("environment", cfg.AppEnv).
		Str("port", cfg.Port).
		Str("store", cfg.StoreDriver).
		Str("timezone", cfg.Timezone).
		Msg("🚀 ThankATech ledger başlatıldı")

	ctx := context.Background()

	cat, err := catalog.LoadFile(cfg.CatalogFile)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Katalog yüklenemedi")
	}

	backend, err := app.OpenStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("❌ Store açılamadı")
	}
	defer backend.Close()

	thanked, closeCache := app.NewThankedCache(ctx, cfg)
	defer closeCache()

	svc := app.NewServices(cfg, backend.Store, cat, thanked, app.NewDispatcher(cfg))

	// Reconciliation zamanlayıcısı (opsiyonel)
	var scheduler *services.ReconciliationScheduler
	if cfg.ReconcileCron != "" {
		scheduler, err = services.NewReconciliationScheduler(svc.Reconcile, cfg.ReconcileCron,
			models.ReconcileOptions{FixPoints: cfg.ReconcileFixPoints}, cfg.Location())
		if err != nil {
			log.Fatal().Err(err).Msg("❌ Reconciliation zamanlayıcısı kurulamadı")
		}
		scheduler.Start()
	}

	rateLimiter := middleware.NewRateLimitMiddleware(rateLimitConfig(cfg))

	router := handlers.NewRouter(handlers.RouterConfig{
		Appreciation: handlers.NewAppreciationHandler(svc.Appreciation),
		Balance:      handlers.NewBalanceHandler(svc.Balances),
		Transactions: handlers.NewTransactionHandler(svc.Balances),
		Conversions:  handlers.NewConversionHandler(svc.Conversions),
		Catalog:      handlers.NewCatalogHandler(cat),
		Webhooks:     handlers.NewWebhookHandler(svc.Purchases, cfg.StripeWebhookSecret),
		Admin:        handlers.NewAdminHandler(svc.Reconcile),
		Tokens:       auth.NewManager(cfg.JWTSecret, 24*time.Hour),
		Global: []mux.MiddlewareFunc{
			middleware.ErrorHandlingMiddleware(errors.ForEnv(cfg.AppEnv)),
			middleware.RequestLoggingMiddleware(nil),
			middleware.MetricsMiddleware(nil),
			rateLimiter.Handler(),
		},
		ReadyFunc: func() error {
			pingCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			return backend.Ready(pingCtx)
		},
	})

	// HTTP Server configuration
	serverAddr := ":" + cfg.Port
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown setup
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info().
			Str("addr", serverAddr).
			Msg("🌐 HTTP Server (Gorilla Mux) başlatıldı")

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("❌ Server başlatma hatası")
		}
	}()

	<-shutdown
	log.Info().Msg("🛑 Shutdown signal alındı, server kapatılıyor...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	// 1. HTTP Server'ı kapat (aktif bağlantıları bekle)
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("❌ HTTP Server kapatma hatası")
	} else {
		log.Info().Msg("✅ HTTP Server başarıyla kapatıldı")
	}

	// 2. Zamanlayıcı ve rate limiter
	if scheduler != nil {
		scheduler.Stop(shutdownCtx)
	}
	rateLimiter.Stop()

	// 3. Bekleyen bildirimleri gönder
	log.Info().Msg("🔄 Bildirim kuyruğu kapatılıyor...")
	svc.Notifications.Stop()

	// 4. Database bağlantısı defer ile kapanır
	log.Info().Msg("👋 ThankATech ledger başarıyla kapatıldı")
}

func rateLimitConfig(cfg *config.Config) *middleware.RateLimitConfig {
	rl := middleware.DefaultRateLimitConfig()
	if cfg.RateLimitPerMinute > 0 {
		rl.RequestsPerMinute = cfg.RateLimitPerMinute
	}
	if cfg.RateLimitBurst > 0 {
		rl.Burst = cfg.RateLimitBurst
	}
	if cfg.WriteRateLimitPerMinute > 0 {
		rl.WriteRequestsPerMinute = cfg.WriteRateLimitPerMinute
	}
	return rl
}
