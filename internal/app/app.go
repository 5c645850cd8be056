// Package app servis katmanını config'e göre kurar; cmd/ altındaki binary'ler paylaşır.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog/log"

	"github.com/onerilhan/thankatech-ledger/internal/cache"
	"github.com/onerilhan/thankatech-ledger/internal/catalog"
	"github.com/onerilhan/thankatech-ledger/internal/config"
	"github.com/onerilhan/thankatech-ledger/internal/db"
	"github.com/onerilhan/thankatech-ledger/internal/interfaces"
	"github.com/onerilhan/thankatech-ledger/internal/metrics"
	"github.com/onerilhan/thankatech-ledger/internal/migration"
	"github.com/onerilhan/thankatech-ledger/internal/notify"
	"github.com/onerilhan/thankatech-ledger/internal/repository"
	"github.com/onerilhan/thankatech-ledger/internal/repository/memory"
	"github.com/onerilhan/thankatech-ledger/internal/services"
)

// Backend seçilen store ve kapatılması gereken kaynakları
type Backend struct {
	Store interfaces.StoreInterface
	DB    *sql.DB // memory driver'da nil
}

// Ready health check için store erişilebilir mi
func (b *Backend) Ready(ctx context.Context) error {
	if b.DB == nil {
		return nil
	}
	return b.DB.PingContext(ctx)
}

// Close veritabanı bağlantısını kapatır
func (b *Backend) Close() {
	if b.DB == nil {
		return
	}
	if err := b.DB.Close(); err != nil {
		log.Error().Err(err).Msg("❌ Veritabanı kapatma hatası")
	}
}

// OpenStore STORE_DRIVER'a göre PostgreSQL veya in-memory store açar
func OpenStore(ctx context.Context, cfg *config.Config) (*Backend, error) {
	switch cfg.StoreDriver {
	case "memory":
		store := memory.NewStore()
		if cfg.SeedFile != "" {
			if err := store.LoadSeedFile(cfg.SeedFile); err != nil {
				return nil, err
			}
			log.Info().Str("file", cfg.SeedFile).Msg("🌱 Seed verisi yüklendi")
		}
		log.Warn().Msg("⚠️ In-memory store kullanılıyor, veriler kalıcı değil")
		return &Backend{Store: store}, nil

	case "postgres":
		database, err := db.Connect(cfg.GetDSN(), db.PoolConfig{
			MaxOpenConns:    cfg.DBMaxOpenConns,
			MaxIdleConns:    cfg.DBMaxIdleConns,
			ConnMaxLifetime: cfg.DBConnMaxLifetime,
		})
		if err != nil {
			return nil, err
		}

		if cfg.AutoMigrate {
			if _, err := migration.NewRunner(database, migration.AppStartupConfig()).Up(ctx); err != nil {
				database.Close()
				return nil, err
			}
		}

		policy := db.DefaultRetryPolicy()
		policy.MaxAttempts = cfg.TxMaxRetries
		policy.OnRetry = func(attempt int, err error) {
			metrics.RecordRetry()
			log.Debug().Err(err).Int("attempt", attempt).Msg("🔁 Transaction tekrar deneniyor")
		}
		return &Backend{Store: repository.NewStore(database, policy), DB: database}, nil

	default:
		return nil, fmt.Errorf("bilinmeyen STORE_DRIVER: %s", cfg.StoreDriver)
	}
}

// NewThankedCache REDIS_URL varsa Redis, yoksa no-op cache döner.
// Redis'e ulaşılamazsa servis yine çalışır; yetkili kaynak store'dur.
func NewThankedCache(ctx context.Context, cfg *config.Config) (cache.ThankedCache, func()) {
	if cfg.RedisURL == "" {
		return cache.NoopCache{}, func() {}
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	client, err := cache.NewRedisClient(pingCtx, cfg.RedisURL)
	if err != nil {
		log.Warn().Err(err).Msg("⚠️ Redis kullanılamıyor, cache devre dışı")
		return cache.NoopCache{}, func() {}
	}

	log.Info().Msg("🧠 Redis teşekkür cache'i aktif")
	return cache.NewRedisCache(client, "thankatech"), func() {
		if err := client.Close(); err != nil {
			log.Warn().Err(err).Msg("Redis kapatma hatası")
		}
	}
}

// NewDispatcher RESEND_API_KEY varsa e-posta, yoksa log dispatcher
func NewDispatcher(cfg *config.Config) notify.Dispatcher {
	if cfg.ResendAPIKey == "" {
		return notify.NewLogDispatcher()
	}
	return notify.NewResendDispatcher(resend.NewClient(cfg.ResendAPIKey), cfg.EmailFrom)
}

// Services iş katmanı
type Services struct {
	Catalog       *catalog.Catalog
	Notifications *services.NotificationQueue
	Appreciation  *services.AppreciationService
	Purchases     *services.PurchaseService
	Conversions   *services.ConversionService
	Balances      *services.BalanceService
	Reconcile     *services.ReconciliationService
}

// NewServices servisleri kurar; bildirim kuyruğu başlatılmış olarak döner
func NewServices(cfg *config.Config, store interfaces.StoreInterface, cat *catalog.Catalog, thanked cache.ThankedCache, dispatcher notify.Dispatcher) *Services {
	queue := services.NewNotificationQueue(cfg.NotifyWorkers, dispatcher, cfg.NotifyBuffer)
	queue.Start()

	return &Services{
		Catalog:       cat,
		Notifications: queue,
		Appreciation:  services.NewAppreciationService(store, cat, thanked, queue, time.Now, cfg.Location()),
		Purchases:     services.NewPurchaseService(store, time.Now),
		Conversions:   services.NewConversionService(store, cat, time.Now),
		Balances:      services.NewBalanceService(store),
		Reconcile:     services.NewReconciliationService(store, cat, time.Now),
	}
}
