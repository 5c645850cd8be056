// internal/migration/runner.go
package migration

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/rs/zerolog/log"
)

//go:embed sql/*.sql
var embedded embed.FS

// Files binary'ye gömülü migration dosyaları
func Files() fs.FS {
	sub, err := fs.Sub(embedded, "sql")
	if err != nil {
		panic(err) // embed path'i derleme zamanında sabit
	}
	return sub
}

// Runner migration işlemlerini yöneten ana yapı
type Runner struct {
	db     *sql.DB
	config *MigrationConfig
	files  fs.FS
}

// NewRunner gömülü dosyalarla runner oluşturur
func NewRunner(db *sql.DB, config *MigrationConfig) *Runner {
	if config == nil {
		config = DefaultConfig()
	}
	return &Runner{db: db, config: config, files: Files()}
}

// migrator tek bir bağlantı üzerinde golang-migrate örneği açar.
// Kapatıldığında paylaşılan *sql.DB değil sadece bu bağlantı kapanır.
func (r *Runner) migrator(ctx context.Context) (*migrate.Migrate, error) {
	src, err := iofs.New(r.files, ".")
	if err != nil {
		return nil, fmt.Errorf("migration kaynağı açılamadı: %w", err)
	}

	conn, err := r.db.Conn(ctx)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("migration bağlantısı alınamadı: %w", err)
	}

	driver, err := postgres.WithConnection(ctx, conn, &postgres.Config{
		MigrationsTable:  r.config.TableName,
		StatementTimeout: r.config.StatementTimeout,
	})
	if err != nil {
		conn.Close()
		src.Close()
		return nil, fmt.Errorf("migration driver oluşturulamadı: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", src, "postgres", driver)
	if err != nil {
		driver.Close()
		src.Close()
		return nil, fmt.Errorf("migrate başlatılamadı: %w", err)
	}
	m.Log = &zerologLogger{verbose: r.config.Verbose}
	m.LockTimeout = r.config.LockTimeout
	return m, nil
}

// Up bekleyen tüm migration'ları uygular
func (r *Runner) Up(ctx context.Context) (*MigrationResult, error) {
	return r.run(ctx, DirectionUp, func(m *migrate.Migrate) error { return m.Up() })
}

// MigrateTo belirtilen version'a (ileri veya geri) gider
func (r *Runner) MigrateTo(ctx context.Context, version uint) (*MigrationResult, error) {
	direction := DirectionUp
	status, err := r.Status(ctx)
	if err != nil {
		return nil, err
	}
	if version < status.CurrentVersion {
		direction = DirectionDown
	}
	return r.run(ctx, direction, func(m *migrate.Migrate) error { return m.Migrate(version) })
}

// Down son n migration'ı geri alır
func (r *Runner) Down(ctx context.Context, steps int) (*MigrationResult, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("geri alınacak adım sayısı pozitif olmalı: %d", steps)
	}
	return r.run(ctx, DirectionDown, func(m *migrate.Migrate) error { return m.Steps(-steps) })
}

// Force dirty state'i temizler; sadece elle müdahaleden sonra kullanılır
func (r *Runner) Force(ctx context.Context, version int) error {
	m, err := r.migrator(ctx)
	if err != nil {
		return err
	}
	defer closeMigrator(m)

	if err := m.Force(version); err != nil {
		return fmt.Errorf("force başarısız: %w", err)
	}
	log.Warn().Int("version", version).Msg("⚠️ Migration version zorla ayarlandı")
	return nil
}

// Status dosyaları ve veritabanındaki version'ı birleştirir
func (r *Runner) Status(ctx context.Context) (*MigrationStatus, error) {
	migrations, err := LoadMigrations(r.files, r.config.RequireDownFiles)
	if err != nil {
		return nil, err
	}

	m, err := r.migrator(ctx)
	if err != nil {
		return nil, err
	}
	defer closeMigrator(m)

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("migration version okunamadı: %w", err)
	}

	return buildStatus(migrations, version, dirty), nil
}

func (r *Runner) run(ctx context.Context, direction MigrationDirection, fn func(*migrate.Migrate) error) (*MigrationResult, error) {
	if _, err := LoadMigrations(r.files, r.config.RequireDownFiles); err != nil {
		return nil, err
	}

	m, err := r.migrator(ctx)
	if err != nil {
		return nil, err
	}
	defer closeMigrator(m)

	from, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return nil, fmt.Errorf("migration version okunamadı: %w", err)
	}

	start := time.Now()
	result := &MigrationResult{Direction: direction, FromVersion: from}

	err = fn(m)
	result.ExecutionTime = time.Since(start)
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		result.NoChange = true
	case err != nil:
		log.Error().Err(err).Str("direction", string(direction)).Uint("from", from).Msg("❌ Migration başarısız")
		return result, fmt.Errorf("migration %s başarısız: %w", direction, err)
	}

	to, _, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return result, fmt.Errorf("migration version okunamadı: %w", err)
	}
	result.ToVersion = to

	log.Info().
		Str("direction", string(direction)).
		Uint("from", result.FromVersion).
		Uint("to", result.ToVersion).
		Bool("no_change", result.NoChange).
		Dur("duration", result.ExecutionTime).
		Msg("🗄️ Migration tamamlandı")

	return result, nil
}

func closeMigrator(m *migrate.Migrate) {
	srcErr, dbErr := m.Close()
	if srcErr != nil || dbErr != nil {
		log.Warn().AnErr("source_error", srcErr).AnErr("db_error", dbErr).Msg("Migration kaynakları kapatılamadı")
	}
}

// zerologLogger golang-migrate çıktısını zerolog'a yönlendirir
type zerologLogger struct {
	verbose bool
}

func (l *zerologLogger) Printf(format string, v ...interface{}) {
	log.Debug().Str("component", "migrate").Msg(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func (l *zerologLogger) Verbose() bool {
	return l.verbose
}
