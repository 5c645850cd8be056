// internal/migration/types.go
package migration

import "time"

// HealthStatus migration sisteminin genel sağlık durumunu belirtir
type HealthStatus string

const (
	StatusHealthy HealthStatus = "healthy" // Tüm migration'lar uygulanmış
	StatusWarning HealthStatus = "warning" // Pending migration'lar var
	StatusError   HealthStatus = "error"   // Dirty state, elle force gerekir
)

// MigrationDirection migration yönünü belirtir
type MigrationDirection string

const (
	DirectionUp   MigrationDirection = "up"
	DirectionDown MigrationDirection = "down"
)

// Migration gömülü tek bir migration
type Migration struct {
	Version     uint   `json:"version"` // timestamp: 20251001090000
	Name        string `json:"name"`
	Description string `json:"description,omitempty"` // up dosyasının ilk yorum satırı
	UpChecksum  string `json:"upChecksum"`
	HasDownFile bool   `json:"hasDownFile"`
	Applied     bool   `json:"applied"`
}

// MigrationStatus migration sisteminin genel durumunu gösterir
type MigrationStatus struct {
	CurrentVersion uint         `json:"currentVersion"`
	Dirty          bool         `json:"dirty"`
	Migrations     []Migration  `json:"migrations"`
	TotalCount     int          `json:"totalCount"`
	AppliedCount   int          `json:"appliedCount"`
	PendingCount   int          `json:"pendingCount"`
	SystemHealth   HealthStatus `json:"systemHealth"`
}

// MigrationResult bir migration işleminin sonucunu tutar
type MigrationResult struct {
	Direction     MigrationDirection `json:"direction"`
	FromVersion   uint               `json:"fromVersion"`
	ToVersion     uint               `json:"toVersion"`
	NoChange      bool               `json:"noChange"`
	ExecutionTime time.Duration      `json:"executionTime"`
}

// MigrationConfig migration ayarlarını tutar
type MigrationConfig struct {
	TableName        string        `json:"tableName"`        // Takip tablosu adı
	LockTimeout      time.Duration `json:"lockTimeout"`      // advisory lock bekleme süresi
	StatementTimeout time.Duration `json:"statementTimeout"` // 0 = sınırsız
	RequireDownFiles bool          `json:"requireDownFiles"`
	Verbose          bool          `json:"verbose"`
}

// DefaultConfig varsayılan ayarları döner
func DefaultConfig() *MigrationConfig {
	return &MigrationConfig{
		TableName:        "schema_migrations",
		LockTimeout:      5 * time.Minute,
		StatementTimeout: 0,
		RequireDownFiles: false,
		Verbose:          false,
	}
}

// CLIConfig CLI kullanımı için ayarlar
func CLIConfig() *MigrationConfig {
	c := DefaultConfig()
	c.LockTimeout = 30 * time.Minute // CLI: manuel işlem
	c.RequireDownFiles = true        // CLI: down dosyası zorunlu
	c.Verbose = true
	return c
}

// AppStartupConfig uygulama başlangıcı için ayarlar
func AppStartupConfig() *MigrationConfig {
	c := DefaultConfig()
	c.LockTimeout = 3 * time.Minute
	c.StatementTimeout = time.Minute
	return c
}
