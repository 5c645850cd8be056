package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoadMigrations_Embedded gömülü şema dosyaları sıralı ve eksiksiz
func TestLoadMigrations_Embedded(t *testing.T) {
	migrations, err := LoadMigrations(Files(), true)
	require.NoError(t, err)

	names := make([]string, 0, len(migrations))
	for i, m := range migrations {
		names = append(names, m.Name)
		assert.True(t, m.HasDownFile, m.Name)
		assert.Len(t, m.UpChecksum, 64)
		if i > 0 {
			assert.Greater(t, m.Version, migrations[i-1].Version)
		}
	}
	assert.Equal(t, []string{
		"Create Balances",
		"Create Transactions",
		"Create Daily Limits",
		"Create Profiles",
		"Create Conversions",
		"Create Audit Logs",
	}, names)
	assert.Equal(t, "Append-only ledger", migrations[1].Description)
}

func TestLoadMigrations_Errors(t *testing.T) {
	tests := []struct {
		name        string
		files       fstest.MapFS
		requireDown bool
	}{
		{"geçersiz isim", fstest.MapFS{"1_init.up.sql": {Data: []byte("SELECT 1;")}}, false},
		{"up dosyası yok", fstest.MapFS{"20251001090000_init.down.sql": {Data: []byte("SELECT 1;")}}, false},
		{"down zorunlu", fstest.MapFS{"20251001090000_init.up.sql": {Data: []byte("SELECT 1;")}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadMigrations(tt.files, tt.requireDown)
			assert.Error(t, err)
		})
	}
}

func TestBuildStatus(t *testing.T) {
	migrations := []Migration{{Version: 1}, {Version: 2}, {Version: 3}}

	fresh := buildStatus(migrations, 0, false)
	assert.Equal(t, 3, fresh.PendingCount)
	assert.Equal(t, StatusWarning, fresh.SystemHealth)

	partial := buildStatus(migrations, 2, false)
	assert.Equal(t, 2, partial.AppliedCount)
	assert.True(t, partial.Migrations[1].Applied)
	assert.False(t, partial.Migrations[2].Applied)

	done := buildStatus(migrations, 3, false)
	assert.Equal(t, StatusHealthy, done.SystemHealth)
	assert.Zero(t, done.PendingCount)

	dirty := buildStatus(migrations, 2, true)
	assert.Equal(t, StatusError, dirty.SystemHealth)
	assert.Equal(t, 1, dirty.AppliedCount)
}

func TestCreateFiles(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC)

	up, down, err := CreateFiles(dir, "Add payout status", now)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "20261017093000_add_payout_status.up.sql"), up)
	assert.FileExists(t, down)

	migrations, err := LoadMigrations(os.DirFS(dir), true)
	require.NoError(t, err)
	require.Len(t, migrations, 1)
	assert.Equal(t, "Add Payout Status", migrations[0].Name)
	assert.Equal(t, "Add Payout Status", migrations[0].Description)

	_, _, err = CreateFiles(dir, "  ", now)
	assert.Error(t, err)
}
