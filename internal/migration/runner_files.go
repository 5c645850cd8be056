// internal/migration/runner_files.go
package migration

import (
	"crypto/sha256"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"
)

// 14 haneli timestamp (YYYYMMDDHHMMSS) + isim
var migrationFilePattern = regexp.MustCompile(`^(\d{14})_([a-z0-9_]+)\.(up|down)\.sql$`)

var nonSlugChars = regexp.MustCompile(`[^a-zA-Z0-9]+`)

// LoadMigrations fsys kökündeki migration dosyalarını version sırasıyla döner
func LoadMigrations(fsys fs.FS, requireDown bool) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return nil, fmt.Errorf("migration klasörü okunamadı: %w", err)
	}

	byVersion := make(map[uint]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		matches := migrationFilePattern.FindStringSubmatch(entry.Name())
		if len(matches) != 4 {
			return nil, fmt.Errorf("geçersiz migration dosya formatı: %s", entry.Name())
		}

		version, err := strconv.ParseUint(matches[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("geçersiz version formatı %s: %w", matches[1], err)
		}

		m, ok := byVersion[uint(version)]
		if !ok {
			m = &Migration{Version: uint(version), Name: toTitleCase(strings.ReplaceAll(matches[2], "_", " "))}
			byVersion[uint(version)] = m
		}

		if matches[3] == "down" {
			m.HasDownFile = true
			continue
		}

		content, err := fs.ReadFile(fsys, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("UP dosyası okunamadı %s: %w", entry.Name(), err)
		}
		m.UpChecksum = fmt.Sprintf("%x", sha256.Sum256(content))
		m.Description = extractDescription(string(content))
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpChecksum == "" {
			return nil, fmt.Errorf("UP dosyası bulunamadı: version %d", m.Version)
		}
		if requireDown && !m.HasDownFile {
			return nil, fmt.Errorf("DOWN dosyası zorunlu ama bulunamadı: version %d", m.Version)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	return migrations, nil
}

// buildStatus veritabanındaki version ile dosyaları birleştirir.
// golang-migrate doğrusal çalışır: version'a kadar olan her şey uygulanmıştır.
func buildStatus(migrations []Migration, current uint, dirty bool) *MigrationStatus {
	status := &MigrationStatus{
		CurrentVersion: current,
		Dirty:          dirty,
		Migrations:     make([]Migration, len(migrations)),
		TotalCount:     len(migrations),
	}

	for i, m := range migrations {
		m.Applied = current != 0 && m.Version <= current
		if dirty && m.Version == current {
			m.Applied = false
		}
		if m.Applied {
			status.AppliedCount++
		}
		status.Migrations[i] = m
	}
	status.PendingCount = status.TotalCount - status.AppliedCount

	switch {
	case dirty:
		status.SystemHealth = StatusError
	case status.PendingCount > 0:
		status.SystemHealth = StatusWarning
	default:
		status.SystemHealth = StatusHealthy
	}
	return status
}

// CreateFiles dir içinde boş up/down dosyaları oluşturur
func CreateFiles(dir, name string, now time.Time) (upPath, downPath string, err error) {
	slug := strings.Trim(strings.ToLower(nonSlugChars.ReplaceAllString(name, "_")), "_")
	if slug == "" {
		return "", "", fmt.Errorf("migration adı boş olamaz")
	}

	base := fmt.Sprintf("%s_%s", now.UTC().Format("20060102150405"), slug)
	upPath = filepath.Join(dir, base+".up.sql")
	downPath = filepath.Join(dir, base+".down.sql")

	header := fmt.Sprintf("-- %s\n", toTitleCase(strings.ReplaceAll(slug, "_", " ")))
	if err := os.WriteFile(upPath, []byte(header), 0644); err != nil {
		return "", "", fmt.Errorf("UP dosyası yazılamadı: %w", err)
	}
	if err := os.WriteFile(downPath, []byte(header), 0644); err != nil {
		return "", "", fmt.Errorf("DOWN dosyası yazılamadı: %w", err)
	}
	return upPath, downPath, nil
}

// SQL dosyasının başındaki açıklama yorum satırını çıkarır
func extractDescription(sqlContent string) string {
	for _, line := range strings.Split(sqlContent, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "--") {
			break
		}
		if desc := strings.TrimSpace(strings.TrimPrefix(line, "--")); desc != "" {
			return desc
		}
	}
	return ""
}

// strings.Title deprecated olduğu için basit title-case
func toTitleCase(s string) string {
	parts := strings.Fields(strings.ToLower(s))
	for i, p := range parts {
		if len(p) > 0 {
			parts[i] = strings.ToUpper(p[:1]) + p[1:]
		}
	}
	return strings.Join(parts, " ")
}
