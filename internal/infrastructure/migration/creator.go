package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"text/template"
	"time"
)

const migrationTemplate = `-- {{.Name}} ({{.Direction}})
-- Created: {{.Timestamp}}
{{- if .Description}}
-- {{.Description}}
{{- end}}

`

var (
	migrationFilePattern = regexp.MustCompile(`^(\d+)_([a-z0-9_]+)\.(up|down)\.sql$`)
	nonWordPattern       = regexp.MustCompile(`[^a-z0-9]+`)
)

// MigrationFile describes a created up/down pair
type MigrationFile struct {
	Version     string
	Name        string
	Description string
	UpPath      string
	DownPath    string
}

// CreateMigration writes the next numbered up/down pair into dir. Versions
// are six-digit and sequential so they sort the same way golang-migrate
// applies them.
func CreateMigration(dir, name, description string) (*MigrationFile, error) {
	slug := sanitizeName(name)
	if slug == "" {
		return nil, fmt.Errorf("migration name %q has no usable characters", name)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create migrations directory: %w", err)
	}

	existing, err := ListMigrations(dir)
	if err != nil {
		return nil, err
	}
	next := uint64(1)
	if len(existing) > 0 {
		next = existing[len(existing)-1].Version + 1
	}

	version := fmt.Sprintf("%06d", next)
	base := filepath.Join(dir, version+"_"+slug)
	mf := &MigrationFile{
		Version:     version,
		Name:        slug,
		Description: description,
		UpPath:      base + ".up.sql",
		DownPath:    base + ".down.sql",
	}

	now := time.Now().UTC().Format(time.RFC3339)
	if err := writeMigrationFile(mf.UpPath, mf, "up", now); err != nil {
		return nil, err
	}
	if err := writeMigrationFile(mf.DownPath, mf, "down", now); err != nil {
		_ = os.Remove(mf.UpPath)
		return nil, err
	}
	return mf, nil
}

func writeMigrationFile(path string, mf *MigrationFile, direction, timestamp string) error {
	tmpl := template.Must(template.New("migration").Parse(migrationTemplate))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	return tmpl.Execute(f, map[string]string{
		"Name":        mf.Name,
		"Direction":   direction,
		"Timestamp":   timestamp,
		"Description": strings.TrimSpace(mf.Description),
	})
}

// sanitizeName lower-cases name and collapses anything else to underscores
func sanitizeName(name string) string {
	return strings.Trim(nonWordPattern.ReplaceAllString(strings.ToLower(name), "_"), "_")
}

// AvailableMigration is one migration found on disk
type AvailableMigration struct {
	Version uint64
	Name    string
	HasDown bool
}

// ListMigrations returns the migrations in dir ordered by version. A missing
// directory has none.
func ListMigrations(dir string) ([]AvailableMigration, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read migrations directory: %w", err)
	}

	byVersion := make(map[uint64]*AvailableMigration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		match := migrationFilePattern.FindStringSubmatch(entry.Name())
		if match == nil {
			continue
		}
		version, err := strconv.ParseUint(match[1], 10, 64)
		if err != nil {
			continue
		}
		m, ok := byVersion[version]
		if !ok {
			m = &AvailableMigration{Version: version, Name: match[2]}
			byVersion[version] = m
		}
		if match[3] == "down" {
			m.HasDown = true
		}
	}

	out := make([]AvailableMigration, 0, len(byVersion))
	for _, m := range byVersion {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version < out[j].Version })
	return out, nil
}
