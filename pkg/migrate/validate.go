package migrate

import (
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"
)

var sqlFileRe = regexp.MustCompile(`^(\d{14})_[a-z0-9_]+\.sql$`)

const (
	markerUp        = "-- +goose Up"
	markerDown      = "-- +goose Down"
	markerStmtBegin = "-- +goose StatementBegin"
	markerStmtEnd   = "-- +goose StatementEnd"
)

// ValidateDir checks the migrations under dir on disk.
func ValidateDir(dir string) error {
	if dir == "" {
		return fmt.Errorf("dir is required")
	}
	return validateFS(os.DirFS(dir), ".", dir)
}

// ValidateEmbedded checks the migration set compiled into the binary.
func ValidateEmbedded() error {
	return validateFS(embedded, embeddedDir, "embedded:"+embeddedDir)
}

// validateFS enforces YYYYMMDDHHMMSS_name.sql filenames with unique
// versions, an Up section before the Down section and balanced statement
// blocks. An empty set is an error.
func validateFS(fsys fs.FS, dir, label string) error {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return fmt.Errorf("read dir %q: %w", label, err)
	}

	seen := map[string]string{}
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, ".sql") {
			continue
		}

		m := sqlFileRe.FindStringSubmatch(name)
		if m == nil {
			return fmt.Errorf("invalid migration filename %q (expected YYYYMMDDHHMMSS_name.sql)", name)
		}
		if prev, ok := seen[m[1]]; ok {
			return fmt.Errorf("duplicate migration version %s in %q and %q", m[1], prev, name)
		}
		seen[m[1]] = name

		body, err := fs.ReadFile(fsys, joinFS(dir, name))
		if err != nil {
			return fmt.Errorf("read file %q: %w", name, err)
		}
		if err := checkAnnotations(string(body)); err != nil {
			return fmt.Errorf("migration %q: %w", name, err)
		}
	}

	if len(seen) == 0 {
		return fmt.Errorf("no migrations found in %q", label)
	}
	return nil
}

func checkAnnotations(txt string) error {
	up := strings.Index(txt, markerUp)
	if up < 0 {
		return fmt.Errorf("missing %q", markerUp)
	}
	down := strings.Index(txt, markerDown)
	if down < 0 {
		return fmt.Errorf("missing %q", markerDown)
	}
	if down < up {
		return fmt.Errorf("%q must precede %q", markerUp, markerDown)
	}
	if b, e := strings.Count(txt, markerStmtBegin), strings.Count(txt, markerStmtEnd); b != e {
		return fmt.Errorf("unbalanced statement blocks: %d begin, %d end", b, e)
	}
	return nil
}

func joinFS(dir, name string) string {
	if dir == "." || dir == "" {
		return name
	}
	return dir + "/" + name
}
