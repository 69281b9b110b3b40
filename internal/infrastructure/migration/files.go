package migration

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

const upSuffix = ".up.sql"

// Create writes an empty up/down migration pair using the next sequential
// version in dir (000001, 000002, ...). It returns the two file paths.
func Create(dir, name string) (upPath, downPath string, err error) {
	slug := sanitizeName(name)
	if slug == "" {
		return "", "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create migrations directory: %w", err)
	}

	version, err := nextVersion(dir)
	if err != nil {
		return "", "", err
	}

	base := fmt.Sprintf("%06d_%s", version, slug)
	upPath = filepath.Join(dir, base+upSuffix)
	downPath = filepath.Join(dir, base+".down.sql")

	upBody := fmt.Sprintf("-- %s\n", strings.ReplaceAll(slug, "_", " "))
	if err := os.WriteFile(upPath, []byte(upBody), 0o644); err != nil {
		return "", "", fmt.Errorf("failed to write %s: %w", upPath, err)
	}
	downBody := fmt.Sprintf("-- revert %s\n", strings.ReplaceAll(slug, "_", " "))
	if err := os.WriteFile(downPath, []byte(downBody), 0o644); err != nil {
		_ = os.Remove(upPath)
		return "", "", fmt.Errorf("failed to write %s: %w", downPath, err)
	}

	return upPath, downPath, nil
}

// nextVersion returns one past the highest sequential version in dir.
func nextVersion(dir string) (int, error) {
	names, err := List(dir)
	if err != nil {
		return 0, err
	}

	highest := 0
	for _, name := range names {
		prefix, _, ok := strings.Cut(name, "_")
		if !ok {
			continue
		}
		if v, err := strconv.Atoi(prefix); err == nil && v > highest {
			highest = v
		}
	}
	return highest + 1, nil
}

// List returns the sorted base names of the migrations in dir (one entry
// per up/down pair). A missing directory is an empty list.
func List(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*"+upSuffix))
	if err != nil {
		return nil, fmt.Errorf("failed to scan migrations directory: %w", err)
	}

	names := make([]string, 0, len(matches))
	for _, match := range matches {
		if info, err := os.Stat(match); err != nil || info.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(filepath.Base(match), upSuffix))
	}
	sort.Strings(names)
	return names, nil
}

// sanitizeName lowercases a migration name and collapses separators and
// non-alphanumerics into single underscores.
func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			s := b.String()
			if s != "" && !strings.HasSuffix(s, "_") {
				b.WriteByte('_')
			}
		}
	}
	return strings.TrimSuffix(b.String(), "_")
}
