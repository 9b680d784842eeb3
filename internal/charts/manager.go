// Package charts manages the lifecycle of persisted chart artifacts: the
// active directory of image+sidecar pairs, soft-delete into a trash
// directory, restore, and time-based purge.
package charts

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/haasonsaas/chartd/internal/observability"
	"github.com/haasonsaas/chartd/internal/render"
)

// Prefix is the reserved filename prefix of the chart namespace.
const Prefix = "chart_"

const deletedAtKey = "deleted_at"

var (
	// ErrInvalidFilename marks a request outside the chart namespace.
	ErrInvalidFilename = errors.New("invalid chart filename")

	// ErrNotFound marks a chart that does not exist where expected.
	ErrNotFound = errors.New("chart not found")
)

// TrashEntry is one soft-deleted chart as reported by ListTrash.
type TrashEntry struct {
	Filename  string         `json:"filename"`
	DeletedAt time.Time      `json:"deleted_at"`
	ExpiresAt time.Time      `json:"expires_at"`
	Metadata  map[string]any `json:"metadata"`
}

// Manager owns the active and trash chart directories.
type Manager struct {
	dir       string
	trashDir  string
	retention time.Duration
	log       *observability.Logger
	metrics   *observability.Metrics
	now       func() time.Time
}

// New returns a Manager over the given directories, creating them if
// needed.
func New(dir, trashDir string, retention time.Duration, log *observability.Logger, metrics *observability.Metrics) (*Manager, error) {
	for _, d := range []string{dir, trashDir} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("creating chart dir %s: %w", d, err)
		}
	}
	return &Manager{
		dir:       dir,
		trashDir:  trashDir,
		retention: retention,
		log:       log,
		metrics:   metrics,
		now:       time.Now,
	}, nil
}

// normalize validates a chart filename and returns its stem (no
// extension). Validation happens before any filesystem access: the name
// must carry the reserved prefix and must not contain path separators or
// parent references. Requests may name the image, the sidecar, or the bare
// stem.
func normalize(filename string) (string, error) {
	if !strings.HasPrefix(filename, Prefix) {
		return "", fmt.Errorf("%w: %q must start with %q", ErrInvalidFilename, filename, Prefix)
	}
	if strings.ContainsAny(filename, `/\`) || strings.Contains(filename, "..") {
		return "", fmt.Errorf("%w: %q contains path segments", ErrInvalidFilename, filename)
	}
	stem := strings.TrimSuffix(filename, ".json")
	stem = strings.TrimSuffix(stem, ".png")
	return stem, nil
}

// Stem validates a chart filename and returns its extension-free stem.
func Stem(filename string) (string, error) {
	return normalize(filename)
}

// ImagePath returns the active-directory path for a validated stem.
func (m *Manager) ImagePath(stem string) string {
	return filepath.Join(m.dir, stem+".png")
}

// Delete stamps the chart's metadata with a deletion time and moves both
// image and sidecar into the trash directory. The image move is rolled
// back if the sidecar cannot be written, so a reported success always
// means both files moved.
func (m *Manager) Delete(ctx context.Context, filename string) error {
	stem, err := normalize(filename)
	if err != nil {
		return err
	}

	imgPath := filepath.Join(m.dir, stem+".png")
	if _, err := os.Stat(imgPath); err != nil {
		return fmt.Errorf("%w: %s", ErrNotFound, stem)
	}

	meta := m.readSidecar(filepath.Join(m.dir, stem+".json"))
	meta[deletedAtKey] = m.now().Format(time.RFC3339Nano)

	trashImg := filepath.Join(m.trashDir, stem+".png")
	if err := os.Rename(imgPath, trashImg); err != nil {
		return fmt.Errorf("moving chart to trash: %w", err)
	}
	if err := writeJSON(filepath.Join(m.trashDir, stem+".json"), meta); err != nil {
		if undo := os.Rename(trashImg, imgPath); undo != nil {
			m.log.Error(ctx, "trash rollback failed", "file", stem, "error", undo)
		}
		return fmt.Errorf("writing trash metadata: %w", err)
	}
	os.Remove(filepath.Join(m.dir, stem+".json"))

	m.log.Info(ctx, "chart moved to trash", "file", stem)
	return nil
}

// ListTrash purges expired items, then returns the remaining trash
// entries newest-deletion-first. Corrupt sidecars are skipped.
func (m *Manager) ListTrash(ctx context.Context) ([]TrashEntry, error) {
	m.Purge(ctx)

	sidecars, err := filepath.Glob(filepath.Join(m.trashDir, Prefix+"*.json"))
	if err != nil {
		return nil, fmt.Errorf("scanning trash: %w", err)
	}

	entries := make([]TrashEntry, 0, len(sidecars))
	for _, path := range sidecars {
		meta, deletedAt, err := m.readTrashSidecar(path)
		if err != nil {
			m.log.Warn(ctx, "skipping corrupt trash sidecar", "file", filepath.Base(path), "error", err)
			continue
		}
		delete(meta, deletedAtKey)
		stem := strings.TrimSuffix(filepath.Base(path), ".json")
		entries = append(entries, TrashEntry{
			Filename:  stem + ".png",
			DeletedAt: deletedAt,
			ExpiresAt: deletedAt.Add(m.retention),
			Metadata:  meta,
		})
	}

	sort.Slice(entries, func(a, b int) bool {
		return entries[a].DeletedAt.After(entries[b].DeletedAt)
	})
	return entries, nil
}

// Restore moves a trashed chart back to the active directory with its
// deletion stamp removed, and returns the restored URL and metadata.
func (m *Manager) Restore(ctx context.Context, filename string) (string, map[string]any, error) {
	stem, err := normalize(filename)
	if err != nil {
		return "", nil, err
	}

	trashImg := filepath.Join(m.trashDir, stem+".png")
	if _, err := os.Stat(trashImg); err != nil {
		return "", nil, fmt.Errorf("%w: %s not in trash", ErrNotFound, stem)
	}

	meta := m.readSidecar(filepath.Join(m.trashDir, stem+".json"))
	delete(meta, deletedAtKey)

	imgPath := filepath.Join(m.dir, stem+".png")
	if err := os.Rename(trashImg, imgPath); err != nil {
		return "", nil, fmt.Errorf("restoring chart image: %w", err)
	}
	if err := writeJSON(filepath.Join(m.dir, stem+".json"), meta); err != nil {
		if undo := os.Rename(imgPath, trashImg); undo != nil {
			m.log.Error(ctx, "restore rollback failed", "file", stem, "error", undo)
		}
		return "", nil, fmt.Errorf("writing restored metadata: %w", err)
	}
	os.Remove(filepath.Join(m.trashDir, stem+".json"))

	url := render.ChartURLPrefix + stem + ".png"
	if u, ok := meta["chart_url"].(string); ok && u != "" {
		url = u
	}
	m.log.Info(ctx, "chart restored", "file", stem)
	return url, meta, nil
}

// Purge permanently removes every trashed pair whose deletion time is
// older than the retention window. Corrupt sidecars are left in place.
func (m *Manager) Purge(ctx context.Context) {
	sidecars, err := filepath.Glob(filepath.Join(m.trashDir, Prefix+"*.json"))
	if err != nil {
		m.log.Error(ctx, "trash purge scan failed", "error", err)
		return
	}

	cutoff := m.now().Add(-m.retention)
	for _, path := range sidecars {
		_, deletedAt, err := m.readTrashSidecar(path)
		if err != nil || !deletedAt.Before(cutoff) {
			continue
		}
		stem := strings.TrimSuffix(filepath.Base(path), ".json")
		os.Remove(filepath.Join(m.trashDir, stem+".png"))
		os.Remove(path)
		if m.metrics != nil {
			m.metrics.TrashPurged.Inc()
		}
		m.log.Info(ctx, "trash purged", "file", stem, "deleted_at", deletedAt)
	}
}

// RunPurgeLoop purges on a fixed interval until the context is canceled.
func (m *Manager) RunPurgeLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Purge(ctx)
		}
	}
}

// readSidecar loads a sidecar as a loose map, or an empty map when the
// file is missing or corrupt. A chart with a damaged sidecar can still be
// deleted and restored.
func (m *Manager) readSidecar(path string) map[string]any {
	raw, err := os.ReadFile(path)
	if err != nil {
		return map[string]any{}
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil || meta == nil {
		return map[string]any{}
	}
	return meta
}

// readTrashSidecar loads a trash sidecar and its deletion time.
func (m *Manager) readTrashSidecar(path string) (map[string]any, time.Time, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, time.Time{}, err
	}
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, time.Time{}, err
	}
	stamp, ok := meta[deletedAtKey].(string)
	if !ok {
		return nil, time.Time{}, fmt.Errorf("sidecar %s has no %s", filepath.Base(path), deletedAtKey)
	}
	deletedAt, err := time.Parse(time.RFC3339Nano, stamp)
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("bad %s in %s: %w", deletedAtKey, filepath.Base(path), err)
	}
	return meta, deletedAt, nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return err
	}
	return nil
}
