// Package maintenance keeps the snapshot store bounded and marks snapshots
// stale when the AI model changes.
package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dtnitsch/actionsense/pkg/ai"
	"github.com/dtnitsch/actionsense/pkg/db"
)

// Store is what maintenance needs from persistence.
type Store interface {
	SnapshotSizes(ctx context.Context) ([]db.SnapshotSize, error)
	DeleteSnapshots(ctx context.Context, stale []db.SnapshotSize) (int, error)
	BytesInUse(ctx context.Context) (int64, error)
	MarkAllForRefresh(ctx context.Context) (int, error)
	ModelVersion(ctx context.Context) (string, error)
	SetModelVersion(ctx context.Context, version string) error
}

// VersionSource reports the model version currently served.
type VersionSource interface {
	ModelVersion(ctx context.Context) (string, error)
}

type Options struct {
	Interval time.Duration
	MaxAge   time.Duration
	MaxBytes int64
	Logger   *slog.Logger
	Now      func() time.Time
}

type Maintainer struct {
	store    Store
	versions VersionSource
	opts     Options
}

func New(store Store, versions VersionSource, opts Options) *Maintainer {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Maintainer{store: store, versions: versions, opts: opts}
}

// EnsureModelVersion compares the served model with the stored one. On a
// change every snapshot is marked for AI refresh and the new version is
// stored. An "unknown" version never triggers a refresh.
func (m *Maintainer) EnsureModelVersion(ctx context.Context) (bool, error) {
	if m.versions == nil {
		return false, nil
	}
	current, err := m.versions.ModelVersion(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to read model version: %w", err)
	}
	if current == "" || current == ai.UnknownVersion {
		return false, nil
	}
	stored, err := m.store.ModelVersion(ctx)
	if err != nil {
		return false, err
	}
	if stored == current {
		return false, nil
	}

	n, err := m.store.MarkAllForRefresh(ctx)
	if err != nil {
		return false, err
	}
	if err := m.store.SetModelVersion(ctx, current); err != nil {
		return false, err
	}
	m.opts.Logger.Info("model changed, snapshots marked for refresh",
		"previous", stored, "current", current, "snapshots", n)
	return true, nil
}

// Report describes one cleanup pass.
type Report struct {
	Expired     int   `json:"expired" yaml:"expired"`
	Evicted     int   `json:"evicted" yaml:"evicted"`
	BytesBefore int64 `json:"bytesBefore" yaml:"bytes_before"`
	BytesAfter  int64 `json:"bytesAfter" yaml:"bytes_after"`
}

// Cleanup deletes snapshots not updated within MaxAge, then evicts the
// oldest remaining snapshots until storage fits in MaxBytes. A zero limit
// disables that step.
func (m *Maintainer) Cleanup(ctx context.Context) (Report, error) {
	var r Report

	sizes, err := m.store.SnapshotSizes(ctx)
	if err != nil {
		return r, err
	}
	r.BytesBefore, err = m.store.BytesInUse(ctx)
	if err != nil {
		return r, err
	}

	live := sizes
	if m.opts.MaxAge > 0 {
		cutoff := m.opts.Now().Add(-m.opts.MaxAge)
		var expired []db.SnapshotSize
		live = live[:0:0]
		for _, s := range sizes {
			if s.UpdatedAt.Before(cutoff) {
				expired = append(expired, s)
				continue
			}
			live = append(live, s)
		}
		if r.Expired, err = m.store.DeleteSnapshots(ctx, expired); err != nil {
			return r, err
		}
	}

	r.BytesAfter, err = m.store.BytesInUse(ctx)
	if err != nil {
		return r, err
	}

	if m.opts.MaxBytes > 0 && r.BytesAfter > m.opts.MaxBytes {
		// live is oldest first.
		remaining := r.BytesAfter
		var evict []db.SnapshotSize
		for _, s := range live {
			if remaining <= m.opts.MaxBytes {
				break
			}
			evict = append(evict, s)
			remaining -= s.Bytes
		}
		if len(evict) > 0 {
			if r.Evicted, err = m.store.DeleteSnapshots(ctx, evict); err != nil {
				return r, err
			}
			r.BytesAfter, err = m.store.BytesInUse(ctx)
			if err != nil {
				return r, err
			}
		}
	}

	if r.Expired > 0 || r.Evicted > 0 {
		m.opts.Logger.Info("snapshot cleanup",
			"expired", r.Expired, "evicted", r.Evicted,
			"bytes_before", r.BytesBefore, "bytes_after", r.BytesAfter)
	}
	return r, nil
}

// Run checks the model version, cleans up once, then cleans up every
// Interval until ctx is done. Failures are logged and do not stop the loop.
func (m *Maintainer) Run(ctx context.Context) {
	if _, err := m.EnsureModelVersion(ctx); err != nil {
		m.opts.Logger.Error("model version check failed", "error", err)
	}
	m.runCleanup(ctx)

	if m.opts.Interval <= 0 {
		return
	}
	ticker := time.NewTicker(m.opts.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.runCleanup(ctx)
		}
	}
}

func (m *Maintainer) runCleanup(ctx context.Context) {
	if _, err := m.Cleanup(ctx); err != nil {
		m.opts.Logger.Error("cleanup failed", "error", err)
	}
}
