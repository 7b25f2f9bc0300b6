package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"

	"github.com/dtnitsch/actionsense/models"
)

// SnapshotSize is the stored footprint of one snapshot.
type SnapshotSize struct {
	TabID     int
	Bytes     int64
	UpdatedAt time.Time
}

// GetSnapshot returns the snapshot for tabID, or nil when none is stored.
func (db *DB) GetSnapshot(ctx context.Context, tabID int) (*models.PageSnapshot, error) {
	var data string
	err := db.QueryRowContext(ctx, "SELECT data FROM snapshots WHERE tab_id = ?", tabID).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	var snap models.PageSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot %d: %w", tabID, err)
	}
	return &snap, nil
}

// SaveSnapshot upserts snap keyed by its TabID.
func (db *DB) SaveSnapshot(ctx context.Context, snap *models.PageSnapshot) error {
	return saveSnapshot(ctx, db.DB, snap)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func saveSnapshot(ctx context.Context, ex execer, snap *models.PageSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot %d: %w", snap.TabID, err)
	}
	_, err = ex.ExecContext(ctx, `
		INSERT INTO snapshots (tab_id, data, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(tab_id) DO UPDATE SET
			data = excluded.data,
			updated_at = excluded.updated_at
	`, snap.TabID, string(data), snap.UpdatedAt.UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save snapshot %d: %w", snap.TabID, err)
	}
	return nil
}

// DeleteSnapshot removes the snapshot for tabID. Deleting a missing
// snapshot is not an error.
func (db *DB) DeleteSnapshot(ctx context.Context, tabID int) error {
	if _, err := db.ExecContext(ctx, "DELETE FROM snapshots WHERE tab_id = ?", tabID); err != nil {
		return fmt.Errorf("failed to delete snapshot %d: %w", tabID, err)
	}
	return nil
}

// DeleteSnapshots removes the given snapshots, skipping any whose
// updated_at no longer matches the size listing it came from (the tab was
// saved again since). It returns how many rows were deleted.
func (db *DB) DeleteSnapshots(ctx context.Context, stale []SnapshotSize) (int, error) {
	if len(stale) == 0 {
		return 0, nil
	}
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted := 0
	for _, s := range stale {
		res, err := tx.ExecContext(ctx, "DELETE FROM snapshots WHERE tab_id = ? AND updated_at = ?",
			s.TabID, s.UpdatedAt.UnixMilli())
		if err != nil {
			return 0, fmt.Errorf("failed to delete snapshot %d: %w", s.TabID, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, fmt.Errorf("failed to count deleted rows: %w", err)
		}
		deleted += int(n)
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletes: %w", err)
	}
	return deleted, nil
}

// ListSnapshots returns every snapshot, most recently updated first.
func (db *DB) ListSnapshots(ctx context.Context) ([]*models.PageSnapshot, error) {
	return listSnapshots(ctx, db.DB)
}

type querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func listSnapshots(ctx context.Context, q querier) ([]*models.PageSnapshot, error) {
	rows, err := q.QueryContext(ctx, "SELECT tab_id, data FROM snapshots ORDER BY updated_at DESC, tab_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshots: %w", err)
	}
	defer rows.Close()

	var out []*models.PageSnapshot
	for rows.Next() {
		var tabID int
		var data string
		if err := rows.Scan(&tabID, &data); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot: %w", err)
		}
		var snap models.PageSnapshot
		if err := json.Unmarshal([]byte(data), &snap); err != nil {
			return nil, fmt.Errorf("failed to decode snapshot %d: %w", tabID, err)
		}
		out = append(out, &snap)
	}
	return out, rows.Err()
}

// SnapshotSizes lists every snapshot's stored size, oldest first.
func (db *DB) SnapshotSizes(ctx context.Context) ([]SnapshotSize, error) {
	rows, err := db.QueryContext(ctx, "SELECT tab_id, LENGTH(data), updated_at FROM snapshots ORDER BY updated_at, tab_id")
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot sizes: %w", err)
	}
	defer rows.Close()

	var out []SnapshotSize
	for rows.Next() {
		var s SnapshotSize
		var updated int64
		if err := rows.Scan(&s.TabID, &s.Bytes, &updated); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot size: %w", err)
		}
		s.UpdatedAt = time.UnixMilli(updated)
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkAllForRefresh sets needsAiRefresh on every stored snapshot and returns
// how many were updated.
func (db *DB) MarkAllForRefresh(ctx context.Context) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	snaps, err := listSnapshots(ctx, tx)
	if err != nil {
		return 0, err
	}
	for _, s := range snaps {
		s.NeedsAIRefresh = true
		if err := saveSnapshot(ctx, tx, s); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit refresh marks: %w", err)
	}
	return len(snaps), nil
}
