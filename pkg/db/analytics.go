package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dtnitsch/actionsense/models"
)

// UpdateCategoryAnalytics applies one category transition: prev loses a
// visit (floored at zero, zero rows removed) and next gains one. An empty
// prev only increments. It returns the counts after the update.
func (db *DB) UpdateCategoryAnalytics(ctx context.Context, prev, next models.Category) (models.CategoryAnalytics, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if prev != "" && prev != next {
		if _, err := tx.ExecContext(ctx,
			"UPDATE category_analytics SET count = count - 1 WHERE category = ? AND count > 0", prev); err != nil {
			return nil, fmt.Errorf("failed to decrement %s: %w", prev, err)
		}
		if _, err := tx.ExecContext(ctx,
			"DELETE FROM category_analytics WHERE category = ? AND count <= 0", prev); err != nil {
			return nil, fmt.Errorf("failed to remove %s: %w", prev, err)
		}
	}
	if next != "" && prev != next {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO category_analytics (category, count) VALUES (?, 1)
			ON CONFLICT(category) DO UPDATE SET count = count + 1
		`, next); err != nil {
			return nil, fmt.Errorf("failed to increment %s: %w", next, err)
		}
	}

	counts, err := categoryAnalytics(ctx, tx)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit analytics: %w", err)
	}
	return counts, nil
}

// CategoryAnalytics returns the current visit counts.
func (db *DB) CategoryAnalytics(ctx context.Context) (models.CategoryAnalytics, error) {
	return categoryAnalytics(ctx, db.DB)
}

func categoryAnalytics(ctx context.Context, q querier) (models.CategoryAnalytics, error) {
	rows, err := q.QueryContext(ctx, "SELECT category, count FROM category_analytics")
	if err != nil {
		return nil, fmt.Errorf("failed to load analytics: %w", err)
	}
	defer rows.Close()

	out := models.CategoryAnalytics{}
	for rows.Next() {
		var cat string
		var n int
		if err := rows.Scan(&cat, &n); err != nil {
			return nil, fmt.Errorf("failed to scan analytics: %w", err)
		}
		out[models.Category(cat)] = n
	}
	return out, rows.Err()
}

// AppendActionHistory records entry and trims the log to the newest limit
// entries.
func (db *DB) AppendActionHistory(ctx context.Context, e models.ActionHistoryEntry, limit int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO action_history (id, category, action, tab_id, url, timestamp)
		VALUES (?, ?, ?, ?, ?, ?)
	`, e.ID, string(e.Category), e.Action, e.TabID, e.URL, e.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert action history: %w", err)
	}
	if limit > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM action_history WHERE seq NOT IN (
				SELECT seq FROM action_history ORDER BY seq DESC LIMIT ?
			)
		`, limit); err != nil {
			return fmt.Errorf("failed to trim action history: %w", err)
		}
	}
	return tx.Commit()
}

// ActionHistory returns the log newest first.
func (db *DB) ActionHistory(ctx context.Context) ([]models.ActionHistoryEntry, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, category, action, tab_id, COALESCE(url, ''), timestamp
		FROM action_history ORDER BY seq DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to load action history: %w", err)
	}
	defer rows.Close()

	var out []models.ActionHistoryEntry
	for rows.Next() {
		var e models.ActionHistoryEntry
		var cat string
		var ts int64
		if err := rows.Scan(&e.ID, &cat, &e.Action, &e.TabID, &e.URL, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan action history: %w", err)
		}
		e.Category = models.Category(cat)
		e.Timestamp = time.UnixMilli(ts)
		out = append(out, e)
	}
	return out, rows.Err()
}

// AppendFocusEvent records ev and trims the log to the newest limit events.
func (db *DB) AppendFocusEvent(ctx context.Context, ev models.FocusEvent, limit int) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO focus_events (category, duration_ms, timestamp) VALUES (?, ?, ?)",
		string(ev.Category), ev.Duration, ev.Timestamp.UnixMilli()); err != nil {
		return fmt.Errorf("failed to insert focus event: %w", err)
	}
	if limit > 0 {
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM focus_events WHERE seq NOT IN (
				SELECT seq FROM focus_events ORDER BY seq DESC LIMIT ?
			)
		`, limit); err != nil {
			return fmt.Errorf("failed to trim focus events: %w", err)
		}
	}
	return tx.Commit()
}

// FocusEvents returns the dwell log oldest first.
func (db *DB) FocusEvents(ctx context.Context) ([]models.FocusEvent, error) {
	rows, err := db.QueryContext(ctx, "SELECT category, duration_ms, timestamp FROM focus_events ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to load focus events: %w", err)
	}
	defer rows.Close()

	var out []models.FocusEvent
	for rows.Next() {
		var ev models.FocusEvent
		var cat string
		var ts int64
		if err := rows.Scan(&cat, &ev.Duration, &ts); err != nil {
			return nil, fmt.Errorf("failed to scan focus event: %w", err)
		}
		ev.Category = models.Category(cat)
		ev.Timestamp = time.UnixMilli(ts)
		out = append(out, ev)
	}
	return out, rows.Err()
}

const modelVersionKey = "modelVersion"

// ModelVersion returns the stored model version, "" when never set.
func (db *DB) ModelVersion(ctx context.Context) (string, error) {
	var v string
	err := db.QueryRowContext(ctx, "SELECT value FROM settings WHERE key = ?", modelVersionKey).Scan(&v)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load model version: %w", err)
	}
	return v, nil
}

func (db *DB) SetModelVersion(ctx context.Context, version string) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO settings (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, modelVersionKey, version)
	if err != nil {
		return fmt.Errorf("failed to save model version: %w", err)
	}
	return nil
}

// BytesInUse approximates the stored payload: snapshot JSON plus the text
// of every history and focus row.
func (db *DB) BytesInUse(ctx context.Context) (int64, error) {
	var n int64
	err := db.QueryRowContext(ctx, `
		SELECT
			(SELECT COALESCE(SUM(LENGTH(data)), 0) FROM snapshots) +
			(SELECT COALESCE(SUM(LENGTH(id) + LENGTH(category) + LENGTH(action) + LENGTH(COALESCE(url, '')) + 16), 0) FROM action_history) +
			(SELECT COALESCE(SUM(LENGTH(category) + 16), 0) FROM focus_events)
	`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to measure storage: %w", err)
	}
	return n, nil
}
