// Package ledger keeps an append-only history of cloud actions in SQLite.
package ledger

import (
	"context"
	"database/sql"
	"time"

	"domotic/internal/domain/model"
	"domotic/internal/ports"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
)

var (
	_ ports.ActivityRecorder = (*Ledger)(nil)
	_ ports.ActivityRecorder = Nop{}
)

// Ledger records activities in the activity_ledger table.
type Ledger struct {
	db *sql.DB
}

// Open opens the database and initializes the schema
func Open(path string) (*Ledger, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, errors.Wrap(err, "failed to open ledger database")
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to initialize ledger schema")
	}

	return &Ledger{db: db}, nil
}

func initSchema(db *sql.DB) error {
	// seq keeps insertion order for activities recorded within the same millisecond
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS activity_ledger (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			action TEXT NOT NULL,
			device_id TEXT NOT NULL,
			outcome TEXT NOT NULL,
			message TEXT,
			at INTEGER NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_activity_at ON activity_ledger(at);
		CREATE INDEX IF NOT EXISTS idx_activity_device ON activity_ledger(device_id, at);
	`)
	return err
}

func (l *Ledger) Record(ctx context.Context, activity model.Activity) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT INTO activity_ledger (id, action, device_id, outcome, message, at) VALUES (?, ?, ?, ?, ?, ?)`,
		activity.ID, string(activity.Action), activity.DeviceID, string(activity.Outcome), activity.Message,
		activity.At.UTC().UnixMilli(),
	)
	return errors.Wrap(err, "record activity")
}

// Recent returns at most limit activities, newest first.
func (l *Ledger) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	rows, err := l.db.QueryContext(ctx, `
		SELECT id, action, device_id, outcome, message, at
		FROM activity_ledger
		ORDER BY seq DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.Wrap(err, "query activities")
	}
	defer rows.Close()

	activities := []model.Activity{}
	for rows.Next() {
		var a model.Activity
		var message sql.NullString
		var at int64
		if err := rows.Scan(&a.ID, &a.Action, &a.DeviceID, &a.Outcome, &message, &at); err != nil {
			return nil, errors.Wrap(err, "scan activity")
		}
		a.Message = message.String
		a.At = time.UnixMilli(at).UTC()
		activities = append(activities, a)
	}
	return activities, rows.Err()
}

// Cleanup removes activities older than the retention window and reports how many were dropped.
func (l *Ledger) Cleanup(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention).UTC().UnixMilli()
	result, err := l.db.ExecContext(ctx, `DELETE FROM activity_ledger WHERE at < ?`, cutoff)
	if err != nil {
		return 0, errors.Wrap(err, "cleanup activities")
	}
	return result.RowsAffected()
}

// RunCleanup drops expired activities every interval until ctx is cancelled.
func (l *Ledger) RunCleanup(ctx context.Context, interval, retention time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			deleted, err := l.Cleanup(ctx, retention)
			if err != nil {
				log.Error().Err(err).Msg("Failed to cleanup old activities")
			} else if deleted > 0 {
				log.Info().Int64("deleted", deleted).Dur("retention", retention).Msg("Cleaned up old activities")
			}
		}
	}
}

func (l *Ledger) Close() error {
	return l.db.Close()
}

// Nop is used when the ledger is disabled.
type Nop struct{}

func (Nop) Record(ctx context.Context, activity model.Activity) error { return nil }

func (Nop) Recent(ctx context.Context, limit int) ([]model.Activity, error) {
	return []model.Activity{}, nil
}
