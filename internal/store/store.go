// Package store is the persistence collaborator for actions and assets.
//
// The database is a plain SQLite file in WAL mode, shared with other
// clients (the web front-end, sync jobs). This process is not its only
// writer, which is why the watcher package exists: external writes surface
// as DBChanged events and flow into the editors as external updates.
// Concurrent writers are last-write-wins; the store does not attempt
// optimistic conflict detection.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/autosave"
	"github.com/whiteboxllms/clever-widget-factory-sub001/internal/log"
)

// ErrNotFound is returned when the requested item does not exist.
var ErrNotFound = errors.New("not found")

// SchemaVersion is the newest database layout this build understands,
// recorded in SQLite's user_version pragma.
const SchemaVersion = 1

// SchemaError is returned when the database was written by a newer client.
type SchemaError struct {
	Found     int
	Supported int
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("database schema version %d is newer than supported version %d", e.Found, e.Supported)
}

const schema = `
CREATE TABLE IF NOT EXISTS assets (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	kind        TEXT NOT NULL DEFAULT 'tool',
	location    TEXT NOT NULL DEFAULT '',
	quantity    INTEGER NOT NULL DEFAULT 0,
	notes       TEXT NOT NULL DEFAULT '',
	updated_at  TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS actions (
	id            TEXT PRIMARY KEY,
	asset_id      TEXT NOT NULL DEFAULT '',
	title         TEXT NOT NULL,
	status        TEXT NOT NULL DEFAULT 'todo',
	assignee      TEXT NOT NULL DEFAULT '',
	policy        TEXT NOT NULL DEFAULT '',
	plan          TEXT NOT NULL DEFAULT '',
	observations  TEXT NOT NULL DEFAULT '',
	created_at    TEXT NOT NULL,
	updated_at    TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_actions_status ON actions(status);
CREATE INDEX IF NOT EXISTS idx_actions_asset ON actions(asset_id);
`

// Store wraps the shared SQLite database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (and bootstraps if needed) the database at path. The parent
// directory is created; WAL mode lets other clients read while we write.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	var version int
	if err := db.QueryRow(`PRAGMA user_version`).Scan(&version); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("reading schema version: %w", err)
	}
	if version > SchemaVersion {
		_ = db.Close()
		return nil, &SchemaError{Found: version, Supported: SchemaVersion}
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("bootstrapping schema: %w", err)
	}
	if version < SchemaVersion {
		if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", SchemaVersion)); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("stamping schema version: %w", err)
		}
	}

	log.Debug(log.CatStore, "opened database", "path", path, "schemaVersion", SchemaVersion)
	return &Store{db: db, path: path}, nil
}

// Path returns the database file path (the watcher needs it).
func (s *Store) Path() string { return s.path }

// Close closes the underlying database.
func (s *Store) Close() error { return s.db.Close() }

// GetAction fetches one action by id.
func (s *Store) GetAction(ctx context.Context, id string) (Action, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, asset_id, title, status, assignee, policy, plan, observations, created_at, updated_at
		FROM actions WHERE id = ?`, id)
	return scanAction(row)
}

// ListActions returns actions matching the filter, newest first.
func (s *Store) ListActions(ctx context.Context, f Filter) ([]Action, error) {
	var (
		where []string
		args  []any
	)
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(f.Status))
	}
	if f.Assignee != "" {
		where = append(where, "assignee = ?")
		args = append(args, f.Assignee)
	}
	if f.AssetID != "" {
		where = append(where, "asset_id = ?")
		args = append(args, f.AssetID)
	}
	if f.Search != "" {
		where = append(where, "(title LIKE ? OR policy LIKE ? OR plan LIKE ? OR observations LIKE ?)")
		pat := "%" + f.Search + "%"
		args = append(args, pat, pat, pat, pat)
	}

	q := `SELECT id, asset_id, title, status, assignee, policy, plan, observations, created_at, updated_at FROM actions`
	if len(where) > 0 {
		q += " WHERE " + strings.Join(where, " AND ")
	}
	q += " ORDER BY updated_at DESC"

	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing actions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Action
	for rows.Next() {
		a, err := scanAction(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// GetAsset fetches one asset by id.
func (s *Store) GetAsset(ctx context.Context, id string) (Asset, error) {
	var (
		a  Asset
		ts string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, kind, location, quantity, notes, updated_at
		FROM assets WHERE id = ?`, id).
		Scan(&a.ID, &a.Name, (*string)(&a.Kind), &a.Location, &a.Quantity, &a.Notes, &ts)
	if errors.Is(err, sql.ErrNoRows) {
		return Asset{}, fmt.Errorf("%w: asset %s", ErrNotFound, id)
	}
	if err != nil {
		return Asset{}, fmt.Errorf("reading asset: %w", err)
	}
	a.UpdatedAt = parseTime(ts)
	return a, nil
}

// ListAssets returns all assets, by name.
func (s *Store) ListAssets(ctx context.Context) ([]Asset, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, kind, location, quantity, notes, updated_at
		FROM assets ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing assets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []Asset
	for rows.Next() {
		var (
			a  Asset
			ts string
		)
		if err := rows.Scan(&a.ID, &a.Name, (*string)(&a.Kind), &a.Location, &a.Quantity, &a.Notes, &ts); err != nil {
			return nil, fmt.Errorf("scanning asset: %w", err)
		}
		a.UpdatedAt = parseTime(ts)
		out = append(out, a)
	}
	return out, rows.Err()
}

// CreateAction inserts a new action and returns it with id and timestamps.
func (s *Store) CreateAction(ctx context.Context, a Action) (Action, error) {
	if a.Title == "" {
		return Action{}, fmt.Errorf("%w: empty title", ErrValidation)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusTodo
	}
	if !ValidStatus(a.Status) {
		return Action{}, fmt.Errorf("%w: unknown status %q", ErrValidation, a.Status)
	}
	now := time.Now().UTC()
	a.CreatedAt = now
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO actions (id, asset_id, title, status, assignee, policy, plan, observations, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.AssetID, a.Title, string(a.Status), a.Assignee,
		a.Policy, a.Plan, a.Observations, formatTime(now), formatTime(now))
	if err != nil {
		return Action{}, fmt.Errorf("inserting action: %w", err)
	}
	return a, nil
}

// CreateAsset inserts a new asset.
func (s *Store) CreateAsset(ctx context.Context, a Asset) (Asset, error) {
	if a.Name == "" {
		return Asset{}, fmt.Errorf("%w: empty name", ErrValidation)
	}
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Kind == "" {
		a.Kind = KindTool
	}
	a.UpdatedAt = time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assets (id, name, kind, location, quantity, notes, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.Name, string(a.Kind), a.Location, a.Quantity, a.Notes, formatTime(a.UpdatedAt))
	if err != nil {
		return Asset{}, fmt.Errorf("inserting asset: %w", err)
	}
	return a, nil
}

// UpdateField applies the patches to one action in a single transaction.
//
// This is the commit pipeline's write: a text patch may ride together with
// a first-touch AssignPatch, and when a text patch puts the first real
// content onto a todo action the store bumps it to in_progress in the same
// transaction. The bump is one-directional and persisted here, never
// client-side only.
func (s *Store) UpdateField(ctx context.Context, id string, patches ...Patch) error {
	start := time.Now()
	defer func() {
		log.Debug(log.CatStore, "UpdateField completed", "itemID", id, "patches", len(patches), "duration", time.Since(start))
	}()

	if err := ValidatePatches(patches); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning update: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var status Status
	err = tx.QueryRowContext(ctx, `SELECT status FROM actions WHERE id = ?`, id).Scan((*string)(&status))
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: action %s", ErrNotFound, id)
	}
	if err != nil {
		return fmt.Errorf("reading action: %w", err)
	}

	sets := []string{"updated_at = ?"}
	args := []any{formatTime(time.Now().UTC())}
	contentAdded := false

	for _, p := range patches {
		switch p := p.(type) {
		case TextPatch:
			sets = append(sets, p.Field+" = ?")
			args = append(args, p.Value)
			if autosave.HasContent(p.Value) {
				contentAdded = true
			}
		case AssignPatch:
			sets = append(sets, "assignee = ?")
			args = append(args, p.Assignee)
		case StatusPatch:
			sets = append(sets, "status = ?")
			args = append(args, string(p.Status))
			status = p.Status
		}
	}

	// First real content starts the work.
	if contentAdded && status == StatusTodo {
		sets = append(sets, "status = ?")
		args = append(args, string(StatusInProgress))
	}

	args = append(args, id)
	res, err := tx.ExecContext(ctx, "UPDATE actions SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return fmt.Errorf("updating action: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: action %s", ErrNotFound, id)
	}

	return tx.Commit()
}

func scanAction(row interface{ Scan(...any) error }) (Action, error) {
	var (
		a       Action
		created string
		updated string
		statusS string
	)
	err := row.Scan(&a.ID, &a.AssetID, &a.Title, &statusS, &a.Assignee,
		&a.Policy, &a.Plan, &a.Observations, &created, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Action{}, ErrNotFound
	}
	if err != nil {
		return Action{}, fmt.Errorf("scanning action: %w", err)
	}
	a.Status = Status(statusS)
	a.CreatedAt = parseTime(created)
	a.UpdatedAt = parseTime(updated)
	return a, nil
}

func formatTime(t time.Time) string { return t.Format(time.RFC3339Nano) }

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
