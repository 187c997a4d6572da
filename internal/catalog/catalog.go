// Package catalog persists payloads between CLI invocations: payload JSON
// files in a workspace directory plus a SQLite manifest mapping payload id
// to uid, revision, and file. The on-disk layout is a collaborator detail,
// not part of the operator core's contract.
package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"wavebench/internal/config"
	"wavebench/internal/identity"
	"wavebench/internal/payload"
)

// ErrNotFound reports a payload id absent from the manifest.
var ErrNotFound = errors.New("payload not in catalog")

// Entry is one manifest row.
type Entry struct {
	ID        string    `json:"id"`
	UID       string    `json:"uid"`
	Rev       string    `json:"rev"`
	File      string    `json:"file"`
	CreatedAt time.Time `json:"created_at"`
}

// Store manages the workspace directory and its manifest. Writers across
// processes are serialized by a file lock so concurrent CLI invocations
// cannot interleave payload-file and manifest updates.
type Store struct {
	db     *sql.DB
	dir    string
	lock   *flock.Flock
	logger *slog.Logger
}

// Open initializes or connects to the workspace catalog.
func Open(cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}
	dir := cfg.Workspace.Dir

	dbPath := filepath.Join(dir, "catalog.db")
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open catalog db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{
		db:     db,
		dir:    dir,
		lock:   flock.New(filepath.Join(dir, ".wavebench.lock")),
		logger: logger,
	}
	if err := store.applySchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

func (s *Store) applySchema(ctx context.Context) error {
	const schema = `
CREATE TABLE IF NOT EXISTS payloads (
    id         TEXT PRIMARY KEY,
    uid        TEXT NOT NULL,
    rev        TEXT NOT NULL,
    file       TEXT NOT NULL,
    created_at TEXT NOT NULL
);`
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply catalog schema: %w", err)
	}
	return nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Dir returns the workspace directory.
func (s *Store) Dir() string {
	return s.dir
}

// Save writes the payload file and upserts its manifest row. Each save gets
// a fresh revision id.
func (s *Store) Save(ctx context.Context, id string, p payload.Map) (Entry, error) {
	if err := s.lock.Lock(); err != nil {
		return Entry{}, fmt.Errorf("lock workspace: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	data, err := payload.Encode(p)
	if err != nil {
		return Entry{}, fmt.Errorf("encode payload %s: %w", id, err)
	}

	entry := Entry{
		ID:        id,
		UID:       identity.Compute(p, identity.Default()),
		Rev:       uuid.NewString(),
		File:      payloadFileName(id),
		CreatedAt: time.Now().UTC(),
	}

	target := filepath.Join(s.dir, entry.File)
	if err := os.WriteFile(target, data, 0o644); err != nil {
		return Entry{}, fmt.Errorf("write payload file %s: %w", target, err)
	}

	const upsert = `
INSERT INTO payloads (id, uid, rev, file, created_at)
VALUES (?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET uid = excluded.uid, rev = excluded.rev,
    file = excluded.file, created_at = excluded.created_at;`
	timestamp := entry.CreatedAt.Format(time.RFC3339Nano)
	if _, err := s.db.ExecContext(ctx, upsert, entry.ID, entry.UID, entry.Rev, entry.File, timestamp); err != nil {
		return Entry{}, fmt.Errorf("record payload %s: %w", id, err)
	}

	s.logger.Info("payload saved", "id", entry.ID, "uid", entry.UID, "rev", entry.Rev)
	return entry, nil
}

// Load reads a payload back from the workspace.
func (s *Store) Load(ctx context.Context, id string) (payload.Map, error) {
	entry, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, entry.File))
	if err != nil {
		return nil, fmt.Errorf("read payload file for %s: %w", id, err)
	}
	decoded, err := payload.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("decode payload %s: %w", id, err)
	}
	p, ok := decoded.(payload.Map)
	if !ok {
		return nil, fmt.Errorf("payload file for %s holds %s, expected mapping", id, payload.TypeName(decoded))
	}
	return p, nil
}

// Get returns the manifest row for id.
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	const query = `SELECT id, uid, rev, file, created_at FROM payloads WHERE id = ?;`
	row := s.db.QueryRowContext(ctx, query, id)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Entry{}, fmt.Errorf("query payload %s: %w", id, err)
	}
	return entry, nil
}

// List returns every manifest row ordered by id.
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	const query = `SELECT id, uid, rev, file, created_at FROM payloads ORDER BY id;`
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payload row: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list payloads: %w", err)
	}
	return entries, nil
}

// Remove drops the manifest row and payload file for id.
func (s *Store) Remove(ctx context.Context, id string) error {
	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("lock workspace: %w", err)
	}
	defer func() { _ = s.lock.Unlock() }()

	entry, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM payloads WHERE id = ?;`, id); err != nil {
		return fmt.Errorf("remove payload %s: %w", id, err)
	}
	if err := os.Remove(filepath.Join(s.dir, entry.File)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove payload file for %s: %w", id, err)
	}
	s.logger.Info("payload removed", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (Entry, error) {
	var entry Entry
	var createdAt string
	if err := row.Scan(&entry.ID, &entry.UID, &entry.Rev, &entry.File, &createdAt); err != nil {
		return Entry{}, err
	}
	parsed, err := time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	entry.CreatedAt = parsed
	return entry, nil
}

// payloadFileName sanitizes an id into a safe file name.
func payloadFileName(id string) string {
	return identity.Sanitize(id) + ".json"
}
