// Package history records imported and exported viewpoints in a sqlite database.
package history

import (
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"

	"github.com/philipparndt/gobcf/pkg/bcf"
)

//go:embed migrations/001_init_history.sql
var migration string

// timeLayout has a fixed width so that created_at sorts as text
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ErrNotFound is returned when no entry has the requested id
var ErrNotFound = errors.New("history entry not found")

// Direction tells whether a viewpoint was applied to or read from the host
type Direction string

const (
	Import Direction = "import"
	Export Direction = "export"
)

// Entry is one recorded viewpoint
type Entry struct {
	ID            string
	ViewpointGUID string
	Direction     Direction
	// Source names the entry point: "cli", "bridge" or "inbox"
	Source string
	// Status is "ok" or the error message of a failed import
	Status    string
	Payload   []byte
	CreatedAt time.Time
}

// Viewpoint decodes the stored payload
func (e Entry) Viewpoint() (*bcf.Viewpoint, error) {
	return bcf.Parse(e.Payload)
}

// Store is the sqlite backed history
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens or creates the database at path and applies the schema
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := OpenSQLite(path)
	if err != nil {
		return nil, err
	}
	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// OpenSQLite opens sqlite at path, creating the parent directory
func OpenSQLite(path string) (*sql.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("mkdir db dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?cache=shared&mode=rwc&_pragma=busy_timeout=5000", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return db, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, migration); err != nil {
		return fmt.Errorf("apply migration: %w", err)
	}
	return nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores vp. applyErr is the result of applying an imported viewpoint.
func (s *Store) Record(ctx context.Context, direction Direction, source string, vp *bcf.Viewpoint, applyErr error) (Entry, error) {
	payload, err := encode(vp)
	if err != nil {
		return Entry{}, err
	}

	entry := Entry{
		ID:            uuid.NewString(),
		ViewpointGUID: vp.GUID,
		Direction:     direction,
		Source:        source,
		Status:        "ok",
		Payload:       payload,
		CreatedAt:     s.now().UTC(),
	}
	if applyErr != nil {
		entry.Status = applyErr.Error()
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO viewpoints (id, viewpoint_guid, direction, source, status, payload, created_at)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `,
		entry.ID,
		entry.ViewpointGUID,
		string(entry.Direction),
		entry.Source,
		entry.Status,
		string(entry.Payload),
		entry.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return Entry{}, fmt.Errorf("insert history entry: %w", err)
	}
	return entry, nil
}

// List returns up to limit entries, newest first. limit <= 0 returns all.
func (s *Store) List(ctx context.Context, limit int) ([]Entry, error) {
	query := `
        SELECT id, viewpoint_guid, direction, source, status, payload, created_at
        FROM viewpoints
        ORDER BY created_at DESC, rowid DESC
    `
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		e, err := scan(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read history: %w", err)
	}
	return entries, nil
}

// Get returns the entry with id
func (s *Store) Get(ctx context.Context, id string) (Entry, error) {
	row := s.db.QueryRowContext(ctx, `
        SELECT id, viewpoint_guid, direction, source, status, payload, created_at
        FROM viewpoints
        WHERE id = ?
    `, id)

	e, err := scan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, fmt.Errorf("%s: %w", id, ErrNotFound)
	}
	return e, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scan(row scanner) (Entry, error) {
	var (
		e         Entry
		direction string
		payload   string
		created   string
	)
	if err := row.Scan(&e.ID, &e.ViewpointGUID, &direction, &e.Source, &e.Status, &payload, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Entry{}, err
		}
		return Entry{}, fmt.Errorf("scan history entry: %w", err)
	}
	createdAt, err := time.Parse(timeLayout, created)
	if err != nil {
		return Entry{}, fmt.Errorf("parse created_at %q: %w", created, err)
	}
	e.Direction = Direction(direction)
	e.Payload = []byte(payload)
	e.CreatedAt = createdAt
	return e, nil
}

func encode(vp *bcf.Viewpoint) ([]byte, error) {
	if vp == nil {
		return nil, errors.New("nil viewpoint")
	}
	var buf bytes.Buffer
	if err := vp.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
