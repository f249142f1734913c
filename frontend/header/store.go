package header

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS headers (
	id       TEXT PRIMARY KEY,
	package  TEXT NOT NULL,
	unit     TEXT NOT NULL,
	stored   INTEGER NOT NULL,
	body     BLOB NOT NULL,
	UNIQUE (package, unit)
)`

// Store keeps the latest header of every unit in a SQLite database
type Store struct {
	db *sql.DB
}

// Entry describes a stored header without decoding it
type Entry struct {
	ID      uuid.UUID
	Package string
	Unit    string
	Stored  time.Time
}

// OpenStore opens the database at path, creating it when missing.
// ":memory:" opens a private in-memory database.
func OpenStore(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening header store %s", path)
	}
	// every connection to :memory: is a distinct database
	db.SetMaxOpenConns(1)
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, errors.Wrapf(err, "creating header store %s", path)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// Put stores h, replacing the header previously stored for the same unit
func (s *Store) Put(ctx context.Context, h *Header) error {
	body, err := h.Marshal()
	if err != nil {
		return errors.Wrapf(err, "encoding header %s", h)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO headers (id, package, unit, stored, body) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (package, unit) DO UPDATE SET id = excluded.id, stored = excluded.stored, body = excluded.body`,
		h.ID.String(), h.Package, h.Unit, time.Now().UnixMilli(), body)
	return errors.Wrapf(err, "storing header %s", h)
}

// Get returns the header with the given id, nil if there is none
func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Header, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM headers WHERE id = ?`, id.String()).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading header %s", id)
	}
	return Unmarshal(body)
}

// Find returns the header of the unit called unit in package pkg, nil if there is none
func (s *Store) Find(ctx context.Context, pkg, unit string) (*Header, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM headers WHERE package = ? AND unit = ?`, pkg, unit).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "loading header of %s.%s", pkg, unit)
	}
	return Unmarshal(body)
}

// List describes every stored header, by package then unit
func (s *Store) List(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, package, unit, stored FROM headers ORDER BY package, unit`)
	if err != nil {
		return nil, errors.Wrap(err, "listing headers")
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			id     string
			stored int64
			e      Entry
		)
		if err := rows.Scan(&id, &e.Package, &e.Unit, &stored); err != nil {
			return nil, errors.Wrap(err, "listing headers")
		}
		if e.ID, err = uuid.Parse(id); err != nil {
			return nil, errors.Wrapf(err, "listing headers: bad id %q", id)
		}
		e.Stored = time.UnixMilli(stored)
		entries = append(entries, e)
	}
	return entries, errors.Wrap(rows.Err(), "listing headers")
}

// Delete removes the header with the given id, reporting whether there was one
func (s *Store) Delete(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM headers WHERE id = ?`, id.String())
	if err != nil {
		return false, errors.Wrapf(err, "deleting header %s", id)
	}
	n, err := res.RowsAffected()
	return n > 0, errors.Wrapf(err, "deleting header %s", id)
}

// InstallAll hands every stored header to install, by package then unit, and
// returns how many were installed
func (s *Store) InstallAll(ctx context.Context, install func(*Header) error) (int, error) {
	entries, err := s.List(ctx)
	if err != nil {
		return 0, err
	}
	for i, e := range entries {
		h, err := s.Get(ctx, e.ID)
		if err != nil {
			return i, err
		}
		if err := install(h); err != nil {
			return i, err
		}
	}
	return len(entries), nil
}
