/*
Package sqlite provides a SQLite-backed implementation of the ledger
Gateway.

PURPOSE:
  Same contract as store/ledgerfile, on a SQLite file: a single header
  row plus an ordered table of encoded record lines. Records are stored
  still encoded so that the replay path is identical for both backends
  and one malformed line can be skipped without aborting the load.

REWRITE MODEL:
  The store mirrors the rewrite-whole-log durability model: every
  Rewrite runs in one transaction that clears both tables and inserts
  the header and the full stream fresh. Atomicity comes from the
  transaction instead of a temp-file rename.

WAL MODE:
  The database is opened with WAL journaling so a reader (sqlite3 CLI,
  backups) does not block the single writer.

SEE ALSO:
  - ledger/store.go:  the Gateway contract
  - store/ledgerfile: the authoritative text format
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/club-ledger/ledger"
)

// Store implements ledger.Gateway on a SQLite database.
type Store struct {
	db   *sql.DB
	seed ledger.Header
	mu   sync.Mutex
}

// New opens (and migrates) a SQLite-backed gateway. Use ":memory:" for
// an in-memory database. seed is the header returned before the first
// Rewrite; its balance is forced to zero.
func New(dbPath string, seed ledger.Header) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	seed.Balance = decimal.Zero
	store := &Store{db: db, seed: seed}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Single-row organization header (identity + balance checkpoint)
	CREATE TABLE IF NOT EXISTS header (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		line TEXT NOT NULL
	);

	-- Encoded record stream, in append order
	CREATE TABLE IF NOT EXISTS records (
		seq INTEGER PRIMARY KEY,
		line TEXT NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Rewrite replaces the entire stored stream in one transaction.
func (s *Store) Rewrite(ctx context.Context, header ledger.Header, records []ledger.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return &ledger.PersistenceError{Store: "sqlite", Err: err}
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
		return &ledger.PersistenceError{Store: "sqlite", Err: err}
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO header (id, line) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET line = excluded.line`,
		ledger.EncodeHeader(header)); err != nil {
		return &ledger.PersistenceError{Store: "sqlite", Err: err}
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO records (seq, line) VALUES (?, ?)`)
	if err != nil {
		return &ledger.PersistenceError{Store: "sqlite", Err: err}
	}
	defer stmt.Close()
	for i, r := range records {
		if _, err := stmt.ExecContext(ctx, i+1, ledger.EncodeRecord(r)); err != nil {
			return &ledger.PersistenceError{Store: "sqlite", Err: err}
		}
	}

	if err := tx.Commit(); err != nil {
		return &ledger.PersistenceError{Store: "sqlite", Err: err}
	}
	return nil
}

// Load reads the header and the encoded record lines in seq order.
// An empty database is first run: the seed header is returned.
func (s *Store) Load(ctx context.Context) (ledger.Header, []string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var headerLine string
	err := s.db.QueryRowContext(ctx, `SELECT line FROM header WHERE id = 1`).Scan(&headerLine)
	if errors.Is(err, sql.ErrNoRows) {
		return s.seed, nil, nil
	}
	if err != nil {
		return ledger.Header{}, nil, &ledger.PersistenceError{Store: "sqlite", Err: err}
	}
	header, err := ledger.DecodeHeader(headerLine)
	if err != nil {
		return ledger.Header{}, nil, &ledger.PersistenceError{Store: "sqlite", Err: err}
	}

	rows, err := s.db.QueryContext(ctx, `SELECT line FROM records ORDER BY seq`)
	if err != nil {
		return ledger.Header{}, nil, &ledger.PersistenceError{Store: "sqlite", Err: err}
	}
	defer rows.Close()

	var lines []string
	for rows.Next() {
		var line string
		if err := rows.Scan(&line); err != nil {
			return ledger.Header{}, nil, &ledger.PersistenceError{Store: "sqlite", Err: err}
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return ledger.Header{}, nil, &ledger.PersistenceError{Store: "sqlite", Err: err}
	}
	return header, lines, nil
}
