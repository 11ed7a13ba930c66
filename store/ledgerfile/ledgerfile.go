/*
Package ledgerfile persists the ledger stream and the entity catalogs
as plain text files.

PURPOSE:
  The authoritative storage format: one ledger file holding the header
  line followed by the encoded record stream, plus three catalog files
  (members, staff, sessions) holding the current entity snapshot.

DURABILITY:
  Every write is a full rewrite through a temp file in the target
  directory followed by an atomic rename. A crash mid-write leaves the
  previous file intact; there is never a moment where the target holds
  a half-written stream.

ABSENT STORE:
  A missing ledger file is first run, not an error: Load returns the
  seed header (static identity, zero balance) and no lines. Missing
  catalog files likewise load as empty.

SEE ALSO:
  - ledger/store.go: the Gateway contract
  - store/sqlite:    same contract on a SQLite file
*/
package ledgerfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/warp/club-ledger/club"
	"github.com/warp/club-ledger/ledger"
)

// =============================================================================
// LEDGER GATEWAY
// =============================================================================

// Gateway implements ledger.Gateway on a single text file.
type Gateway struct {
	path string
	seed ledger.Header
}

// NewGateway creates a file-backed gateway. seed is the header returned
// when the file does not exist yet; its balance is forced to zero.
func NewGateway(path string, seed ledger.Header) *Gateway {
	seed.Balance = decimal.Zero
	return &Gateway{path: path, seed: seed}
}

// Rewrite serializes the header and every record and atomically
// replaces the ledger file.
func (g *Gateway) Rewrite(_ context.Context, header ledger.Header, records []ledger.Record) error {
	var b strings.Builder
	b.WriteString(ledger.EncodeHeader(header))
	b.WriteByte('\n')
	for _, r := range records {
		b.WriteString(ledger.EncodeRecord(r))
		b.WriteByte('\n')
	}
	if err := writeAtomic(g.path, b.String()); err != nil {
		return &ledger.PersistenceError{Store: "file", Err: err}
	}
	return nil
}

// Load reads the ledger file. The first non-blank line must be the
// header; the rest are returned still encoded, in file order.
func (g *Gateway) Load(_ context.Context) (ledger.Header, []string, error) {
	data, err := os.ReadFile(g.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return g.seed, nil, nil
		}
		return ledger.Header{}, nil, &ledger.PersistenceError{Store: "file", Err: err}
	}

	header := g.seed
	sawHeader := false
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !sawHeader {
			if !ledger.IsHeaderLine(line) {
				return ledger.Header{}, nil, &ledger.PersistenceError{
					Store: "file",
					Err:   fmt.Errorf("first line is not a header: %q", line),
				}
			}
			h, err := ledger.DecodeHeader(line)
			if err != nil {
				return ledger.Header{}, nil, &ledger.PersistenceError{Store: "file", Err: err}
			}
			header = h
			sawHeader = true
			continue
		}
		lines = append(lines, line)
	}
	return header, lines, nil
}

// =============================================================================
// ENTITY CATALOGS
// =============================================================================

const (
	membersFile  = "members.txt"
	staffFile    = "staff.txt"
	sessionsFile = "sessions.txt"
)

// Catalog implements club.CatalogStore with one file per entity kind
// under a common directory.
type Catalog struct {
	dir string
}

// NewCatalog creates a catalog store rooted at dir. The directory is
// created on first save.
func NewCatalog(dir string) *Catalog {
	return &Catalog{dir: dir}
}

func (c *Catalog) SaveMembers(_ context.Context, members []*club.Member) error {
	lines := make([]string, 0, len(members))
	for _, m := range members {
		lines = append(lines, club.EncodeMemberCatalogLine(m))
	}
	return c.save(membersFile, lines)
}

func (c *Catalog) LoadMembers(_ context.Context) ([]*club.Member, error) {
	lines, err := c.load(membersFile)
	if err != nil {
		return nil, err
	}
	members := make([]*club.Member, 0, len(lines))
	for _, line := range lines {
		if m, ok := club.DecodeMemberCatalogLine(line); ok {
			members = append(members, m)
		}
	}
	return members, nil
}

func (c *Catalog) SaveStaff(_ context.Context, staff []*club.Staff) error {
	lines := make([]string, 0, len(staff))
	for _, s := range staff {
		lines = append(lines, club.EncodeStaffCatalogLine(s))
	}
	return c.save(staffFile, lines)
}

func (c *Catalog) LoadStaff(_ context.Context) ([]*club.Staff, error) {
	lines, err := c.load(staffFile)
	if err != nil {
		return nil, err
	}
	staff := make([]*club.Staff, 0, len(lines))
	for _, line := range lines {
		if s, ok := club.DecodeStaffCatalogLine(line); ok {
			staff = append(staff, s)
		}
	}
	return staff, nil
}

func (c *Catalog) SaveSessions(_ context.Context, sessions []*club.Session) error {
	lines := make([]string, 0, len(sessions))
	for _, s := range sessions {
		lines = append(lines, club.EncodeSessionCatalogLine(s))
	}
	return c.save(sessionsFile, lines)
}

func (c *Catalog) LoadSessions(_ context.Context) ([]*club.Session, error) {
	lines, err := c.load(sessionsFile)
	if err != nil {
		return nil, err
	}
	sessions := make([]*club.Session, 0, len(lines))
	for _, line := range lines {
		if s, ok := club.DecodeSessionCatalogLine(line); ok {
			sessions = append(sessions, s)
		}
	}
	return sessions, nil
}

func (c *Catalog) save(name string, lines []string) error {
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return &ledger.PersistenceError{Store: "catalog", Err: err}
	}
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	if err := writeAtomic(filepath.Join(c.dir, name), content); err != nil {
		return &ledger.PersistenceError{Store: "catalog", Err: err}
	}
	return nil
}

func (c *Catalog) load(name string) ([]string, error) {
	data, err := os.ReadFile(filepath.Join(c.dir, name))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, &ledger.PersistenceError{Store: "catalog", Err: err}
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines, nil
}

// =============================================================================
// ATOMIC FILE WRITE
// =============================================================================

// writeAtomic writes content to a temp file in the target's directory,
// syncs it, and renames it over the target. The rename is what makes
// the rewrite all-or-nothing.
func writeAtomic(path, content string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("syncing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
