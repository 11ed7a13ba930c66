/*
store.go - Persistence interface for the ledger stream

PURPOSE:
  Defines the interface between the ledger and its backing store. The
  durability model is "always rewrite the whole log": after every
  mutating operation the full header + record stream is written fresh,
  even though in memory the ledger is append-only.

IMPLEMENTATIONS:
  - store/ledgerfile: the authoritative text format (temp file + rename)
  - store/sqlite:     same contract on a SQLite file
  - ledger/store:     in-memory, for tests
*/
package ledger

import "context"

// Gateway persists the ledger stream.
//
// Rewrite serializes the header followed by every record in append
// order, overwriting the entire backing store. The store handle must be
// fully written and released before Rewrite returns success, on every
// exit path.
//
// Load reads the store if present and returns the header plus the raw
// record lines in file order, still encoded: decoding happens during
// replay so that one malformed line can be skipped without aborting the
// load. When the store is absent, Load returns a zero-balance header
// seeded from the organization's static identity.
type Gateway interface {
	Rewrite(ctx context.Context, header Header, records []Record) error
	Load(ctx context.Context) (Header, []string, error)
}
