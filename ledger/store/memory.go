// Package store provides an in-memory Gateway implementation.
package store

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/warp/club-ledger/ledger"
)

// =============================================================================
// MEMORY GATEWAY - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu       sync.RWMutex
	identity ledger.Header
	header   ledger.Header
	lines    []string
	written  bool
}

// NewMemory creates an empty in-memory store. Until the first Rewrite,
// Load returns a zero-balance header seeded from identity.
func NewMemory(identity ledger.Header) *Memory {
	identity.Balance = decimal.Zero
	return &Memory{identity: identity}
}

func (m *Memory) Rewrite(_ context.Context, header ledger.Header, records []ledger.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = ledger.EncodeRecord(r)
	}
	m.header = header
	m.lines = lines
	m.written = true
	return nil
}

func (m *Memory) Load(_ context.Context) (ledger.Header, []string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.written {
		return m.identity, nil, nil
	}
	lines := make([]string, len(m.lines))
	copy(lines, m.lines)
	return m.header, lines, nil
}

// Lines returns the stored record lines. Test helper.
func (m *Memory) Lines() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, len(m.lines))
	copy(out, m.lines)
	return out
}
