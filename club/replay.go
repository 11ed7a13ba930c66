/*
replay.go - Startup replay of the persisted ledger stream

PURPOSE:
  Rebuilds all in-memory state (registry + account history) by
  consuming the persisted stream in file order.

STATE MACHINE:
  Loading -> Live, exactly once, after the last line is consumed. There
  is no transition back.

THE CENTRAL CORRECTNESS PROPERTY:
  The snapshot header already carries the post-application balance.
  During Loading, financial records (CREDIT, DEBIT, PAYMENT_VOID) are
  appended to the account's movement history for display/audit only -
  their delta is NOT re-applied. Applying them twice (once via the
  header, once via replay) would double-count every transaction.
  Lifecycle records have no snapshot to collide with and are applied
  fully in both states.

CROSS-REFERENCES:
  A SESSION_ADDED payload naming a staff national id is resolved against
  the staff already replayed at that point in the file. If the id has
  not appeared yet, the session is reconstructed unassigned and the drop
  is logged. File order is not guaranteed to respect this dependency;
  the lossy single-pass resolution of the original system is preserved
  deliberately rather than upgraded to a two-pass replay.

MALFORMED LINES:
  Logged and skipped. Replay never aborts for one bad line.
*/
package club

import (
	"log/slog"

	"github.com/warp/club-ledger/ledger"
)

// =============================================================================
// REPLAY ENGINE
// =============================================================================

// State is the replay engine's lifecycle state.
type State int

const (
	// Loading: consuming the persisted stream; financial deltas are
	// history-only because the header balance is authoritative.
	Loading State = iota
	// Live: every record kind applies its full effect exactly once, at
	// append time.
	Live
)

// ReplayStats summarizes one replay pass.
type ReplayStats struct {
	Applied   int // records whose effect was applied
	Historic  int // financial records appended to history only
	Malformed int // lines skipped as unparseable
	Dropped   int // lifecycle records that could not be applied
}

// ReplayEngine rebuilds registry and account state from the stream.
type ReplayEngine struct {
	registry *Registry
	account  *ledger.Account
	state    State
	logger   *slog.Logger
}

func NewReplayEngine(registry *Registry, account *ledger.Account, logger *slog.Logger) *ReplayEngine {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReplayEngine{
		registry: registry,
		account:  account,
		state:    Loading,
		logger:   logger,
	}
}

func (e *ReplayEngine) State() State { return e.state }

// Replay consumes the persisted lines in order and then transitions to
// Live. Calling it again after the transition is a no-op: the stream is
// only ever replayed once per process.
func (e *ReplayEngine) Replay(lines []string) ([]ledger.Record, ReplayStats) {
	var stats ReplayStats
	if e.state == Live {
		return nil, stats
	}

	records := make([]ledger.Record, 0, len(lines))
	for _, line := range lines {
		rec, err := ledger.DecodeRecord(line)
		if err != nil {
			stats.Malformed++
			e.logger.Warn("skipping malformed ledger line", "error", err)
			continue
		}
		records = append(records, rec)
		e.apply(rec, &stats)
	}

	e.state = Live
	return records, stats
}

// apply dispatches one record according to the current state.
func (e *ReplayEngine) apply(rec ledger.Record, stats *ReplayStats) {
	if rec.Kind.Financial() {
		// Loading: history only. The header snapshot already encodes the
		// post-application balance.
		e.account.AppendHistoric(rec)
		stats.Historic++
		return
	}

	if e.applyLifecycle(rec) {
		stats.Applied++
	} else {
		stats.Dropped++
		e.logger.Warn("lifecycle record not applied",
			"kind", string(rec.Kind), "id", rec.ID)
	}
}

// applyLifecycle mutates the registry for a lifecycle record. These are
// idempotent reconstructions: re-adding an entity the catalog already
// loaded simply fails the add and leaves the registry unchanged.
func (e *ReplayEngine) applyLifecycle(rec ledger.Record) bool {
	switch rec.Kind {
	case ledger.KindMemberAdded:
		ref, ok := rec.Ref.Member()
		if !ok {
			return false
		}
		return e.registry.AddMember(memberFromRef(ref, rec.Timestamp))

	case ledger.KindMemberRemoved:
		ref, ok := rec.Ref.Member()
		if !ok {
			return false
		}
		return e.registry.RemoveMember(ref.NationalID)

	case ledger.KindMemberModified:
		ref, ok := rec.Ref.Member()
		if !ok {
			return false
		}
		m, found := e.registry.Member(ref.NationalID)
		if !found {
			return false
		}
		m.FirstName = ref.FirstName
		m.LastName = ref.LastName
		m.Tier = ref.Tier
		m.PlanMonths = ref.PlanMonths
		return true

	case ledger.KindStaffAdded:
		ref, ok := rec.Ref.Staff()
		if !ok {
			return false
		}
		return e.registry.AddStaff(staffFromRef(ref))

	case ledger.KindStaffRemoved:
		ref, ok := rec.Ref.Staff()
		if !ok {
			return false
		}
		return e.registry.RemoveStaff(ref.NationalID)

	case ledger.KindStaffModified:
		ref, ok := rec.Ref.Staff()
		if !ok {
			return false
		}
		s, found := e.registry.Staff(ref.NationalID)
		if !found {
			return false
		}
		replacement := staffFromRef(ref)
		// Keep the assignment set: the wire payload does not carry it.
		if s.Role.Kind == RoleTrainer && replacement.Role.Kind == RoleTrainer {
			replacement.Role.Sessions = s.Role.Sessions
		}
		s.FirstName = replacement.FirstName
		s.LastName = replacement.LastName
		s.Sex = replacement.Sex
		s.Salary = replacement.Salary
		s.Role = replacement.Role
		return true

	case ledger.KindSessionAdded:
		ref, ok := rec.Ref.Session()
		if !ok {
			return false
		}
		session := sessionFromRef(ref)
		if ref.StaffID != 0 {
			trainer, found := e.registry.Staff(ref.StaffID)
			if !found {
				// Forward reference: the named staff has not been replayed
				// yet. The reference is dropped, not deferred.
				e.logger.Warn("session references unknown staff, reconstructed unassigned",
					"session", session.Key.String(), "staff_id", ref.StaffID)
				session.StaffID = 0
			} else {
				trainer.AssignSession(session.Key)
			}
		}
		return e.registry.AddSession(session)

	case ledger.KindSessionRemoved:
		ref, ok := rec.Ref.Session()
		if !ok {
			return false
		}
		key := SessionKey{Day: ref.Day, Shift: ref.Shift}
		if trainer, found := e.registry.Staff(ref.StaffID); found {
			trainer.UnassignSession(key)
		}
		return e.registry.RemoveSession(key)

	case ledger.KindSessionModified:
		ref, ok := rec.Ref.Session()
		if !ok {
			return false
		}
		session, found := e.registry.Session(SessionKey{Day: ref.Day, Shift: ref.Shift})
		if !found {
			return false
		}
		session.Name = ref.Name
		session.Capacity = ref.Capacity
		session.StaffID = ref.StaffID
		return true
	}
	return false
}
