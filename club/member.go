/*
Package club is the domain layer on top of the ledger engine: members,
staff, scheduled sessions, the entity registry, the replay engine that
rebuilds them from the persisted stream, and the Organization facade
that external callers mutate through.
*/
package club

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/club-ledger/ledger"
)

// =============================================================================
// MEMBER
// =============================================================================

// Member is a club member, keyed by national id. Account is the
// member's personal account and may be nil. Active status is derived
// from PlanExpiry, never stored.
type Member struct {
	NationalID int
	FirstName  string
	LastName   string
	Tier       string
	PlanMonths int
	Account    *ledger.Account
	EnrolledAt time.Time
	PlanExpiry time.Time
}

// Active reports whether the plan is current: active iff now <= expiry.
func (m *Member) Active(now time.Time) bool {
	if m.PlanExpiry.IsZero() {
		return false
	}
	return !now.After(m.PlanExpiry)
}

// RenewPlan advances the expiry by PlanMonths from max(now, prior
// expiry), so renewing early extends the plan instead of restarting it.
func (m *Member) RenewPlan(now time.Time) {
	base := now
	if m.PlanExpiry.After(now) {
		base = m.PlanExpiry
	}
	if m.PlanMonths > 0 {
		m.PlanExpiry = base.AddDate(0, m.PlanMonths, 0)
	}
}

// FullName returns "First Last" for descriptions and catalog display.
func (m *Member) FullName() string { return m.FirstName + " " + m.LastName }

// Ref builds the ledger payload reference for this member.
func (m *Member) Ref() ledger.MemberRef {
	account := ""
	if m.Account != nil {
		account = m.Account.Number()
	}
	return ledger.MemberRef{
		NationalID:    m.NationalID,
		FirstName:     m.FirstName,
		LastName:      m.LastName,
		Tier:          m.Tier,
		PlanMonths:    m.PlanMonths,
		AccountNumber: account,
	}
}

// memberFromRef reconstructs a member from a replayed payload. The
// payload carries no dates, so enrollment defaults to the record
// timestamp and expiry to PlanMonths after it; the catalog snapshot,
// when present, overrides both.
func memberFromRef(ref ledger.MemberRef, at time.Time) *Member {
	m := &Member{
		NationalID: ref.NationalID,
		FirstName:  ref.FirstName,
		LastName:   ref.LastName,
		Tier:       ref.Tier,
		PlanMonths: ref.PlanMonths,
		EnrolledAt: at,
	}
	if ref.AccountNumber != "" {
		m.Account = ledger.NewAccount(ref.AccountNumber, decimal.Zero, m.FullName())
	}
	if ref.PlanMonths > 0 {
		m.PlanExpiry = at.AddDate(0, ref.PlanMonths, 0)
	}
	return m
}
