/*
Package ledger provides the core financial/event log engine.

PURPOSE:
  This package contains the domain-agnostic pieces of the club ledger:
  the Record type (one immutable log entry), the line codec that maps
  records to and from the persisted text stream, the Account (balance
  plus signed movement history), and the Gateway interface the
  persistence layer implements.

KEY CONCEPTS IN THIS FILE (types.go):
  - Record: An immutable log entry, either a lifecycle event or a
    financial movement
  - Kind: The closed taxonomy of record kinds
  - EntityRef: An optional reference to exactly one member, staff
    person, or session carried in a record's payload
  - Header: The snapshot checkpoint written at the top of the stream

DESIGN PRINCIPLES:
  1. Immutability: Records are never modified or deleted; removals are
     new records, not erasures
  2. Precision: Uses decimal.Decimal to avoid floating-point errors
  3. Single reference: A record carries at most one entity reference,
     enforced by construction

SEE ALSO:
  - codec.go: Line encoding/decoding
  - account.go: Balance and movement history
  - store.go: Gateway persistence interface
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// KIND - Closed taxonomy of record kinds
// =============================================================================

type Kind string

const (
	KindMemberAdded     Kind = "MEMBER_ADDED"
	KindMemberRemoved   Kind = "MEMBER_REMOVED"
	KindMemberModified  Kind = "MEMBER_MODIFIED"
	KindStaffAdded      Kind = "STAFF_ADDED"
	KindStaffRemoved    Kind = "STAFF_REMOVED"
	KindStaffModified   Kind = "STAFF_MODIFIED"
	KindSessionAdded    Kind = "SESSION_ADDED"
	KindSessionRemoved  Kind = "SESSION_REMOVED"
	KindSessionModified Kind = "SESSION_MODIFIED"
	KindCredit          Kind = "CREDIT"       // money in
	KindDebit           Kind = "DEBIT"        // money out
	KindPaymentVoid     Kind = "PAYMENT_VOID" // signed reversal, amount carried as negative
)

// allKinds is the closed set the codec validates against.
var allKinds = map[Kind]bool{
	KindMemberAdded: true, KindMemberRemoved: true, KindMemberModified: true,
	KindStaffAdded: true, KindStaffRemoved: true, KindStaffModified: true,
	KindSessionAdded: true, KindSessionRemoved: true, KindSessionModified: true,
	KindCredit: true, KindDebit: true, KindPaymentVoid: true,
}

// Valid reports whether k belongs to the closed taxonomy.
func (k Kind) Valid() bool { return allKinds[k] }

// Financial reports whether the kind moves money.
func (k Kind) Financial() bool {
	return k == KindCredit || k == KindDebit || k == KindPaymentVoid
}

// CreditSide reports whether the kind belongs to the credit bucket when
// summarizing. PAYMENT_VOID carries a negative amount, so it contributes
// a negative credit.
func (k Kind) CreditSide() bool { return k == KindCredit || k == KindPaymentVoid }

// DebitSide reports whether the kind belongs to the debit bucket.
func (k Kind) DebitSide() bool { return k == KindDebit }

// =============================================================================
// ENTITY REFERENCES - At most one per record, by construction
// =============================================================================

type EntityTag string

const (
	TagMember  EntityTag = "MEMBER"
	TagStaff   EntityTag = "STAFF"
	TagSession EntityTag = "SESSION"
)

// Staff role tags as they appear on the wire.
const (
	RoleTagTrainer = "TRAINER"
	RoleTagSupport = "SUPPORT"
)

// MemberRef carries enough member fields to reconstruct the member a
// record points at.
type MemberRef struct {
	NationalID    int
	FirstName     string
	LastName      string
	Tier          string
	PlanMonths    int
	AccountNumber string // empty = no linked account
}

// StaffRef carries staff fields plus the role-specific payload.
type StaffRef struct {
	NationalID int
	FirstName  string
	LastName   string
	Sex        string
	Salary     decimal.Decimal
	Role       string // RoleTagTrainer or RoleTagSupport
	Specialty  string // trainer only
	Shift      string // support only
	Area       string // support only
}

// SessionRef carries session fields; StaffID zero means unassigned.
type SessionRef struct {
	Name     string
	Day      string
	Shift    string
	Capacity int
	StaffID  int
}

// EntityRef is a tagged reference to exactly one entity. The fields are
// unexported so a ref can only be built through the constructors below,
// which guarantees a record never points at more than one entity.
type EntityRef struct {
	tag     EntityTag
	member  *MemberRef
	staff   *StaffRef
	session *SessionRef
}

func MemberReference(m MemberRef) *EntityRef {
	return &EntityRef{tag: TagMember, member: &m}
}

func StaffReference(s StaffRef) *EntityRef {
	return &EntityRef{tag: TagStaff, staff: &s}
}

func SessionReference(s SessionRef) *EntityRef {
	return &EntityRef{tag: TagSession, session: &s}
}

func (r *EntityRef) Tag() EntityTag { return r.tag }

func (r *EntityRef) Member() (MemberRef, bool) {
	if r == nil || r.member == nil {
		return MemberRef{}, false
	}
	return *r.member, true
}

func (r *EntityRef) Staff() (StaffRef, bool) {
	if r == nil || r.staff == nil {
		return StaffRef{}, false
	}
	return *r.staff, true
}

func (r *EntityRef) Session() (SessionRef, bool) {
	if r == nil || r.session == nil {
		return SessionRef{}, false
	}
	return *r.session, true
}

// =============================================================================
// RECORD - One immutable log entry
// =============================================================================

// Record is a single ledger entry. Amount is zero for non-financial
// kinds. Ref is nil when the record carries no entity reference.
//
// ID is assigned as "current record count + 1" at append time. Because
// nothing ever renumbers survivors, ids are NOT guaranteed unique or
// monotonic across the full history; see the account tests.
type Record struct {
	ID          int
	Timestamp   time.Time
	Kind        Kind
	Description string
	Amount      decimal.Decimal
	Ref         *EntityRef
}

// =============================================================================
// HEADER - Snapshot checkpoint
// =============================================================================

// Header is the snapshot written at the top of every rewrite and read
// once at startup, before any record is replayed. Balance is the
// authoritative post-application balance: replay must not re-apply
// financial deltas on top of it.
type Header struct {
	Name          string
	TaxID         string
	Address       string
	Region        string
	AccountNumber string
	Balance       decimal.Decimal
}
