package club

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/club-ledger/ledger"
)

// =============================================================================
// STAFF - Tagged role variant instead of subclassing
// =============================================================================

// RoleKind discriminates the role payload. Dispatch on the tag, not on
// type assertions.
type RoleKind string

const (
	RoleTrainer RoleKind = "trainer"
	RoleSupport RoleKind = "support"
)

// StaffRole is a tagged variant: a trainer has a specialty and a set of
// assigned session keys, a support person has a work shift and an area.
// Session assignments are id-based (keys into the registry), never live
// object references.
type StaffRole struct {
	Kind      RoleKind
	Specialty string                  // trainer
	Sessions  map[SessionKey]struct{} // trainer: assigned session keys
	Shift     string                  // support
	Area      string                  // support
}

// TrainerRole builds a trainer role with an empty session set.
func TrainerRole(specialty string) StaffRole {
	return StaffRole{
		Kind:      RoleTrainer,
		Specialty: specialty,
		Sessions:  make(map[SessionKey]struct{}),
	}
}

// SupportRole builds a support role.
func SupportRole(shift, area string) StaffRole {
	return StaffRole{Kind: RoleSupport, Shift: shift, Area: area}
}

// Staff is an employed person, keyed by national id.
type Staff struct {
	NationalID int
	FirstName  string
	LastName   string
	Sex        string
	BirthDate  time.Time
	Salary     decimal.Decimal
	Role       StaffRole
}

func (s *Staff) FullName() string { return s.FirstName + " " + s.LastName }

// AssignSession records a session key in a trainer's assignment set.
// No-op for support staff.
func (s *Staff) AssignSession(key SessionKey) {
	if s.Role.Kind != RoleTrainer {
		return
	}
	if s.Role.Sessions == nil {
		s.Role.Sessions = make(map[SessionKey]struct{})
	}
	s.Role.Sessions[key] = struct{}{}
}

// UnassignSession removes a session key from a trainer's set.
func (s *Staff) UnassignSession(key SessionKey) {
	delete(s.Role.Sessions, key)
}

// Ref builds the ledger payload reference for this staff person.
func (s *Staff) Ref() ledger.StaffRef {
	ref := ledger.StaffRef{
		NationalID: s.NationalID,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		Sex:        s.Sex,
		Salary:     s.Salary,
	}
	switch s.Role.Kind {
	case RoleSupport:
		ref.Role = ledger.RoleTagSupport
		ref.Shift = s.Role.Shift
		ref.Area = s.Role.Area
	default:
		ref.Role = ledger.RoleTagTrainer
		ref.Specialty = s.Role.Specialty
	}
	return ref
}

// staffFromRef reconstructs a staff person from a replayed payload.
// Birth date is not carried on the ledger wire; the catalog snapshot,
// when present, fills it in.
func staffFromRef(ref ledger.StaffRef) *Staff {
	s := &Staff{
		NationalID: ref.NationalID,
		FirstName:  ref.FirstName,
		LastName:   ref.LastName,
		Sex:        ref.Sex,
		Salary:     ref.Salary,
	}
	switch ref.Role {
	case ledger.RoleTagSupport:
		s.Role = SupportRole(ref.Shift, ref.Area)
	default:
		s.Role = TrainerRole(ref.Specialty)
	}
	return s
}
