package club

import "github.com/warp/club-ledger/ledger"

// =============================================================================
// SESSION - A scheduled activity slot, keyed by (day, shift)
// =============================================================================

// SessionKey uniquely identifies a session slot.
type SessionKey struct {
	Day   string
	Shift string
}

func (k SessionKey) String() string { return k.Day + " - " + k.Shift }

// Session is a scheduled activity. StaffID is an id-based reference to
// the assigned trainer (zero = unassigned); enrollment is a bounded
// list of member national ids.
type Session struct {
	Key      SessionKey
	Name     string
	Capacity int
	StaffID  int
	enrolled []int
}

// NewSession creates an empty session slot.
func NewSession(name, day, shift string, capacity, staffID int) *Session {
	return &Session{
		Key:      SessionKey{Day: day, Shift: shift},
		Name:     name,
		Capacity: capacity,
		StaffID:  staffID,
	}
}

// Enroll adds a member id. Fails when the session is full or the member
// is already enrolled.
func (c *Session) Enroll(memberID int) bool {
	if len(c.enrolled) >= c.Capacity {
		return false
	}
	for _, id := range c.enrolled {
		if id == memberID {
			return false
		}
	}
	c.enrolled = append(c.enrolled, memberID)
	return true
}

// Withdraw removes a member id. Fails when the member is not enrolled.
func (c *Session) Withdraw(memberID int) bool {
	for i, id := range c.enrolled {
		if id == memberID {
			c.enrolled = append(c.enrolled[:i], c.enrolled[i+1:]...)
			return true
		}
	}
	return false
}

// Enrolled returns a copy of the enrolled member ids, in enrollment order.
func (c *Session) Enrolled() []int {
	out := make([]int, len(c.enrolled))
	copy(out, c.enrolled)
	return out
}

// Ref builds the ledger payload reference for this session.
func (c *Session) Ref() ledger.SessionRef {
	return ledger.SessionRef{
		Name:     c.Name,
		Day:      c.Key.Day,
		Shift:    c.Key.Shift,
		Capacity: c.Capacity,
		StaffID:  c.StaffID,
	}
}

// sessionFromRef reconstructs a session from a replayed payload.
func sessionFromRef(ref ledger.SessionRef) *Session {
	return NewSession(ref.Name, ref.Day, ref.Shift, ref.Capacity, ref.StaffID)
}
