/*
registry.go - Keyed entity collections

PURPOSE:
  Three independent keyed stores with O(1) lookup: members by national
  id, staff by national id, sessions by (day, shift). Each also keeps
  insertion order so catalog rewrites are deterministic.

SEMANTICS:
  Add fails (no-op, false) when the key already exists or the candidate
  is nil. Remove fails when the key is absent. Removing a staff person
  who is assigned to sessions does NOT cascade: the sessions keep their
  dangling staff id and callers are responsible for clearing it if they
  want to. That mirrors the observed behavior of the system this was
  rebuilt from; it is a known smell, deliberately not corrected here.
*/
package club

// Registry holds the in-memory entity state.
type Registry struct {
	members      []*Member
	membersByID  map[int]*Member
	staff        []*Staff
	staffByID    map[int]*Staff
	sessions     []*Session
	sessionsByID map[SessionKey]*Session
}

func NewRegistry() *Registry {
	return &Registry{
		membersByID:  make(map[int]*Member),
		staffByID:    make(map[int]*Staff),
		sessionsByID: make(map[SessionKey]*Session),
	}
}

// =============================================================================
// MEMBERS
// =============================================================================

func (r *Registry) AddMember(m *Member) bool {
	if m == nil {
		return false
	}
	if _, exists := r.membersByID[m.NationalID]; exists {
		return false
	}
	r.members = append(r.members, m)
	r.membersByID[m.NationalID] = m
	return true
}

func (r *Registry) RemoveMember(nationalID int) bool {
	m, exists := r.membersByID[nationalID]
	if !exists {
		return false
	}
	delete(r.membersByID, nationalID)
	r.members = removeFrom(r.members, m)
	return true
}

func (r *Registry) Member(nationalID int) (*Member, bool) {
	m, ok := r.membersByID[nationalID]
	return m, ok
}

// Members returns the members in insertion order.
func (r *Registry) Members() []*Member {
	out := make([]*Member, len(r.members))
	copy(out, r.members)
	return out
}

// =============================================================================
// STAFF
// =============================================================================

func (r *Registry) AddStaff(s *Staff) bool {
	if s == nil {
		return false
	}
	if _, exists := r.staffByID[s.NationalID]; exists {
		return false
	}
	r.staff = append(r.staff, s)
	r.staffByID[s.NationalID] = s
	return true
}

// RemoveStaff detaches the staff record only. Sessions assigned to the
// removed person keep their staff id.
func (r *Registry) RemoveStaff(nationalID int) bool {
	s, exists := r.staffByID[nationalID]
	if !exists {
		return false
	}
	delete(r.staffByID, nationalID)
	r.staff = removeFrom(r.staff, s)
	return true
}

func (r *Registry) Staff(nationalID int) (*Staff, bool) {
	s, ok := r.staffByID[nationalID]
	return s, ok
}

func (r *Registry) AllStaff() []*Staff {
	out := make([]*Staff, len(r.staff))
	copy(out, r.staff)
	return out
}

// =============================================================================
// SESSIONS
// =============================================================================

func (r *Registry) AddSession(c *Session) bool {
	if c == nil {
		return false
	}
	if _, exists := r.sessionsByID[c.Key]; exists {
		return false
	}
	r.sessions = append(r.sessions, c)
	r.sessionsByID[c.Key] = c
	return true
}

func (r *Registry) RemoveSession(key SessionKey) bool {
	c, exists := r.sessionsByID[key]
	if !exists {
		return false
	}
	delete(r.sessionsByID, key)
	r.sessions = removeFrom(r.sessions, c)
	return true
}

func (r *Registry) Session(key SessionKey) (*Session, bool) {
	c, ok := r.sessionsByID[key]
	return c, ok
}

func (r *Registry) Sessions() []*Session {
	out := make([]*Session, len(r.sessions))
	copy(out, r.sessions)
	return out
}

func removeFrom[T comparable](list []T, item T) []T {
	for i, v := range list {
		if v == item {
			return append(list[:i], list[i+1:]...)
		}
	}
	return list
}
