/*
catalog.go - Snapshot catalogs for members, staff, and sessions

PURPOSE:
  Separate from the event ledger, the current entity state is dumped to
  simple one-line-per-entity catalogs (semicolon-delimited). These are
  plain table dumps: they are rewritten after every entity mutation and
  loaded at startup before the ledger replay, so replayed lifecycle
  records land on an already-populated registry and simply no-op.

  A line that cannot be decoded is dropped; catalogs are snapshots, not
  history, so there is nothing to recover from a bad line.
*/
package club

import (
	"context"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/club-ledger/ledger"
)

// CatalogDateLayout is the wire format for catalog dates.
const CatalogDateLayout = "02/01/2006"

const (
	catalogSep  = ";"
	catalogNone = "none"
)

// CatalogStore persists the entity snapshot catalogs. Implemented by
// store/ledgerfile; the Organization rewrites the relevant catalog
// after every entity mutation.
type CatalogStore interface {
	SaveMembers(ctx context.Context, members []*Member) error
	LoadMembers(ctx context.Context) ([]*Member, error)
	SaveStaff(ctx context.Context, staff []*Staff) error
	LoadStaff(ctx context.Context) ([]*Staff, error)
	SaveSessions(ctx context.Context, sessions []*Session) error
	LoadSessions(ctx context.Context) ([]*Session, error)
}

// =============================================================================
// MEMBER CATALOG - id;first;last;tier;plan_months;account;enrolled;expiry
// =============================================================================

func EncodeMemberCatalogLine(m *Member) string {
	account := catalogNone
	if m.Account != nil {
		account = m.Account.Number()
	}
	return strings.Join([]string{
		strconv.Itoa(m.NationalID), m.FirstName, m.LastName, m.Tier,
		strconv.Itoa(m.PlanMonths), account,
		catalogDate(m.EnrolledAt), catalogDate(m.PlanExpiry),
	}, catalogSep)
}

// DecodeMemberCatalogLine parses one member line. The linked account is
// reconstructed with a zero balance: member account balances are not
// part of the snapshot.
func DecodeMemberCatalogLine(line string) (*Member, bool) {
	fields := strings.Split(line, catalogSep)
	if len(fields) < 6 {
		return nil, false
	}
	id, err := strconv.Atoi(fields[0])
	if err != nil {
		return nil, false
	}
	months, err := strconv.Atoi(fields[4])
	if err != nil {
		return nil, false
	}
	m := &Member{
		NationalID: id,
		FirstName:  fields[1],
		LastName:   fields[2],
		Tier:       fields[3],
		PlanMonths: months,
	}
	if fields[5] != catalogNone {
		m.Account = ledger.NewAccount(fields[5], decimal.Zero, m.FullName())
	}
	if len(fields) > 6 {
		m.EnrolledAt = parseCatalogDate(fields[6])
	}
	if len(fields) > 7 {
		m.PlanExpiry = parseCatalogDate(fields[7])
	}
	if m.EnrolledAt.IsZero() {
		m.EnrolledAt = time.Now()
	}
	if m.PlanExpiry.IsZero() && months > 0 {
		m.PlanExpiry = m.EnrolledAt.AddDate(0, months, 0)
	}
	return m, true
}

// =============================================================================
// STAFF CATALOG - role;id;first;last;sex;birth;salary;role fields...
// =============================================================================

func EncodeStaffCatalogLine(s *Staff) string {
	ref := s.Ref()
	fields := []string{
		ref.Role,
		strconv.Itoa(s.NationalID), s.FirstName, s.LastName, s.Sex,
		catalogDate(s.BirthDate), s.Salary.String(),
	}
	if s.Role.Kind == RoleSupport {
		fields = append(fields, s.Role.Shift, s.Role.Area)
	} else {
		fields = append(fields, s.Role.Specialty)
	}
	return strings.Join(fields, catalogSep)
}

func DecodeStaffCatalogLine(line string) (*Staff, bool) {
	fields := strings.Split(line, catalogSep)
	if len(fields) < 8 {
		return nil, false
	}
	id, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, false
	}
	salary, err := decimal.NewFromString(fields[6])
	if err != nil {
		return nil, false
	}
	s := &Staff{
		NationalID: id,
		FirstName:  fields[2],
		LastName:   fields[3],
		Sex:        fields[4],
		BirthDate:  parseCatalogDate(fields[5]),
		Salary:     salary,
	}
	switch fields[0] {
	case ledger.RoleTagTrainer:
		s.Role = TrainerRole(fields[7])
	case ledger.RoleTagSupport:
		area := ""
		if len(fields) > 8 {
			area = fields[8]
		}
		s.Role = SupportRole(fields[7], area)
	default:
		return nil, false
	}
	return s, true
}

// =============================================================================
// SESSION CATALOG - name;day;shift;capacity;staff_id
// =============================================================================

func EncodeSessionCatalogLine(c *Session) string {
	staff := catalogNone
	if c.StaffID != 0 {
		staff = strconv.Itoa(c.StaffID)
	}
	return strings.Join([]string{
		c.Name, c.Key.Day, c.Key.Shift, strconv.Itoa(c.Capacity), staff,
	}, catalogSep)
}

func DecodeSessionCatalogLine(line string) (*Session, bool) {
	fields := strings.Split(line, catalogSep)
	if len(fields) < 5 {
		return nil, false
	}
	capacity, err := strconv.Atoi(fields[3])
	if err != nil {
		return nil, false
	}
	staffID := 0
	if fields[4] != catalogNone {
		staffID, err = strconv.Atoi(fields[4])
		if err != nil {
			return nil, false
		}
	}
	return NewSession(fields[0], fields[1], fields[2], capacity, staffID), true
}

func catalogDate(t time.Time) string {
	if t.IsZero() {
		return catalogNone
	}
	return t.Format(CatalogDateLayout)
}

func parseCatalogDate(s string) time.Time {
	if s == catalogNone {
		return time.Time{}
	}
	t, err := time.Parse(CatalogDateLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
