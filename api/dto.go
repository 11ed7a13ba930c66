/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  JSON structures for the API surface. These decouple the domain types
  from the wire contract: monetary amounts travel as strings (decimal
  fidelity), dates as "DD/MM/YYYY" matching the catalog format.

NAMING CONVENTION:
  - *DTO: response types returned to clients
  - *Request: request body types from clients

VALIDATION:
  Done in handlers; DTOs are pure data carriers.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/warp/club-ledger/club"
	"github.com/warp/club-ledger/ledger"
)

// =============================================================================
// MEMBERS
// =============================================================================

// MemberDTO represents a member in API responses.
type MemberDTO struct {
	NationalID    int    `json:"national_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Tier          string `json:"tier"`
	PlanMonths    int    `json:"plan_months"`
	AccountNumber string `json:"account_number,omitempty"`
	EnrolledAt    string `json:"enrolled_at,omitempty"`
	PlanExpiry    string `json:"plan_expiry,omitempty"`
	Active        bool   `json:"active"`
}

// MemberRequest is the body for creating or modifying a member.
type MemberRequest struct {
	NationalID    int    `json:"national_id"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Tier          string `json:"tier"`
	PlanMonths    int    `json:"plan_months"`
	AccountNumber string `json:"account_number"`
}

// =============================================================================
// STAFF
// =============================================================================

// StaffDTO represents a staff person in API responses. Specialty is set
// for trainers; shift and area for support staff.
type StaffDTO struct {
	NationalID int    `json:"national_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Sex        string `json:"sex"`
	BirthDate  string `json:"birth_date,omitempty"`
	Salary     string `json:"salary"`
	Role       string `json:"role"`
	Specialty  string `json:"specialty,omitempty"`
	Shift      string `json:"shift,omitempty"`
	Area       string `json:"area,omitempty"`
}

// StaffRequest is the body for creating or modifying a staff person.
type StaffRequest struct {
	NationalID int    `json:"national_id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Sex        string `json:"sex"`
	BirthDate  string `json:"birth_date"`
	Salary     string `json:"salary"`
	Role       string `json:"role"`
	Specialty  string `json:"specialty"`
	Shift      string `json:"shift"`
	Area       string `json:"area"`
}

// =============================================================================
// SESSIONS
// =============================================================================

// SessionDTO represents a session slot in API responses.
type SessionDTO struct {
	Name     string `json:"name"`
	Day      string `json:"day"`
	Shift    string `json:"shift"`
	Capacity int    `json:"capacity"`
	StaffID  int    `json:"staff_id,omitempty"`
	Enrolled []int  `json:"enrolled"`
}

// SessionRequest is the body for creating or modifying a session.
type SessionRequest struct {
	Name     string `json:"name"`
	Day      string `json:"day"`
	Shift    string `json:"shift"`
	Capacity int    `json:"capacity"`
	StaffID  int    `json:"staff_id"`
}

// EnrollRequest names the member joining or leaving a session.
type EnrollRequest struct {
	MemberID int `json:"member_id"`
}

// =============================================================================
// FINANCIAL
// =============================================================================

// PaymentRequest is the body for dues payments and voids.
type PaymentRequest struct {
	NationalID int    `json:"national_id"`
	Amount     string `json:"amount"`
}

// PayrollRequest names the staff person being paid.
type PayrollRequest struct {
	NationalID int `json:"national_id"`
}

// BalanceDTO is the organization account balance.
type BalanceDTO struct {
	AccountNumber string `json:"account_number"`
	Balance       string `json:"balance"`
}

// MovementDTO is one account movement in API responses.
type MovementDTO struct {
	ID          int    `json:"id"`
	Timestamp   string `json:"timestamp"`
	Kind        string `json:"kind"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
}

// SummaryDTO aggregates movements for a period.
type SummaryDTO struct {
	Credits string `json:"credits"`
	Debits  string `json:"debits"`
	Net     string `json:"net"`
}

// AppliedDTO reports whether a mutating operation took effect.
type AppliedDTO struct {
	Applied bool `json:"applied"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toMemberDTO(m *club.Member, now time.Time) MemberDTO {
	dto := MemberDTO{
		NationalID: m.NationalID,
		FirstName:  m.FirstName,
		LastName:   m.LastName,
		Tier:       m.Tier,
		PlanMonths: m.PlanMonths,
		Active:     m.Active(now),
	}
	if m.Account != nil {
		dto.AccountNumber = m.Account.Number()
	}
	if !m.EnrolledAt.IsZero() {
		dto.EnrolledAt = m.EnrolledAt.Format(club.CatalogDateLayout)
	}
	if !m.PlanExpiry.IsZero() {
		dto.PlanExpiry = m.PlanExpiry.Format(club.CatalogDateLayout)
	}
	return dto
}

func toStaffDTO(s *club.Staff) StaffDTO {
	dto := StaffDTO{
		NationalID: s.NationalID,
		FirstName:  s.FirstName,
		LastName:   s.LastName,
		Sex:        s.Sex,
		Salary:     s.Salary.String(),
	}
	if !s.BirthDate.IsZero() {
		dto.BirthDate = s.BirthDate.Format(club.CatalogDateLayout)
	}
	switch s.Role.Kind {
	case club.RoleTrainer:
		dto.Role = ledger.RoleTagTrainer
		dto.Specialty = s.Role.Specialty
	case club.RoleSupport:
		dto.Role = ledger.RoleTagSupport
		dto.Shift = s.Role.Shift
		dto.Area = s.Role.Area
	}
	return dto
}

func toSessionDTO(c *club.Session) SessionDTO {
	return SessionDTO{
		Name:     c.Name,
		Day:      c.Key.Day,
		Shift:    c.Key.Shift,
		Capacity: c.Capacity,
		StaffID:  c.StaffID,
		Enrolled: c.Enrolled(),
	}
}

func toMovementDTO(r ledger.Record) MovementDTO {
	return MovementDTO{
		ID:          r.ID,
		Timestamp:   r.Timestamp.Format(ledger.TimestampLayout),
		Kind:        string(r.Kind),
		Description: r.Description,
		Amount:      r.Amount.String(),
	}
}
