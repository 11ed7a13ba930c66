/*
codec.go - Line codec for the persisted ledger stream

PURPOSE:
  Bidirectional mapping between a Record and one line of text. The
  stream is newline-separated; each record line is pipe-delimited and
  the optional payload is a semicolon-delimited, kind-specific tuple.

GRAMMAR:
  header := "HEADER|" name "|" tax_id "|" address "|" region "|" account_number "|" balance
  record := id "|" timestamp "|" kind "|" description "|" amount "|" payload
  payload := "none" | entity_tag ";" field ";" field ...
  timestamp := "dd/mm/yyyy HH:MM:SS"

ERROR BEHAVIOR:
  A structurally incomplete line (too few fields, bad id/timestamp/kind/
  amount) fails with a MalformedRecordError. A malformed payload does
  NOT fail the record: it degrades to "no reference" so one bad payload
  never loses the financial data on the same line.

  Parse failures are explicit return values, never panics. Numeric and
  date helpers below return (value, ok) pairs.

SEE ALSO:
  - types.go: Record, Kind, EntityRef
  - club/replay.go: Consumes decoded records during startup
*/
package ledger

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// TimestampLayout is the wire format for record timestamps.
const TimestampLayout = "02/01/2006 15:04:05"

const (
	headerTag  = "HEADER"
	noPayload  = "none"
	fieldSep   = "|"
	payloadSep = ";"
)

// =============================================================================
// RECORD ENCODING
// =============================================================================

// EncodeRecord renders a record as one ledger line.
func EncodeRecord(r Record) string {
	var sb strings.Builder
	sb.WriteString(strconv.Itoa(r.ID))
	sb.WriteString(fieldSep)
	sb.WriteString(r.Timestamp.Format(TimestampLayout))
	sb.WriteString(fieldSep)
	sb.WriteString(string(r.Kind))
	sb.WriteString(fieldSep)
	sb.WriteString(r.Description)
	sb.WriteString(fieldSep)
	sb.WriteString(r.Amount.String())
	sb.WriteString(fieldSep)
	sb.WriteString(encodePayload(r.Ref))
	return sb.String()
}

func encodePayload(ref *EntityRef) string {
	if ref == nil {
		return noPayload
	}
	switch ref.tag {
	case TagMember:
		m := *ref.member
		account := m.AccountNumber
		if account == "" {
			account = noPayload
		}
		return strings.Join([]string{
			string(TagMember),
			strconv.Itoa(m.NationalID), m.FirstName, m.LastName,
			m.Tier, strconv.Itoa(m.PlanMonths), account,
		}, payloadSep)

	case TagStaff:
		s := *ref.staff
		fields := []string{
			string(TagStaff), s.Role,
			strconv.Itoa(s.NationalID), s.FirstName, s.LastName,
			s.Sex, s.Salary.String(),
		}
		if s.Role == RoleTagSupport {
			fields = append(fields, s.Shift, s.Area)
		} else {
			fields = append(fields, s.Specialty)
		}
		return strings.Join(fields, payloadSep)

	case TagSession:
		c := *ref.session
		staff := noPayload
		if c.StaffID != 0 {
			staff = strconv.Itoa(c.StaffID)
		}
		return strings.Join([]string{
			string(TagSession),
			c.Name, c.Day, c.Shift, strconv.Itoa(c.Capacity), staff,
		}, payloadSep)
	}
	return noPayload
}

// =============================================================================
// RECORD DECODING
// =============================================================================

// DecodeRecord parses one ledger line. It fails only for structurally
// incomplete lines; a bad payload degrades to a nil Ref.
func DecodeRecord(line string) (Record, error) {
	parts := strings.SplitN(line, fieldSep, 6)
	if len(parts) < 6 {
		return Record{}, &MalformedRecordError{Line: line, Reason: "want 6 fields"}
	}

	id, ok := parseInt(parts[0])
	if !ok {
		return Record{}, &MalformedRecordError{Line: line, Reason: "bad id"}
	}
	ts, err := time.Parse(TimestampLayout, parts[1])
	if err != nil {
		return Record{}, &MalformedRecordError{Line: line, Reason: "bad timestamp"}
	}
	kind := Kind(parts[2])
	if !kind.Valid() {
		return Record{}, &MalformedRecordError{Line: line, Reason: "unknown kind " + parts[2]}
	}
	amount, ok := parseDecimal(parts[4])
	if !ok {
		return Record{}, &MalformedRecordError{Line: line, Reason: "bad amount"}
	}

	return Record{
		ID:          id,
		Timestamp:   ts,
		Kind:        kind,
		Description: parts[3],
		Amount:      amount,
		Ref:         decodePayload(parts[5]),
	}, nil
}

// decodePayload returns nil for "none" and for any payload it cannot
// parse. Degrading beats aborting: the record's financial data is still
// good even when its reference is not.
func decodePayload(payload string) *EntityRef {
	if payload == "" || payload == noPayload {
		return nil
	}
	fields := strings.Split(payload, payloadSep)
	switch EntityTag(fields[0]) {
	case TagMember:
		return decodeMemberPayload(fields[1:])
	case TagStaff:
		return decodeStaffPayload(fields[1:])
	case TagSession:
		return decodeSessionPayload(fields[1:])
	}
	return nil
}

func decodeMemberPayload(fields []string) *EntityRef {
	if len(fields) < 6 {
		return nil
	}
	id, ok := parseInt(fields[0])
	if !ok {
		return nil
	}
	months, ok := parseInt(fields[4])
	if !ok {
		return nil
	}
	account := fields[5]
	if account == noPayload {
		account = ""
	}
	return MemberReference(MemberRef{
		NationalID:    id,
		FirstName:     fields[1],
		LastName:      fields[2],
		Tier:          fields[3],
		PlanMonths:    months,
		AccountNumber: account,
	})
}

func decodeStaffPayload(fields []string) *EntityRef {
	if len(fields) < 7 {
		return nil
	}
	role := fields[0]
	id, ok := parseInt(fields[1])
	if !ok {
		return nil
	}
	salary, ok := parseDecimal(fields[5])
	if !ok {
		return nil
	}
	ref := StaffRef{
		NationalID: id,
		FirstName:  fields[2],
		LastName:   fields[3],
		Sex:        fields[4],
		Salary:     salary,
		Role:       role,
	}
	switch role {
	case RoleTagTrainer:
		ref.Specialty = fields[6]
	case RoleTagSupport:
		ref.Shift = fields[6]
		if len(fields) > 7 {
			ref.Area = fields[7]
		}
	default:
		return nil
	}
	return StaffReference(ref)
}

func decodeSessionPayload(fields []string) *EntityRef {
	if len(fields) < 5 {
		return nil
	}
	capacity, ok := parseInt(fields[3])
	if !ok {
		return nil
	}
	staffID := 0
	if fields[4] != noPayload {
		staffID, ok = parseInt(fields[4])
		if !ok {
			return nil
		}
	}
	return SessionReference(SessionRef{
		Name:     fields[0],
		Day:      fields[1],
		Shift:    fields[2],
		Capacity: capacity,
		StaffID:  staffID,
	})
}

// =============================================================================
// HEADER ENCODING/DECODING
// =============================================================================

// EncodeHeader renders the snapshot line written at the top of the stream.
func EncodeHeader(h Header) string {
	return strings.Join([]string{
		headerTag, h.Name, h.TaxID, h.Address, h.Region,
		h.AccountNumber, h.Balance.String(),
	}, fieldSep)
}

// DecodeHeader parses the snapshot line. Unlike record payloads the
// header never degrades: a broken header means the balance checkpoint
// is gone, which is a structural failure.
func DecodeHeader(line string) (Header, error) {
	parts := strings.Split(line, fieldSep)
	if len(parts) < 7 || parts[0] != headerTag {
		return Header{}, &MalformedRecordError{Line: line, Reason: "not a header line"}
	}
	balance, ok := parseDecimal(parts[6])
	if !ok {
		return Header{}, &MalformedRecordError{Line: line, Reason: "bad header balance"}
	}
	return Header{
		Name:          parts[1],
		TaxID:         parts[2],
		Address:       parts[3],
		Region:        parts[4],
		AccountNumber: parts[5],
		Balance:       balance,
	}, nil
}

// IsHeaderLine reports whether the line starts a snapshot header.
func IsHeaderLine(line string) bool {
	return strings.HasPrefix(line, headerTag+fieldSep)
}

// =============================================================================
// PARSE HELPERS - Explicit (value, ok) returns, no exceptions-as-control-flow
// =============================================================================

func parseInt(s string) (int, bool) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
