package ledger_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/club-ledger/ledger"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testTime = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func memberRec(id int, kind ledger.Kind, amount decimal.Decimal) ledger.Record {
	return ledger.Record{
		ID:          id,
		Timestamp:   testTime,
		Kind:        kind,
		Description: "Member added: Ana Gomez",
		Amount:      amount,
		Ref: ledger.MemberReference(ledger.MemberRef{
			NationalID:    30111222,
			FirstName:     "Ana",
			LastName:      "Gomez",
			Tier:          "full",
			PlanMonths:    3,
			AccountNumber: "0001-0099",
		}),
	}
}

// =============================================================================
// RECORD ROUND TRIPS
// =============================================================================

func TestCodec_MemberRecord_RoundTrip(t *testing.T) {
	// GIVEN: a MEMBER_ADDED record with a full member payload
	// WHEN: encoded and decoded again
	// THEN: every field survives

	rec := memberRec(1, ledger.KindMemberAdded, decimal.Zero)
	line := ledger.EncodeRecord(rec)
	assert.Equal(t,
		"1|15/03/2026 10:30:00|MEMBER_ADDED|Member added: Ana Gomez|0|MEMBER;30111222;Ana;Gomez;full;3;0001-0099",
		line)

	got, err := ledger.DecodeRecord(line)
	require.NoError(t, err)
	assert.Equal(t, rec.ID, got.ID)
	assert.True(t, rec.Timestamp.Equal(got.Timestamp))
	assert.Equal(t, rec.Kind, got.Kind)
	assert.Equal(t, rec.Description, got.Description)
	assert.True(t, rec.Amount.Equal(got.Amount))

	ref, ok := got.Ref.Member()
	require.True(t, ok)
	assert.Equal(t, 30111222, ref.NationalID)
	assert.Equal(t, "Ana", ref.FirstName)
	assert.Equal(t, "0001-0099", ref.AccountNumber)
}

func TestCodec_TrainerRecord_RoundTrip(t *testing.T) {
	rec := ledger.Record{
		ID:          4,
		Timestamp:   testTime,
		Kind:        ledger.KindStaffAdded,
		Description: "Staff added: Luis Perez",
		Amount:      decimal.Zero,
		Ref: ledger.StaffReference(ledger.StaffRef{
			NationalID: 27888999,
			FirstName:  "Luis",
			LastName:   "Perez",
			Sex:        "M",
			Salary:     decimal.NewFromInt(250000),
			Role:       ledger.RoleTagTrainer,
			Specialty:  "spinning",
		}),
	}

	got, err := ledger.DecodeRecord(ledger.EncodeRecord(rec))
	require.NoError(t, err)

	ref, ok := got.Ref.Staff()
	require.True(t, ok)
	assert.Equal(t, ledger.RoleTagTrainer, ref.Role)
	assert.Equal(t, "spinning", ref.Specialty)
	assert.True(t, decimal.NewFromInt(250000).Equal(ref.Salary))
}

func TestCodec_SupportStaffRecord_RoundTrip(t *testing.T) {
	rec := ledger.Record{
		ID:          5,
		Timestamp:   testTime,
		Kind:        ledger.KindStaffModified,
		Description: "Staff modified: Rosa Diaz",
		Amount:      decimal.Zero,
		Ref: ledger.StaffReference(ledger.StaffRef{
			NationalID: 30555666,
			FirstName:  "Rosa",
			LastName:   "Diaz",
			Sex:        "F",
			Salary:     decimal.NewFromInt(180000),
			Role:       ledger.RoleTagSupport,
			Shift:      "morning",
			Area:       "lockers",
		}),
	}

	got, err := ledger.DecodeRecord(ledger.EncodeRecord(rec))
	require.NoError(t, err)

	ref, ok := got.Ref.Staff()
	require.True(t, ok)
	assert.Equal(t, ledger.RoleTagSupport, ref.Role)
	assert.Equal(t, "morning", ref.Shift)
	assert.Equal(t, "lockers", ref.Area)
	assert.Empty(t, ref.Specialty)
}

func TestCodec_SessionRecord_RoundTrip(t *testing.T) {
	rec := ledger.Record{
		ID:          6,
		Timestamp:   testTime,
		Kind:        ledger.KindSessionAdded,
		Description: "Session added: Spinning (Monday - morning)",
		Amount:      decimal.Zero,
		Ref: ledger.SessionReference(ledger.SessionRef{
			Name:     "Spinning",
			Day:      "Monday",
			Shift:    "morning",
			Capacity: 20,
			StaffID:  27888999,
		}),
	}

	got, err := ledger.DecodeRecord(ledger.EncodeRecord(rec))
	require.NoError(t, err)

	ref, ok := got.Ref.Session()
	require.True(t, ok)
	assert.Equal(t, "Spinning", ref.Name)
	assert.Equal(t, 20, ref.Capacity)
	assert.Equal(t, 27888999, ref.StaffID)
}

func TestCodec_UnassignedSession_StaffEncodedAsNone(t *testing.T) {
	rec := ledger.Record{
		ID:          7,
		Timestamp:   testTime,
		Kind:        ledger.KindSessionAdded,
		Description: "Session added: Yoga (Friday - evening)",
		Amount:      decimal.Zero,
		Ref: ledger.SessionReference(ledger.SessionRef{
			Name: "Yoga", Day: "Friday", Shift: "evening", Capacity: 12,
		}),
	}

	line := ledger.EncodeRecord(rec)
	assert.Contains(t, line, "SESSION;Yoga;Friday;evening;12;none")

	got, err := ledger.DecodeRecord(line)
	require.NoError(t, err)
	ref, ok := got.Ref.Session()
	require.True(t, ok)
	assert.Zero(t, ref.StaffID)
}

func TestCodec_FinancialRecord_NoPayload(t *testing.T) {
	// GIVEN: a CREDIT with no entity reference
	// THEN: the payload field is the literal "none" and decodes to nil

	rec := ledger.Record{
		ID:          2,
		Timestamp:   testTime,
		Kind:        ledger.KindCredit,
		Description: "Donation",
		Amount:      decimal.NewFromInt(5000),
	}
	line := ledger.EncodeRecord(rec)
	assert.Equal(t, "2|15/03/2026 10:30:00|CREDIT|Donation|5000|none", line)

	got, err := ledger.DecodeRecord(line)
	require.NoError(t, err)
	assert.Nil(t, got.Ref)
	assert.True(t, decimal.NewFromInt(5000).Equal(got.Amount))
}

func TestCodec_VoidRecord_CarriesNegativeAmount(t *testing.T) {
	rec := memberRec(9, ledger.KindPaymentVoid, decimal.NewFromInt(-35000))
	got, err := ledger.DecodeRecord(ledger.EncodeRecord(rec))
	require.NoError(t, err)
	assert.True(t, got.Amount.IsNegative())
	assert.Equal(t, ledger.KindPaymentVoid, got.Kind)
}

// =============================================================================
// MALFORMED LINES
// =============================================================================

func TestCodec_StructurallyBadLines_Rejected(t *testing.T) {
	cases := map[string]string{
		"too few fields": "1|15/03/2026 10:30:00|CREDIT|Dues",
		"bad id":         "x|15/03/2026 10:30:00|CREDIT|Dues|100|none",
		"bad timestamp":  "1|2026-03-15|CREDIT|Dues|100|none",
		"unknown kind":   "1|15/03/2026 10:30:00|WITHDRAWAL|Dues|100|none",
		"bad amount":     "1|15/03/2026 10:30:00|CREDIT|Dues|abc|none",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ledger.DecodeRecord(line)
			require.Error(t, err)
			assert.ErrorIs(t, err, ledger.ErrMalformedRecord)
			var malformed *ledger.MalformedRecordError
			assert.ErrorAs(t, err, &malformed)
		})
	}
}

func TestCodec_BadPayload_DegradesToNilRef(t *testing.T) {
	// GIVEN: a structurally sound line whose payload cannot be parsed
	// THEN: the record decodes fine with Ref == nil - one bad payload
	// never loses the financial data on the same line

	cases := map[string]string{
		"unknown tag":       "1|15/03/2026 10:30:00|CREDIT|Dues|100|VENDOR;12",
		"member too short":  "1|15/03/2026 10:30:00|MEMBER_ADDED|x|0|MEMBER;123;Ana",
		"member bad id":     "1|15/03/2026 10:30:00|MEMBER_ADDED|x|0|MEMBER;abc;Ana;Gomez;full;3;none",
		"staff bad role":    "1|15/03/2026 10:30:00|STAFF_ADDED|x|0|STAFF;JANITOR;1;A;B;M;100;x",
		"session bad count": "1|15/03/2026 10:30:00|SESSION_ADDED|x|0|SESSION;Yoga;Monday;morning;abc;none",
	}
	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			got, err := ledger.DecodeRecord(line)
			require.NoError(t, err)
			assert.Nil(t, got.Ref)
		})
	}
}

// =============================================================================
// HEADER
// =============================================================================

func TestCodec_Header_RoundTrip(t *testing.T) {
	h := ledger.Header{
		Name:          "Olympus Gym",
		TaxID:         "20-11111111-1",
		Address:       "Av. Siempreviva 742",
		Region:        "Buenos Aires",
		AccountNumber: "0001-0001",
		Balance:       decimal.NewFromInt(100000),
	}
	line := ledger.EncodeHeader(h)
	assert.Equal(t, "HEADER|Olympus Gym|20-11111111-1|Av. Siempreviva 742|Buenos Aires|0001-0001|100000", line)
	assert.True(t, ledger.IsHeaderLine(line))

	got, err := ledger.DecodeHeader(line)
	require.NoError(t, err)
	assert.Equal(t, h.Name, got.Name)
	assert.Equal(t, h.AccountNumber, got.AccountNumber)
	assert.True(t, h.Balance.Equal(got.Balance))
}

func TestCodec_Header_NeverDegrades(t *testing.T) {
	// Unlike record payloads, a broken header is a structural failure:
	// the balance checkpoint is gone.

	for _, line := range []string{
		"HEADER|Olympus Gym|20-1|addr|region|0001-0001",     // missing balance
		"HEADER|Olympus Gym|20-1|addr|region|0001-0001|abc", // bad balance
		"1|15/03/2026 10:30:00|CREDIT|Dues|100|none",        // not a header
	} {
		_, err := ledger.DecodeHeader(line)
		assert.Error(t, err, line)
	}
}
