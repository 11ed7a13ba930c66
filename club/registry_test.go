package club_test

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/club-ledger/club"
)

// =============================================================================
// TEST FIXTURES - shared by the club package tests
// =============================================================================

var testTime = time.Date(2026, time.March, 15, 10, 30, 0, 0, time.UTC)

func testMember(id int) *club.Member {
	return &club.Member{
		NationalID: id,
		FirstName:  "Ana",
		LastName:   "Gomez",
		Tier:       "full",
		PlanMonths: 3,
		EnrolledAt: testTime,
		PlanExpiry: testTime.AddDate(0, 3, 0),
	}
}

func testTrainer(id int) *club.Staff {
	return &club.Staff{
		NationalID: id,
		FirstName:  "Luis",
		LastName:   "Perez",
		Sex:        "M",
		Salary:     decimal.NewFromInt(250000),
		Role:       club.TrainerRole("spinning"),
	}
}

func testSupport(id int) *club.Staff {
	return &club.Staff{
		NationalID: id,
		FirstName:  "Rosa",
		LastName:   "Diaz",
		Sex:        "F",
		Salary:     decimal.NewFromInt(180000),
		Role:       club.SupportRole("morning", "lockers"),
	}
}

// =============================================================================
// UNIQUENESS
// =============================================================================

func TestRegistry_DuplicateKeys_Rejected(t *testing.T) {
	r := club.NewRegistry()

	require.True(t, r.AddMember(testMember(1)))
	assert.False(t, r.AddMember(testMember(1)), "duplicate national id")

	require.True(t, r.AddStaff(testTrainer(2)))
	assert.False(t, r.AddStaff(testSupport(2)), "staff share the national id keyspace")

	session := club.NewSession("Spinning", "Monday", "morning", 20, 0)
	require.True(t, r.AddSession(session))
	assert.False(t, r.AddSession(club.NewSession("Yoga", "Monday", "morning", 10, 0)),
		"one session per (day, shift) slot")
}

func TestRegistry_NilCandidates_Rejected(t *testing.T) {
	r := club.NewRegistry()
	assert.False(t, r.AddMember(nil))
	assert.False(t, r.AddStaff(nil))
	assert.False(t, r.AddSession(nil))
}

func TestRegistry_RemoveAbsentKey_Fails(t *testing.T) {
	r := club.NewRegistry()
	assert.False(t, r.RemoveMember(99))
	assert.False(t, r.RemoveStaff(99))
	assert.False(t, r.RemoveSession(club.SessionKey{Day: "Monday", Shift: "morning"}))
}

func TestRegistry_RemoveStaff_DoesNotCascadeToSessions(t *testing.T) {
	// Removing a trainer leaves their sessions with a dangling staff id.
	// Callers clear it themselves if they care.

	r := club.NewRegistry()
	require.True(t, r.AddStaff(testTrainer(10)))
	session := club.NewSession("Spinning", "Monday", "morning", 20, 10)
	require.True(t, r.AddSession(session))

	require.True(t, r.RemoveStaff(10))

	got, ok := r.Session(club.SessionKey{Day: "Monday", Shift: "morning"})
	require.True(t, ok)
	assert.Equal(t, 10, got.StaffID, "dangling reference survives the removal")
}

func TestRegistry_InsertionOrderPreserved(t *testing.T) {
	r := club.NewRegistry()
	for _, id := range []int{5, 3, 9} {
		require.True(t, r.AddMember(testMember(id)))
	}
	require.True(t, r.RemoveMember(3))

	members := r.Members()
	require.Len(t, members, 2)
	assert.Equal(t, 5, members[0].NationalID)
	assert.Equal(t, 9, members[1].NationalID)
}

// =============================================================================
// ENTITY BEHAVIOR
// =============================================================================

func TestMember_ActiveDerivedFromExpiry(t *testing.T) {
	m := testMember(1)
	assert.True(t, m.Active(testTime))
	assert.True(t, m.Active(m.PlanExpiry), "active on the expiry day itself")
	assert.False(t, m.Active(m.PlanExpiry.Add(time.Second)))
}

func TestMember_RenewPlan_ExtendsFromLaterOfNowAndExpiry(t *testing.T) {
	// GIVEN: a plan expiring June 15
	// WHEN: renewing early, on March 15
	// THEN: the new expiry is September 15 - renewal extends, never restarts

	m := testMember(1)
	expiry := m.PlanExpiry

	m.RenewPlan(testTime)
	assert.True(t, m.PlanExpiry.Equal(expiry.AddDate(0, 3, 0)))

	// Lapsed plan: renewal counts from now instead.
	lapsed := testMember(2)
	lapsed.PlanExpiry = testTime.AddDate(0, -1, 0)
	lapsed.RenewPlan(testTime)
	assert.True(t, lapsed.PlanExpiry.Equal(testTime.AddDate(0, 3, 0)))
}

func TestStaff_SessionAssignment_TrainerOnly(t *testing.T) {
	key := club.SessionKey{Day: "Monday", Shift: "morning"}

	trainer := testTrainer(1)
	trainer.AssignSession(key)
	assert.Contains(t, trainer.Role.Sessions, key)
	trainer.UnassignSession(key)
	assert.NotContains(t, trainer.Role.Sessions, key)

	support := testSupport(2)
	support.AssignSession(key)
	assert.Empty(t, support.Role.Sessions, "assignment is a no-op for support staff")
}

func TestSession_Enrollment_BoundedAndUnique(t *testing.T) {
	c := club.NewSession("Yoga", "Friday", "evening", 2, 0)

	require.True(t, c.Enroll(100))
	assert.False(t, c.Enroll(100), "duplicate enrollment")
	require.True(t, c.Enroll(200))
	assert.False(t, c.Enroll(300), "capacity reached")

	require.True(t, c.Withdraw(100))
	assert.False(t, c.Withdraw(100), "not enrolled anymore")
	assert.Equal(t, []int{200}, c.Enrolled())
}
