package club_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/club-ledger/club"
	"github.com/warp/club-ledger/ledger"
	"github.com/warp/club-ledger/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

var testIdentity = club.Identity{
	Name:          "Olympus Gym",
	TaxID:         "20-11111111-1",
	Address:       "Av. Siempreviva 742",
	Region:        "Buenos Aires",
	AccountNumber: "0001-0001",
}

func seedHeader(balance int64) ledger.Header {
	return ledger.Header{
		Name:          testIdentity.Name,
		TaxID:         testIdentity.TaxID,
		Address:       testIdentity.Address,
		Region:        testIdentity.Region,
		AccountNumber: testIdentity.AccountNumber,
		Balance:       decimal.NewFromInt(balance),
	}
}

// newTestOrg builds a loaded organization over an in-memory gateway
// checkpointed at the given balance.
func newTestOrg(t *testing.T, balance int64) (*club.Organization, *store.Memory) {
	gw := store.NewMemory(seedHeader(0))
	require.NoError(t, gw.Rewrite(context.Background(), seedHeader(balance), nil))

	org := club.NewOrganization(testIdentity, gw, nil, nil).
		WithClock(func() time.Time { return testTime })
	require.NoError(t, org.Load(context.Background()))
	return org, gw
}

func memberWithAccount(id int, opening int64) *club.Member {
	m := testMember(id)
	m.Account = ledger.NewAccount("0001-0099", decimal.NewFromInt(opening), m.FullName())
	return m
}

// =============================================================================
// LIFECYCLE OPERATIONS
// =============================================================================

func TestOrganization_OperationsBeforeLoad_Rejected(t *testing.T) {
	org := club.NewOrganization(testIdentity, store.NewMemory(seedHeader(0)), nil, nil)

	applied, err := org.AddMember(context.Background(), testMember(1))
	assert.False(t, applied)
	assert.ErrorIs(t, err, ledger.ErrNotLive)
}

func TestOrganization_AddMember_AppendsRecordAndPersists(t *testing.T) {
	org, gw := newTestOrg(t, 0)
	ctx := context.Background()

	applied, err := org.AddMember(ctx, testMember(30111222))
	require.NoError(t, err)
	require.True(t, applied)

	records := org.Records()
	require.Len(t, records, 1)
	assert.Equal(t, 1, records[0].ID)
	assert.Equal(t, ledger.KindMemberAdded, records[0].Kind)

	lines := gw.Lines()
	require.Len(t, lines, 1, "every mutation rewrites the store")

	// Duplicate: business failure, not an error, nothing appended.
	applied, err = org.AddMember(ctx, testMember(30111222))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.Len(t, org.Records(), 1)
}

func TestOrganization_AddSession_ValidatesTrainerReference(t *testing.T) {
	org, _ := newTestOrg(t, 0)
	ctx := context.Background()

	// Unknown staff id.
	applied, err := org.AddSession(ctx, club.NewSession("Spinning", "Monday", "morning", 20, 999))
	require.NoError(t, err)
	assert.False(t, applied)

	// Support staff cannot take a session.
	_, err = org.AddStaff(ctx, testSupport(20))
	require.NoError(t, err)
	applied, _ = org.AddSession(ctx, club.NewSession("Spinning", "Monday", "morning", 20, 20))
	assert.False(t, applied)

	// A trainer can, and gets the key in their assignment set.
	_, err = org.AddStaff(ctx, testTrainer(10))
	require.NoError(t, err)
	applied, err = org.AddSession(ctx, club.NewSession("Spinning", "Monday", "morning", 20, 10))
	require.NoError(t, err)
	require.True(t, applied)

	trainer, _ := org.StaffByID(10)
	assert.Contains(t, trainer.Role.Sessions, club.SessionKey{Day: "Monday", Shift: "morning"})
}

func TestOrganization_RemoveSession_UnassignsTrainer(t *testing.T) {
	org, _ := newTestOrg(t, 0)
	ctx := context.Background()
	key := club.SessionKey{Day: "Monday", Shift: "morning"}

	_, err := org.AddStaff(ctx, testTrainer(10))
	require.NoError(t, err)
	_, err = org.AddSession(ctx, club.NewSession("Spinning", "Monday", "morning", 20, 10))
	require.NoError(t, err)

	applied, err := org.RemoveSession(ctx, key)
	require.NoError(t, err)
	require.True(t, applied)

	trainer, _ := org.StaffByID(10)
	assert.NotContains(t, trainer.Role.Sessions, key)
}

func TestOrganization_Enrollment_InMemoryOnly(t *testing.T) {
	org, gw := newTestOrg(t, 0)
	ctx := context.Background()
	key := club.SessionKey{Day: "Friday", Shift: "evening"}

	_, err := org.AddMember(ctx, testMember(30111222))
	require.NoError(t, err)
	_, err = org.AddSession(ctx, club.NewSession("Yoga", "Friday", "evening", 2, 0))
	require.NoError(t, err)
	before := len(gw.Lines())

	assert.True(t, org.EnrollInSession(30111222, key))
	assert.False(t, org.EnrollInSession(30111222, key), "already enrolled")
	assert.False(t, org.EnrollInSession(999, key), "unknown member")

	session, _ := org.Session(key)
	assert.Equal(t, []int{30111222}, session.Enrolled())
	assert.Len(t, gw.Lines(), before, "enrollment is not a ledger event")

	assert.True(t, org.WithdrawFromSession(30111222, key))
	assert.False(t, org.WithdrawFromSession(30111222, key))
}

// =============================================================================
// FINANCIAL OPERATIONS
// =============================================================================

func TestOrganization_DuesPayment_MovesMoneyAndRenewsPlan(t *testing.T) {
	// GIVEN: org balance 100000, member with account balance 0
	// WHEN: dues of 35000 are paid
	// THEN: org 135000, member -35000 (forced), plan expiry +3 months

	org, _ := newTestOrg(t, 100000)
	ctx := context.Background()

	m := memberWithAccount(30111222, 0)
	expiry := m.PlanExpiry
	_, err := org.AddMember(ctx, m)
	require.NoError(t, err)

	applied, err := org.RecordDuesPayment(ctx, 30111222, decimal.NewFromInt(35000))
	require.NoError(t, err)
	require.True(t, applied)

	assert.True(t, decimal.NewFromInt(135000).Equal(org.AccountBalance()))
	assert.True(t, decimal.NewFromInt(-35000).Equal(m.Account.Balance()),
		"the member-side debit is forced, short funds notwithstanding")
	assert.True(t, m.PlanExpiry.Equal(expiry.AddDate(0, 3, 0)))

	records := org.Records()
	require.Len(t, records, 2)
	assert.Equal(t, ledger.KindCredit, records[1].Kind)
}

func TestOrganization_DuesPayment_RequiresLinkedAccount(t *testing.T) {
	org, _ := newTestOrg(t, 0)
	ctx := context.Background()

	_, err := org.AddMember(ctx, testMember(30111222)) // no account
	require.NoError(t, err)

	applied, err := org.RecordDuesPayment(ctx, 30111222, decimal.NewFromInt(35000))
	require.NoError(t, err)
	assert.False(t, applied)
	assert.True(t, decimal.Zero.Equal(org.AccountBalance()))
}

func TestOrganization_Payroll_RespectsSolvency(t *testing.T) {
	// GIVEN: org balance 100000 and a salary of 250000
	// THEN: payroll fails - unlike dues, payroll is not forced

	org, _ := newTestOrg(t, 100000)
	ctx := context.Background()

	_, err := org.AddStaff(ctx, testTrainer(10))
	require.NoError(t, err)

	applied, err := org.RecordPayroll(ctx, 10)
	require.NoError(t, err)
	assert.False(t, applied)
	assert.True(t, decimal.NewFromInt(100000).Equal(org.AccountBalance()))

	// With enough money it goes through.
	org2, _ := newTestOrg(t, 300000)
	_, err = org2.AddStaff(ctx, testTrainer(10))
	require.NoError(t, err)
	applied, err = org2.RecordPayroll(ctx, 10)
	require.NoError(t, err)
	require.True(t, applied)
	assert.True(t, decimal.NewFromInt(50000).Equal(org2.AccountBalance()))
}

func TestOrganization_VoidPayment_RefundsAndKeepsExpiry(t *testing.T) {
	org, _ := newTestOrg(t, 100000)
	ctx := context.Background()

	m := memberWithAccount(30111222, 50000)
	_, err := org.AddMember(ctx, m)
	require.NoError(t, err)
	_, err = org.RecordDuesPayment(ctx, 30111222, decimal.NewFromInt(35000))
	require.NoError(t, err)
	expiry := m.PlanExpiry

	applied, err := org.VoidPayment(ctx, 30111222, decimal.NewFromInt(35000))
	require.NoError(t, err)
	require.True(t, applied)

	assert.True(t, decimal.NewFromInt(100000).Equal(org.AccountBalance()))
	assert.True(t, decimal.NewFromInt(50000).Equal(m.Account.Balance()), "refunded in full")
	assert.True(t, m.PlanExpiry.Equal(expiry), "a void never rolls the plan back")

	records := org.Records()
	last := records[len(records)-1]
	assert.Equal(t, ledger.KindPaymentVoid, last.Kind)
	assert.True(t, last.Amount.IsNegative())
}

// =============================================================================
// PERSISTENCE ROUND TRIP
// =============================================================================

func TestOrganization_RestartRebuildsStateWithoutDoubleCounting(t *testing.T) {
	// GIVEN: a populated organization with financial history
	// WHEN: a fresh organization loads from the same gateway
	// THEN: entities and balance match; replayed credits are history,
	// not re-applied deltas

	gw := store.NewMemory(seedHeader(0))
	require.NoError(t, gw.Rewrite(context.Background(), seedHeader(100000), nil))
	ctx := context.Background()

	first := club.NewOrganization(testIdentity, gw, nil, nil).
		WithClock(func() time.Time { return testTime })
	require.NoError(t, first.Load(ctx))

	_, err := first.AddMember(ctx, memberWithAccount(30111222, 0))
	require.NoError(t, err)
	_, err = first.AddStaff(ctx, testTrainer(27888999))
	require.NoError(t, err)
	_, err = first.AddSession(ctx, club.NewSession("Spinning", "Monday", "morning", 20, 27888999))
	require.NoError(t, err)
	_, err = first.RecordDuesPayment(ctx, 30111222, decimal.NewFromInt(35000))
	require.NoError(t, err)
	require.True(t, decimal.NewFromInt(135000).Equal(first.AccountBalance()))

	second := club.NewOrganization(testIdentity, gw, nil, nil)
	require.NoError(t, second.Load(ctx))

	assert.True(t, decimal.NewFromInt(135000).Equal(second.AccountBalance()),
		"header checkpoint is authoritative; replay adds nothing on top")
	assert.Len(t, second.Records(), 4)

	_, ok := second.Member(30111222)
	assert.True(t, ok)
	trainer, ok := second.StaffByID(27888999)
	require.True(t, ok)
	assert.Contains(t, trainer.Role.Sessions, club.SessionKey{Day: "Monday", Shift: "morning"})

	summary := second.MovementsSummary(0, 0)
	assert.True(t, decimal.NewFromInt(35000).Equal(summary.Credits))
}
