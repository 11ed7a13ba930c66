/*
organization.go - The ledger facade

PURPOSE:
  Organization orchestrates every mutating operation: validate against
  registry/account invariants, mutate in-memory state, append a record
  to the in-memory ledger, then trigger a full rewrite of the backing
  store. Strictly sequential; there is exactly one process and one
  goroutine touching the store.

FAILURE CONTRACT:
  Business-rule failures (duplicate key, missing reference, non-positive
  amount, insufficient funds) return (false, nil): the operation "did
  not happen" and left no partial state. Persistence failures return
  (false, err); in-memory state is NOT rolled back, so memory and disk
  diverge until the next successful rewrite. That divergence is a
  documented risk, deliberately not patched over.

STARTUP:
  Load reads the catalogs (current entity snapshot) and then replays
  the ledger stream through the ReplayEngine. The header balance is
  authoritative; see replay.go.
*/
package club

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/club-ledger/ledger"
)

// Identity is the organization's static identity, used to seed the
// header when no store exists yet.
type Identity struct {
	Name          string
	TaxID         string
	Address       string
	Region        string
	AccountNumber string
}

// Organization is the ledger facade external callers mutate through.
type Organization struct {
	identity Identity
	registry *Registry
	account  *ledger.Account
	records  []ledger.Record
	engine   *ReplayEngine
	gateway  ledger.Gateway
	catalogs CatalogStore
	logger   *slog.Logger
	now      func() time.Time
}

// NewOrganization wires the facade. catalogs may be nil when entity
// snapshots are not persisted (tests). Call Load before any operation.
func NewOrganization(identity Identity, gateway ledger.Gateway, catalogs CatalogStore, logger *slog.Logger) *Organization {
	if logger == nil {
		logger = slog.Default()
	}
	return &Organization{
		identity: identity,
		registry: NewRegistry(),
		gateway:  gateway,
		catalogs: catalogs,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock replaces the timestamp source for records and plan renewal.
func (o *Organization) WithClock(now func() time.Time) *Organization {
	o.now = now
	return o
}

// =============================================================================
// STARTUP
// =============================================================================

// Load reads the catalogs, then the ledger stream, and replays it into
// fresh in-memory state. Catalogs come first so that replayed lifecycle
// records land on a populated registry and no-op, and so sessions can
// be linked back into their trainers' assignment sets.
func (o *Organization) Load(ctx context.Context) error {
	if err := o.loadCatalogs(ctx); err != nil {
		return err
	}

	header, lines, err := o.gateway.Load(ctx)
	if err != nil {
		return fmt.Errorf("loading ledger: %w", err)
	}

	// The header is the authoritative identity and balance checkpoint.
	o.identity = Identity{
		Name:          header.Name,
		TaxID:         header.TaxID,
		Address:       header.Address,
		Region:        header.Region,
		AccountNumber: header.AccountNumber,
	}
	o.account = ledger.NewAccount(header.AccountNumber, header.Balance, header.Name).WithClock(o.now)

	o.engine = NewReplayEngine(o.registry, o.account, o.logger)
	records, stats := o.engine.Replay(lines)
	o.records = records

	o.logger.Info("ledger replayed",
		"records", len(records),
		"historic", stats.Historic,
		"malformed", stats.Malformed,
		"dropped", stats.Dropped,
		"balance", o.account.Balance().String())
	return nil
}

func (o *Organization) loadCatalogs(ctx context.Context) error {
	if o.catalogs == nil {
		return nil
	}
	staff, err := o.catalogs.LoadStaff(ctx)
	if err != nil {
		return fmt.Errorf("loading staff catalog: %w", err)
	}
	for _, s := range staff {
		o.registry.AddStaff(s)
	}
	members, err := o.catalogs.LoadMembers(ctx)
	if err != nil {
		return fmt.Errorf("loading member catalog: %w", err)
	}
	for _, m := range members {
		o.registry.AddMember(m)
	}
	sessions, err := o.catalogs.LoadSessions(ctx)
	if err != nil {
		return fmt.Errorf("loading session catalog: %w", err)
	}
	for _, c := range sessions {
		if !o.registry.AddSession(c) {
			continue
		}
		if trainer, ok := o.registry.Staff(c.StaffID); ok {
			trainer.AssignSession(c.Key)
		}
	}
	return nil
}

// live reports whether mutating operations may run.
func (o *Organization) live() bool {
	return o.engine != nil && o.engine.State() == Live
}

// =============================================================================
// MEMBER OPERATIONS
// =============================================================================

func (o *Organization) AddMember(ctx context.Context, m *Member) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	if m == nil || !o.registry.AddMember(m) {
		return false, nil
	}
	o.appendRecord(ledger.KindMemberAdded,
		"Member added: "+m.FullName(), decimal.Zero, ledger.MemberReference(m.Ref()))
	return o.commit(ctx, o.persistMembers)
}

func (o *Organization) RemoveMember(ctx context.Context, nationalID int) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	m, ok := o.registry.Member(nationalID)
	if !ok || !o.registry.RemoveMember(nationalID) {
		return false, nil
	}
	o.appendRecord(ledger.KindMemberRemoved,
		"Member removed: "+m.FullName(), decimal.Zero, ledger.MemberReference(m.Ref()))
	return o.commit(ctx, o.persistMembers)
}

// ModifyMember updates the mutable fields of the member with the same
// national id. The linked account and dates are untouched.
func (o *Organization) ModifyMember(ctx context.Context, m *Member) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	if m == nil {
		return false, nil
	}
	existing, ok := o.registry.Member(m.NationalID)
	if !ok {
		return false, nil
	}
	existing.FirstName = m.FirstName
	existing.LastName = m.LastName
	existing.Tier = m.Tier
	existing.PlanMonths = m.PlanMonths
	o.appendRecord(ledger.KindMemberModified,
		"Member modified: "+existing.FullName(), decimal.Zero, ledger.MemberReference(existing.Ref()))
	return o.commit(ctx, o.persistMembers)
}

// =============================================================================
// STAFF OPERATIONS
// =============================================================================

func (o *Organization) AddStaff(ctx context.Context, s *Staff) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	if s == nil || !o.registry.AddStaff(s) {
		return false, nil
	}
	o.appendRecord(ledger.KindStaffAdded,
		"Staff added: "+s.FullName(), decimal.Zero, ledger.StaffReference(s.Ref()))
	return o.commit(ctx, o.persistStaff)
}

// RemoveStaff detaches the staff record only. Sessions assigned to the
// removed person keep their staff id; clearing it is the caller's job.
func (o *Organization) RemoveStaff(ctx context.Context, nationalID int) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	s, ok := o.registry.Staff(nationalID)
	if !ok || !o.registry.RemoveStaff(nationalID) {
		return false, nil
	}
	o.appendRecord(ledger.KindStaffRemoved,
		"Staff removed: "+s.FullName(), decimal.Zero, ledger.StaffReference(s.Ref()))
	return o.commit(ctx, o.persistStaff)
}

func (o *Organization) ModifyStaff(ctx context.Context, s *Staff) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	if s == nil {
		return false, nil
	}
	existing, ok := o.registry.Staff(s.NationalID)
	if !ok {
		return false, nil
	}
	// Keep a trainer's assignment set across a modify.
	if existing.Role.Kind == RoleTrainer && s.Role.Kind == RoleTrainer {
		s.Role.Sessions = existing.Role.Sessions
	}
	existing.FirstName = s.FirstName
	existing.LastName = s.LastName
	existing.Sex = s.Sex
	existing.Salary = s.Salary
	existing.Role = s.Role
	o.appendRecord(ledger.KindStaffModified,
		"Staff modified: "+existing.FullName(), decimal.Zero, ledger.StaffReference(existing.Ref()))
	return o.commit(ctx, o.persistStaff)
}

// =============================================================================
// SESSION OPERATIONS
// =============================================================================

// AddSession adds a session slot. A non-zero staff id must reference an
// existing trainer, which gets the session in its assignment set.
func (o *Organization) AddSession(ctx context.Context, c *Session) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	if c == nil {
		return false, nil
	}
	var trainer *Staff
	if c.StaffID != 0 {
		s, ok := o.registry.Staff(c.StaffID)
		if !ok || s.Role.Kind != RoleTrainer {
			return false, nil
		}
		trainer = s
	}
	if !o.registry.AddSession(c) {
		return false, nil
	}
	if trainer != nil {
		trainer.AssignSession(c.Key)
	}
	o.appendRecord(ledger.KindSessionAdded,
		"Session added: "+c.Name+" ("+c.Key.String()+")", decimal.Zero, ledger.SessionReference(c.Ref()))
	return o.commit(ctx, o.persistSessions)
}

func (o *Organization) RemoveSession(ctx context.Context, key SessionKey) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	c, ok := o.registry.Session(key)
	if !ok || !o.registry.RemoveSession(key) {
		return false, nil
	}
	if trainer, found := o.registry.Staff(c.StaffID); found {
		trainer.UnassignSession(key)
	}
	o.appendRecord(ledger.KindSessionRemoved,
		"Session removed: "+c.Name+" ("+key.String()+")", decimal.Zero, ledger.SessionReference(c.Ref()))
	return o.commit(ctx, o.persistSessions)
}

// ModifySession updates name, capacity, and staff assignment of the
// session in the same (day, shift) slot.
func (o *Organization) ModifySession(ctx context.Context, c *Session) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	if c == nil {
		return false, nil
	}
	existing, ok := o.registry.Session(c.Key)
	if !ok {
		return false, nil
	}
	var trainer *Staff
	if c.StaffID != 0 {
		s, found := o.registry.Staff(c.StaffID)
		if !found || s.Role.Kind != RoleTrainer {
			return false, nil
		}
		trainer = s
	}
	if existing.StaffID != c.StaffID {
		if old, found := o.registry.Staff(existing.StaffID); found {
			old.UnassignSession(existing.Key)
		}
		if trainer != nil {
			trainer.AssignSession(existing.Key)
		}
	}
	existing.Name = c.Name
	existing.Capacity = c.Capacity
	existing.StaffID = c.StaffID
	o.appendRecord(ledger.KindSessionModified,
		"Session modified: "+existing.Name+" ("+existing.Key.String()+")", decimal.Zero, ledger.SessionReference(existing.Ref()))
	return o.commit(ctx, o.persistSessions)
}

// EnrollInSession adds a member to a session, bounded by capacity.
// Enrollment lives in memory only; it is not part of the snapshot.
func (o *Organization) EnrollInSession(memberID int, key SessionKey) bool {
	if _, ok := o.registry.Member(memberID); !ok {
		return false
	}
	c, ok := o.registry.Session(key)
	if !ok {
		return false
	}
	return c.Enroll(memberID)
}

func (o *Organization) WithdrawFromSession(memberID int, key SessionKey) bool {
	c, ok := o.registry.Session(key)
	if !ok {
		return false
	}
	return c.Withdraw(memberID)
}

// =============================================================================
// FINANCIAL OPERATIONS
// =============================================================================

// RecordDuesPayment moves the dues from the member's personal account
// into the organization account and advances the member's plan expiry
// by PlanMonths from max(now, prior expiry).
//
// The member-side debit is FORCED: the business rule wants the charge
// recorded even when the member's funds are short.
func (o *Organization) RecordDuesPayment(ctx context.Context, nationalID int, amount decimal.Decimal) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	m, ok := o.registry.Member(nationalID)
	if !ok || m.Account == nil {
		return false, nil
	}
	ref := ledger.MemberReference(m.Ref())
	if !m.Account.ForcedDebit(amount, "Dues payment", ref) {
		return false, nil
	}
	desc := fmt.Sprintf("Dues payment from member %s (id %d)", m.FullName(), m.NationalID)
	o.account.Credit(amount, desc, ref)
	m.RenewPlan(o.now())

	o.appendRecord(ledger.KindCredit, desc, amount, ref)
	return o.commit(ctx, o.persistMembers)
}

// RecordPayroll debits the staff salary from the organization account.
// Unlike dues, payroll respects the solvency check.
func (o *Organization) RecordPayroll(ctx context.Context, nationalID int) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	s, ok := o.registry.Staff(nationalID)
	if !ok {
		return false, nil
	}
	ref := ledger.StaffReference(s.Ref())
	desc := fmt.Sprintf("Salary payment to %s (id %d)", s.FullName(), s.NationalID)
	if !o.account.Debit(s.Salary, desc, ref) {
		return false, nil
	}
	o.appendRecord(ledger.KindDebit, desc, s.Salary, ref)
	return o.commit(ctx)
}

// VoidPayment reverses a dues payment: the organization account books a
// PAYMENT_VOID (a negative credit) and the member's personal account,
// when present, is refunded. The plan expiry is NOT rolled back.
func (o *Organization) VoidPayment(ctx context.Context, nationalID int, amount decimal.Decimal) (bool, error) {
	if !o.live() {
		return false, ledger.ErrNotLive
	}
	m, ok := o.registry.Member(nationalID)
	if !ok {
		return false, nil
	}
	ref := ledger.MemberReference(m.Ref())
	desc := fmt.Sprintf("Voided payment of member %s (id %d)", m.FullName(), m.NationalID)
	if !o.account.Void(amount, desc, ref) {
		return false, nil
	}
	if m.Account != nil {
		m.Account.Credit(amount, "Dues refund", ref)
	}
	o.appendRecord(ledger.KindPaymentVoid, desc, amount.Neg(), ref)
	return o.commit(ctx)
}

// =============================================================================
// QUERIES
// =============================================================================

func (o *Organization) Identity() Identity { return o.identity }

func (o *Organization) AccountBalance() decimal.Decimal {
	if o.account == nil {
		return decimal.Zero
	}
	return o.account.Balance()
}

// Movements returns the organization account's movements filtered by
// month/year (zero = wildcard).
func (o *Organization) Movements(month, year int) iter.Seq[ledger.Record] {
	if o.account == nil {
		return func(func(ledger.Record) bool) {}
	}
	return o.account.MovementsInPeriod(month, year)
}

func (o *Organization) MovementsSummary(month, year int) ledger.Summary {
	if o.account == nil {
		return ledger.Summary{Credits: decimal.Zero, Debits: decimal.Zero, Net: decimal.Zero}
	}
	return o.account.Summary(month, year)
}

// Records returns the full in-memory ledger, in append order.
func (o *Organization) Records() []ledger.Record {
	out := make([]ledger.Record, len(o.records))
	copy(out, o.records)
	return out
}

func (o *Organization) Members() []*Member                   { return o.registry.Members() }
func (o *Organization) StaffList() []*Staff                  { return o.registry.AllStaff() }
func (o *Organization) Sessions() []*Session                 { return o.registry.Sessions() }
func (o *Organization) Member(id int) (*Member, bool)        { return o.registry.Member(id) }
func (o *Organization) StaffByID(id int) (*Staff, bool)      { return o.registry.Staff(id) }
func (o *Organization) Session(k SessionKey) (*Session, bool) { return o.registry.Session(k) }

// =============================================================================
// INTERNALS
// =============================================================================

// appendRecord assigns id = current record count + 1. Because removals
// are records themselves and nothing renumbers, ids restart from the
// count and can collide with ids already in the replayed history.
func (o *Organization) appendRecord(kind ledger.Kind, description string, amount decimal.Decimal, ref *ledger.EntityRef) {
	o.records = append(o.records, ledger.Record{
		ID:          len(o.records) + 1,
		Timestamp:   o.now(),
		Kind:        kind,
		Description: description,
		Amount:      amount,
		Ref:         ref,
	})
}

// commit rewrites the ledger and the given catalogs. On failure the
// in-memory mutation stays: memory and disk diverge until the next
// successful rewrite.
func (o *Organization) commit(ctx context.Context, catalogs ...func(context.Context) error) (bool, error) {
	header := ledger.Header{
		Name:          o.identity.Name,
		TaxID:         o.identity.TaxID,
		Address:       o.identity.Address,
		Region:        o.identity.Region,
		AccountNumber: o.account.Number(),
		Balance:       o.account.Balance(),
	}
	if err := o.gateway.Rewrite(ctx, header, o.records); err != nil {
		return false, fmt.Errorf("rewriting ledger: %w", err)
	}
	for _, save := range catalogs {
		if err := save(ctx); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (o *Organization) persistMembers(ctx context.Context) error {
	if o.catalogs == nil {
		return nil
	}
	if err := o.catalogs.SaveMembers(ctx, o.registry.Members()); err != nil {
		return fmt.Errorf("saving member catalog: %w", err)
	}
	return nil
}

func (o *Organization) persistStaff(ctx context.Context) error {
	if o.catalogs == nil {
		return nil
	}
	if err := o.catalogs.SaveStaff(ctx, o.registry.AllStaff()); err != nil {
		return fmt.Errorf("saving staff catalog: %w", err)
	}
	return nil
}

func (o *Organization) persistSessions(ctx context.Context) error {
	if o.catalogs == nil {
		return nil
	}
	if err := o.catalogs.SaveSessions(ctx, o.registry.Sessions()); err != nil {
		return fmt.Errorf("saving session catalog: %w", err)
	}
	return nil
}
