/*
account.go - Balance plus signed movement history

PURPOSE:
  An Account holds a decimal balance and the ordered list of records
  that were applied to it. The movement list is append-only: records
  are never reordered or deleted, and a correction is a new record
  (PAYMENT_VOID), not an edit.

OPERATIONS:
  Credit       money in; rejects amount <= 0
  Debit        money out; rejects amount <= 0 or amount > balance
  ForcedDebit  like Debit but permits a negative balance - used for
               charges the business wants recorded even when funds are
               short; callers must know this bypasses the solvency check
  Void         signed reversal; the movement carries a negative amount
  Transfer     Debit on self, then Credit on destination only if the
               debit succeeded; NOT atomic across a process crash
  AppendHistoric  append a replayed record WITHOUT touching balance -
               the snapshot header already carries the post-application
               balance, so re-applying the delta would double count

VALIDATION FAILURES:
  Business-rule rejections return false with no state change. There is
  no error path here: the only failures are validations.
*/
package ledger

import (
	"iter"
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// ACCOUNT
// =============================================================================

type Account struct {
	number    string
	owner     string
	balance   decimal.Decimal
	movements []Record
	now       func() time.Time
}

// NewAccount creates an account with an opening balance. The opening
// balance is a checkpoint, not a movement: it does not appear in the
// history.
func NewAccount(number string, opening decimal.Decimal, owner string) *Account {
	return &Account{
		number:  number,
		owner:   owner,
		balance: opening,
		now:     time.Now,
	}
}

// WithClock replaces the timestamp source. Tests use this to pin
// movement timestamps to known periods.
func (a *Account) WithClock(now func() time.Time) *Account {
	a.now = now
	return a
}

func (a *Account) Number() string           { return a.number }
func (a *Account) Owner() string            { return a.owner }
func (a *Account) Balance() decimal.Decimal { return a.balance }

// Movements returns a copy of the applied record history, in append order.
func (a *Account) Movements() []Record {
	out := make([]Record, len(a.movements))
	copy(out, a.movements)
	return out
}

// =============================================================================
// MOVEMENTS - The only ways balance changes
// =============================================================================

// Credit adds money. Rejects non-positive amounts.
func (a *Account) Credit(amount decimal.Decimal, description string, ref *EntityRef) bool {
	if !amount.IsPositive() {
		return false
	}
	a.balance = a.balance.Add(amount)
	a.append(KindCredit, description, amount, ref)
	return true
}

// Debit removes money. Rejects non-positive amounts and amounts that
// exceed the balance.
func (a *Account) Debit(amount decimal.Decimal, description string, ref *EntityRef) bool {
	if !amount.IsPositive() || amount.GreaterThan(a.balance) {
		return false
	}
	a.balance = a.balance.Sub(amount)
	a.append(KindDebit, description, amount, ref)
	return true
}

// ForcedDebit removes money without the solvency check, permitting a
// negative balance.
func (a *Account) ForcedDebit(amount decimal.Decimal, description string, ref *EntityRef) bool {
	if !amount.IsPositive() {
		return false
	}
	a.balance = a.balance.Sub(amount)
	a.append(KindDebit, description, amount, ref)
	return true
}

// Void reverses a prior credit. The movement is recorded as a
// PAYMENT_VOID carrying the negated amount, so summaries count it as a
// negative credit.
func (a *Account) Void(amount decimal.Decimal, description string, ref *EntityRef) bool {
	if !amount.IsPositive() {
		return false
	}
	a.balance = a.balance.Sub(amount)
	a.append(KindPaymentVoid, description, amount.Neg(), ref)
	return true
}

// Transfer debits self and credits destination. If the debit fails,
// the destination is untouched. A crash between the two leaves money
// in flight; this is a documented failure mode, not hidden.
func (a *Account) Transfer(amount decimal.Decimal, destination *Account) bool {
	if destination == nil {
		return false
	}
	if !a.Debit(amount, "Outgoing transfer to "+destination.number, nil) {
		return false
	}
	destination.Credit(amount, "Incoming transfer from "+a.number, nil)
	return true
}

// AppendHistoric adds a replayed record to the history for display and
// audit purposes only. Balance is NOT touched: the header snapshot
// already encodes the post-application balance.
func (a *Account) AppendHistoric(r Record) {
	a.movements = append(a.movements, r)
}

// append assigns id = current count + 1. Ids therefore restart from
// the in-memory count and can collide with ids already present in a
// replayed history.
func (a *Account) append(kind Kind, description string, amount decimal.Decimal, ref *EntityRef) {
	a.movements = append(a.movements, Record{
		ID:          len(a.movements) + 1,
		Timestamp:   a.now(),
		Kind:        kind,
		Description: description,
		Amount:      amount,
		Ref:         ref,
	})
}

// =============================================================================
// PERIOD QUERIES
// =============================================================================

// MovementsInPeriod returns a lazy, restartable sequence of movements
// filtered by month/year. Zero month means every month in the year;
// zero year means every year; both zero yields the full history.
func (a *Account) MovementsInPeriod(month, year int) iter.Seq[Record] {
	p := Period{Month: month, Year: year}
	return func(yield func(Record) bool) {
		for _, r := range a.movements {
			if !p.Contains(r) {
				continue
			}
			if !yield(r) {
				return
			}
		}
	}
}

// Summary aggregates movements for the period into credit and debit
// totals. Kinds outside the financial set contribute zero; voids carry
// negative amounts and therefore reduce the credit total.
type Summary struct {
	Credits decimal.Decimal
	Debits  decimal.Decimal
	Net     decimal.Decimal
}

func (a *Account) Summary(month, year int) Summary {
	credits := decimal.Zero
	debits := decimal.Zero
	for r := range a.MovementsInPeriod(month, year) {
		switch {
		case r.Kind.CreditSide():
			credits = credits.Add(r.Amount)
		case r.Kind.DebitSide():
			debits = debits.Add(r.Amount)
		}
	}
	return Summary{Credits: credits, Debits: debits, Net: credits.Sub(debits)}
}
