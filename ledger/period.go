package ledger

// =============================================================================
// PERIOD - Month/year filter for movement queries
// =============================================================================

// Period selects records by calendar month and year. A zero Month means
// every month in Year; a zero Year means every year; both zero selects
// the full history.
type Period struct {
	Month int // 1-12, 0 = any
	Year  int // 0 = any
}

// Contains reports whether the record falls inside the period.
func (p Period) Contains(r Record) bool {
	if p.Year != 0 && r.Timestamp.Year() != p.Year {
		return false
	}
	if p.Month != 0 && int(r.Timestamp.Month()) != p.Month {
		return false
	}
	return true
}
