package settlement

import (
	"sort"
	"time"

	"warikan/internal/core"
)

// AvailableYears lists the distinct years of every parseable ledger date,
// newest first. The flag column is not consulted. When no year can be read
// the current year is returned so a selector always has a value.
func AvailableYears(txs []core.Transaction, now time.Time, loc *time.Location) []int {
	if loc == nil {
		loc = time.Local
	}
	seen := make(map[int]struct{})
	years := make([]int, 0)
	for _, tx := range txs {
		t, ok := core.ParseDate(tx.Date, loc)
		if !ok {
			continue
		}
		if _, dup := seen[t.Year()]; dup {
			continue
		}
		seen[t.Year()] = struct{}{}
		years = append(years, t.Year())
	}
	if len(years) == 0 {
		return []int{now.In(loc).Year()}
	}
	sort.Sort(sort.Reverse(sort.IntSlice(years)))
	return years
}

// LatestPeriod returns the month of the newest parseable ledger date.
func LatestPeriod(txs []core.Transaction, loc *time.Location) (core.Period, bool) {
	if loc == nil {
		loc = time.Local
	}
	var (
		latest time.Time
		found  bool
	)
	for _, tx := range txs {
		t, ok := core.ParseDate(tx.Date, loc)
		if !ok {
			continue
		}
		if !found || t.After(latest) {
			latest, found = t, true
		}
	}
	if !found {
		return core.Period{}, false
	}
	return core.PeriodOf(latest), true
}
