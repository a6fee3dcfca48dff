package settlement

import (
	"sort"
	"time"

	"warikan/internal/core"
)

// MonthlyReport is the settlement of one calendar month.
type MonthlyReport struct {
	Period             core.Period           `json:"period"`
	FixedShare         int64                 `json:"fixed_share"`
	SharedTotal        int64                 `json:"shared_total"`
	SharedHalf         int64                 `json:"shared_half"`
	FullReimburseTotal int64                 `json:"full_reimburse_total"`
	AdvanceAmount      int64                 `json:"advance_amount"`
	AdvanceHalf        int64                 `json:"advance_half"`
	TotalBilling       int64                 `json:"total_billing"`
	PayerAdvanceTotal  int64                 `json:"payer_advance_total"`
	FinalDue           int64                 `json:"final_due"`
	BySubcategory      []core.CategoryAmount `json:"by_subcategory"`
	LineItems          []core.LineItem       `json:"line_items"`
}

// HasData reports whether any classified transaction fell in the month.
func (r MonthlyReport) HasData() bool {
	return len(r.LineItems) > 0
}

// ComputeMonthly settles one month. advance is the amount the counterparty
// already paid outside the ledger; half of it is credited.
func ComputeMonthly(txs []core.Transaction, year, month int, advance int64, policy Policy) MonthlyReport {
	period := core.Period{Year: year, Month: month}
	loc := policy.location()

	var (
		shared, full           int64
		sharedItems, fullItems []core.LineItem
		bySub                  subTotals
	)
	for _, tx := range txs {
		if !tx.Included() {
			continue
		}
		when, ok := core.ParseDate(tx.Date, loc)
		if !ok || !period.Contains(when) {
			continue
		}
		amount := core.ParseYen(tx.Amount)
		item := core.LineItem{
			Date:        tx.Date,
			When:        when,
			Content:     tx.Content,
			Category:    tx.MajorCategory,
			Subcategory: tx.SubCategory,
			Amount:      amount,
			Memo:        tx.Memo,
		}
		switch policy.classify(tx.SubCategory) {
		case classFull:
			full += amount
			fullItems = append(fullItems, item)
		case classShared:
			shared += amount
			sharedItems = append(sharedItems, item)
		default:
			continue
		}
		bySub.add(tx.SubCategory, amount)
	}

	items := make([]core.LineItem, 0, len(sharedItems)+len(fullItems))
	items = append(items, sharedItems...)
	items = append(items, fullItems...)
	sortByDateDesc(items)

	r := MonthlyReport{
		Period:             period,
		FixedShare:         policy.FixedShare,
		SharedTotal:        shared,
		SharedHalf:         core.Half(shared),
		FullReimburseTotal: full,
		AdvanceAmount:      advance,
		AdvanceHalf:        core.Half(advance),
		BySubcategory:      bySub.list(),
		LineItems:          items,
	}
	r.TotalBilling = r.FixedShare + r.SharedHalf + r.FullReimburseTotal
	r.PayerAdvanceTotal = r.FixedShare + r.SharedTotal + r.FullReimburseTotal
	r.FinalDue = r.TotalBilling - r.AdvanceHalf
	return r
}

func sortByDateDesc(items []core.LineItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].When.After(items[j].When)
	})
}

// subTotals accumulates amounts by name, keeping first-seen order.
type subTotals struct {
	order []string
	sums  map[string]int64
}

func (s *subTotals) add(name string, amount int64) {
	if s.sums == nil {
		s.sums = make(map[string]int64)
	}
	if _, ok := s.sums[name]; !ok {
		s.order = append(s.order, name)
	}
	s.sums[name] += amount
}

func (s *subTotals) get(name string) int64 {
	return s.sums[name]
}

func (s *subTotals) list() []core.CategoryAmount {
	out := make([]core.CategoryAmount, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, core.CategoryAmount{Name: name, Amount: s.sums[name]})
	}
	return out
}

// monthIndex returns the zero-based month of t.
func monthIndex(t time.Time) int {
	return int(t.Month()) - 1
}
