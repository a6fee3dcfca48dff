package settlement

import (
	"sort"

	"warikan/internal/core"
)

// MonthBreakdown is one month's contribution to the yearly bill. Shared is
// already halved per transaction.
type MonthBreakdown struct {
	Month  int   `json:"month"`
	Shared int64 `json:"shared"`
	Full   int64 `json:"full"`
	Total  int64 `json:"total"`
}

// SubcategoryRow is one line of the yearly ranking table.
type SubcategoryRow struct {
	Name     string    `json:"name"`
	Total    int64     `json:"total"`
	MonthAvg int64     `json:"month_avg"`
	Monthly  [12]int64 `json:"monthly"`
}

// FoodSummary aggregates the food sub-categories over the year.
type FoodSummary struct {
	Total    int64     `json:"total"`
	MonthAvg int64     `json:"month_avg"`
	Monthly  [12]int64 `json:"monthly"`
}

// YearlyReport settles a calendar year. The fixed monthly share is left out
// so the figures show variable costs only.
type YearlyReport struct {
	Year               int                `json:"year"`
	SharedTotal        int64              `json:"shared_total"`
	SharedHalf         int64              `json:"shared_half"`
	FullReimburseTotal int64              `json:"full_reimburse_total"`
	TotalBilling       int64              `json:"total_billing"`
	PayerAdvanceTotal  int64              `json:"payer_advance_total"`
	AdvanceTotal       int64              `json:"advance_total"`
	AdvanceHalf        int64              `json:"advance_half"`
	FinalDue           int64              `json:"final_due"`
	Months             [12]MonthBreakdown `json:"months"`
	Subcategories      []SubcategoryRow   `json:"subcategories"`
	Food               FoodSummary        `json:"food"`
	HasData            bool               `json:"has_data"`
}

// ComputeYearly settles a whole year. advances holds the per-month advance
// inputs, January first; their sum is halved once.
func ComputeYearly(txs []core.Transaction, year int, advances [12]int64, policy Policy) YearlyReport {
	loc := policy.location()
	r := YearlyReport{Year: year}
	for i := range r.Months {
		r.Months[i].Month = i + 1
	}

	var (
		bySub   subTotals
		monthly = make(map[string]*[12]int64)
	)
	for _, tx := range txs {
		if !tx.Included() {
			continue
		}
		when, ok := core.ParseDate(tx.Date, loc)
		if !ok || when.Year() != year {
			continue
		}
		r.HasData = true

		c := policy.classify(tx.SubCategory)
		if c == classIgnored {
			continue
		}
		amount := core.ParseYen(tx.Amount)
		m := monthIndex(when)

		bySub.add(tx.SubCategory, amount)
		row, ok := monthly[tx.SubCategory]
		if !ok {
			row = new([12]int64)
			monthly[tx.SubCategory] = row
		}
		row[m] += amount

		if c == classFull {
			r.FullReimburseTotal += amount
			r.Months[m].Full += amount
			r.Months[m].Total += amount
		} else {
			half := core.Half(amount)
			r.SharedTotal += amount
			r.Months[m].Shared += half
			r.Months[m].Total += half
		}
	}

	for _, a := range advances {
		r.AdvanceTotal += a
	}
	r.SharedHalf = core.Half(r.SharedTotal)
	r.TotalBilling = r.SharedHalf + r.FullReimburseTotal
	r.PayerAdvanceTotal = r.SharedTotal + r.FullReimburseTotal
	r.AdvanceHalf = core.Half(r.AdvanceTotal)
	r.FinalDue = r.TotalBilling - r.AdvanceHalf

	rows := make([]SubcategoryRow, 0, len(bySub.order))
	for _, name := range bySub.order {
		total := bySub.get(name)
		rows = append(rows, SubcategoryRow{
			Name:     name,
			Total:    total,
			MonthAvg: core.FloorDiv(total, 12),
			Monthly:  *monthly[name],
		})
	}
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].Total > rows[j].Total
	})
	r.Subcategories = rows

	for _, name := range policy.FoodSubcategories {
		r.Food.Total += bySub.get(name)
		if row, ok := monthly[name]; ok {
			for i, v := range row {
				r.Food.Monthly[i] += v
			}
		}
	}
	r.Food.MonthAvg = core.FloorDiv(r.Food.Total, 12)
	return r
}
