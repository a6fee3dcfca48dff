package http

import (
	"strconv"

	"warikan/internal/core"
	"warikan/internal/settlement"
)

type barRow struct {
	Name   string
	Amount string
	Width  int
}

type lineRow struct {
	Date        string
	Content     string
	Category    string
	Subcategory string
	Amount      string
	Memo        string
}

// monthlyView is the data of the monthly partial.
type monthlyView struct {
	Year    int
	Month   int
	Label   string
	HasData bool

	FixedShare         string
	SharedTotal        string
	SharedHalf         string
	FullReimburseTotal string
	TotalBilling       string
	PayerAdvanceTotal  string
	AdvanceAmount      int64
	AdvanceHalf        string
	FinalDue           string
	FinalDueNegative   bool

	Bars  []barRow
	Items []lineRow
}

func newMonthlyView(r settlement.MonthlyReport) monthlyView {
	v := monthlyView{
		Year:               r.Period.Year,
		Month:              r.Period.Month,
		Label:              periodLabel(r.Period),
		HasData:            r.HasData(),
		FixedShare:         formatYen(r.FixedShare),
		SharedTotal:        formatYen(r.SharedTotal),
		SharedHalf:         formatYen(r.SharedHalf),
		FullReimburseTotal: formatYen(r.FullReimburseTotal),
		TotalBilling:       formatYen(r.TotalBilling),
		PayerAdvanceTotal:  formatYen(r.PayerAdvanceTotal),
		AdvanceAmount:      r.AdvanceAmount,
		AdvanceHalf:        formatYen(r.AdvanceHalf),
		FinalDue:           formatYen(r.FinalDue),
		FinalDueNegative:   r.FinalDue < 0,
	}

	var max int64
	for _, c := range r.BySubcategory {
		if c.Amount > max {
			max = c.Amount
		}
	}
	for _, c := range r.BySubcategory {
		v.Bars = append(v.Bars, barRow{Name: c.Name, Amount: formatYen(c.Amount), Width: barWidth(c.Amount, max)})
	}
	for _, it := range r.LineItems {
		v.Items = append(v.Items, lineRow{
			Date:        it.Date,
			Content:     it.Content,
			Category:    it.Category,
			Subcategory: it.Subcategory,
			Amount:      formatYen(it.Amount),
			Memo:        it.Memo,
		})
	}
	return v
}

type monthCell struct {
	Label  string
	Shared string
	Full   string
	Total  string
	Width  int
}

type subcategoryRow struct {
	Name     string
	Total    string
	MonthAvg string
	Monthly  [12]string
}

// yearlyView is the data of the yearly partial.
type yearlyView struct {
	Year    int
	HasData bool

	SharedTotal        string
	SharedHalf         string
	FullReimburseTotal string
	TotalBilling       string
	PayerAdvanceTotal  string
	AdvanceTotal       string
	AdvanceHalf        string
	FinalDue           string
	FinalDueNegative   bool

	Months        []monthCell
	MonthHeaders  [12]string
	Subcategories []subcategoryRow
	FoodTotal     string
	FoodMonthAvg  string
	FoodMonthly   []barRow
}

func newYearlyView(r settlement.YearlyReport) yearlyView {
	v := yearlyView{
		Year:               r.Year,
		HasData:            r.HasData,
		SharedTotal:        formatYen(r.SharedTotal),
		SharedHalf:         formatYen(r.SharedHalf),
		FullReimburseTotal: formatYen(r.FullReimburseTotal),
		TotalBilling:       formatYen(r.TotalBilling),
		PayerAdvanceTotal:  formatYen(r.PayerAdvanceTotal),
		AdvanceTotal:       formatYen(r.AdvanceTotal),
		AdvanceHalf:        formatYen(r.AdvanceHalf),
		FinalDue:           formatYen(r.FinalDue),
		FinalDueNegative:   r.FinalDue < 0,
		FoodTotal:          formatYen(r.Food.Total),
		FoodMonthAvg:       formatYen(r.Food.MonthAvg),
	}
	for i := range v.MonthHeaders {
		v.MonthHeaders[i] = monthLabel(i + 1)
	}

	var maxMonth, maxFood int64
	for i, m := range r.Months {
		maxMonth = max(maxMonth, m.Total)
		maxFood = max(maxFood, r.Food.Monthly[i])
	}
	for i, m := range r.Months {
		v.Months = append(v.Months, monthCell{
			Label:  monthLabel(m.Month),
			Shared: formatYen(m.Shared),
			Full:   formatYen(m.Full),
			Total:  formatYen(m.Total),
			Width:  barWidth(m.Total, maxMonth),
		})
		v.FoodMonthly = append(v.FoodMonthly, barRow{
			Name:   monthLabel(i + 1),
			Amount: formatYen(r.Food.Monthly[i]),
			Width:  barWidth(r.Food.Monthly[i], maxFood),
		})
	}
	for _, s := range r.Subcategories {
		row := subcategoryRow{
			Name:     s.Name,
			Total:    formatYen(s.Total),
			MonthAvg: formatYen(s.MonthAvg),
		}
		for i, a := range s.Monthly {
			row.Monthly[i] = formatYen(a)
		}
		v.Subcategories = append(v.Subcategories, row)
	}
	return v
}

func monthLabel(m int) string {
	return strconv.Itoa(m) + "月"
}

func periodLabel(p core.Period) string {
	return strconv.Itoa(p.Year) + "年" + monthLabel(p.Month)
}

// selectorView feeds the year/month pickers of the dashboard shell.
type selectorView struct {
	Years    []int
	Months   []int
	Selected core.Period
}

func newSelectorView(years []int, selected core.Period) selectorView {
	v := selectorView{Years: years, Selected: selected}
	for m := 1; m <= 12; m++ {
		v.Months = append(v.Months, m)
	}
	return v
}
