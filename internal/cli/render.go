package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"warikan/internal/core"
	"warikan/internal/settlement"
)

var (
	ColorBorder = lipgloss.Color("#575653")
	ColorText   = lipgloss.Color("#FFFCF0")
	ColorAccent = lipgloss.Color("#3AA99F")
	ColorGreen  = lipgloss.Color("#879A39")
	ColorRed    = lipgloss.Color("#D14D41")
	ColorMuted  = lipgloss.Color("#878580")
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorText).
			Align(lipgloss.Center)

	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorAccent)

	valueStyle = lipgloss.NewStyle().
			Foreground(ColorText)

	mutedStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	dueStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorGreen)

	negativeStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorRed)

	dimStyle = lipgloss.NewStyle().
			Foreground(ColorBorder)
)

// Table is a bordered text table. Every column but the first is right
// aligned.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// Separator inserted as a row draws a horizontal rule.
var Separator = []string{"---"}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorBorder).
		Width(48).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(titleStyle.Render(title))
}

// RenderTable renders t. Widths are measured in terminal cells so full-width
// labels line up.
func RenderTable(t Table) string {
	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	if numCols == 0 {
		return ""
	}

	widths := make([]int, numCols)
	for i, h := range t.Headers {
		widths[i] = max(widths[i], lipgloss.Width(h))
	}
	for _, row := range t.Rows {
		for i, cell := range row {
			if i < numCols {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(headerStyle.Render(t.Title))
		b.WriteString("\n")
	}

	rule := func(left, mid, right string) {
		b.WriteString(dimStyle.Render(left))
		for i, w := range widths {
			b.WriteString(dimStyle.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render(mid))
			}
		}
		b.WriteString(dimStyle.Render(right))
		b.WriteString("\n")
	}

	line := func(cells []string, style lipgloss.Style) {
		b.WriteString(dimStyle.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(style.Render(" " + pad(cell, widths[i], i > 0) + " "))
			if i < numCols-1 {
				b.WriteString(dimStyle.Render("│"))
			}
		}
		b.WriteString(dimStyle.Render("│"))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")
	if len(t.Headers) > 0 {
		line(t.Headers, headerStyle)
		rule("├", "┼", "┤")
	}
	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == Separator[0] {
			rule("├", "┼", "┤")
			continue
		}
		line(row, valueStyle)
	}
	rule("╰", "┴", "╯")

	return b.String()
}

func pad(s string, width int, right bool) string {
	gap := width - lipgloss.Width(s)
	if gap <= 0 {
		return s
	}
	if right {
		return strings.Repeat(" ", gap) + s
	}
	return s + strings.Repeat(" ", gap)
}

// RenderBar renders a horizontal bar of at most width cells.
func RenderBar(value, maxValue int64, width int) string {
	if maxValue <= 0 || value <= 0 {
		return ""
	}
	n := int(value * int64(width) / maxValue)
	if n == 0 {
		n = 1
	}
	return mutedStyle.Render(strings.Repeat("█", n))
}

// Yen formats an amount with the yen sign.
func Yen(v int64) string {
	return core.FormatYen(v)
}

func renderDue(label string, v int64) string {
	style := dueStyle
	if v < 0 {
		style = negativeStyle
	}
	return fmt.Sprintf("  %s  %s\n", label, style.Render(Yen(v)))
}

// RenderMonthly renders a monthly settlement: the breakdown, the
// sub-category totals and the line items.
func RenderMonthly(r settlement.MonthlyReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("%d年%d月 精算", r.Period.Year, r.Period.Month)))
	b.WriteString("\n\n")

	if !r.HasData() {
		b.WriteString(mutedStyle.Render("  この月のデータはありません。"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(RenderTable(Table{
		Headers: []string{"項目", "金額"},
		Rows: [][]string{
			{"家賃・光熱費（固定）", Yen(r.FixedShare)},
			{"共通費合計", Yen(r.SharedTotal)},
			{"共通費の半額", Yen(r.SharedHalf)},
			{"立替（全額）", Yen(r.FullReimburseTotal)},
			Separator,
			{"請求額合計", Yen(r.TotalBilling)},
			{"立替額（相手）", Yen(r.AdvanceAmount)},
			{"立替額の半額", Yen(r.AdvanceHalf)},
			{"支払者の立替総額", Yen(r.PayerAdvanceTotal)},
		},
	}))
	b.WriteString(renderDue("最終支払額", r.FinalDue))
	b.WriteString("\n")

	var top int64
	for _, c := range r.BySubcategory {
		top = max(top, c.Amount)
	}
	rows := make([][]string, 0, len(r.BySubcategory))
	for _, c := range r.BySubcategory {
		rows = append(rows, []string{c.Name, Yen(c.Amount), RenderBar(c.Amount, top, 20)})
	}
	b.WriteString(RenderTable(Table{
		Title:   "中項目別",
		Headers: []string{"中項目", "金額", ""},
		Rows:    rows,
	}))
	b.WriteString("\n")

	rows = rows[:0]
	for _, it := range r.LineItems {
		rows = append(rows, []string{it.Date, it.Content, it.Subcategory, Yen(it.Amount)})
	}
	b.WriteString(RenderTable(Table{
		Title:   "明細",
		Headers: []string{"日付", "内容", "中項目", "金額"},
		Rows:    rows,
	}))
	return b.String()
}

// RenderYearly renders a yearly settlement with the per-month billing,
// the food summary and the sub-category ranking.
func RenderYearly(r settlement.YearlyReport) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("%d年 精算", r.Year)))
	b.WriteString("\n\n")

	if !r.HasData {
		b.WriteString(mutedStyle.Render("  この年のデータはありません。"))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(RenderTable(Table{
		Headers: []string{"項目", "金額"},
		Rows: [][]string{
			{"共通費合計", Yen(r.SharedTotal)},
			{"共通費の半額", Yen(r.SharedHalf)},
			{"立替（全額）", Yen(r.FullReimburseTotal)},
			Separator,
			{"請求額合計", Yen(r.TotalBilling)},
			{"立替額合計（相手）", Yen(r.AdvanceTotal)},
			{"立替額の半額", Yen(r.AdvanceHalf)},
			{"支払者の立替総額", Yen(r.PayerAdvanceTotal)},
		},
	}))
	b.WriteString(renderDue("年間最終支払額", r.FinalDue))
	b.WriteString("\n")

	var top int64
	for _, m := range r.Months {
		top = max(top, m.Total)
	}
	rows := make([][]string, 0, len(r.Months))
	for _, m := range r.Months {
		rows = append(rows, []string{
			strconv.Itoa(m.Month) + "月",
			Yen(m.Shared),
			Yen(m.Full),
			Yen(m.Total),
			RenderBar(m.Total, top, 16),
		})
	}
	b.WriteString(RenderTable(Table{
		Title:   "月別請求額",
		Headers: []string{"月", "共通費（半額）", "立替（全額）", "合計", ""},
		Rows:    rows,
	}))
	b.WriteString("\n")

	b.WriteString(fmt.Sprintf("  食費  合計 %s / 月平均 %s\n\n", Yen(r.Food.Total), Yen(r.Food.MonthAvg)))

	rows = rows[:0]
	for _, s := range r.Subcategories {
		rows = append(rows, []string{s.Name, Yen(s.Total), Yen(s.MonthAvg)})
	}
	b.WriteString(RenderTable(Table{
		Title:   "中項目ランキング",
		Headers: []string{"中項目", "合計", "月平均"},
		Rows:    rows,
	}))
	return b.String()
}

// RenderSnapshots lists stored settlement snapshots, oldest first.
func RenderSnapshots(year int, snaps []core.Snapshot) string {
	var b strings.Builder
	b.WriteString(RenderTitle(fmt.Sprintf("%d年 スナップショット", year)))
	b.WriteString("\n\n")

	if len(snaps) == 0 {
		b.WriteString(mutedStyle.Render("  スナップショットはありません。"))
		b.WriteString("\n")
		return b.String()
	}

	rows := make([][]string, 0, len(snaps))
	for _, s := range snaps {
		rows = append(rows, []string{
			s.Period.String(),
			Yen(s.TotalBilling),
			Yen(s.AdvanceAmount),
			Yen(s.FinalDue),
			s.ComputedAt.Format("2006-01-02 15:04"),
		})
	}
	b.WriteString(RenderTable(Table{
		Headers: []string{"年月", "請求額", "立替額", "最終支払額", "計算日時"},
		Rows:    rows,
	}))
	return b.String()
}
