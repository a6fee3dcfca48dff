package cli

import (
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"warikan/internal/core"
	"warikan/internal/settlement"
)

func TestRenderTable_AlignsFullWidthText(t *testing.T) {
	out := RenderTable(Table{
		Headers: []string{"中項目", "金額"},
		Rows: [][]string{
			{"食費", "¥3,000"},
			{"立替（全額）", "¥12,000"},
		},
	})

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 6)
	want := lipgloss.Width(lines[0])
	for i, l := range lines {
		assert.Equal(t, want, lipgloss.Width(l), "line %d: %q", i, l)
	}
	assert.Contains(t, out, "立替（全額）")
}

func TestRenderTable_Separator(t *testing.T) {
	out := RenderTable(Table{
		Rows: [][]string{{"a", "1"}, Separator, {"b", "2"}},
	})
	assert.Equal(t, 1, strings.Count(out, "├"))
}

func TestRenderTable_Empty(t *testing.T) {
	assert.Empty(t, RenderTable(Table{}))
}

func TestRenderBar(t *testing.T) {
	tests := []struct {
		name       string
		value, max int64
		wantCells  int
	}{
		{"full", 100, 100, 10},
		{"half", 50, 100, 5},
		{"tiny values stay visible", 1, 1000, 1},
		{"zero", 0, 100, 0},
		{"no max", 10, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCells, lipgloss.Width(RenderBar(tt.value, tt.max, 10)))
		})
	}
}

func TestRenderMonthly(t *testing.T) {
	txs := []core.Transaction{
		{Date: "2024-05-03", Amount: "3000", SubCategory: "食費", Content: "スーパー", IncludeFlag: core.IncludeFlagOn},
		{Date: "2024-05-10", Amount: "5000", SubCategory: "立替（全額）", Content: "家電", IncludeFlag: core.IncludeFlagOn},
	}
	policy := settlement.DefaultPolicy()
	policy.Location = time.UTC

	out := RenderMonthly(settlement.ComputeMonthly(txs, 2024, 5, 2000, policy))
	assert.Contains(t, out, "2024年5月 精算")
	assert.Contains(t, out, "¥46,500")
	assert.Contains(t, out, "¥45,500")
	assert.Contains(t, out, "スーパー")
	assert.NotContains(t, out, "¥¥")

	empty := RenderMonthly(settlement.ComputeMonthly(nil, 2024, 1, 0, policy))
	assert.Contains(t, empty, "データはありません")
}

func TestRenderYearly_NoData(t *testing.T) {
	out := RenderYearly(settlement.YearlyReport{Year: 2023})
	assert.Contains(t, out, "2023年 精算")
	assert.Contains(t, out, "データはありません")
}

func TestRenderSnapshots(t *testing.T) {
	snaps := []core.Snapshot{{
		Period:       core.Period{Year: 2024, Month: 5},
		TotalBilling: 46500,
		FinalDue:     -1200,
		ComputedAt:   time.Date(2024, 6, 1, 9, 30, 0, 0, time.UTC),
	}}
	out := RenderSnapshots(2024, snaps)
	assert.Contains(t, out, "2024-05")
	assert.Contains(t, out, "-¥1,200")
	assert.Contains(t, out, "2024-06-01 09:30")

	assert.Contains(t, RenderSnapshots(2024, nil), "スナップショットはありません")
}
