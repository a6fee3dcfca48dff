package google

import (
	"strings"
	"testing"

	"warikan/internal/core"
)

func TestParseLedger(t *testing.T) {
	values := [][]interface{}{
		{"日付", "内容", "金額（円）", "大項目", "中項目", "メモ", "計算対象"},
		{"2024/05/03", "スーパー", "3,000", "生活", "食費", "", "1"},
		{"2024/05/10", "立替", float64(2000), "生活", "立替（全額）"},
		{"", "", "", "", "", "", ""},
		{"2024/05/11", "本", "1,500", "趣味", "書籍", "memo", true},
	}
	txs, err := parseLedger(values)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(txs) != 3 {
		t.Fatalf("expected 3 rows (blank skipped), got %d", len(txs))
	}
	want := core.Transaction{
		Date: "2024/05/03", Amount: "3,000", MajorCategory: "生活",
		SubCategory: "食費", Content: "スーパー", IncludeFlag: "1",
	}
	if txs[0] != want {
		t.Fatalf("row 0: got %+v, want %+v", txs[0], want)
	}
	if txs[1].Amount != "2000" || txs[1].IncludeFlag != "" {
		t.Fatalf("row 1: short row not padded: %+v", txs[1])
	}
	if !txs[2].Included() || txs[2].Memo != "memo" {
		t.Fatalf("row 2: got %+v", txs[2])
	}
}

func TestParseLedger_Empty(t *testing.T) {
	txs, err := parseLedger(nil)
	if err != nil || txs == nil || len(txs) != 0 {
		t.Fatalf("expected empty non-nil slice, got %v, %v", txs, err)
	}
}

func TestParseLedger_MissingDateHeader(t *testing.T) {
	_, err := parseLedger([][]interface{}{{"金額（円）", "中項目"}, {"100", "食費"}})
	if err == nil {
		t.Fatal("expected error for missing date header")
	}
	if !strings.Contains(err.Error(), core.ColumnDate) {
		t.Fatalf("error should name the missing column: %v", err)
	}
}
