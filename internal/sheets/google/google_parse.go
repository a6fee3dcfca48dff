package google

import (
	"fmt"
	"strconv"
	"strings"

	"warikan/internal/core"
)

// parseLedger converts a values matrix (as returned by the Sheets API) into
// transactions. Columns are located by header label; only the date column
// is mandatory.
func parseLedger(values [][]interface{}) ([]core.Transaction, error) {
	txs := make([]core.Transaction, 0, len(values))
	if len(values) == 0 {
		return txs, nil
	}
	headers := toStrings(values[0])
	col := func(label string) int { return indexOf(headers, label) }
	var (
		colDate    = col(core.ColumnDate)
		colAmount  = col(core.ColumnAmount)
		colMajor   = col(core.ColumnMajorCategory)
		colSub     = col(core.ColumnSubCategory)
		colMemo    = col(core.ColumnMemo)
		colContent = col(core.ColumnContent)
		colFlag    = col(core.ColumnIncludeFlag)
	)
	if colDate == -1 {
		return nil, fmt.Errorf("unexpected ledger header: missing %s; got headers=%v", core.ColumnDate, headers)
	}
	for i := 1; i < len(values); i++ {
		row := toStrings(values[i])
		if isBlank(row) {
			continue
		}
		txs = append(txs, core.Transaction{
			Date:          safeGet(row, colDate),
			Amount:        safeGet(row, colAmount),
			MajorCategory: safeGet(row, colMajor),
			SubCategory:   safeGet(row, colSub),
			Memo:          safeGet(row, colMemo),
			Content:       safeGet(row, colContent),
			IncludeFlag:   safeGet(row, colFlag),
		})
	}
	return txs, nil
}

// toStrings renders each cell the way the script endpoint would.
func toStrings(in []interface{}) []string {
	out := make([]string, len(in))
	for i, v := range in {
		switch x := v.(type) {
		case nil:
			out[i] = ""
		case string:
			out[i] = x
		case float64:
			out[i] = strconv.FormatFloat(x, 'f', -1, 64)
		case bool:
			if x {
				out[i] = core.IncludeFlagOn
			} else {
				out[i] = "0"
			}
		default:
			out[i] = fmt.Sprint(x)
		}
	}
	return out
}

func indexOf(arr []string, target string) int {
	for i, v := range arr {
		if strings.TrimSpace(v) == target {
			return i
		}
	}
	return -1
}

func safeGet(arr []string, idx int) string {
	if idx < 0 || idx >= len(arr) {
		return ""
	}
	return arr[idx]
}

func isBlank(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
