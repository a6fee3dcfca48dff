package core

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// UnmarshalJSON decodes a ledger row keyed by the spreadsheet column labels.
// Cells may arrive as strings, numbers, booleans or null. Arrays and
// objects read as empty cells.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode ledger row: %w", err)
	}
	fields := []struct {
		label string
		dst   *string
	}{
		{ColumnDate, &t.Date},
		{ColumnAmount, &t.Amount},
		{ColumnMajorCategory, &t.MajorCategory},
		{ColumnSubCategory, &t.SubCategory},
		{ColumnMemo, &t.Memo},
		{ColumnContent, &t.Content},
		{ColumnIncludeFlag, &t.IncludeFlag},
	}
	for _, f := range fields {
		v, err := cellString(raw[f.label])
		if err != nil {
			return fmt.Errorf("decode column %s: %w", f.label, err)
		}
		*f.dst = v
	}
	return nil
}

// MarshalJSON encodes the row with the spreadsheet column labels.
func (t Transaction) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{
		ColumnDate:          t.Date,
		ColumnAmount:        t.Amount,
		ColumnMajorCategory: t.MajorCategory,
		ColumnSubCategory:   t.SubCategory,
		ColumnMemo:          t.Memo,
		ColumnContent:       t.Content,
		ColumnIncludeFlag:   t.IncludeFlag,
	})
}

func cellString(raw json.RawMessage) (string, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", err
		}
		return s, nil
	case 't':
		return IncludeFlagOn, nil
	case 'f':
		return "0", nil
	case '[', '{':
		return "", nil
	default:
		var n json.Number
		if err := json.Unmarshal(raw, &n); err != nil {
			return "", err
		}
		if f, err := n.Float64(); err == nil {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
		return n.String(), nil
	}
}
