package core

import (
	"errors"
	"fmt"
	"time"
)

// Spreadsheet column labels of the household ledger.
const (
	ColumnDate          = "日付"
	ColumnAmount        = "金額（円）"
	ColumnMajorCategory = "大項目"
	ColumnSubCategory   = "中項目"
	ColumnMemo          = "メモ"
	ColumnContent       = "内容"
	ColumnIncludeFlag   = "計算対象"
)

// IncludeFlagOn marks a ledger row as part of the settlement.
const IncludeFlagOn = "1"

type (
	// Transaction is one ledger row as published by the spreadsheet. Every
	// field is kept as raw text; parsing happens where the value is used.
	Transaction struct {
		Date          string
		Amount        string
		MajorCategory string
		SubCategory   string
		Memo          string
		Content       string
		IncludeFlag   string
	}

	// Period identifies a calendar month.
	Period struct {
		Year  int `json:"year"`
		Month int `json:"month"` // 1-12
	}

	// Money is an amount in yen.
	Money struct {
		Yen int64
	}

	// LineItem is a classified transaction shown in the monthly detail list.
	LineItem struct {
		Date        string    `json:"date"`
		When        time.Time `json:"-"`
		Content     string    `json:"content"`
		Category    string    `json:"category"`
		Subcategory string    `json:"subcategory"`
		Amount      int64     `json:"amount"`
		Memo        string    `json:"memo"`
	}

	// CategoryAmount represents an amount aggregated by sub-category name.
	CategoryAmount struct {
		Name   string `json:"name"`
		Amount int64  `json:"amount"`
	}
)

var (
	ErrInvalidMonth  = errors.New("invalid month")
	ErrInvalidYear   = errors.New("invalid year")
	ErrInvalidPeriod = errors.New("invalid period")
)

// NewPeriod returns a validated period.
func NewPeriod(year, month int) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// PeriodOf returns the period a time falls in.
func PeriodOf(t time.Time) Period {
	return Period{Year: t.Year(), Month: int(t.Month())}
}

func (p Period) Validate() error {
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidPeriod, ErrInvalidYear, p.Year)
	}
	if p.Month < 1 || p.Month > 12 {
		return fmt.Errorf("%w: %w: %d", ErrInvalidPeriod, ErrInvalidMonth, p.Month)
	}
	return nil
}

// Contains reports whether t falls in the period.
func (p Period) Contains(t time.Time) bool {
	return t.Year() == p.Year && int(t.Month()) == p.Month
}

// Key returns "<year>-<month>" without zero padding.
func (p Period) Key() string {
	return fmt.Sprintf("%d-%d", p.Year, p.Month)
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, p.Month)
}

// Included reports whether the row is flagged for settlement.
func (t Transaction) Included() bool {
	return t.IncludeFlag == IncludeFlagOn
}
