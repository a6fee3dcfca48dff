// Package settlement computes how the household ledger is split between
// the payer and the counterparty for a month or a whole year.
//
// Every function in this package is pure: the same inputs always produce
// the same report, and nothing here performs I/O.
package settlement

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
)

// Policy holds the settlement rules. It is configuration, not data: the
// defaults match the household the dashboard was built for and can be
// overridden from a TOML file.
type Policy struct {
	// FixedShare is the monthly baseline (rent and utilities) owed by the
	// counterparty. It is not part of yearly reports.
	FixedShare int64 `toml:"fixed_share" json:"fixed_share"`
	// SharedSubcategories are split 50/50.
	SharedSubcategories []string `toml:"shared_subcategories" json:"shared_subcategories"`
	// FullReimburseLabel marks rows owed in full by the counterparty.
	FullReimburseLabel string `toml:"full_reimburse_label" json:"full_reimburse_label"`
	// ExclusionMarker excludes any row whose sub-category contains it.
	ExclusionMarker string `toml:"exclusion_marker" json:"exclusion_marker"`
	// FoodSubcategories feed the yearly food summary.
	FoodSubcategories []string `toml:"food_subcategories" json:"food_subcategories"`

	// Location is used to read ledger dates. Nil means time.Local.
	Location *time.Location `toml:"-" json:"-"`
}

var ErrInvalidPolicy = errors.New("invalid settlement policy")

// DefaultPolicy returns the built-in household rules.
func DefaultPolicy() Policy {
	return Policy{
		FixedShare: 40000,
		SharedSubcategories: []string{
			"日用品",
			"デート（立替）",
			"外食",
			"食費",
			"普段使い（立替）",
			"旅費",
		},
		FullReimburseLabel: "立替（全額）",
		ExclusionMarker:    "自費",
		FoodSubcategories:  []string{"外食", "食費"},
	}
}

// Validate reports every problem with the policy at once.
func (p Policy) Validate() error {
	var errs []string
	if p.FixedShare < 0 {
		errs = append(errs, fmt.Sprintf("fixed share must not be negative (got %d)", p.FixedShare))
	}
	if strings.TrimSpace(p.FullReimburseLabel) == "" {
		errs = append(errs, "full reimbursement label is required")
	}
	if strings.TrimSpace(p.ExclusionMarker) == "" {
		errs = append(errs, "exclusion marker is required")
	}
	for _, s := range p.SharedSubcategories {
		if strings.TrimSpace(s) == "" {
			errs = append(errs, "shared sub-categories must not contain an empty name")
			break
		}
	}
	if p.FullReimburseLabel != "" && slices.Contains(p.SharedSubcategories, p.FullReimburseLabel) {
		errs = append(errs, fmt.Sprintf("%q cannot be both shared and fully reimbursed", p.FullReimburseLabel))
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidPolicy, strings.Join(errs, "; "))
	}
	return nil
}

type class int

const (
	classIgnored class = iota
	classShared
	classFull
)

// classify applies the exclusion marker first, then the full label, then
// the shared set.
func (p Policy) classify(sub string) class {
	if p.ExclusionMarker != "" && strings.Contains(sub, p.ExclusionMarker) {
		return classIgnored
	}
	if sub == p.FullReimburseLabel {
		return classFull
	}
	if slices.Contains(p.SharedSubcategories, sub) {
		return classShared
	}
	return classIgnored
}

func (p Policy) location() *time.Location {
	if p.Location == nil {
		return time.Local
	}
	return p.Location
}
