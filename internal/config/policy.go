package config

import (
	"fmt"

	"github.com/BurntSushi/toml"

	"warikan/internal/settlement"
)

// LoadPolicy returns the settlement policy. Keys present in the TOML file
// at path override the defaults; an empty path returns the defaults.
//
//	fixed_share = 45000
//	shared_subcategories = ["日用品", "食費"]
//	full_reimburse_label = "立替（全額）"
//	exclusion_marker = "自費"
//	food_subcategories = ["食費"]
func LoadPolicy(path string) (settlement.Policy, error) {
	p := settlement.DefaultPolicy()
	if path == "" {
		return p, nil
	}
	md, err := toml.DecodeFile(path, &p)
	if err != nil {
		return settlement.Policy{}, fmt.Errorf("decode policy %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return settlement.Policy{}, fmt.Errorf("policy %s: unknown keys %v", path, undecoded)
	}
	if err := p.Validate(); err != nil {
		return settlement.Policy{}, fmt.Errorf("policy %s: %w", path, err)
	}
	return p, nil
}
