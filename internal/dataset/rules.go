package dataset

import (
	"context"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"subsidy-lab/internal/domain"
	"subsidy-lab/internal/storage"
)

// RuleFile is the YAML layout of a rule seed file:
//
//	rules:
//	  - schemeName: Drought Relief
//	    condition: rainfall < 70
//	    amount: 8000
//	    district: Ahmedabad
type RuleFile struct {
	Rules []RuleEntry `yaml:"rules"`
}

// RuleEntry is one rule of a seed file.
type RuleEntry struct {
	SchemeName string `yaml:"schemeName"`
	Condition  string `yaml:"condition"`
	Amount     int64  `yaml:"amount"`
	District   string `yaml:"district"`
}

// ReadRules parses a rule seed file.
func ReadRules(path string) ([]domain.Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules %q: %w", path, err)
	}
	var f RuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse rules %q: %w", path, err)
	}

	rules := make([]domain.Rule, len(f.Rules))
	for i, e := range f.Rules {
		rules[i] = domain.Rule{
			SchemeName: e.SchemeName,
			Condition:  e.Condition,
			Amount:     e.Amount,
			Region:     e.District,
		}
	}
	return rules, nil
}

// SeedRules creates the rules in the store, stopping at the first invalid rule.
func SeedRules(ctx context.Context, store storage.RuleStore, rules []domain.Rule) error {
	for i := range rules {
		if _, err := store.Create(ctx, &rules[i]); err != nil {
			return fmt.Errorf("seed rule %d (%s): %w", i+1, rules[i].SchemeName, err)
		}
	}
	return nil
}
