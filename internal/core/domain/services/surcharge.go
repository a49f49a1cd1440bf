package services

import (
	"errors"
	"fmt"
	"strings"

	"fulfillment/internal/pkg/errs"
)

// Stacking selects how rules combine for a single product type.
type Stacking string

const (
	// StackAll sums every rule matching a product type name.
	StackAll Stacking = "all"

	// StackFirstMatch uses only the first matching rule per product type.
	StackFirstMatch Stacking = "first-match"
)

// SurchargeRule adds Percent to the price of a container when a product type
// name contains any of Patterns, compared case-insensitively.
type SurchargeRule struct {
	Patterns []string
	Percent  int64
}

// SurchargeTable is an ordered, validated rule list.
//
// Percentages are summed over product types and are not capped: a container
// holding fragile electronics pays both surcharges.
type SurchargeTable struct {
	rules    []SurchargeRule
	stacking Stacking
}

// DefaultSurchargeRules returns the built-in rule table.
func DefaultSurchargeRules() []SurchargeRule {
	return []SurchargeRule{
		{Patterns: []string{"dễ vỡ", "fragile"}, Percent: 20},
		{Patterns: []string{"điện tử", "electronics", "electro"}, Percent: 10},
		{Patterns: []string{"kho lạnh", "cold"}, Percent: 15},
		{Patterns: []string{"nặng", "heavy"}, Percent: 25},
	}
}

// NewSurchargeTable validates rules. An empty stacking mode means StackAll.
func NewSurchargeTable(rules []SurchargeRule, stacking Stacking) (SurchargeTable, error) {
	if stacking == "" {
		stacking = StackAll
	}
	if stacking != StackAll && stacking != StackFirstMatch {
		return SurchargeTable{}, errs.NewValueIsInvalidErrorWithCause(
			"stacking",
			fmt.Errorf("%q is not one of %q, %q", stacking, StackAll, StackFirstMatch),
		)
	}

	table := SurchargeTable{stacking: stacking, rules: make([]SurchargeRule, 0, len(rules))}
	var validationErrs []error
	for i, rule := range rules {
		if rule.Percent < 0 {
			validationErrs = append(validationErrs,
				errs.NewValueIsOutOfRangeError(fmt.Sprintf("rules[%d].percent", i), rule.Percent, 0, "unbounded"))
			continue
		}
		patterns := make([]string, 0, len(rule.Patterns))
		for _, p := range rule.Patterns {
			if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
				patterns = append(patterns, p)
			}
		}
		if len(patterns) == 0 {
			validationErrs = append(validationErrs, errs.NewValueIsRequiredError(fmt.Sprintf("rules[%d].patterns", i)))
			continue
		}
		table.rules = append(table.rules, SurchargeRule{Patterns: patterns, Percent: rule.Percent})
	}
	if err := errors.Join(validationErrs...); err != nil {
		return SurchargeTable{}, err
	}

	return table, nil
}

// MustDefaultSurchargeTable returns the built-in table with StackAll.
func MustDefaultSurchargeTable() SurchargeTable {
	table, err := NewSurchargeTable(DefaultSurchargeRules(), StackAll)
	if err != nil {
		panic(err)
	}
	return table
}

// Stacking returns the combination mode.
func (t SurchargeTable) Stacking() Stacking {
	return t.stacking
}

// Rules returns a copy of the rules.
func (t SurchargeTable) Rules() []SurchargeRule {
	out := make([]SurchargeRule, len(t.rules))
	copy(out, t.rules)
	return out
}

// PercentFor returns the surcharge percent for a single product type name.
func (t SurchargeTable) PercentFor(name string) int64 {
	name = strings.ToLower(name)
	if strings.TrimSpace(name) == "" {
		return 0
	}

	var total int64
	for _, rule := range t.rules {
		if !rule.matches(name) {
			continue
		}
		total += rule.Percent
		if t.stacking == StackFirstMatch {
			break
		}
	}
	return total
}

// Percent sums PercentFor over every product type name.
func (t SurchargeTable) Percent(names ...string) int64 {
	var total int64
	for _, name := range names {
		total += t.PercentFor(name)
	}
	return total
}

func (r SurchargeRule) matches(lowerName string) bool {
	for _, p := range r.Patterns {
		if strings.Contains(lowerName, p) {
			return true
		}
	}
	return false
}
