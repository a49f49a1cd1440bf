// Package rulesfile loads the surcharge rule table from a YAML file.
//
// The file looks like:
//
//	stacking: all          # or first-match
//	rules:
//	  - patterns: ["dễ vỡ", "fragile"]
//	    percent: 20
//	  - patterns: ["nặng", "heavy"]
//	    percent: 25
package rulesfile

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"fulfillment/internal/core/domain/services"
)

type fileDTO struct {
	Stacking string    `yaml:"stacking"`
	Rules    []ruleDTO `yaml:"rules"`
}

type ruleDTO struct {
	Patterns []string `yaml:"patterns"`
	Percent  int64    `yaml:"percent"`
}

// Load reads the table at path. An empty path yields the built-in table.
func Load(path string) (services.SurchargeTable, error) {
	if path == "" {
		return services.NewSurchargeTable(services.DefaultSurchargeRules(), services.StackAll)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return services.SurchargeTable{}, fmt.Errorf("read surcharge rules %s: %w", path, err)
	}
	table, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return services.SurchargeTable{}, fmt.Errorf("surcharge rules %s: %w", path, err)
	}
	return table, nil
}

// Parse decodes a rule table. Unknown keys are rejected.
func Parse(r io.Reader) (services.SurchargeTable, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var file fileDTO
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return services.SurchargeTable{}, errors.New("empty rule file")
		}
		return services.SurchargeTable{}, fmt.Errorf("decode yaml: %w", err)
	}

	rules := make([]services.SurchargeRule, 0, len(file.Rules))
	for _, rule := range file.Rules {
		rules = append(rules, services.SurchargeRule{Patterns: rule.Patterns, Percent: rule.Percent})
	}
	return services.NewSurchargeTable(rules, services.Stacking(file.Stacking))
}
