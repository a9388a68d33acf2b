package classify

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type rulesFile struct {
	Rules []Rule `yaml:"rules"`
}

// LoadRules reads a YAML rules file. A missing file yields no rules.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading rules: %w", err)
	}
	var f rulesFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rules %s: %w", path, err)
	}
	for i, r := range f.Rules {
		if err := r.Validate(); err != nil {
			return nil, fmt.Errorf("rules %s entry %d: %w", path, i+1, err)
		}
	}
	return f.Rules, nil
}

// SaveRules writes rules to path, replacing the file.
func SaveRules(path string, rules []Rule) error {
	if rules == nil {
		rules = []Rule{}
	}
	data, err := yaml.Marshal(rulesFile{Rules: rules})
	if err != nil {
		return fmt.Errorf("marshaling rules: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating rules dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing rules: %w", err)
	}
	return nil
}
