package scorer

import (
	"bytes"
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// ByName returns a built-in rule set.
func ByName(name string) (RuleSet, error) {
	switch name {
	case "", StandardName:
		return Standard(), nil
	case LegacyName:
		return Legacy(), nil
	default:
		return RuleSet{}, eris.Errorf("scorer: unknown rule set %q", name)
	}
}

// ParseRuleSet decodes a YAML rule set and validates it. Unknown keys are
// rejected so typos do not silently fall back to zero values.
func ParseRuleSet(data []byte) (RuleSet, error) {
	var rs RuleSet
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&rs); err != nil {
		return RuleSet{}, eris.Wrap(err, "scorer: decode rule set")
	}
	if err := rs.Validate(); err != nil {
		return RuleSet{}, err
	}
	return rs, nil
}

// LoadRuleSetFile reads and validates a YAML rule set from disk.
func LoadRuleSetFile(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, eris.Wrapf(err, "scorer: read rule set %s", path)
	}
	return ParseRuleSet(data)
}

// MarshalRuleSet encodes a rule set as YAML.
func MarshalRuleSet(rs RuleSet) ([]byte, error) {
	out, err := yaml.Marshal(rs)
	return out, eris.Wrap(err, "scorer: encode rule set")
}

// Resolve picks the rule set for a process: a file when path is set,
// otherwise the built-in named set.
func Resolve(name, path string) (RuleSet, error) {
	if path != "" {
		return LoadRuleSetFile(path)
	}
	return ByName(name)
}
