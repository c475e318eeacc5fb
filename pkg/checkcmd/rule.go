package checkcmd

import (
	"fmt"
	"regexp"
)

// ExecTimeLabel is the reserved name of the synthetic execution time metric
// appended to every report. User labels must not use it.
const ExecTimeLabel = "exec_time"

// Mode selects how a label pattern is applied to the command output.
type Mode string

const (
	// ModeMatch expects the pattern to be found, a miss raises the label severity.
	ModeMatch Mode = "match"

	// ModeNoMatch expects the pattern to be absent, a hit raises the label severity.
	ModeNoMatch Mode = "nomatch"

	// ModeParse extracts the first capture group of the first hit as a metric.
	ModeParse Mode = "parse"

	// ModeCount counts all hits and emits the count as a metric.
	ModeCount Mode = "count"
)

// ParseMode folds the one letter aliases into their canonical mode.
// Matching is case sensitive.
func ParseMode(raw string) (Mode, error) {
	switch raw {
	case "match", "m":
		return ModeMatch, nil
	case "nomatch", "n":
		return ModeNoMatch, nil
	case "parse", "p":
		return ModeParse, nil
	case "count", "c":
		return ModeCount, nil
	}

	return "", fmt.Errorf("unknown mode '%s'", raw)
}

// ConfigError is a bad label declaration. It is always fatal, the check
// aborts with unknown state before the command runs.
type ConfigError struct {
	Label  string
	Reason string
}

func (e *ConfigError) Error() string {
	if e.Label == "" {
		return e.Reason
	}

	return fmt.Sprintf("label '%s': %s", e.Label, e.Reason)
}

// RuleSpec is a raw label declaration as it arrives from the command line or
// the rules file, not yet validated.
type RuleSpec struct {
	Name     string `yaml:"name"`
	Pattern  string `yaml:"pattern"`
	Mode     string `yaml:"mode"`
	Severity *int64 `yaml:"severity"`
	Message  string `yaml:"message"`
	Warn     string `yaml:"warn"`
	Crit     string `yaml:"crit"`
}

// Rule is one validated, immutable label rule with its compiled pattern.
type Rule struct {
	Name     string
	Pattern  string
	Mode     Mode
	Severity Severity
	Message  string
	Warn     string
	Crit     string

	re *regexp.Regexp
}

// BuildRule validates a declaration and compiles it into a Rule.
func BuildRule(spec *RuleSpec) (*Rule, error) {
	if spec.Name == "" {
		return nil, &ConfigError{Reason: "label name must not be empty"}
	}

	if spec.Name == ExecTimeLabel {
		return nil, &ConfigError{Label: spec.Name, Reason: fmt.Sprintf("'%s' is reserved for the execution time metric", ExecTimeLabel)}
	}

	if spec.Pattern == "" {
		return nil, &ConfigError{Label: spec.Name, Reason: "no pattern given"}
	}

	mode, err := ParseMode(spec.Mode)
	if err != nil {
		return nil, &ConfigError{Label: spec.Name, Reason: err.Error()}
	}

	severity := SeverityCritical
	if spec.Severity != nil {
		severity, err = SeverityFromInt(*spec.Severity)
		if err != nil {
			return nil, &ConfigError{Label: spec.Name, Reason: err.Error()}
		}
	}

	re, err := regexp.Compile("(?m)" + spec.Pattern)
	if err != nil {
		return nil, &ConfigError{Label: spec.Name, Reason: fmt.Sprintf("cannot compile pattern: %s", err.Error())}
	}

	if mode == ModeParse && re.NumSubexp() == 0 {
		return nil, &ConfigError{Label: spec.Name, Reason: "parse mode requires a capture group in the pattern"}
	}

	if err := ValidateRange(spec.Warn); err != nil {
		return nil, &ConfigError{Label: spec.Name, Reason: fmt.Sprintf("warn: %s", err.Error())}
	}

	if err := ValidateRange(spec.Crit); err != nil {
		return nil, &ConfigError{Label: spec.Name, Reason: fmt.Sprintf("crit: %s", err.Error())}
	}

	return &Rule{
		Name:     spec.Name,
		Pattern:  spec.Pattern,
		Mode:     mode,
		Severity: severity,
		Message:  spec.Message,
		Warn:     spec.Warn,
		Crit:     spec.Crit,
		re:       re,
	}, nil
}

// BuildRules validates all declarations and enforces unique label names.
func BuildRules(specs []*RuleSpec) ([]*Rule, error) {
	rules := make([]*Rule, 0, len(specs))
	seen := make(map[string]bool, len(specs))

	for _, spec := range specs {
		rule, err := BuildRule(spec)
		if err != nil {
			return nil, err
		}

		if seen[rule.Name] {
			return nil, &ConfigError{Label: rule.Name, Reason: "duplicate label name"}
		}
		seen[rule.Name] = true

		rules = append(rules, rule)
	}

	return rules, nil
}
