package checkcmd

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Threshold logic follows the monitoring plugins range format:
// https://www.monitoring-plugins.org/doc/guidelines.html#THRESHOLDFORMAT
//
// "N"     -> alert if value > N
// "a:b"   -> alert if value outside a..b
// "@a:b"  -> alert if value inside a..b
// "a:"    -> upper bound open
// ":b"    -> lower bound open ("~:b" works as well)

// ThresholdSet reports whether a warning/critical spec is configured at all.
// The literal "0" means unset, compatible with the original plugin. An exact
// zero bound can still be expressed as "0:0".
func ThresholdSet(spec string) bool {
	return spec != "" && spec != "0"
}

// ParseRange splits a range spec into its lower and upper bound.
func ParseRange(spec string) (lower, upper float64, err error) {
	spec = strings.TrimSpace(spec)
	if !strings.Contains(spec, ":") {
		upper, err = parseBound(spec)
		if err != nil {
			return 0, 0, err
		}

		return 0, upper, nil
	}

	parts := strings.SplitN(spec, ":", 2)
	switch parts[0] {
	case "", "~":
		lower = math.Inf(-1)
	default:
		lower, err = parseBound(parts[0])
		if err != nil {
			return 0, 0, err
		}
	}

	if parts[1] == "" {
		upper = math.Inf(1)
	} else {
		upper, err = parseBound(parts[1])
		if err != nil {
			return 0, 0, err
		}
	}

	return lower, upper, nil
}

func parseBound(raw string) (float64, error) {
	val, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("cannot parse threshold value '%s'", raw)
	}

	return val, nil
}

// ValidateRange checks a configured spec for syntax errors before any
// evaluation happens. Unset specs are always valid.
func ValidateRange(spec string) error {
	if !ThresholdSet(spec) {
		return nil
	}

	_, _, err := ParseRange(strings.TrimPrefix(spec, "@"))

	return err
}

// Breached tests a value against a range spec. Specs are expected to be
// validated already, a spec failing to parse here never raises an alert.
func Breached(value float64, spec string) bool {
	spec = strings.TrimSpace(spec)
	switch {
	case strings.HasPrefix(spec, "@"):
		// inside the range is the bad case
		lower, upper, err := ParseRange(strings.TrimPrefix(spec, "@"))
		if err != nil {
			return false
		}

		return value >= lower && value <= upper
	case strings.Contains(spec, ":"):
		lower, upper, err := ParseRange(spec)
		if err != nil {
			return false
		}

		return value < lower || value > upper
	default:
		_, upper, err := ParseRange(spec)
		if err != nil {
			return false
		}

		return value > upper
	}
}

// Classify evaluates an extracted value against warning and critical specs.
// Critical takes precedence. Values that do not parse as numbers never
// breach, extracted text is not always numeric.
func Classify(value, warnSpec, critSpec string) Severity {
	num, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return SeverityOK
	}

	if ThresholdSet(critSpec) && Breached(num, critSpec) {
		return SeverityCritical
	}

	if ThresholdSet(warnSpec) && Breached(num, warnSpec) {
		return SeverityWarning
	}

	return SeverityOK
}
