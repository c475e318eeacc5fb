package checkcmd

import "fmt"

// Severity is the state of a check in monitoring plugin semantics.
// Its numeric value doubles as the process exit code.
type Severity int64

const (
	// SeverityOK is used for normal results.
	SeverityOK Severity = 0

	// SeverityWarning is used for warnings.
	SeverityWarning Severity = 1

	// SeverityCritical is used for critical problems.
	SeverityCritical Severity = 2

	// SeverityUnknown is used when the check runs into a problem itself.
	SeverityUnknown Severity = 3
)

// severityPriority is the order used to pick the final state and to order
// messages in the plugin output. Critical beats warning, unknown only beats ok.
var severityPriority = []Severity{SeverityCritical, SeverityWarning, SeverityUnknown, SeverityOK}

func (s Severity) String() string {
	switch s {
	case SeverityOK:
		return "OK"
	case SeverityWarning:
		return "WARNING"
	case SeverityCritical:
		return "CRITICAL"
	case SeverityUnknown:
		return "UNKNOWN"
	}

	return "UNKNOWN"
}

// ExitCode returns the numeric plugin exit code for this severity.
func (s Severity) ExitCode() int {
	return int(s)
}

// SeverityFromInt validates a raw numeric severity at the input boundary.
func SeverityFromInt(raw int64) (Severity, error) {
	switch Severity(raw) {
	case SeverityOK, SeverityWarning, SeverityCritical, SeverityUnknown:
		return Severity(raw), nil
	}

	return SeverityUnknown, fmt.Errorf("severity out of range: %d", raw)
}
