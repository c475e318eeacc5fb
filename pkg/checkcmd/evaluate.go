package checkcmd

import (
	"fmt"
	"strconv"
)

// StatusMessage is one message emitted during evaluation, bucketed by
// severity in the aggregator later on.
type StatusMessage struct {
	Severity Severity
	Text     string
}

// Evaluation is the outcome of applying one rule to the command output.
type Evaluation struct {
	Metric   *Metric
	Messages []StatusMessage
}

// EvaluateRule applies a validated rule to the captured command output.
// All non-overlapping matches are collected in order of appearance. If the
// pattern contains capture groups, the first group of a match is its value,
// otherwise the whole matched text. Further capture groups are ignored.
func EvaluateRule(rule *Rule, output string) *Evaluation {
	matches := rule.re.FindAllStringSubmatch(output, -1)
	log.Debugf("label '%s' (%s): %d matches", rule.Name, rule.Mode, len(matches))

	switch rule.Mode {
	case ModeMatch:
		if len(matches) > 0 {
			return &Evaluation{}
		}

		return &Evaluation{Messages: []StatusMessage{missMessage(rule)}}
	case ModeNoMatch:
		if len(matches) == 0 {
			return &Evaluation{}
		}

		return &Evaluation{Messages: []StatusMessage{foundMessage(rule)}}
	case ModeParse:
		if len(matches) == 0 {
			return &Evaluation{Messages: []StatusMessage{missMessage(rule)}}
		}

		value := matchValue(rule, matches[0])

		return evalValue(rule, value)
	case ModeCount:
		// zero matches is a regular result here, the metric is always emitted
		return evalValue(rule, strconv.Itoa(len(matches)))
	}

	// modes are validated at build time
	return &Evaluation{}
}

// evalValue builds the metric for parse/count results and runs the
// threshold classification on the extracted value.
func evalValue(rule *Rule, value string) *Evaluation {
	eval := &Evaluation{
		Metric: &Metric{
			Name:  rule.Name,
			Value: value,
			Warn:  thresholdLiteral(rule.Warn),
			Crit:  thresholdLiteral(rule.Crit),
		},
	}

	switch state := Classify(value, rule.Warn, rule.Crit); state {
	case SeverityWarning:
		eval.Messages = append(eval.Messages, StatusMessage{
			Severity: state,
			Text:     fmt.Sprintf("label '%s' value %s exceeds warning threshold (%s)", rule.Name, value, rule.Warn),
		})
	case SeverityCritical:
		eval.Messages = append(eval.Messages, StatusMessage{
			Severity: state,
			Text:     fmt.Sprintf("label '%s' value %s exceeds critical threshold (%s)", rule.Name, value, rule.Crit),
		})
	case SeverityOK, SeverityUnknown:
	}

	return eval
}

// matchValue narrows a match down to its representative value.
func matchValue(rule *Rule, match []string) string {
	if rule.re.NumSubexp() > 0 {
		return match[1]
	}

	return match[0]
}

func missMessage(rule *Rule) StatusMessage {
	text := rule.Message
	if text == "" {
		text = fmt.Sprintf("label '%s' not found", rule.Name)
	}

	return StatusMessage{Severity: rule.Severity, Text: text}
}

func foundMessage(rule *Rule) StatusMessage {
	text := rule.Message
	if text == "" {
		text = fmt.Sprintf("label '%s' found", rule.Name)
	}

	return StatusMessage{Severity: rule.Severity, Text: text}
}

// thresholdLiteral returns the spec for the perfdata output, unset
// sentinels are omitted there.
func thresholdLiteral(spec string) string {
	if !ThresholdSet(spec) {
		return ""
	}

	return spec
}
