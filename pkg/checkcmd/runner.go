package checkcmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"
)

const (
	// NAME of this plugin.
	NAME = "check_cmd_wrapper"

	// VERSION contains the actual plugin version.
	VERSION = "0.5"

	// DefaultTimeout is the command timeout in seconds unless set otherwise.
	DefaultTimeout = int64(30)

	// DefaultShortName prefixes the plugin output.
	DefaultShortName = "CMD"

	// DefaultSeparator joins the collected status messages.
	DefaultSeparator = ", "
)

// Options controls a single check run.
type Options struct {
	Command        string
	Timeout        int64
	TimeWarn       string
	TimeCrit       string
	IgnoreExitCode bool
	NoShell        bool
	ShortName      string
	Separator      string
}

// Runner owns the check sequence: validate the declared labels, execute the
// command, check the execution time, evaluate every label against the
// output and aggregate everything into one report.
type Runner struct {
	opts  *Options
	specs []*RuleSpec
	exec  CommandRunner
}

func NewRunner(opts *Options, specs []*RuleSpec) *Runner {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.ShortName == "" {
		opts.ShortName = DefaultShortName
	}
	if opts.Separator == "" {
		opts.Separator = DefaultSeparator
	}

	return &Runner{
		opts:  opts,
		specs: specs,
		exec:  NewCommandRunner(opts.NoShell),
	}
}

// SetCommandRunner replaces the executor, used by tests.
func (r *Runner) SetCommandRunner(executor CommandRunner) {
	r.exec = executor
}

// Run performs the whole check and never returns an error: every failure is
// folded into the report state so the caller can print it and exit.
func (r *Runner) Run(ctx context.Context) *Report {
	// all declarations are checked before anything gets executed
	rules, err := BuildRules(r.specs)
	if err != nil {
		return unknownReport(err.Error())
	}

	if r.opts.Command == "" {
		return unknownReport("no command given")
	}

	if err := ValidateRange(r.opts.TimeWarn); err != nil {
		return unknownReport(fmt.Sprintf("time warning threshold: %s", err.Error()))
	}
	if err := ValidateRange(r.opts.TimeCrit); err != nil {
		return unknownReport(fmt.Sprintf("time critical threshold: %s", err.Error()))
	}

	log.Debugf("running command: %s (timeout: %ds)", r.opts.Command, r.opts.Timeout)
	res, err := r.exec.Run(ctx, r.opts.Command, r.opts.Timeout)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return unknownReport("timeout")
		}

		return unknownReport(err.Error())
	}
	log.Debugf("command finished: exit code %d after %.3fs", res.ExitCode, res.Duration.Seconds())

	agg := NewAggregator()

	if res.ExitCode != 0 && !r.opts.IgnoreExitCode {
		agg.AddMessage(SeverityWarning, fmt.Sprintf("command '%s' exited with code %d", r.opts.Command, res.ExitCode))
	}

	elapsed := strconv.FormatFloat(res.Duration.Seconds(), 'f', 3, 64)
	switch state := Classify(elapsed, r.opts.TimeWarn, r.opts.TimeCrit); state {
	case SeverityWarning:
		agg.AddMessage(state, fmt.Sprintf("execution time %ss exceeds warning threshold (%s)", elapsed, r.opts.TimeWarn))
	case SeverityCritical:
		agg.AddMessage(state, fmt.Sprintf("execution time %ss exceeds critical threshold (%s)", elapsed, r.opts.TimeCrit))
	case SeverityOK, SeverityUnknown:
	}

	for _, rule := range rules {
		eval := EvaluateRule(rule, res.Output)
		agg.AddMessages(eval.Messages)
		if eval.Metric != nil {
			agg.AddMetric(eval.Metric)
		}
	}

	// the execution time metric is always emitted, last
	agg.AddMetric(&Metric{
		Name:  ExecTimeLabel,
		Value: elapsed,
		Unit:  "s",
		Warn:  thresholdLiteral(r.opts.TimeWarn),
		Crit:  thresholdLiteral(r.opts.TimeCrit),
	})

	report := agg.Finalize(r.opts.Separator)
	if report.Output == "" {
		report.Output = countedLabels(len(rules))
	}

	return report
}

func countedLabels(num int) string {
	if num == 1 {
		return "checked 1 label"
	}

	return fmt.Sprintf("checked %d labels", num)
}

func unknownReport(text string) *Report {
	return &Report{
		State:  SeverityUnknown,
		Output: text,
	}
}
