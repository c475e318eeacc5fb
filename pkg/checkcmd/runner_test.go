package checkcmd

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExecutor struct {
	res    *ExecResult
	err    error
	called bool
}

func (f *fakeExecutor) Run(_ context.Context, _ string, _ int64) (*ExecResult, error) {
	f.called = true

	return f.res, f.err
}

func newTestRunner(opts *Options, specs []*RuleSpec, executor CommandRunner) *Runner {
	runner := NewRunner(opts, specs)
	runner.SetCommandRunner(executor)

	return runner
}

func TestRunnerHappyPath(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{
		Output:   "http_code:200",
		ExitCode: 0,
		Duration: 224 * time.Millisecond,
	}}
	runner := newTestRunner(
		&Options{Command: "curl example.com", TimeWarn: "2", TimeCrit: "5"},
		[]*RuleSpec{{Name: "http_code", Pattern: `http_code:(\d+)`, Mode: "parse", Warn: "0", Crit: "0"}},
		executor,
	)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityOK, report.State)
	assert.Equal(t,
		"CMD OK - checked 1 label | http_code=200 exec_time=0.224s;2;5",
		report.PluginOutput("CMD"))
}

func TestRunnerExecTimeAlwaysLast(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{Output: "a b c", Duration: 50 * time.Millisecond}}
	runner := newTestRunner(
		&Options{Command: "true"},
		[]*RuleSpec{
			{Name: "words", Pattern: `\w+`, Mode: "count"},
			{Name: "first", Pattern: `(\w+)`, Mode: "parse"},
		},
		executor,
	)

	report := runner.Run(context.Background())
	require.Len(t, report.Metrics, 3)
	assert.Equal(t, "words", report.Metrics[0].Name)
	assert.Equal(t, "3", report.Metrics[0].Value)
	assert.Equal(t, "first", report.Metrics[1].Name)
	assert.Equal(t, "a", report.Metrics[1].Value)
	assert.Equal(t, ExecTimeLabel, report.Metrics[2].Name)
	assert.Equal(t, "0.050", report.Metrics[2].Value)
	assert.Equal(t, "s", report.Metrics[2].Unit)
}

func TestRunnerTimeout(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{err: fmt.Errorf("timeout: %w", context.DeadlineExceeded)}
	runner := newTestRunner(&Options{Command: "sleep 99"}, nil, executor)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityUnknown, report.State)
	assert.Equal(t, "timeout", report.Output)
	assert.Empty(t, report.Metrics, "no perfdata after a timeout")
}

func TestRunnerExecFailure(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{err: fmt.Errorf("proc: no such file or directory")}
	runner := newTestRunner(&Options{Command: "/does/not/exist"}, nil, executor)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityUnknown, report.State)
	assert.Contains(t, report.Output, "no such file or directory")
}

func TestRunnerConfigErrorBeforeExec(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{}}
	runner := newTestRunner(
		&Options{Command: "true"},
		[]*RuleSpec{{Name: ExecTimeLabel, Pattern: "x", Mode: "match"}},
		executor,
	)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityUnknown, report.State)
	assert.Contains(t, report.Output, "reserved")
	assert.False(t, executor.called, "command must not run after a declaration error")
}

func TestRunnerBadTimeThreshold(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{}}
	runner := newTestRunner(&Options{Command: "true", TimeWarn: "abc"}, nil, executor)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityUnknown, report.State)
	assert.False(t, executor.called)
}

func TestRunnerNoCommand(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{}}
	runner := newTestRunner(&Options{}, nil, executor)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityUnknown, report.State)
	assert.Equal(t, "no command given", report.Output)
	assert.False(t, executor.called)
}

func TestRunnerNonZeroExit(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{ExitCode: 2, Duration: 10 * time.Millisecond}}
	runner := newTestRunner(&Options{Command: "false"}, nil, executor)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityWarning, report.State)
	assert.Equal(t, "command 'false' exited with code 2", report.Output)

	// same run with ignored exit code
	runner = newTestRunner(&Options{Command: "false", IgnoreExitCode: true}, nil, &fakeExecutor{res: executor.res})
	report = runner.Run(context.Background())
	assert.Equal(t, SeverityOK, report.State)
	assert.Equal(t, "checked 0 labels", report.Output)
}

func TestRunnerTimeThresholds(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{Duration: 6 * time.Second}}
	runner := newTestRunner(&Options{Command: "slow", TimeWarn: "2", TimeCrit: "5"}, nil, executor)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityCritical, report.State)
	assert.Equal(t, "execution time 6.000s exceeds critical threshold (5)", report.Output)

	executor = &fakeExecutor{res: &ExecResult{Duration: 3 * time.Second}}
	runner = newTestRunner(&Options{Command: "slow", TimeWarn: "2", TimeCrit: "5"}, nil, executor)

	report = runner.Run(context.Background())
	assert.Equal(t, SeverityWarning, report.State)
	assert.Equal(t, "execution time 3.000s exceeds warning threshold (2)", report.Output)
}

func TestRunnerNoMatchScenario(t *testing.T) {
	t.Parallel()

	executor := &fakeExecutor{res: &ExecResult{Output: "http_code:400", Duration: 100 * time.Millisecond}}
	runner := newTestRunner(
		&Options{Command: "curl example.com"},
		[]*RuleSpec{{
			Name:     "http_error",
			Pattern:  `http_code:([45]\d\d)`,
			Mode:     "nomatch",
			Severity: int64p(2),
			Message:  "HTTP error code detected",
		}},
		executor,
	)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityCritical, report.State)
	assert.Equal(t, "HTTP error code detected", report.Output)
}

func TestCountedLabels(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "checked 0 labels", countedLabels(0))
	assert.Equal(t, "checked 1 label", countedLabels(1))
	assert.Equal(t, "checked 2 labels", countedLabels(2))
}

func TestRunnerMessageOrdering(t *testing.T) {
	t.Parallel()

	// non-zero exit warning plus a critical label: critical wins the state,
	// the critical text leads the message
	executor := &fakeExecutor{res: &ExecResult{Output: "oops", ExitCode: 1, Duration: 10 * time.Millisecond}}
	runner := newTestRunner(
		&Options{Command: "failing"},
		[]*RuleSpec{{Name: "oops", Pattern: "oops", Mode: "nomatch", Severity: int64p(2)}},
		executor,
	)

	report := runner.Run(context.Background())
	assert.Equal(t, SeverityCritical, report.State)
	assert.Equal(t, "label 'oops' found, command 'failing' exited with code 1", report.Output)
}
