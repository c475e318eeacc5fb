package checkcmd

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/sni/shelltoken"
)

// ExecResult is what the command execution collaborator hands back to the
// runner: the merged stdout/stderr text, the exit code and the wall time.
type ExecResult struct {
	Output   string
	ExitCode int64
	Duration time.Duration
}

// CommandRunner executes the monitored command. It is an interface so tests
// can substitute a canned result for the real process spawn.
type CommandRunner interface {
	Run(ctx context.Context, command string, timeoutSeconds int64) (*ExecResult, error)
}

type processRunner struct {
	noShell bool
}

// NewCommandRunner returns the default executor. With noShell set the
// command string is tokenized and executed directly instead of being handed
// to the system shell.
func NewCommandRunner(noShell bool) CommandRunner {
	return &processRunner{noShell: noShell}
}

func (p *processRunner) Run(ctx context.Context, command string, timeoutSeconds int64) (*ExecResult, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(timeoutSeconds)*time.Second)
	defer cancel()

	var cmd *exec.Cmd
	if p.noShell {
		env, argv, err := shelltoken.SplitLinux(command)
		if err != nil {
			return nil, fmt.Errorf("cannot parse command: %s", err.Error())
		}
		if len(argv) == 0 {
			return nil, fmt.Errorf("cannot parse command: empty command line")
		}
		cmd = exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // running user supplied commands is the whole point
		if len(env) > 0 {
			// leading VAR=VAL assignments reach the child via its environment
			cmd.Env = append(os.Environ(), env...)
		}
	} else {
		cmd = shellCommand(ctx, command)
	}

	var outbuf bytes.Buffer
	var errbuf bytes.Buffer
	cmd.Stdout = &outbuf
	cmd.Stderr = &errbuf

	// prevent the child from receiving signals meant for the plugin only
	setSysProcAttr(cmd)

	start := time.Now()
	err := cmd.Start()
	if err != nil {
		return nil, fmt.Errorf("proc: %s", err.Error())
	}

	// https://github.com/golang/go/issues/18874
	// the context timeout does not reach grandchildren and/or processes
	// keeping file handles open, so the process group is killed by hand
	go func(proc *exec.Cmd) {
		<-ctx.Done() // wait till the command runs into the timeout or finished (canceled)
		if proc.Process == nil {
			return
		}
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			processTimeoutKill(proc.Process)
		}
	}(cmd)

	err = cmd.Wait()
	duration := time.Since(start)

	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("timeout: %w", ctx.Err())
	}

	if err != nil && cmd.ProcessState == nil {
		return nil, fmt.Errorf("proc: %s", err.Error())
	}

	exitCode := int64(cmd.ProcessState.ExitCode())

	return &ExecResult{
		Output:   mergeOutput(outbuf.Bytes(), errbuf.Bytes()),
		ExitCode: exitCode,
		Duration: duration,
	}, nil
}

// mergeOutput combines stdout and stderr into the one text blob the label
// rules match against, stdout first.
func mergeOutput(stdout, stderr []byte) string {
	out := bytes.TrimSpace(bytes.Trim(stdout, "\x00"))
	errOut := bytes.TrimSpace(bytes.Trim(stderr, "\x00"))

	if len(errOut) == 0 {
		return string(out)
	}
	if len(out) == 0 {
		return string(errOut)
	}

	return string(out) + "\n" + string(errOut)
}
