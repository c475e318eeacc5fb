//go:build windows

package checkcmd

import (
	"context"
	"os"
	"os/exec"
	"syscall"
)

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	shell := os.Getenv("COMSPEC")
	if shell == "" {
		shell = "cmd.exe"
	}

	return exec.CommandContext(ctx, shell, "/c", command) //nolint:gosec // running user supplied commands is the whole point
}

func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow: true,
	}
}

func processTimeoutKill(process *os.Process) {
	LogDebug(process.Kill())
}
