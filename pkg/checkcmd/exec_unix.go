//go:build !windows

package checkcmd

import (
	"context"
	"os"
	"os/exec"
	"syscall"
	"time"
)

func shellCommand(ctx context.Context, command string) *exec.Cmd {
	return exec.CommandContext(ctx, "/bin/sh", "-c", command) //nolint:gosec // running user supplied commands is the whole point
}

func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0,
	}
}

func processTimeoutKill(process *os.Process) {
	go func(pid int) {
		// kill the process itself and the whole process group
		LogDebug(syscall.Kill(-pid, syscall.SIGTERM))
		time.Sleep(1 * time.Second)

		LogDebug(syscall.Kill(-pid, syscall.SIGINT))
		time.Sleep(1 * time.Second)

		LogDebug(syscall.Kill(-pid, syscall.SIGKILL))
	}(process.Pid)
}
