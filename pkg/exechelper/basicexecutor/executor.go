package basicexecutor

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/hwameistor/layout-planner/pkg/exechelper"
)

const (
	defaultExecTimeout = 30

	exitCodeTimeout    = 124
	exitCodeErrDefault = 1
	exitCodeSuccess    = 0
)

var squashRegex = regexp.MustCompile("[\t\n\r]+")

type basicExecutor struct {
	logger *log.Entry
}

// New creates an executor running commands directly on the host
func New() exechelper.Executor {
	return &basicExecutor{
		logger: log.WithField("Module", "BasicExecutor"),
	}
}

// RunCommand runs the command and waits for it, killing it on timeout
func (e *basicExecutor) RunCommand(params exechelper.ExecParams) exechelper.ExecResult {
	if params.Timeout == 0 {
		params.Timeout = defaultExecTimeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second*time.Duration(params.Timeout))
	defer cancel()

	stdout, stderr := &bytes.Buffer{}, &bytes.Buffer{}
	cmd := exec.CommandContext(ctx, params.CmdName, params.CmdArgs...)
	cmd.Stdout = stdout
	cmd.Stderr = stderr
	err := cmd.Run()

	result := exechelper.ExecResult{
		OutBuf:   bytes.NewBufferString(strings.TrimSuffix(stdout.String(), "\n")),
		ErrBuf:   bytes.NewBufferString(strings.TrimSuffix(stderr.String(), "\n")),
		ExitCode: exitCodeSuccess,
	}

	switch {
	case ctx.Err() == context.DeadlineExceeded:
		result.ExitCode = exitCodeTimeout
		result.Error = fmt.Errorf("command %s timed out after %d seconds", params, params.Timeout)
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			result.ExitCode = exitErr.Sys().(syscall.WaitStatus).ExitStatus()
		} else {
			result.ExitCode = exitCodeErrDefault
		}
		result.Error = errors.New(squashRegex.ReplaceAllString(err.Error(), " "))
	}

	e.logger.WithFields(log.Fields{
		"command":  params.CmdName,
		"args":     params.CmdArgs,
		"exitCode": result.ExitCode,
		"stderr":   result.ErrBuf.String(),
		"error":    result.Error,
	}).Debug("Finished running command")

	return result
}
