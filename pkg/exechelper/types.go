package exechelper

import (
	"bytes"
	"fmt"
)

//go:generate mockgen -source=types.go -destination=./mock_executor.go -package=exechelper

// Executor runs inventory commands on the node
type Executor interface {
	RunCommand(params ExecParams) ExecResult
}

// ExecParams parameters to execute a command
type ExecParams struct {
	CmdName string
	CmdArgs []string
	// Timeout in seconds, a default applies when zero
	Timeout int
}

func (p ExecParams) String() string {
	return fmt.Sprintf("%s %v", p.CmdName, p.CmdArgs)
}

// ExecResult result of executing a command
type ExecResult struct {
	OutBuf   *bytes.Buffer
	ErrBuf   *bytes.Buffer
	ExitCode int
	Error    error
}

// Stdout returns the captured standard output
func (r ExecResult) Stdout() []byte {
	if r.OutBuf == nil {
		return nil
	}
	return r.OutBuf.Bytes()
}

// Stderr returns the captured standard error as a string
func (r ExecResult) Stderr() string {
	if r.ErrBuf == nil {
		return ""
	}
	return r.ErrBuf.String()
}

// Succeeded reports whether the command ran and exited with code 0
func (r ExecResult) Succeeded() bool {
	return r.Error == nil && r.ExitCode == 0
}

// Err describes a failed command, or returns nil when it succeeded
func (r ExecResult) Err(params ExecParams) error {
	if r.Succeeded() {
		return nil
	}
	if r.Error != nil {
		return fmt.Errorf("command %s failed with exit code %d: %w: %s", params, r.ExitCode, r.Error, r.Stderr())
	}
	return fmt.Errorf("command %s failed with exit code %d: %s", params, r.ExitCode, r.Stderr())
}
