package basicexecutor

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hwameistor/layout-planner/pkg/exechelper"
)

func TestRunCommand(t *testing.T) {
	e := New()

	result := e.RunCommand(exechelper.ExecParams{CmdName: "sh", CmdArgs: []string{"-c", "echo hello"}})
	assert.True(t, result.Succeeded())
	assert.Equal(t, "hello", string(result.Stdout()))

	result = e.RunCommand(exechelper.ExecParams{CmdName: "sh", CmdArgs: []string{"-c", "echo oops >&2; exit 3"}})
	assert.False(t, result.Succeeded())
	assert.Equal(t, 3, result.ExitCode)
	assert.Equal(t, "oops", result.Stderr())
	assert.Error(t, result.Err(exechelper.ExecParams{CmdName: "sh"}))

	result = e.RunCommand(exechelper.ExecParams{CmdName: "sh", CmdArgs: []string{"-c", "sleep 5"}, Timeout: 1})
	assert.Equal(t, exitCodeTimeout, result.ExitCode)
	assert.Error(t, result.Error)

	result = e.RunCommand(exechelper.ExecParams{CmdName: "/nonexistent/binary"})
	assert.Equal(t, exitCodeErrDefault, result.ExitCode)
}
