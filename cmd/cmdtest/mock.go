// Package cmdtest provides a fake cmd.Executor for unit tests that would
// otherwise need to shell out to tmux.
package cmdtest

import "os/exec"

// MockExecutor implements cmd.Executor with test-supplied behavior. A nil
// func field falls back to returning zero values with no error.
type MockExecutor struct {
	RunFunc            func(cmd *exec.Cmd) error
	OutputFunc         func(cmd *exec.Cmd) ([]byte, error)
	CombinedOutputFunc func(cmd *exec.Cmd) ([]byte, error)
}

func (m MockExecutor) Run(cmd *exec.Cmd) error {
	if m.RunFunc != nil {
		return m.RunFunc(cmd)
	}
	return nil
}

func (m MockExecutor) Output(cmd *exec.Cmd) ([]byte, error) {
	if m.OutputFunc != nil {
		return m.OutputFunc(cmd)
	}
	return nil, nil
}

func (m MockExecutor) CombinedOutput(cmd *exec.Cmd) ([]byte, error) {
	if m.CombinedOutputFunc != nil {
		return m.CombinedOutputFunc(cmd)
	}
	return nil, nil
}
