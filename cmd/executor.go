// Package cmd provides a thin seam over os/exec so adapters like tmux can
// be driven by a fake executor in tests.
package cmd

import "os/exec"

// Executor runs external commands. The real implementation just delegates
// to exec.Cmd; tests substitute a fake that records invocations and returns
// canned output.
type Executor interface {
	// Run executes cmd and waits for it to complete, inheriting nothing of
	// its own stdio unless the caller has already wired cmd.Stdin/Stdout/
	// Stderr.
	Run(cmd *exec.Cmd) error
	// Output runs cmd and returns its standard output. Mirrors
	// exec.Cmd.Output's behavior of including stderr in the returned error
	// on non-zero exit via *exec.ExitError.
	Output(cmd *exec.Cmd) ([]byte, error)
	// CombinedOutput runs cmd and returns stdout and stderr interleaved.
	CombinedOutput(cmd *exec.Cmd) ([]byte, error)
}

// OSExecutor is the real Executor backed by os/exec.
type OSExecutor struct{}

// MakeExecutor returns the production Executor.
func MakeExecutor() Executor {
	return &OSExecutor{}
}

func (e *OSExecutor) Run(cmd *exec.Cmd) error {
	return cmd.Run()
}

func (e *OSExecutor) Output(cmd *exec.Cmd) ([]byte, error) {
	return cmd.Output()
}

func (e *OSExecutor) CombinedOutput(cmd *exec.Cmd) ([]byte, error) {
	return cmd.CombinedOutput()
}
