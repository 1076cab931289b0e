package tmux

import (
	"apiary/cmd/cmdtest"
	"os/exec"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSessionExists(t *testing.T) {
	tests := []struct {
		name         string
		output       string
		outputErr    error
		expectExists bool
	}{
		{
			name:         "session exists",
			output:       "worker\nother-session\n",
			expectExists: true,
		},
		{
			name:         "session does not exist",
			output:       "other-session\nanother-session\n",
			expectExists: false,
		},
		{
			name:         "empty list",
			output:       "",
			expectExists: false,
		},
		{
			name:         "list-sessions fails without a no-server message",
			output:       "",
			outputErr:    &exec.ExitError{},
			expectExists: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmdExec := cmdtest.MockExecutor{
				CombinedOutputFunc: func(cmd *exec.Cmd) ([]byte, error) {
					return []byte(tt.output), tt.outputErr
				},
			}
			a := NewAdapterWithDeps(cmdExec)
			exists, err := a.SessionExists("worker")
			if tt.outputErr != nil {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.expectExists, exists)
		})
	}
}

func TestSessionExistsExactMatchOnly(t *testing.T) {
	cmdExec := cmdtest.MockExecutor{
		CombinedOutputFunc: func(cmd *exec.Cmd) ([]byte, error) {
			return []byte("worker-2\nworker\n"), nil
		},
	}
	a := NewAdapterWithDeps(cmdExec)
	exists, err := a.SessionExists("work")
	require.NoError(t, err)
	require.False(t, exists, "prefix match must not count as exists")
}

func TestListPanes(t *testing.T) {
	out := "worker\t0\t%1\t0\t1\tclaude\nworker\t0\t%2\t1\t0\tbash\n"
	cmdExec := cmdtest.MockExecutor{
		CombinedOutputFunc: func(cmd *exec.Cmd) ([]byte, error) {
			return []byte(out), nil
		},
	}
	a := NewAdapterWithDeps(cmdExec)
	panes, err := a.ListPanes("worker")
	require.NoError(t, err)
	require.Len(t, panes, 2)
	require.Equal(t, "%1", panes[0].PaneID)
	require.True(t, panes[0].Active)
	require.Equal(t, "claude", panes[0].CurrentCmd)
	require.False(t, panes[1].Active)
}

func TestSendKeys(t *testing.T) {
	var executed string
	cmdExec := cmdtest.MockExecutor{
		RunFunc: func(cmd *exec.Cmd) error {
			executed = cmd.String()
			return nil
		},
	}
	a := NewAdapterWithDeps(cmdExec)
	err := a.SendKeys("%1", "Enter")
	require.NoError(t, err)
	require.Contains(t, executed, "send-keys")
	require.Contains(t, executed, "%1")
}

func TestSendKeysRawHexEncodesBytes(t *testing.T) {
	var executed string
	cmdExec := cmdtest.MockExecutor{
		RunFunc: func(cmd *exec.Cmd) error {
			executed = cmd.String()
			return nil
		},
	}
	a := NewAdapterWithDeps(cmdExec)
	err := a.SendKeysRaw("%1", []byte{0x1b, 0x5b, 0x41})
	require.NoError(t, err)
	require.Contains(t, executed, "-H")
	require.Contains(t, executed, "1b")
	require.Contains(t, executed, "5b")
	require.Contains(t, executed, "41")
}

func TestGetPrefixParsesShowOptions(t *testing.T) {
	cmdExec := cmdtest.MockExecutor{
		OutputFunc: func(cmd *exec.Cmd) ([]byte, error) {
			return []byte("prefix C-a\n"), nil
		},
	}
	a := NewAdapterWithDeps(cmdExec)
	require.Equal(t, "C-a", a.GetPrefix())
}

func TestGetPrefixFallsBackOnError(t *testing.T) {
	cmdExec := cmdtest.MockExecutor{
		OutputFunc: func(cmd *exec.Cmd) ([]byte, error) {
			return nil, exec.ErrNotFound
		},
	}
	a := NewAdapterWithDeps(cmdExec)
	require.Equal(t, "C-b", a.GetPrefix())
}

func TestPipePaneStartStopsExistingPipeFirst(t *testing.T) {
	var calls []string
	cmdExec := cmdtest.MockExecutor{
		RunFunc: func(cmd *exec.Cmd) error {
			calls = append(calls, cmd.String())
			return nil
		},
	}
	a := NewAdapterWithDeps(cmdExec)
	err := a.PipePaneStart("%1", "/tmp/stream.out")
	require.NoError(t, err)
	require.Len(t, calls, 2)
	require.NotContains(t, calls[0], "cat >>", "first call stops any prior pipe")
	require.Contains(t, calls[1], "cat >>")
}

func TestStripANSI(t *testing.T) {
	in := "\x1b[32;1mhello\x1b[m world"
	require.Equal(t, "hello world", StripANSI(in))
}
