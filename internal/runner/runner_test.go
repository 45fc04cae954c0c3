package runner

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestMergeEnv checks overlay keys replace base entries and are appended in order.
func TestMergeEnv(t *testing.T) {
	t.Parallel()

	base := []string{"PATH=/bin", "GH_TOKEN=old", "HOME=/root"}
	got := MergeEnv(base, map[string]string{
		"GH_TOKEN": "new",
		"ADBLOCK":  "true",
	})

	require.Equal(t, []string{"PATH=/bin", "HOME=/root", "ADBLOCK=true", "GH_TOKEN=new"}, got)
	require.Equal(t, base, MergeEnv(base, nil))
}

// TestCommand_String renders the program and its arguments.
func TestCommand_String(t *testing.T) {
	t.Parallel()

	cmd := Command{Name: "npm", Args: []string{"run", "build", "--if-present"}, Env: map[string]string{"GH_TOKEN": "secret"}}
	require.Equal(t, "npm run build --if-present", cmd.String())
	require.NotContains(t, cmd.String(), "secret")
}

// TestExec_Run runs real shell commands and inspects exit handling.
func TestExec_Run(t *testing.T) {
	t.Parallel()

	if runtime.GOOS == "windows" {
		t.Skip("uses /bin/sh")
	}

	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	var stdout bytes.Buffer

	r := &Exec{Stdout: &stdout, Stderr: &stdout}

	err := r.Run(context.Background(), Command{
		Name: "sh",
		Args: []string{"-c", `printf "%s" "$ELECTRON_RELEASE_TEST"`},
		Dir:  t.TempDir(),
		Env:  map[string]string{"ELECTRON_RELEASE_TEST": "overlay"},
	})
	require.NoError(t, err)
	require.Equal(t, "overlay", stdout.String())

	err = r.Run(context.Background(), Command{Name: "sh", Args: []string{"-c", "exit 3"}})

	var exitErr *ExitError
	require.True(t, errors.As(err, &exitErr))
	require.Equal(t, 3, exitErr.Code)
	require.Equal(t, "sh -c exit 3", exitErr.Command)
}

// TestExec_Run_EmptyName rejects commands without a program.
func TestExec_Run_EmptyName(t *testing.T) {
	t.Parallel()

	require.Error(t, NewExec().Run(context.Background(), Command{}))
}
