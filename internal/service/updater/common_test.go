package updater

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// helperInstanceEnv turns TestHelperInstance into a long-running app instance.
const helperInstanceEnv = "UPDATER_HELPER_INSTANCE"

// TestHelperInstance is not a real test: it stands in for another running
// instance of the app when started by TestTerminateProcessByName_LongName.
func TestHelperInstance(t *testing.T) {
	if os.Getenv(helperInstanceEnv) != "1" {
		t.Skip("runs only as a helper process")
	}

	time.Sleep(30 * time.Second)
}

// TestProcessNameMatches accounts for the Linux process name limit.
func TestProcessNameMatches(t *testing.T) {
	t.Parallel()

	require.True(t, processNameMatches("linux", "app-shell-under", "app-shell-under-test"))
	require.True(t, processNameMatches("linux", "app-shell", "app-shell"))
	require.False(t, processNameMatches("linux", "app-shell-other", "app-shell-under-test"))
	require.False(t, processNameMatches("windows", "app-shell-under", "app-shell-under-test"))
	require.True(t, processNameMatches("windows", "app-shell-under-test.exe", "app-shell-under-test.exe"))
}

// TestTerminateProcessByName_LongName kills another instance whose name exceeds the Linux limit.
func TestTerminateProcessByName_LongName(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("process names are only truncated on linux")
	}

	self, err := os.Executable()
	require.NoError(t, err)

	name := "updater-instance-under-test"
	link := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.Symlink(self, link))

	cmd := exec.Command(link, "-test.run=^TestHelperInstance$")
	cmd.Env = append(os.Environ(), helperInstanceEnv+"=1")
	require.NoError(t, cmd.Start())

	// Give the instance time to exec under its new name.
	time.Sleep(200 * time.Millisecond)

	done := make(chan error, 1)

	go func() {
		done <- cmd.Wait()
	}()

	require.NoError(t, terminateProcessByName(name))

	select {
	case err = <-done:
		var exitErr *exec.ExitError
		require.ErrorAs(t, err, &exitErr)

		status, ok := exitErr.Sys().(syscall.WaitStatus)
		require.True(t, ok)
		require.Equal(t, syscall.SIGKILL, status.Signal())
	case <-time.After(10 * time.Second):
		_ = cmd.Process.Kill()

		t.Fatal("instance was not terminated")
	}
}
