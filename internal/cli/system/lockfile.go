package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	ps "github.com/mitchellh/go-ps"

	"github.com/julianstephens/routinely/internal/constants"
)

var findProcessFunc = ps.FindProcess

// lockfilePath returns the location of the serve daemon's pid file.
func lockfilePath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user config dir: %w", err)
	}
	return filepath.Join(configDir, constants.AppName, constants.AppName+".pid"), nil
}

// writeLockfile records the current pid for duplicate-daemon detection.
func writeLockfile() (string, error) {
	path, err := lockfilePath()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, []byte(strconv.Itoa(os.Getpid())), 0600); err != nil {
		return "", err
	}
	return path, nil
}

func removeLockfile(path string) {
	_ = os.Remove(path)
}

// runningDaemonPID returns the pid from the lockfile if it belongs to a live
// process whose executable looks like ours. Stale lockfiles from crashed
// daemons return 0.
func runningDaemonPID() (int, error) {
	path, err := lockfilePath()
	if err != nil {
		return 0, err
	}

	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(content)))
	if err != nil || pid <= 0 {
		return 0, nil
	}
	if pid == os.Getpid() {
		return 0, nil
	}

	proc, err := findProcessFunc(pid)
	if err != nil || proc == nil {
		return 0, nil
	}
	if !strings.Contains(strings.ToLower(proc.Executable()), constants.AppName) {
		return 0, nil
	}
	return pid, nil
}
