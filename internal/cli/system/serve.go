package system

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/julianstephens/routinely/internal/cli"
	"github.com/julianstephens/routinely/internal/logger"
)

type ServeCmd struct{}

// Run starts the scheduler ticks and blocks until interrupted. Only one
// daemon may run per machine; a live lockfile from another process aborts.
func (c *ServeCmd) Run(ctx *cli.Context) error {
	if pid, err := runningDaemonPID(); err != nil {
		return err
	} else if pid != 0 {
		return fmt.Errorf("another serve process is already running (pid %d)", pid)
	}

	lockPath, err := writeLockfile()
	if err != nil {
		return fmt.Errorf("failed to write lockfile: %w", err)
	}
	defer removeLockfile(lockPath)

	ctx.Scheduler.StartScheduledTasks()
	defer ctx.Scheduler.Stop()

	logger.Info("Scheduler started", "storage", ctx.Store.GetConfigPath())
	fmt.Println("routinely scheduler running, press Ctrl+C to stop")

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	<-sigs

	fmt.Println("shutting down")
	return nil
}
