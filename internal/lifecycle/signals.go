package lifecycle

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
)

type DaemonLike interface {
	Shutdown()
	ToggleIdle() (idle bool)
}

// Handles all incoming signals from external sources.
// Returns after daemon shutdown has completed.
func SignalHandler(ctx context.Context, daemonManager DaemonLike) {
	// Channel for handling interrupt signals
	sigChan := make(chan os.Signal, 10)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM, syscall.SIGUSR1)
	defer signal.Stop(sigChan)

	handleSignals(ctx, daemonManager, sigChan)
}

func handleSignals(ctx context.Context, daemonManager DaemonLike, sigChan <-chan os.Signal) {
	for sig := range sigChan {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "Received signal: %v\n", sig)

		// Pause/resume signal
		if sig == syscall.SIGUSR1 {
			status := "Receiving flows"
			if daemonManager.ToggleIdle() {
				status = "Paused"
			}
			err := NotifyStatus(ctx, status)
			if err != nil {
				logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify status failed: %v\n", err)
			}
			continue
		}

		err := NotifyStopping(ctx)
		if err != nil {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog, "Systemd notify stopping failed: %v\n", err)
		}

		// Initiate daemon shutdown
		daemonManager.Shutdown()
		return
	}
}
