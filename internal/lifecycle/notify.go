// Handles process lifecycle around the daemon (signals, service manager notifications)
package lifecycle

import (
	"context"
	"fmt"
	"os"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"

	"golang.org/x/sys/unix"
)

const notifySocketEnv string = "NOTIFY_SOCKET"

// Startup complete
func NotifyReady(ctx context.Context) (err error) {
	err = notify(ctx, fmt.Sprintf("READY=1\nMAINPID=%d", os.Getpid()))
	return
}

// Shutdown in progress, stamped with the monotonic clock
func NotifyStopping(ctx context.Context) (err error) {
	var ts unix.Timespec
	err = unix.ClockGettime(unix.CLOCK_MONOTONIC, &ts)
	if err != nil {
		return
	}

	err = notify(ctx, fmt.Sprintf("STOPPING=1\nMONOTONIC_USEC=%d", ts.Nano()/1_000))
	return
}

// Free form status line shown by the service manager
func NotifyStatus(ctx context.Context, msg string) (err error) {
	err = notify(ctx, "STATUS="+msg)
	return
}

// Sends one sd_notify datagram. No-op outside of a service manager.
func notify(ctx context.Context, state string) (err error) {
	socketPath := os.Getenv(notifySocketEnv)
	if socketPath == "" {
		return
	}

	fd, err := unix.Socket(unix.AF_UNIX, unix.SOCK_DGRAM|unix.SOCK_CLOEXEC, 0)
	if err != nil {
		err = fmt.Errorf("failed to create notify socket: %w", err)
		return
	}
	defer unix.Close(fd)

	// A leading '@' selects the abstract namespace
	err = unix.Sendto(fd, []byte(state), 0, &unix.SockaddrUnix{Name: socketPath})
	if err != nil {
		err = fmt.Errorf("failed sending notify state to %s: %w", socketPath, err)
		return
	}

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog, "Notified service manager: %q\n", state)
	return
}
