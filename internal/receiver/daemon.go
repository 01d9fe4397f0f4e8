// Daemon for continuous reception of syslog flow records, flow aging, and delivery of expired flows to configured outputs
package receiver

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syslogcollector/internal/atomics"
	"syslogcollector/internal/collector"
	"syslogcollector/internal/externalio/beats"
	"syslogcollector/internal/externalio/file"
	"syslogcollector/internal/externalio/server"
	"syslogcollector/internal/flows"
	"syslogcollector/internal/global"
	"syslogcollector/internal/iface"
	"syslogcollector/internal/logctx"
	"syslogcollector/internal/queue/mpmc"
	"syslogcollector/internal/receiver/metrics"
	"syslogcollector/internal/receiver/output"
	"time"
	"unsafe"

	"golang.org/x/sync/errgroup"
)

// Create new receiver daemon instance
func NewDaemon(cfg Config) (new *Daemon) {
	ctx, cancel := context.WithCancel(context.Background())
	new = &Daemon{
		cfg:    cfg,
		ctx:    ctx,
		cancel: cancel,
	}
	return
}

// Starts pipeline worker threads in background - gracefully shuts down if startup error is encountered
func (daemon *Daemon) Start(globalCtx context.Context) (err error) {
	// New context for the daemon
	daemon.ctx, daemon.cancel = context.WithCancel(logctx.Detach(globalCtx))
	daemon.outCtx, daemon.outCancel = context.WithCancel(daemon.ctx)
	daemon.workers = &errgroup.Group{}

	// Top level tag for daemon logs
	daemon.ctx = logctx.AppendCtxTag(daemon.ctx, global.NSRecv)

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Starting...\n")

	// Pre-startup
	daemon.cfg.setDefaults()

	global.Hostname, err = os.Hostname()
	if err != nil {
		err = fmt.Errorf("failed to determine local hostname: %w", err)
		return
	}
	global.PID = os.Getpid()

	// Stage 4 - Export queue and output worker
	queueSize := mpmc.CapacityFor(int(unsafe.Sizeof(flows.Flow{})), daemon.cfg.MinQueueSize, daemon.cfg.MaxQueueSize)
	daemon.Queue, err = mpmc.New[flows.Flow]([]string{global.NSRecv, global.NSOut}, queueSize)
	if err != nil {
		err = fmt.Errorf("failed creating export queue: %w", err)
		return
	}

	fileMod, err := file.NewOutput(daemon.cfg.OutputFilePath)
	if err != nil {
		err = fmt.Errorf("failed starting file output: %w", err)
		return
	}
	beatsMod, err := beats.NewOutput(daemon.ctx, daemon.cfg.BeatsAddress)
	if err != nil {
		fileMod.Shutdown()
		err = fmt.Errorf("failed starting beats output: %w", err)
		return
	}
	if fileMod == nil && beatsMod == nil {
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
			"No outputs configured, expired flows are only counted\n")
	}

	daemon.Output = output.New([]string{global.NSRecv, global.NSOut}, daemon.Queue, fileMod, beatsMod)
	outCtx := logctx.AppendCtxTag(daemon.outCtx, global.NSOut)
	daemon.workers.Go(func() (err error) {
		daemon.Output.Run(outCtx)
		err = fileMod.Shutdown()
		beatsErr := beatsMod.Shutdown()
		if err == nil {
			err = beatsErr
		}
		return
	})

	// Stage 3 - Flow table (expired flows go to the export queue)
	flowCtx := logctx.AppendCtxTag(daemon.ctx, global.NSFlows)
	daemon.Flows, err = flows.NewTable(daemon.cfg.MaxFlows, daemon.cfg.FlowIdleTimeout, func(flow flows.Flow) {
		if !daemon.Queue.Push(flow) {
			logctx.LogEvent(flowCtx, global.VerbosityData, global.WarnLog,
				"Export queue full, dropped flow %s %s -> %s\n", flow.Key.Proto, flow.Key.Src, flow.Key.Dst)
		}
	})
	if err != nil {
		daemon.Shutdown()
		return
	}

	// Stage 2 - Line parser
	daemon.Parser = flows.NewParser(daemon.ctx, daemon.Flows)

	// Stage 1 - Collector
	daemon.State = iface.New(daemon.ctx, daemon.cfg.Endpoint, daemon.Flows)
	daemon.Collector, err = collector.New(daemon.ctx, daemon.cfg.Endpoint, daemon.cfg.Collector, daemon.Parser, daemon.State)
	if err != nil {
		err = fmt.Errorf("failed starting collector: %w", err)
		daemon.Shutdown()
		return
	}
	daemon.Collector.Start()
	daemon.State.SetRunning()

	// Metrics Collector
	daemon.metricsCollector = metrics.New(daemon.cfg.MetricCollectionInterval, daemon.cfg.MetricMaxAge,
		daemon.Collector,
		daemon.State,
		daemon.Parser,
		daemon.Flows,
		daemon.Queue,
		daemon.Output,
	)
	metricCtx := daemon.ctx
	daemon.workers.Go(func() (err error) {
		daemon.metricsCollector.Run(metricCtx)
		return
	})

	// Metric Server
	if daemon.cfg.MetricQueryServerEnabled {
		err = daemon.startMetricServer()
		if err != nil {
			daemon.Shutdown()
			return
		}
	}

	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog, "Startup complete.\n")
	return
}

func (daemon *Daemon) startMetricServer() (err error) {
	// Top level tag for metric server logs
	serverCtx := logctx.AppendCtxTag(daemon.ctx, global.NSMetric)
	serverCtx = logctx.AppendCtxTag(serverCtx, global.NSMetricSrv)

	registry := daemon.metricsCollector.Registry
	sources := server.Sources{
		Search:    registry.Search,
		Discover:  registry.Discover,
		Aggregate: registry.Aggregate,
		Stats:     daemon.Collector.Stats,
	}
	if daemon.cfg.PrometheusEnabled {
		sources.Gatherer, err = server.NewPrometheusRegistry(daemon.Collector.Stats, registry.Latest)
		if err != nil {
			err = fmt.Errorf("failed creating prometheus registry: %w", err)
			return
		}
	}

	daemon.MetricServer, err = server.SetupListener(serverCtx, daemon.cfg.MetricQueryServerPort, sources)
	if err != nil {
		err = fmt.Errorf("failed setting up metric server: %w", err)
		return
	}

	metricServer := daemon.MetricServer
	daemon.workers.Go(func() (err error) {
		err = server.Start(serverCtx, metricServer)
		return
	})
	return
}

// Blocking daemon waiter
func (daemon *Daemon) Run() {
	<-daemon.ctx.Done()
}

// Read-only collector statistics
func (daemon *Daemon) Stats() (stats collector.Stats) {
	if daemon.Collector == nil {
		return
	}
	stats = daemon.Collector.Stats()
	return
}

// Pauses or resumes reception without closing the listener, returning the new idle state
func (daemon *Daemon) ToggleIdle() (idle bool) {
	if daemon.State == nil {
		return
	}
	idle = daemon.State.ToggleIdle()
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Reception idle: %t\n", idle)
	return
}

// Gracefully shutdown pipeline worker threads (errors are printed to program log buffer)
func (daemon *Daemon) Shutdown() {
	logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
		"Daemon shutdown started...\n")

	// Stop metric server
	if daemon.MetricServer != nil {
		shutdownCtx, cancel := context.WithTimeout(daemon.ctx, global.HTTPWriteTimeout)
		err := daemon.MetricServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil && err != http.ErrServerClosed {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"metric HTTP server did not shutdown gracefully: %v\n", err)
		}
	}

	// Stop collector worker and release sockets
	if daemon.Collector != nil {
		daemon.Collector.Close()
	} else if daemon.State != nil {
		daemon.State.Shutdown()
	}

	// Everything still aging goes out now
	if daemon.Flows != nil {
		flushed := daemon.Flows.Flush()
		logctx.LogEvent(daemon.ctx, global.VerbosityProgress, global.InfoLog,
			"Flushed %d active flows to outputs\n", flushed)
	}

	// Let the output worker empty the export queue
	if daemon.Queue != nil && daemon.Output != nil {
		success, last := atomics.WaitUntilZero(&daemon.Queue.Metrics.Depth, global.OutputDrainTimeout)
		if !success {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"export queue did not empty in time: %d flows left for final drain\n", last)
		}
	}
	if daemon.outCancel != nil {
		daemon.outCancel()
	}

	// Stop the run loop after outputs are drained
	daemon.cancel()

	if daemon.workers == nil {
		return
	}

	// Wait for all workers to finish (with timeout)
	done := make(chan error, 1)
	go func() {
		done <- daemon.workers.Wait()
	}()

	select {
	case err := <-done:
		if err != nil {
			logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.WarnLog,
				"Daemon worker exited with error: %v\n", err)
		}
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Daemon shutdown completed successfully\n")
	case <-time.After(global.ReceiveShutdownTimeout):
		logctx.LogEvent(daemon.ctx, global.VerbosityStandard, global.InfoLog,
			"Timeout: receive daemon did not shutdown within %v seconds\n",
			global.ReceiveShutdownTimeout.Seconds())
	}
}
