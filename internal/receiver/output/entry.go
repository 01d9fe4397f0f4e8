// Handles writing expired flows to configured output destinations (file, beats)
package output

import (
	"context"
	"runtime/debug"
	"syslogcollector/internal/externalio/beats"
	"syslogcollector/internal/externalio/file"
	"syslogcollector/internal/flows"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"syslogcollector/internal/queue/mpmc"
	"time"
)

const defaultFlushInterval time.Duration = 500 * time.Millisecond

// Creates new worker instance
func New(namespace []string, inQueue *mpmc.Queue[flows.Flow], fileMod *file.OutModule, beatsMod *beats.OutModule) (new *Instance) {
	new = &Instance{
		Namespace:     append(namespace, global.NSWorker),
		FileMod:       fileMod,
		BeatsMod:      beatsMod,
		Inbox:         inQueue,
		FlushInterval: defaultFlushInterval,
		Metrics:       MetricStorage{},
	}
	return
}

// Take expired flows and write to configured outputs until ctx is done, then drain the inbox
func (instance *Instance) Run(ctx context.Context) {
	if instance.FlushInterval <= 0 {
		instance.FlushInterval = defaultFlushInterval
	}
	ticker := time.NewTicker(instance.FlushInterval)
	defer ticker.Stop()

	popCh := make(chan flows.Flow)

	go func() {
		defer close(popCh)
		for {
			flow, ok := instance.Inbox.Pop(ctx)
			if !ok {
				return
			}
			popCh <- flow
		}
	}()

	for {
		select {
		case <-ticker.C:
			// Buffer might never fill and flush if we don't get enough flows
			instance.flush(ctx)
		case flow, ok := <-popCh:
			if !ok {
				instance.drain(ctx)
				return
			}
			instance.write(ctx, flow)
		}
	}
}

// Writes whatever is left in the inbox after shutdown was requested
func (instance *Instance) drain(ctx context.Context) {
	var drained int
	for {
		flow, ok := instance.Inbox.TryPop()
		if !ok {
			break
		}
		instance.write(ctx, flow)
		drained++
	}
	instance.flush(ctx)

	if drained > 0 {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
			"Output worker drained %d flows on shutdown\n", drained)
	}
}

func (instance *Instance) flush(ctx context.Context) {
	n, err := instance.FileMod.FlushBuffer()
	if err != nil {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed to flush flow(s) to file output: %v\n", err)
	}
	instance.Metrics.SuccessfulFileWrites.Add(uint64(n))
}

func (instance *Instance) write(ctx context.Context, flow flows.Flow) {
	// Record panics and continue output
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in flow output worker thread: %v\n%s", fatalError, stack)
		}
	}()

	instance.Metrics.ReceivedFlows.Add(1)

	n, err := instance.FileMod.Write(ctx, flow)
	if err != nil {
		instance.Metrics.FailedWrites.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed to write flow(s) to file output: %v\n", err)
	}
	instance.Metrics.SuccessfulFileWrites.Add(uint64(n))

	n, err = instance.BeatsMod.Write(ctx, flow)
	if err != nil {
		instance.Metrics.FailedWrites.Add(1)
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Failed to write flow(s) to beats output: %v\n", err)
	}
	instance.Metrics.SuccessfulBeatsWrites.Add(uint64(n))

	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
		"Exported flow %s %s -> %s (%s)\n", flow.Key.Proto, flow.Key.Src, flow.Key.Dst, flow.EndReason)
}
