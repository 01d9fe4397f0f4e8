// Gathers component metrics and saves to central registry
package metrics

import (
	"context"
	"runtime/debug"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"syslogcollector/internal/metrics"
	"time"
)

// Retention is enforced once per this many collection intervals
const pruneEveryIntervals int = 15

func New(interval time.Duration, maximumMetricAge time.Duration, sources ...Source) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Sources:   sources,
		Interval:  interval,
		Retention: maximumMetricAge,
	}
	return
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	// Poll at half the interval so a slow tick never skips a slice
	ticker := time.NewTicker(gatherer.Interval / 2)
	defer ticker.Stop()

	lastRun := time.Now()
	var collections int
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) < gatherer.Interval {
				continue
			}
			lastRun = now

			timeSlice := gatherer.Registry.OpenSlice(now, gatherer.Interval)
			gatherer.runIntervalTasks(ctx, timeSlice, gatherer.Interval)

			collections++
			if collections%pruneEveryIntervals == 0 {
				removed := gatherer.Registry.Prune(now, gatherer.Retention)
				if removed > 0 {
					logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog,
						"Pruned %d metric intervals older than %s\n", removed, gatherer.Retention)
				}
			}
		}
	}
}

// Reads every source into one time slice
func (gatherer *Gatherer) runIntervalTasks(ctx context.Context, timeSlice time.Time, interval time.Duration) {
	for _, source := range gatherer.Sources {
		gatherer.collectSource(ctx, source, timeSlice, interval)
	}
}

func (gatherer *Gatherer) collectSource(ctx context.Context, source Source, timeSlice time.Time, interval time.Duration) {
	// A panicking source only loses its own readings
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in metric source %T: %v\n%s", source, fatalError, stack)
		}
	}()

	if source == nil {
		return
	}
	gatherer.Registry.Add(timeSlice, source.CollectMetrics(interval))
}
