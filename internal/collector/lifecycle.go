// Syslog stream and datagram ingestion with a single readiness polling worker
package collector

import (
	"context"
	"fmt"
	"runtime/debug"
	"syslogcollector/internal/global"
	"syslogcollector/internal/logctx"
	"syslogcollector/internal/network"
	"syslogcollector/internal/poller"
	"time"
)

func (cfg *Config) setDefaults() {
	if cfg.MaxSubscribers <= 0 {
		cfg.MaxSubscribers = global.DefaultMaxSubscribers
	}
	if cfg.PollWait <= 0 {
		cfg.PollWait = global.DefaultPollWait
	}
	if cfg.PurgeInterval <= 0 {
		cfg.PurgeInterval = global.DefaultPurgeInterval
	}
	if cfg.MaxPollsBeforePurge <= 0 {
		cfg.MaxPollsBeforePurge = global.DefaultMaxPollsBeforePurge
	}
	if cfg.IdleSleep <= 0 {
		cfg.IdleSleep = global.DefaultIdleSleep
	}
}

// Parses the endpoint and binds its listener socket. Any failure leaves no socket open.
func New(ctx context.Context, endpointSpec string, cfg Config, parser LineParser, iface Interface) (new *Collector, err error) {
	ctx = logctx.AppendCtxTag(ctx, global.NSColl)

	endpoint, err := ParseEndpoint(endpointSpec)
	if err != nil {
		err = fmt.Errorf("invalid endpoint: %w", err)
		return
	}
	cfg.setDefaults()

	logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
		"Starting %s collector on %s\n", endpoint.Transport, endpoint.Addr)

	listenFD, err := network.Listen(endpoint.Transport, endpoint.Addr, cfg.MaxSubscribers)
	if err != nil {
		err = fmt.Errorf("failed to open listener for %s: %w", endpoint, err)
		return
	}

	readiness, err := poller.New(cfg.MaxSubscribers + 1)
	if err != nil {
		network.Close(listenFD)
		err = fmt.Errorf("failed to create readiness poller: %w", err)
		return
	}
	err = readiness.Add(listenFD)
	if err != nil {
		readiness.Close()
		network.Close(listenFD)
		err = fmt.Errorf("failed to watch listener socket: %w", err)
		return
	}

	new = assemble(ctx, endpoint, cfg, listenFD, readiness, parser, iface)

	if endpoint.Transport == network.TCP {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
			"Accepting connections on %s\n", endpoint.Addr)
	}
	return
}

// Builds a collector around an already bound listener
func assemble(ctx context.Context, endpoint Endpoint, cfg Config, listenFD int, readiness poller.Poller, parser LineParser, iface Interface) (new *Collector) {
	new = &Collector{
		Namespace:   []string{global.NSColl},
		ctx:         ctx,
		endpoint:    endpoint,
		cfg:         cfg,
		listenFD:    listenFD,
		poller:      readiness,
		conns:       NewConnTable(cfg.MaxSubscribers, network.Close),
		parser:      parser,
		iface:       iface,
		buf:         make([]byte, global.ReceiveBufferSize),
		events:      make([]poller.Event, cfg.MaxSubscribers+1),
		readable:    make([]bool, cfg.MaxSubscribers),
		exceptional: make([]bool, cfg.MaxSubscribers),
		now:         time.Now,
		sleep:       time.Sleep,
		recv:        network.Recv,
		accept:      network.Accept,
		closeFD:     network.Close,
		done:        make(chan struct{}),
	}
	return
}

// Launches the reactor worker. It waits for the interface to report running before polling.
func (collector *Collector) Start() {
	if !collector.started.CompareAndSwap(false, true) {
		return
	}

	go func() {
		defer close(collector.done)
		defer func() {
			if fatalError := recover(); fatalError != nil {
				stack := debug.Stack()
				logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
					"panic in collector worker thread: %v\n%s", fatalError, stack)
			}
		}()

		for !collector.iface.IsRunning() {
			if collector.iface.IsShutdown() {
				return
			}
			collector.sleep(collector.cfg.IdleSleep)
		}

		collector.collectFlows()
	}()
}

// Signals interface shutdown and waits for the worker to exit. No-op if never started.
func (collector *Collector) Stop() {
	if !collector.started.Load() {
		return
	}
	collector.stopOnce.Do(collector.iface.Shutdown)
	<-collector.done
}

// Stops the worker then releases all sockets
func (collector *Collector) Close() {
	collector.Stop()
	collector.closeOnce.Do(func() {
		collector.conns.CloseAll()
		collector.Metrics.ActiveConns.Store(0)
		collector.poller.Close()
		network.Close(collector.listenFD)
		logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.InfoLog,
			"Closed collector listener on %s\n", collector.endpoint)
	})
}

// Reports whether the worker has exited
func (collector *Collector) Done() (done <-chan struct{}) {
	done = collector.done
	return
}

func (collector *Collector) Endpoint() (endpoint Endpoint) {
	endpoint = collector.endpoint
	return
}

// Packet filters only apply to capture interfaces
func (collector *Collector) SetPacketFilter(filter string) (applied bool) {
	logctx.LogEvent(collector.ctx, global.VerbosityStandard, global.ErrorLog,
		"No filter can be set on a collector interface. Ignored %s\n", filter)
	return
}
