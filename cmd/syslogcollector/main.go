package main

import (
	"context"
	"flag"
	"os"
	"syslogcollector/internal/cli"
	"syslogcollector/internal/logctx"
)

func main() {
	cliOpts := cli.DefineOptions()

	rootFlags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	requestedLogLevel := cli.SetGlobalArguments(rootFlags)
	rootFlags.Usage = func() {
		cli.PrintHelpMenu(os.Stdout, rootFlags, cli.RootCLICommand, cliOpts)
	}
	if len(os.Args) < 2 {
		rootFlags.Usage()
		os.Exit(1)
	}
	rootFlags.Parse(os.Args[1:])

	command, args := os.Args[1], os.Args[2:]

	// Global logger writes to stdout until the program finishes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	logger := logctx.NewLogger("global", *requestedLogLevel, ctx.Done())
	ctx = logctx.WithLogger(ctx, logger)
	logctx.StartWatcher(logger, os.Stdout)

	switch command {
	case "collect":
		cli.CollectMode(ctx, cliOpts, command, args)
	case "version":
		cli.VersionMode(os.Stdout, args)
	default:
		rootFlags.Usage()
		os.Exit(1)
	}

	// Drain buffered log events before exit
	cancel()
	logger.Wake()
	logger.Wait()
}
