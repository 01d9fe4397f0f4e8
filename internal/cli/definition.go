package cli

import "syslogcollector/internal/global"

func DefineOptions() (cmdOpts *global.CommandSet) {
	// Root level
	root := &global.CommandSet{
		Description:     "Syslog Flow Collector (syslogcollector)",
		FullDescription: "  Receives flow records over syslog (TCP or UDP), ages them, and exports expired flows",
		CommandName:     RootCLICommand,
		ChildCommands:   make(map[string]*global.CommandSet),
	}

	// Collecting
	root.ChildCommands["collect"] = &global.CommandSet{
		CommandName:     "collect",
		Description:     "Collect Flows",
		FullDescription: "Listens on a syslog endpoint, extracts flow records from received lines, and writes expired flows to configured outputs",
		ChildCommands:   nil,
	}

	// Version Info
	root.ChildCommands["version"] = &global.CommandSet{
		CommandName:     "version",
		Description:     "Show Version Information",
		FullDescription: "Display meta information about program",
	}

	cmdOpts = root
	return
}
