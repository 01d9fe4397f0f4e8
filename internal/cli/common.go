package cli

import (
	"flag"
	"syslogcollector/internal/global"
)

// Registers verbosity flags, returning the requested level
func SetGlobalArguments(fs *flag.FlagSet) (level *int) {
	level = &global.Verbosity
	fs.IntVar(level, "v", global.VerbosityStandard, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	fs.IntVar(level, "verbosity", global.VerbosityStandard, "Increase detailed progress messages (Higher is more verbose) <0...5>")
	return
}

func SetCommon(fs *flag.FlagSet, configPath *string) {
	fs.StringVar(configPath, "c", "", "Path to the configuration file [default: "+global.DefaultConfigPath+" if present]")
	fs.StringVar(configPath, "config", "", "Path to the configuration file [default: "+global.DefaultConfigPath+" if present]")
}
