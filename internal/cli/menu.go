package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"syslogcollector/internal/global"
)

const (
	RootCLICommand  string = "root"
	helpMenuTrailer string = `
Signals:
  SIGUSR1         Pause or resume reception
  SIGINT/SIGTERM  Flush active flows and stop
`
)

// Locates command in tree along with its parents
func findCommand(command string, rootCmd *global.CommandSet) (cmdSet *global.CommandSet, parents []*global.CommandSet) {
	if command == "" || command == RootCLICommand {
		cmdSet = rootCmd
		return
	}
	if cmd, ok := rootCmd.ChildCommands[command]; ok {
		cmdSet = cmd
		parents = []*global.CommandSet{rootCmd}
		return
	}
	for _, topCmd := range rootCmd.ChildCommands {
		if sub, ok := topCmd.ChildCommands[command]; ok {
			cmdSet = sub
			parents = []*global.CommandSet{rootCmd, topCmd}
			return
		}
	}
	return
}

// Full standardized help menu (wraps option printer as well)
func PrintHelpMenu(out io.Writer, fs *flag.FlagSet, command string, rootCmd *global.CommandSet) {
	const baseIndentSpaces = 2

	curCmdSet, parentStack := findCommand(command, rootCmd)
	if curCmdSet == nil {
		fmt.Fprintf(out, "Unknown command: %s\n", command)
		return
	}

	// Root name is never part of the usage line
	usageParts := []string{os.Args[0]}
	for _, p := range append(parentStack, curCmdSet) {
		if p.CommandName == RootCLICommand {
			continue
		}
		usageParts = append(usageParts, p.CommandName)
	}
	if len(curCmdSet.ChildCommands) > 0 {
		usageParts = append(usageParts, "[subcommand]")
	}
	if curCmdSet.UsageOption != "" {
		usageParts = append(usageParts, curCmdSet.UsageOption)
	}
	fmt.Fprintf(out, "Usage: %s\n\n", strings.Join(usageParts, " "))

	if curCmdSet == rootCmd {
		fmt.Fprintf(out, "%s\n%s\n\n", curCmdSet.Description, curCmdSet.FullDescription)
	} else if curCmdSet.FullDescription != "" {
		fmt.Fprintf(out, "  Description:\n    %s\n\n", curCmdSet.FullDescription)
	}

	if len(curCmdSet.ChildCommands) > 0 {
		subNames := make([]string, 0, len(curCmdSet.ChildCommands))
		maxLen := 0
		for name := range curCmdSet.ChildCommands {
			subNames = append(subNames, name)
			maxLen = max(maxLen, len(name))
		}
		sort.Strings(subNames)

		fmt.Fprintf(out, "%sSubcommands:\n", strings.Repeat(" ", baseIndentSpaces))
		cmdIndent := strings.Repeat(" ", baseIndentSpaces+2)
		for _, name := range subNames {
			padding := strings.Repeat(" ", maxLen-len(name)+2)
			fmt.Fprintf(out, "%s%s%s - %s\n", cmdIndent, name, padding, curCmdSet.ChildCommands[name].Description)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%sOptions:\n", strings.Repeat(" ", baseIndentSpaces))
	for _, line := range flagOptionLines(fs, baseIndentSpaces) {
		fmt.Fprintln(out, line)
	}

	if curCmdSet == rootCmd {
		fmt.Fprint(out, helpMenuTrailer)
	}
}

type optInfo struct {
	names      []string
	usage      string
	defaultVal string
	hasShort   bool
}

// Deduplicates short/long flags sharing usage text and aligns the usage column
func flagOptionLines(fs *flag.FlagSet, baseIndentSpaces int) (lines []string) {
	const shortArgPrefix string = "-"      // like "  [-]t, --test  Some usage text"
	const shortLongArgJoiner string = ", " // like "  -t[, ]--test  Some usage text"
	const longArgPrefix string = "--"      // like "  -t, [--]test  Some usage text"
	const argToUsageSpaces int = 2         // like "  -t, --test[  ]Some usage text"

	seen := make(map[string]*optInfo)
	var opts []*optInfo
	fs.VisitAll(func(arg *flag.Flag) {
		formatted := longArgPrefix + arg.Name
		isShort := len(arg.Name) == 1
		if isShort {
			formatted = shortArgPrefix + arg.Name
		}

		opt, ok := seen[arg.Usage]
		if !ok {
			opt = &optInfo{usage: arg.Usage, defaultVal: arg.DefValue}
			seen[arg.Usage] = opt
			opts = append(opts, opt)
		}
		opt.names = append(opt.names, formatted)
		opt.hasShort = opt.hasShort || isShort
	})

	for _, opt := range opts {
		sort.Slice(opt.names, func(a, b int) bool {
			return len(opt.names[a]) < len(opt.names[b])
		})
	}
	sort.Slice(opts, func(a, b int) bool {
		return strings.ToLower(opts[a].names[0]) < strings.ToLower(opts[b].names[0])
	})

	// Long-only flags line up with the long half of short/long pairs
	longOnlyOffset := len(shortLongArgJoiner) + len(shortArgPrefix) + 1

	width := func(opt *optInfo) (w int) {
		w = len(strings.Join(opt.names, shortLongArgJoiner))
		if !opt.hasShort {
			w += longOnlyOffset
		}
		return
	}

	maxLen := 0
	for _, opt := range opts {
		maxLen = max(maxLen, width(opt))
	}

	for _, opt := range opts {
		indentSpaces := baseIndentSpaces
		if !opt.hasShort {
			indentSpaces += longOnlyOffset
		}
		padding := max(maxLen-width(opt)+argToUsageSpaces, argToUsageSpaces)

		desc := opt.usage
		if opt.defaultVal != "" && opt.defaultVal != "false" && opt.defaultVal != "0" {
			desc += fmt.Sprintf(" [default: %s]", opt.defaultVal)
		}

		lines = append(lines, strings.Repeat(" ", indentSpaces)+strings.Join(opt.names, shortLongArgJoiner)+strings.Repeat(" ", padding)+desc)
	}
	return
}
