package cli

import (
	"fmt"
	"io"
	"runtime"
	"syslogcollector/internal/global"
)

// Prints the bare version, or build details when verbosity is requested
func VersionMode(out io.Writer, args []string) {
	if len(args) == 0 || (args[0] != "-v" && args[0] != "--verbosity") {
		fmt.Fprintln(out, global.ProgVersion)
		return
	}
	fmt.Fprintf(out, "%s %s\n", global.ProgBaseName, global.ProgVersion)
	fmt.Fprintf(out, "Built using %s(%s) for %s on %s\n", runtime.Version(), runtime.Compiler, runtime.GOOS, runtime.GOARCH)
}
