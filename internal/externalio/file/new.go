package file

import (
	"fmt"
	"os"
)

// Creates new file output module. Returns nil nil if no path.
func NewOutput(filePath string) (module *OutModule, err error) {
	if filePath == "" {
		return
	}

	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0640)
	if err != nil {
		err = fmt.Errorf("failed to open flow output file: %w", err)
		return
	}

	module = &OutModule{
		sink:        file,
		batchBuffer: &[]bufferedLine{},
	}
	return
}
