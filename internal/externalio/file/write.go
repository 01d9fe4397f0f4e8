package file

import (
	"context"
	"sort"
	"syslogcollector/internal/flows"
)

const batchSize int = 20

// Writes expired flow as one JSON line to configured file
func (mod *OutModule) Write(ctx context.Context, flow flows.Flow) (linesWritten int, err error) {
	if mod == nil {
		return
	}

	newLine, err := flow.MarshalLine()
	if err != nil {
		return
	}

	// Buffer small amount to reorder and write in batches
	_, end := flow.Bounds()
	*mod.batchBuffer = append(*mod.batchBuffer, bufferedLine{end: end, data: newLine})

	if len(*mod.batchBuffer) >= batchSize {
		linesWritten, err = mod.FlushBuffer()
		if err != nil {
			return
		}
	}
	return
}

// Flushes line buffer to the file, oldest flow end first
func (mod *OutModule) FlushBuffer() (flushedCnt int, err error) {
	if mod == nil || mod.batchBuffer == nil {
		return
	}
	if len(*mod.batchBuffer) == 0 {
		return
	}

	sort.SliceStable(*mod.batchBuffer, func(i, j int) bool {
		return (*mod.batchBuffer)[i].end.Before((*mod.batchBuffer)[j].end)
	})

	for _, line := range *mod.batchBuffer {
		data := line.data
		for len(data) > 0 {
			var n int
			n, err = mod.sink.Write(data)
			if err != nil {
				// Keep what has not been written for the next attempt
				*mod.batchBuffer = (*mod.batchBuffer)[flushedCnt:]
				return
			}
			data = data[n:]
		}
		flushedCnt++
	}

	*mod.batchBuffer = (*mod.batchBuffer)[:0]
	return
}

// Number of lines waiting for the next flush
func (mod *OutModule) Pending() (count int) {
	if mod == nil || mod.batchBuffer == nil {
		return
	}
	count = len(*mod.batchBuffer)
	return
}
