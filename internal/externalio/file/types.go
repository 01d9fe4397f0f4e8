package file

import (
	"io"
	"time"
)

type OutModule struct {
	sink        io.WriteCloser
	batchBuffer *[]bufferedLine
}

type bufferedLine struct {
	end  time.Time
	data []byte
}
