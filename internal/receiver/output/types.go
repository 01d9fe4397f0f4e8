package output

import (
	"syslogcollector/internal/externalio/beats"
	"syslogcollector/internal/externalio/file"
	"syslogcollector/internal/flows"
	"syslogcollector/internal/queue/mpmc"
	"time"
)

type Instance struct {
	Namespace     []string
	FileMod       *file.OutModule
	BeatsMod      *beats.OutModule
	Inbox         *mpmc.Queue[flows.Flow]
	FlushInterval time.Duration
	Metrics       MetricStorage
}
