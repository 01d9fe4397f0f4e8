package beats

import "time"

// Subset of the lumberjack client used by the output
type sender interface {
	Send(data []interface{}) (int, error)
	Close() error
}

type dialFunc func(address string) (client sender, err error)

type OutModule struct {
	address    string
	sink       sender
	dial       dialFunc
	maxRetries uint64
	retryWait  time.Duration
}
