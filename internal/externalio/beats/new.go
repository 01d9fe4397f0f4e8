package beats

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	lumberjack "github.com/elastic/go-lumber/client/v2"
)

const (
	dialTimeout       time.Duration = 3 * time.Second
	defaultRetryWait  time.Duration = 250 * time.Millisecond
	defaultMaxRetries uint64        = 5
)

func dialLumberjack(address string) (client sender, err error) {
	compression := lumberjack.CompressionLevel(0)
	timeout := lumberjack.Timeout(dialTimeout)

	client, err = lumberjack.SyncDial(address, compression, timeout)
	return
}

// Creates new beats (lumberjack) output module. Returns nil nil if no address.
func NewOutput(ctx context.Context, address string) (module *OutModule, err error) {
	module, err = newOutput(ctx, address, dialLumberjack, defaultRetryWait)
	return
}

func newOutput(ctx context.Context, address string, dial dialFunc, retryWait time.Duration) (module *OutModule, err error) {
	if address == "" {
		return
	}

	mod := &OutModule{
		address:    address,
		dial:       dial,
		maxRetries: defaultMaxRetries,
		retryWait:  retryWait,
	}

	err = mod.connect(ctx)
	if err != nil {
		err = fmt.Errorf("failed connection to beats server: %w", err)
		return
	}

	module = mod
	return
}

// Dials the server with exponential backoff until connected, out of retries, or ctx is done
func (mod *OutModule) connect(ctx context.Context) (err error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = mod.retryWait
	policy.MaxInterval = 8 * mod.retryWait
	policy.MaxElapsedTime = 0 // bounded by retry count

	err = backoff.Retry(func() (dialErr error) {
		client, dialErr := mod.dial(mod.address)
		if dialErr != nil {
			return
		}
		mod.sink = client
		return
	}, backoff.WithContext(backoff.WithMaxRetries(policy, mod.maxRetries), ctx))
	return
}
