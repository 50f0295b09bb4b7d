package exam

import (
	"context"
	"sync"
	"time"
)

// StartCountdown calls onTick every interval until ctx is done or the returned
// stop function is called. stop is idempotent and does not wait, so it may be
// called from inside onTick or while the owner holds its own lock. A tick that
// was already in flight can still arrive after stop; owners must ignore it.
func StartCountdown(ctx context.Context, interval time.Duration, onTick func()) (stop func()) {
	if interval <= 0 {
		interval = time.Second
	}
	ctx, cancel := context.WithCancel(ctx)

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				onTick()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(cancel)
	}
}
