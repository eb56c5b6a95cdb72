package redis

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// UnlockFunc releases a lease.
type UnlockFunc func(ctx context.Context) error

const renewScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("pexpire", KEYS[1], ARGV[2])
else
	return 0
end
`

const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
else
	return 0
end
`

// MinLeaseTTL is the shortest lease Redis can express; PX has millisecond
// resolution.
const MinLeaseTTL = time.Millisecond

// LeaseKey holds the token of the process consuming the input list.
func (s *Source) LeaseKey() string { return s.prefix + "lock:input" }

// Lock makes the caller the only consumer of the input list, so two loops
// sharing a prefix never split a session between them. It polls until the
// lease is free or ctx is done. The lease expires after ttl unless renewed;
// it is renewed in the background until the returned func is called.
func (s *Source) Lock(ctx context.Context, ttl time.Duration) (UnlockFunc, error) {
	if ttl < MinLeaseTTL {
		return nil, fmt.Errorf("lease ttl must be at least %s, got %s", MinLeaseTTL, ttl)
	}
	key := s.LeaseKey()
	token := fmt.Sprintf("%d", time.Now().UnixNano())

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		ok, err := s.client.SetNX(ctx, key, token, ttl).Result()
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return nil, fmt.Errorf("redis error acquiring lease: %w", err)
		}
		if ok {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
		}
	}

	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.renew(stop, key, token, ttl)
	}()

	var once sync.Once
	return func(ctx context.Context) error {
		once.Do(func() {
			close(stop)
			wg.Wait()
		})
		return s.client.Eval(ctx, releaseScript, []string{key}, token).Err()
	}, nil
}

func (s *Source) renew(stop <-chan struct{}, key, token string, ttl time.Duration) {
	ticker := time.NewTicker(ttl / 3)
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			// A failed renewal is retried on the next tick; the lease only
			// lapses if every renewal within ttl fails.
			ctx, cancel := context.WithTimeout(context.Background(), ttl/3)
			_ = s.client.Eval(ctx, renewScript, []string{key}, token, ttl.Milliseconds()).Err()
			cancel()
		}
	}
}
