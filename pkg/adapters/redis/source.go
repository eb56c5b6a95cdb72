package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/replet/pkg/repl"
	backend "github.com/redis/go-redis/v9"
)

// Control lines a remote client can push instead of text.
const (
	ControlInterrupt = "\x03"
	ControlEOF       = "\x04"
)

// Source implements repl.LineSource over Redis lists. Input lines are popped
// from the input list, printed text is appended to the output list and the
// rendered prompt is stored under the prompt key.
type Source struct {
	client *backend.Client
	prefix string
	poll   time.Duration
}

// Option configures a Source.
type Option func(*Source)

// WithPrefix sets the key prefix. Keys are <prefix>input, <prefix>output and <prefix>prompt.
func WithPrefix(prefix string) Option {
	return func(s *Source) {
		s.prefix = prefix
	}
}

// WithPollTimeout sets how long a single BLPOP blocks. Redis rounds it up to a second.
func WithPollTimeout(d time.Duration) Option {
	return func(s *Source) {
		s.poll = d
	}
}

// New creates a source connected to the Redis server at address.
func New(address, password string, db int, opts ...Option) *Source {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
		// Lets a cancelled ctx abort a blocked BLPOP.
		ContextTimeoutEnabled: true,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a source from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Source {
	s := &Source{
		client: client,
		prefix: "replet:",
		poll:   time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Source) InputKey() string  { return s.prefix + "input" }
func (s *Source) OutputKey() string { return s.prefix + "output" }
func (s *Source) PromptKey() string { return s.prefix + "prompt" }

// ReadLine publishes the prompt and blocks until a line is pushed to the input list.
func (s *Source) ReadLine(ctx context.Context, prompt repl.Prompt) repl.Signal {
	if err := s.client.Set(ctx, s.PromptKey(), prompt.Render(repl.ModeDefault), 0).Err(); err != nil {
		if ctx.Err() != nil {
			return repl.Interrupted(ctx.Err())
		}
		return repl.Failed(fmt.Errorf("failed to publish prompt: %w", err))
	}

	for {
		if err := ctx.Err(); err != nil {
			return repl.Interrupted(err)
		}

		res, err := s.client.BLPop(ctx, s.poll, s.InputKey()).Result()
		if errors.Is(err, backend.Nil) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				return repl.Interrupted(ctx.Err())
			}
			return repl.Failed(fmt.Errorf("failed to pop input: %w", err))
		}

		// res is [key, value]
		switch line := res[1]; line {
		case ControlInterrupt:
			return repl.Interrupted(nil)
		case ControlEOF:
			return repl.Ended()
		default:
			return repl.Success(line)
		}
	}
}

// PrintAsync appends text to the output list.
func (s *Source) PrintAsync(text string) error {
	if err := s.client.RPush(context.Background(), s.OutputKey(), text).Err(); err != nil {
		return fmt.Errorf("failed to push output: %w", err)
	}
	return nil
}

// Send pushes lines to the input list. It is the client side of the source.
func (s *Source) Send(ctx context.Context, lines ...string) error {
	if len(lines) == 0 {
		return nil
	}
	values := make([]any, len(lines))
	for i, l := range lines {
		values[i] = l
	}
	return s.client.RPush(ctx, s.InputKey(), values...).Err()
}

// Drain atomically reads and clears the output list.
func (s *Source) Drain(ctx context.Context) ([]string, error) {
	pipe := s.client.TxPipeline()
	rng := pipe.LRange(ctx, s.OutputKey(), 0, -1)
	pipe.Del(ctx, s.OutputKey())
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to drain output: %w", err)
	}
	return rng.Val(), nil
}

// Prompt returns the last published prompt.
func (s *Source) Prompt(ctx context.Context) (string, error) {
	val, err := s.client.Get(ctx, s.PromptKey()).Result()
	if errors.Is(err, backend.Nil) {
		return "", nil
	}
	return val, err
}

// Close closes the redis client.
func (s *Source) Close() error {
	return s.client.Close()
}
