package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aretw0/replet/internal/config"
	"github.com/aretw0/replet/pkg/adapters/jsonl"
	"github.com/aretw0/replet/pkg/adapters/readline"
	"github.com/aretw0/replet/pkg/adapters/redis"
	"github.com/aretw0/replet/pkg/adapters/stdio"
	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/repl"
	"golang.org/x/term"
)

// hostSource is a line source together with how the host should treat it.
type hostSource struct {
	repl.LineSource
	kind string
	// interactive sources get a banner, colours and a styled prompt.
	interactive bool
	close       func() error
}

// resolveSource turns "auto" into readline on a terminal and stdio otherwise.
func resolveSource(kind string, in io.Reader) string {
	if kind != "" && kind != config.SourceAuto {
		return kind
	}
	if isTerminal(in) {
		return config.SourceReadline
	}
	return config.SourceStdio
}

func isTerminal(r io.Reader) bool {
	f, ok := r.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

func openSource(ctx context.Context, cfg config.Config, g *grammar.Grammar, in io.Reader, out io.Writer, logger *slog.Logger) (*hostSource, error) {
	kind := resolveSource(cfg.Source, in)
	logger.Debug("opening line source", "source", kind)

	switch kind {
	case config.SourceReadline:
		opts := []readline.Option{
			readline.WithCompleter(readline.NewCompleter(g)),
			readline.WithPainter(readline.NewValidatingPainter(g)),
			readline.WithVimMode(cfg.VimMode),
		}
		if f, ok := in.(*os.File); ok && f != os.Stdin {
			opts = append(opts, readline.WithIO(f, out))
		}
		src, err := readline.New(opts...)
		if err != nil {
			return nil, err
		}
		return &hostSource{LineSource: src, kind: kind, interactive: true, close: src.Close}, nil

	case config.SourceRedis:
		src := redis.New(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, redis.WithPrefix(cfg.Redis.Prefix))
		host := &hostSource{LineSource: src, kind: kind, close: src.Close}
		if cfg.Redis.Exclusive {
			logger.Info("waiting for input lease", "key", src.LeaseKey())
			unlock, err := src.Lock(ctx, cfg.Redis.LeaseTTL)
			if err != nil {
				_ = src.Close()
				return nil, fmt.Errorf("failed to acquire input lease: %w", err)
			}
			host.close = func() error {
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()
				return errors.Join(unlock(ctx), src.Close())
			}
		}
		logger.Info("reading lines from redis", "addr", cfg.Redis.Addr, "input", src.InputKey(), "output", src.OutputKey())
		return host, nil

	case config.SourceJSON:
		src := jsonl.New(in, out)
		return &hostSource{LineSource: src, kind: kind, close: src.Close}, nil

	default:
		opts := []stdio.Option{stdio.WithInterrupts()}
		if !isTerminal(in) {
			opts = append(opts, stdio.WithoutPrompt())
		}
		src := stdio.New(in, out, opts...)
		return &hostSource{LineSource: src, kind: config.SourceStdio, close: src.Close}, nil
	}
}
