package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/aretw0/replet"
	"github.com/aretw0/replet/internal/config"
	"github.com/aretw0/replet/internal/logging"
	"github.com/aretw0/replet/internal/presentation/tui"
	"github.com/aretw0/replet/pkg/grammar"
	"github.com/aretw0/replet/pkg/observability"
	"github.com/aretw0/replet/pkg/registry"
	"github.com/aretw0/replet/pkg/repl"
)

// RunOptions contains all the configuration for the run command.
// Zero values keep what the configuration file says.
type RunOptions struct {
	ConfigPath      string
	SchemaPath      string
	Source          string
	Prompt          string
	MetricsAddr     string
	Debug           bool
	NoBanner        bool
	ContinueOnPanic bool
	VimMode         bool

	// Stdin and Stdout default to the process streams.
	Stdin  io.Reader
	Stdout io.Writer
	// Logger overrides the logger built from the configured level.
	Logger *slog.Logger
}

// Config loads the configuration file and applies the overrides in o.
func (o RunOptions) Config() (config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return cfg, err
	}
	if o.SchemaPath != "" {
		cfg.Schema = o.SchemaPath
	}
	if o.Source != "" {
		cfg.Source = o.Source
	}
	if o.Prompt != "" {
		cfg.Prompt = o.Prompt
	}
	if o.MetricsAddr != "" {
		cfg.MetricsAddr = o.MetricsAddr
	}
	if o.Debug {
		cfg.LogLevel = "debug"
	}
	cfg.NoBanner = cfg.NoBanner || o.NoBanner
	cfg.ContinueOnPanic = cfg.ContinueOnPanic || o.ContinueOnPanic
	cfg.VimMode = cfg.VimMode || o.VimMode
	return cfg, cfg.Validate()
}

// Execute runs the REPL until it terminates.
// The returned error is the loop's terminating error; map it with repl.ExitCode.
func Execute(ctx context.Context, opts RunOptions) error {
	cfg, err := opts.Config()
	if err != nil {
		return err
	}
	in, out := opts.Stdin, opts.Stdout
	if in == nil {
		in = os.Stdin
	}
	if out == nil {
		out = os.Stdout
	}
	logger := opts.Logger
	if logger == nil {
		logger = createLogger(cfg.LogLevel)
	}

	schema, err := LoadSchema(cfg.Schema)
	if err != nil {
		return err
	}
	g, err := grammar.Compile(schema)
	if err != nil {
		return fmt.Errorf("invalid schema: %w", err)
	}

	src, err := openSource(ctx, cfg, g, in, out, logger)
	if err != nil {
		return err
	}
	defer func() {
		if err := src.close(); err != nil {
			logger.Debug("failed to close line source", "err", err)
		}
	}()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	replOpts := createREPLOptions(ctx, cfg, src, logger)

	if src.interactive && !cfg.NoBanner {
		tui.PrintBanner(out, replet.Version)
	}

	logger.Info("REPL started", "source", src.kind, "schema", schemaName(cfg.Schema))
	if cfg.Schema == "" {
		err = run(ctx, src, g, demoDecoder(), repl.HandlerFunc[demoCommand](handleDemo), replOpts)
	} else {
		reg := registry.NewRegistry().Fallback(handleInspect)
		err = run(ctx, src, g, grammar.Raw(), reg, replOpts)
	}
	logger.Info("REPL stopped", "exit_code", repl.ExitCode(err))
	return err
}

// LoadSchema reads the schema at path, or returns the demo schema for an empty path.
func LoadSchema(path string) (*grammar.Schema, error) {
	if path == "" {
		return DemoSchema()
	}
	return grammar.LoadSchema(path)
}

func run[C any](ctx context.Context, src repl.LineSource, g *grammar.Grammar, dec grammar.Decoder[C], h repl.Handler[C], opts []repl.Option) error {
	r, err := repl.New(src, g, dec, h, opts...)
	if err != nil {
		return err
	}
	return r.Run(ctx)
}

func createLogger(level string) *slog.Logger {
	lvl, err := logging.ParseLevel(level)
	if err != nil {
		lvl = slog.LevelWarn
	}
	return logging.New(logging.LevelFromEnv(lvl))
}

// createREPLOptions prepares the functional options for the REPL.
func createREPLOptions(ctx context.Context, cfg config.Config, src *hostSource, logger *slog.Logger) []repl.Option {
	policy := repl.NewDefaultPolicy(logger, repl.PrintWriter(src))
	policy.ContinueOnPanic = cfg.ContinueOnPanic

	var prompt repl.Prompt = repl.NewStaticPrompt(cfg.Prompt, "")
	if src.interactive {
		theme := tui.DefaultTheme()
		policy.Formatter = tui.ErrorFormatter(theme)
		prompt = tui.StyledPrompt{Base: prompt, Theme: theme}
	}

	opts := []repl.Option{
		repl.WithLogger(logger),
		repl.WithPolicy(policy),
		repl.WithPrompt(prompt),
		repl.WithRenderer(tui.NewRenderer()),
		repl.WithHooks(createDebugHooks(logger)),
	}

	if cfg.MetricsAddr != "" {
		metrics := observability.NewMetrics("replet")
		opts = append(opts, repl.WithHooks(metrics.Hooks()))
		go func() {
			if err := metrics.Serve(ctx, cfg.MetricsAddr, logger); err != nil {
				logger.Error("metrics server failed", "addr", cfg.MetricsAddr, "err", err)
			}
		}()
	}
	return opts
}

func createDebugHooks(logger *slog.Logger) repl.Hooks {
	return repl.Hooks{
		OnDispatch: func(ev repl.DispatchEvent) {
			if ev.Err != nil {
				logger.Debug("Dispatch Failed", "command", ev.Command, "kind", ev.Err.Kind, "duration", ev.Duration)
				return
			}
			logger.Debug("Dispatch", "command", ev.Command, "duration", ev.Duration)
		},
		OnDecision: func(err *repl.Error, d repl.Decision) {
			logger.Debug("Policy Decision", "kind", err.Kind, "decision", d)
		},
	}
}

func schemaName(path string) string {
	if path == "" {
		return "demo"
	}
	return path
}
