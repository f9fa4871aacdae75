package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/aretw0/debot"
	"github.com/aretw0/debot/internal/presentation/tui"
	"github.com/aretw0/debot/pkg/adapters/fixture"
	"github.com/aretw0/debot/pkg/observability"
	"github.com/aretw0/debot/pkg/runner"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
)

// IO is where a session reads input and writes its output and logs.
type IO struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// RunSession executes a single debot session against the fixture call service.
func RunSession(ctx context.Context, opts RunOptions, stdio IO) error {
	logger, err := createLogger(stdio.Err, opts.LogLevel, opts.LogFormat)
	if err != nil {
		return err
	}

	service, err := fixture.Load(opts.Fixture, fixture.WithLogger(logger))
	if err != nil {
		return err
	}
	addr := opts.Addr
	if addr == "" {
		addr = string(service.Entry())
	}

	sessionID := opts.SessionID
	if opts.Resume != "" {
		sessionID = opts.Resume
	}
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	persist, err := setupPersistence(ctx, opts.Store, logger)
	if err != nil {
		return err
	}
	defer persist.close()
	if opts.Resume != "" && persist.store == nil {
		return fmt.Errorf("--resume requires a checkpoint store (--redis-addr or --store-dir)")
	}

	registry := prometheus.NewRegistry()
	metrics, err := observability.NewMetrics(registry)
	if err != nil {
		return err
	}
	hooks := observability.Combine(metrics.Hooks(), observability.LogHooks(logger))

	if opts.MetricsAddr != "" {
		srv, err := startMetricsServer(opts.MetricsAddr, registry, logger)
		if err != nil {
			return fmt.Errorf("failed to start metrics server: %w", err)
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	termOpts := []runner.TerminalOption{runner.WithTerminalLogger(logger)}
	if opts.Markdown {
		render, err := tui.NewRenderer()
		if err != nil {
			return fmt.Errorf("failed to create markdown renderer: %w", err)
		}
		termOpts = append(termOpts, runner.WithRenderer(render))
	}
	term := runner.NewTerminal(stdio.In, stdio.Out, termOpts...)
	defer term.Close()

	shared := []debot.Option{
		debot.WithLogger(logger),
		debot.WithLifecycleHooks(hooks),
		debot.WithMaxInstantSwitches(opts.MaxInstantSwitches),
	}
	term.SetInvoker(debot.NewInvoker(service, term, shared...))

	engineOpts := append([]debot.Option{debot.WithSessionID(sessionID)}, shared...)
	if opts.ABIPath != "" {
		abi, err := os.ReadFile(opts.ABIPath)
		if err != nil {
			return fmt.Errorf("failed to read abi: %w", err)
		}
		engineOpts = append(engineOpts, debot.WithABI(string(abi)))
	}
	if persist.store != nil {
		engineOpts = append(engineOpts, debot.WithCheckpointStore(persist.store))
	}

	engine, err := debot.New(addr, service, term, engineOpts...)
	if err != nil {
		return fmt.Errorf("error initializing debot: %w", err)
	}

	runnerOpts := []runner.Option{
		runner.WithLogger(logger),
		runner.WithResume(opts.Resume != ""),
	}
	if !opts.NoBanner {
		runnerOpts = append(runnerOpts, runner.WithBanner(tui.Banner(stdio.Out, "session "+sessionID)))
	}
	if persist.locker != nil {
		runnerOpts = append(runnerOpts, runner.WithLock(persist.locker, opts.Store.LockTTL))
	}

	runErr := runner.New(term, runnerOpts...).Run(ctx, engine)
	logCompletion(stdio.Out, engine, runErr, persist.store != nil)
	return handleExecutionError(runErr)
}

func logCompletion(w io.Writer, engine *debot.Engine, err error, persisted bool) {
	state := engine.CurrentState()
	switch {
	case err != nil && isInterrupted(err):
		fmt.Fprintln(w)
		printSystemMessage(w, "Interrupted at context %s.", state)
	case err != nil:
		printSystemMessage(w, "Session failed at context %s.", state)
	case state.IsExit():
		printSystemMessage(w, "Debot finished.")
	default:
		printSystemMessage(w, "Left at context %s.", state)
		if persisted {
			printSystemMessage(w, "Resume with --resume %s", engine.SessionID())
		}
	}
}
