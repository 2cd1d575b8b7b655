package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/aretw0/accelerate"
	"github.com/aretw0/accelerate/internal/config"
	httpAdapter "github.com/aretw0/accelerate/pkg/adapters/http"
	"github.com/aretw0/accelerate/pkg/domain"
	"github.com/aretw0/accelerate/pkg/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// App runs the accelerate commands against a resolved configuration.
type App struct {
	Config config.Config
	Out    *Printer
	Logger *slog.Logger
	tty    bool
}

// NewApp creates an App printing to out.
func NewApp(cfg config.Config, out *Printer) (*App, error) {
	logger, err := createLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}
	return &App{
		Config: cfg,
		Out:    out,
		Logger: logger,
		tty:    isTerminal(out.Writer()),
	}, nil
}

// Operation is an engine call run by the move commands.
type Operation func(ctx context.Context, engine *accelerate.Engine) error

// Run opens the engine, runs op and reports the resulting cursor.
func (a *App) Run(ctx context.Context, name string, op Operation) error {
	engine, err := createEngine(a.Config, a.Logger)
	if err != nil {
		return a.fail(err, "%v", err)
	}
	defer engine.Close()

	before, err := engine.Status(ctx)
	if err != nil {
		return a.fail(err, "%s failed: %v", name, err)
	}

	opErr := op(ctx, engine)

	// ctx may be cancelled by now; the checkpoint was still written.
	after, err := engine.Status(context.WithoutCancel(ctx))
	if err != nil {
		after = before
	}
	total := len(engine.Motions())

	if opErr != nil {
		if isInterrupted(opErr) {
			return a.fail(opErr, "%s interrupted at %d/%d", name, after, total)
		}
		return a.fail(opErr, "%s failed at %d/%d: %v", name, after, total, opErr)
	}
	a.Out.Success("%s: %d -> %d (of %d)", name, before, after, total)
	return nil
}

// Status prints the current cursor.
func (a *App) Status(ctx context.Context) error {
	engine, err := createEngine(a.Config, a.Logger)
	if err != nil {
		return a.fail(err, "%v", err)
	}
	defer engine.Close()

	status, err := engine.Status(ctx)
	if err != nil {
		return a.fail(err, "status failed: %v", err)
	}

	motions := engine.Motions()
	if status > 0 && status <= len(motions) {
		a.Out.Success("%d/%d applied, last: %s", status, len(motions), motions[status-1].Name)
	} else {
		a.Out.Success("%d/%d applied", status, len(motions))
	}
	return nil
}

// List prints the catalog. With a target configured, applied motions are marked.
func (a *App) List(ctx context.Context) error {
	motions, err := accelerate.Discover(a.Config.Directory)
	if err != nil {
		return a.fail(err, "%v", err)
	}

	status := -1
	if a.Config.Target != "" {
		engine, err := createEngine(a.Config, a.Logger)
		if err != nil {
			return a.fail(err, "%v", err)
		}
		defer engine.Close()

		if status, err = engine.Status(ctx); err != nil {
			return a.fail(err, "status failed: %v", err)
		}
	}

	writeList(a.Out, motions, status)
	return nil
}

// writeList prints one motion per line. A negative status prints names only.
func writeList(p *Printer, motions []domain.Motion, status int) {
	if len(motions) == 0 {
		p.Muted("no motions")
		return
	}
	for i, m := range motions {
		switch {
		case status < 0:
			p.Plain("%s", m.Name)
		case i < status:
			p.Success("[x] %s", m.Name)
		default:
			p.Muted("[ ] %s", m.Name)
		}
	}
	if status >= 0 {
		p.Plain("%d/%d applied", status, len(motions))
	}
}

// Show renders one motion, selected by index or name, as markdown.
func (a *App) Show(ctx context.Context, ref string) error {
	motions, err := accelerate.Discover(a.Config.Directory)
	if err != nil {
		return a.fail(err, "%v", err)
	}

	index := findMotion(motions, ref)
	if index < 0 {
		err := fmt.Errorf("no motion %q", ref)
		return a.fail(err, "%v", err)
	}

	applied := false
	if a.Config.Target != "" {
		engine, err := createEngine(a.Config, a.Logger)
		if err != nil {
			return a.fail(err, "%v", err)
		}
		defer engine.Close()

		status, err := engine.Status(ctx)
		if err != nil {
			return a.fail(err, "status failed: %v", err)
		}
		applied = index < status
	}

	r, err := newRenderer(a.tty)
	if err != nil {
		return err
	}
	out, err := r.Render(motionMarkdown(index, motions[index], applied))
	if err != nil {
		return err
	}
	fmt.Fprint(a.Out.Writer(), out)
	return nil
}

// findMotion resolves ref as a catalog index, then as an exact name.
func findMotion(motions []domain.Motion, ref string) int {
	if i, err := strconv.Atoi(ref); err == nil {
		if i >= 0 && i < len(motions) {
			return i
		}
		return -1
	}
	for i, m := range motions {
		if m.Name == ref {
			return i
		}
	}
	return -1
}

// Create scaffolds a new motion pair.
func (a *App) Create(name string) error {
	m, err := accelerate.Create(a.Config.Directory, name)
	if err != nil {
		return a.fail(err, "create failed: %v", err)
	}
	a.Out.Success("created %s", m.AddPath)
	a.Out.Success("created %s", m.SubPath)
	return nil
}

// Serve exposes the engine over HTTP until ctx is done.
func (a *App) Serve(ctx context.Context) error {
	streams := httpAdapter.NewStreamManager(a.Logger)
	hooks := []domain.LifecycleHooks{streams.Hooks()}
	handlerOpts := []httpAdapter.Option{
		httpAdapter.WithLogger(a.Logger),
		httpAdapter.WithStreams(streams),
	}

	if a.Config.Metrics {
		reg := prometheus.NewRegistry()
		metrics, err := observability.NewMetrics(reg)
		if err != nil {
			return err
		}
		hooks = append(hooks, metrics.Hooks())
		handlerOpts = append(handlerOpts, httpAdapter.WithMetricsHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	engine, err := createEngine(a.Config, a.Logger, hooks...)
	if err != nil {
		return a.fail(err, "%v", err)
	}
	defer engine.Close()

	srv := &http.Server{
		Addr:              a.Config.Listen,
		Handler:           httpAdapter.NewHandler(engine, handlerOpts...),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if a.tty {
		a.Out.PrintBanner()
	}

	// Channel to listen for errors coming from the listener.
	a.Out.Success("listening on %s", srv.Addr)
	a.Out.Muted("motions from %s, target %s", a.Config.Directory, a.Config.Target)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return a.fail(err, "server error: %v", err)

	case <-ctx.Done():
		a.Out.Muted("shutting down")

		// Give outstanding requests a deadline for completion.
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			a.Out.Failure("graceful shutdown did not complete in %v: %v", 5*time.Second, err)
			if err := srv.Close(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
		}
		a.Out.Success("server stopped")
		return nil
	}
}
