// Package appctx wires the shared application objects for all commands.
package appctx

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/plannerhq/planner/internal/auth"
	"github.com/plannerhq/planner/internal/config"
	"github.com/plannerhq/planner/internal/effects"
	"github.com/plannerhq/planner/internal/gateway"
	"github.com/plannerhq/planner/internal/i18n"
	"github.com/plannerhq/planner/internal/observability"
	"github.com/plannerhq/planner/internal/output"
	"github.com/plannerhq/planner/internal/resilience"
	"github.com/plannerhq/planner/internal/state"
	"github.com/plannerhq/planner/internal/store"
)

type contextKey string

const (
	appKey    contextKey = "app"
	loggerKey contextKey = "logger"
)

// DebugEnv raises trace verbosity like -v ("1", "2" or "true").
const DebugEnv = "PLANNER_DEBUG"

// App holds the shared application context for all commands.
type App struct {
	Config   *config.Config
	Auth     *auth.Manager
	Gateway  *gateway.Client
	Store    *store.Store
	Effects  *effects.Coordinator
	Locale   i18n.Locale
	Location *effects.MemoryLocation
	Output   *output.Writer
	Logger   *slog.Logger
	Stderr   io.Writer

	Collector *observability.SessionCollector
	Hooks     *observability.CLIHooks

	Flags GlobalFlags

	notifier *notifier
	logFile  io.Closer
	gate     *resilience.Gate

	mu      sync.Mutex
	lastErr error
}

// GlobalFlags holds values for global CLI flags.
type GlobalFlags struct {
	JSON    bool
	Quiet   bool
	MD      bool
	Styled  bool
	IDsOnly bool
	Count   bool
	JQ      string

	BaseURL string
	Locale  string
	LogFile string

	Verbose int // 0 off, 1 operations, 2 operations and requests
	Stats   bool
}

// Options customize NewApp; tests use them to avoid the keyring and stdout.
type Options struct {
	Auth   *auth.Manager
	Writer io.Writer
	Stderr io.Writer
}

// NewApp builds the app for cfg. Call ApplyFlags once flags are parsed and
// Close when done.
func NewApp(cfg *config.Config, opts ...Options) *App {
	var o Options
	if len(opts) > 0 {
		o = opts[0]
	}
	if o.Writer == nil {
		o.Writer = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	authMgr := o.Auth
	if authMgr == nil {
		authMgr = auth.NewManager(cfg)
	}

	collector := observability.NewSessionCollector()
	hooks := observability.NewCLIHooks(0, collector, observability.NewTraceWriterTo(o.Stderr))

	a := &App{
		Config:    cfg,
		Auth:      authMgr,
		Locale:    i18n.NewLocale(cfg.Locale),
		Collector: collector,
		Hooks:     hooks,
		Logger:    slog.New(slog.NewTextHandler(o.Stderr, &slog.HandlerOptions{Level: slog.LevelError})),
		Stderr:    o.Stderr,
		notifier:  &notifier{w: o.Stderr},
	}
	a.Location = effects.NewMemoryLocation(a.homeHref())
	a.gate = resilience.NewGate(nil)
	a.Output = output.New(output.Options{Format: formatFromConfig(cfg.Format), Writer: o.Writer})
	a.start()
	return a
}

// start builds the gateway, coordinator and store around the current logger.
func (a *App) start() {
	a.Gateway = gateway.New(gateway.Options{
		BaseURL: a.Config.BaseURL,
		Auth:    a.Auth,
		Hooks:   a.Hooks,
		Logger:  a.Logger,
		Gate:    a.gate,
	})
	a.Effects = effects.New(effects.Options{
		Gateway:   a.Gateway,
		Notifier:  a.notifier,
		Location:  a.Location,
		Locale:    a.Locale,
		Logger:    a.Logger,
		OnFailure: a.recordFailure,
	})
	a.Store = store.New(store.Options{
		Initial: a.initialState(),
		Effects: []store.Effect{a.Effects},
		Logger:  a.Logger,
	})
}

func (a *App) initialState() *state.State {
	s := state.Initial(nowFunc())
	s.EmployeeRequest.PageSize = a.Config.PageSize
	s.ProjectRequest.PageSize = a.Config.PageSize
	return s
}

// homeHref is the front end's start location, with the language segment
// that locale reconciliation rewrites.
func (a *App) homeHref() string {
	return strings.TrimSuffix(a.Config.BaseURL, "/") + "/" + a.Locale.Language() + "/planner"
}

func formatFromConfig(s string) output.Format {
	f, err := output.ParseFormat(s)
	if err != nil {
		return output.FormatAuto
	}
	return f
}

// ApplyFlags applies parsed global flags: output format, jq filter,
// verbosity and logging. It restarts the store so the new logger is used.
func (a *App) ApplyFlags() error {
	format := a.Output.Format()
	switch {
	case a.Flags.IDsOnly:
		format = output.FormatIDs
	case a.Flags.Count:
		format = output.FormatCount
	case a.Flags.Quiet:
		format = output.FormatQuiet
	case a.Flags.JSON:
		format = output.FormatJSON
	case a.Flags.Styled:
		format = output.FormatStyled
	case a.Flags.MD:
		format = output.FormatMarkdown
	}
	if a.Flags.JQ != "" && format != output.FormatQuiet {
		format = output.FormatJSON
	}
	a.Output = output.New(output.Options{Format: format, Writer: a.Output.Writer(), JQ: a.Flags.JQ})

	level := a.Flags.Verbose
	if a.Config.Verbose != nil && *a.Config.Verbose > level {
		level = *a.Config.Verbose
	}
	if env := os.Getenv(DebugEnv); env != "" {
		if n, err := strconv.Atoi(env); err == nil && n > level {
			level = n
		} else if env == "true" {
			level = 2
		}
	}
	a.Hooks.SetLevel(level)
	if a.Config.Stats != nil && *a.Config.Stats {
		a.Flags.Stats = true
	}

	logger, closer, err := newLogger(a.Config.LogFile, level, a.notifier.w)
	if err != nil {
		return err
	}
	if a.logFile != nil {
		_ = a.logFile.Close()
	}
	a.Logger, a.logFile = logger, closer

	a.Store.Close()
	a.start()
	return nil
}

// newLogger writes text logs to path when set, otherwise to stderr. Debug
// level is enabled by any verbosity; stderr only shows errors otherwise.
func newLogger(path string, verbose int, stderr io.Writer) (*slog.Logger, io.Closer, error) {
	level := slog.LevelError
	if verbose > 0 {
		level = slog.LevelDebug
	}
	if path == "" {
		return slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level})), nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600) //nolint:gosec // G304: user-configured log path
	if err != nil {
		return nil, nil, output.ErrUsageHint(fmt.Sprintf("cannot open log file %s", path), err.Error())
	}
	if verbose == 0 {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(f, &slog.HandlerOptions{Level: level})), f, nil
}

// Close stops the store and releases the log file.
func (a *App) Close() {
	a.Store.Close()
	if a.logFile != nil {
		_ = a.logFile.Close()
		a.logFile = nil
	}
}

// SetNotifier redirects NetworkError messages, e.g. to workspace toasts.
// A nil fn drops them again.
func (a *App) SetNotifier(fn func(message string)) {
	a.notifier.set(fn)
}

func (a *App) recordFailure(_ state.Action, err error) {
	a.mu.Lock()
	a.lastErr = err
	a.mu.Unlock()
}

func (a *App) takeFailure() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.lastErr
	a.lastErr = nil
	return err
}

// Dispatch sends action and waits until one of done is reduced. A
// NetworkError ends the wait with the localized message, carrying the
// gateway's error code and hint when known.
func (a *App) Dispatch(ctx context.Context, action state.Action, done ...state.Kind) (store.Change, error) {
	a.takeFailure()
	kinds := append([]state.Kind{state.KindNetworkError}, done...)
	c, err := a.Store.WaitFor(ctx, state.IsKind(kinds...), action)
	if err != nil {
		return store.Change{}, err
	}
	if ne, ok := c.Action.(state.NetworkError); ok {
		return c, a.networkError(ne)
	}
	return c, nil
}

func (a *App) networkError(ne state.NetworkError) error {
	cause := a.takeFailure()
	if cause == nil {
		return output.ErrAPI(0, ne.Message)
	}
	e := *output.AsError(cause)
	hint := e.Message
	if e.Hint != "" {
		hint = e.Message + ": " + e.Hint
	}
	e.Message, e.Hint, e.Cause = ne.Message, hint, cause
	return &e
}

// OK writes a success response, adding session stats under --stats.
func (a *App) OK(data any, opts ...output.ResponseOption) error {
	if a.Flags.Stats {
		stats := a.Collector.Summary()
		opts = append(opts, output.WithStats(&stats))
	}
	return a.Output.OK(data, opts...)
}

// Err writes an error response, and the stats line on stderr under --stats
// for human-readable formats.
func (a *App) Err(err error) error {
	if werr := a.Output.Err(err); werr != nil {
		return werr
	}
	if a.Flags.Stats && !a.IsMachineOutput() {
		stats := a.Collector.Summary()
		if parts := stats.FormatParts(); len(parts) > 0 {
			fmt.Fprintf(a.notifier.w, "\nStats: %s\n", strings.Join(parts, " | "))
		}
	}
	return nil
}

// IsMachineOutput reports formats meant for programs rather than people.
func (a *App) IsMachineOutput() bool {
	switch a.Output.Format() {
	case output.FormatQuiet, output.FormatIDs, output.FormatCount, output.FormatJSON:
		return true
	}
	return a.Flags.JQ != ""
}

// IsInteractive reports whether prompts and the workspace may be shown.
func (a *App) IsInteractive() bool {
	if a.IsMachineOutput() {
		return false
	}
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}

// notifier forwards NetworkError messages to a redirect target. Without
// one, messages are dropped: commands report failures through Dispatch.
type notifier struct {
	mu sync.Mutex
	w  io.Writer
	fn func(string)
}

func (n *notifier) set(fn func(string)) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.fn = fn
}

func (n *notifier) Error(message string) {
	n.mu.Lock()
	fn := n.fn
	n.mu.Unlock()
	if fn != nil {
		fn(message)
	}
}

var nowFunc = time.Now

// ErrNoApp is returned by FromContext callers when setup did not run.
var ErrNoApp = errors.New("app not initialized")

func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey, app)
}

func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey).(*App)
	return app
}

// WithLogger stores logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the logger from ctx, or a discarding logger.
func Logger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey).(*slog.Logger); ok && l != nil {
		return l
	}
	return slog.New(slog.DiscardHandler)
}
