// MIT License
//
// Copyright (c) 2021-2026 NorthIsUp
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package bot hosts the extension runtime. A Bot is the composition root: it
// discovers extensions from registered groups, builds each one a layered,
// prefix-scoped settings chain, fans dispatched events out to their bound
// tasks, runs their periodic and cron work, and shares one HTTP listener
// among the extensions that provide routes.
package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/multierr"

	"github.com/NorthIsUp/cogloop/config"
	"github.com/NorthIsUp/cogloop/extension"
	"github.com/NorthIsUp/cogloop/internal/syncmap"
	"github.com/NorthIsUp/cogloop/internal/validation"
	"github.com/NorthIsUp/cogloop/log"
)

// Settings the host injects into the schema of every route-providing
// extension, resolved through the extension's own chain at ready time.
const (
	SettingHost = "HOST"
	SettingPort = "PORT"
)

const (
	defaultHost = "0.0.0.0"
	defaultPort = int64(8080)

	// DefaultStopTimeout bounds Stop's drain of in-flight handlers and the
	// cron scheduler when the caller's context carries no deadline.
	DefaultStopTimeout = 10 * time.Second
)

// Bot is the application host. It implements extension.HostContext, so a
// registered extension reaches everything it is allowed to touch — its
// settings, its logger, the dispatcher — through the Bot that registered it.
type Bot struct {
	name        string
	prefix      string
	logger      log.Logger
	base        []config.Source
	manifest    *Manifest
	fallback    FallbackLoader
	stopTimeout time.Duration

	extensions *syncmap.SyncMap[string, extension.Extension]
	commands   *syncmap.SyncMap[string, extension.Command]

	scheduler *taskScheduler
	web       *webHost

	started *atomic.Bool
	mu      sync.Mutex
	runCtx  context.Context
	cancel  context.CancelFunc
}

// enforce compilation error when the Bot stops satisfying the host contract
var _ extension.HostContext = (*Bot)(nil)

// New creates a host with the given application name. The name seeds the
// configuration prefix every extension chain resolves under, so it must be a
// valid identifier.
func New(name string, opts ...Option) (*Bot, error) {
	if name == "" {
		return nil, ErrNameRequired
	}
	if err := validation.NewNameValidator(name).Validate(); err != nil {
		return nil, ErrInvalidName
	}

	x := &Bot{
		name:        name,
		logger:      log.DefaultLogger,
		base:        []config.Source{config.Env()},
		manifest:    DefaultManifest,
		stopTimeout: DefaultStopTimeout,
		extensions:  syncmap.New[string, extension.Extension](),
		commands:    syncmap.New[string, extension.Command](),
		started:     atomic.NewBool(false),
	}

	// set the custom options to override the default values
	for _, opt := range opts {
		opt.Apply(x)
	}

	x.logger = x.logger.Named(name)
	x.prefix = config.ResolvePrefix(name)
	x.scheduler = newTaskScheduler(x.logger)
	x.web = newWebHost(x.logger)
	return x, nil
}

// AppName returns the host's application name.
func (x *Bot) AppName() string {
	return x.name
}

// Logger returns the host logger. Extension loggers are named off it.
func (x *Bot) Logger() log.Logger {
	return x.logger
}

// Chain builds the extension's layered settings chain: one prefix-scoped view
// per configuration scope over every base source, most specific scope first,
// with the bare process prefix as the final fallback. An extension that
// implements ScopeProvider substitutes its own scope list.
func (x *Bot) Chain(ext extension.Extension) *config.Chain {
	scopes := []string{ext.Name()}
	if provider, ok := ext.(extension.ScopeProvider); ok {
		if provided := provider.ConfigScopes(); len(provided) > 0 {
			scopes = provided
		}
	}

	sources := make([]config.Source, 0, (len(scopes)+1)*len(x.base))
	for _, scope := range scopes {
		for _, src := range x.base {
			sources = append(sources, config.NewPrefixed(src, x.prefix, config.ScreamingSnake(scope)))
		}
	}
	for _, src := range x.base {
		sources = append(sources, config.NewPrefixed(src, x.prefix))
	}
	return config.NewChain(sources...).WithLogger(x.logger)
}

// Typed wraps the extension's chain with its declared schema. The host
// injects the enablement switch, and a bind address for route providers, so
// every extension resolves those without declaring them.
func (x *Bot) Typed(ext extension.Extension) *config.TypedChain {
	schema := ext.Schema().Clone()
	if _, ok := schema[extension.SettingEnabled]; !ok {
		schema[extension.SettingEnabled] = config.Setting{Kind: config.String, Default: "true"}
	}
	if _, ok := ext.(extension.RouteProvider); ok {
		if _, ok := schema[SettingHost]; !ok {
			schema[SettingHost] = config.Setting{Kind: config.String, Default: defaultHost}
		}
		if _, ok := schema[SettingPort]; !ok {
			schema[SettingPort] = config.Setting{Kind: config.Int, Default: defaultPort}
		}
	}
	return config.NewTyped(x.Chain(ext), schema).WithLogger(x.logger.Named(ext.Name()))
}

// Dispatch publishes a named event to every bound task. Handlers run
// concurrently under the host's run context, so stopping the host cancels
// them; the supplied context only gates the dispatch itself. Dispatching
// before the host starts drops the event.
func (x *Bot) Dispatch(ctx context.Context, event string, payload map[string]any) {
	if !x.started.Load() {
		x.logger.Debugf("dispatch of %s before start, dropping", event)
		return
	}
	if ctx.Err() != nil {
		return
	}
	ev := extension.NewEvent(event, payload)
	x.logger.Debugf("dispatching %s", ev.Name)
	x.scheduler.dispatch(x.runContext(), ev)
}

// Extension returns the registered extension with the given name.
func (x *Bot) Extension(name string) (extension.Extension, bool) {
	return x.extensions.Get(name)
}

// Extensions returns every registered extension in name order.
func (x *Bot) Extensions() []extension.Extension {
	names := x.extensions.Keys()
	sort.Strings(names)
	exts := make([]extension.Extension, 0, len(names))
	for _, name := range names {
		if ext, ok := x.extensions.Get(name); ok {
			exts = append(exts, ext)
		}
	}
	return exts
}

// HandleCommand resolves the first field of the line against the command
// dispatcher and runs the command with the remaining fields as arguments.
func (x *Bot) HandleCommand(ctx context.Context, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: empty command line", ErrUnknownCommand)
	}
	cmd, ok := x.commands.Get(fields[0])
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownCommand, fields[0])
	}
	x.logger.Debugf("running command %s", fields[0])
	return cmd.Run(ctx, fields[1:])
}

// Start brings the host up: the cron scheduler starts, pending cron bindings
// are scheduled, and the ready event fires once. Call Discover first;
// extensions registered after Start still bind, but never see the ready
// event. Starting a started host is a no-op.
func (x *Bot) Start(ctx context.Context) error {
	if !x.started.CompareAndSwap(false, true) {
		x.logger.Info("host already started")
		return nil
	}

	x.logger.Infof("starting %s", x.name)
	runCtx, cancel := context.WithCancel(context.Background())
	x.mu.Lock()
	x.runCtx = runCtx
	x.cancel = cancel
	x.mu.Unlock()

	if err := x.scheduler.start(runCtx); err != nil {
		x.started.Store(false)
		cancel()
		return err
	}

	x.Dispatch(ctx, extension.EventReady, nil)
	x.logger.Infof("%s started", x.name)
	return nil
}

// Stop cancels the run context, which ends every periodic loop and in-flight
// handler, then drains the scheduler and shuts the web listener down. When
// the supplied context has no deadline the host's stop timeout bounds the
// drain. Stopping a stopped host is a no-op.
func (x *Bot) Stop(ctx context.Context) error {
	if !x.started.CompareAndSwap(true, false) {
		return nil
	}

	x.logger.Infof("stopping %s", x.name)
	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.stopTimeout)
		defer cancel()
	}

	x.mu.Lock()
	cancel := x.cancel
	x.runCtx = nil
	x.cancel = nil
	x.mu.Unlock()
	if cancel != nil {
		cancel()
	}

	err := multierr.Combine(
		x.scheduler.stop(ctx),
		x.web.shutdown(ctx),
	)
	if err != nil {
		x.logger.Errorf("stopping %s: %v", x.name, err)
		return err
	}
	x.logger.Infof("%s stopped", x.name)
	return nil
}

// Run is the one-call entrypoint for a main function: discover, start, block
// until the context is canceled, stop.
func (x *Bot) Run(ctx context.Context) error {
	if err := x.Discover(ctx); err != nil {
		return err
	}
	if err := x.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()

	stopCtx, cancel := context.WithTimeout(context.Background(), x.stopTimeout)
	defer cancel()
	return x.Stop(stopCtx)
}

func (x *Bot) runContext() context.Context {
	x.mu.Lock()
	defer x.mu.Unlock()
	if x.runCtx != nil {
		return x.runCtx
	}
	return context.Background()
}
