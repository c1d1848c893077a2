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

// Package extension defines the pluggable unit of the bot runtime.
//
// An Extension bundles a configuration schema with a set of task bindings.
// The host discovers extensions at startup, builds each one a layered
// settings chain scoped by its name, and wires its bindings into the event
// dispatcher. Optional capabilities (HTTP routes, strict configuration
// checks, extra settings scopes) are discovered by interface assertion, so
// an extension only implements the surfaces it needs.
package extension

import (
	"context"

	"github.com/NorthIsUp/cogloop/config"
	"github.com/NorthIsUp/cogloop/log"
)

// SettingEnabled is the switch every extension carries. The host injects it
// into each declared schema with a default of "true"; the scheduler resolves
// it through the extension's own chain at the moment a triggering event
// fires, so an operator can flip an extension off without a restart.
const SettingEnabled = "ENABLED"

// Extension is the contract every pluggable unit implements.
//
// Once registered, an Extension becomes addressable by name: its settings
// resolve under the `<PREFIX>__<NAME>` scope, its bindings receive dispatched
// events, and re-registration under the same name is refused.
type Extension interface {
	// Name returns the unique identifier for the extension.
	//
	// The identifier must:
	//   - Be no more than 255 characters long.
	//   - Start with an alphanumeric character [a-zA-Z0-9].
	//   - Contain only alphanumeric characters, hyphens (-), or underscores (_) thereafter.
	//
	// Identifiers that do not meet these constraints are considered invalid
	// and fail registration.
	Name() string
	// Schema declares the extension's settings: name, kind and optional
	// default for every key the extension reads. Reads of undeclared keys
	// are programmer errors.
	Schema() config.Schema
	// Bindings returns the tasks the extension wants wired into the
	// dispatcher: event handlers, periodic loops and cron entries.
	Bindings() []Binding
}

// Constructor builds an extension from the running host. Discovery invokes
// constructors after the host's own wiring is up, so the returned extension
// may capture chains, loggers and the dispatcher.
type Constructor func(host HostContext) (Extension, error)

// RouteProvider marks an extension as HTTP capable. Its routes are mounted
// on the process-wide site under the `/<url-root>/` path segment.
type RouteProvider interface {
	// URLRoot returns the single path segment the extension's routes live
	// under. It must not contain a '/' and must be unique per extension.
	URLRoot() string
	// Routes returns the method/path/handler triples to mount.
	Routes() []Route
}

// ConfigChecker opts an extension into startup verification of its declared
// settings. Extensions that do not implement it are never checked.
type ConfigChecker interface {
	// ConfigCheck returns the strictness applied at registration.
	ConfigCheck() ConfigCheck
}

// ScopeProvider widens the settings chain with extra ancestor scopes, most
// specific first. Most extensions resolve under their own name only; a
// family of extensions can share a scope by listing a common segment after
// their own name.
type ScopeProvider interface {
	ConfigScopes() []string
}

// HostContext is the view of the running host handed to extensions. It is
// implemented by the application host; extensions hold it to reach their
// settings, the logger and the event dispatcher.
type HostContext interface {
	// AppName returns the host application's name, the first segment of
	// every settings key.
	AppName() string
	// Logger returns the host's root logger.
	Logger() log.Logger
	// Chain returns the layered settings chain scoped to the given
	// extension, most specific scope first.
	Chain(ext Extension) *config.Chain
	// Typed returns the schema-checked settings chain for the given
	// extension.
	Typed(ext Extension) *config.TypedChain
	// Dispatch publishes a named event to every bound handler. Handlers run
	// concurrently; Dispatch does not wait for them.
	Dispatch(ctx context.Context, event string, payload map[string]any)
}

// Enabled resolves the extension switch through the given typed chain.
// Missing values count as enabled (the injected default), unparseable values
// count as disabled and are logged: a broken switch must not run tasks.
func Enabled(ctx context.Context, typed *config.TypedChain, logger log.Logger) bool {
	enabled, err := typed.BoolOr(ctx, SettingEnabled, true)
	if err != nil {
		logger.Warnf("treating extension as disabled: %v", err)
		return false
	}
	return enabled
}

// Base is the embeddable starter kit for extensions. It captures the host
// handle at construction and eagerly builds the extension's settings chains
// and a named logger, mirroring what every hand-rolled extension would
// otherwise wire itself.
//
//	type Cleaner struct {
//		extension.Base
//	}
//
//	func NewCleaner(host extension.HostContext) (extension.Extension, error) {
//		c := new(Cleaner)
//		c.Base = extension.NewBase(host, c)
//		return c, nil
//	}
type Base struct {
	host   HostContext
	self   Extension
	chain  *config.Chain
	typed  *config.TypedChain
	logger log.Logger
}

// NewBase builds the embeddable helper for the given extension. The self
// argument is the extension embedding the Base; its Name and Schema must be
// callable at construction time.
func NewBase(host HostContext, self Extension) Base {
	return Base{
		host:   host,
		self:   self,
		chain:  host.Chain(self),
		typed:  host.Typed(self),
		logger: host.Logger().Named(self.Name()),
	}
}

// Host returns the host handle injected at construction.
func (x *Base) Host() HostContext {
	return x.host
}

// Config returns the extension's raw settings chain.
func (x *Base) Config() *config.Chain {
	return x.chain
}

// Settings returns the extension's schema-checked settings chain.
func (x *Base) Settings() *config.TypedChain {
	return x.typed
}

// Logger returns the extension's named logger.
func (x *Base) Logger() log.Logger {
	return x.logger
}

// Dispatch publishes an event through the host dispatcher.
func (x *Base) Dispatch(ctx context.Context, event string, payload map[string]any) {
	x.host.Dispatch(ctx, event, payload)
}

// Enabled reports whether the extension is currently switched on.
func (x *Base) Enabled(ctx context.Context) bool {
	return Enabled(ctx, x.typed, x.logger)
}
