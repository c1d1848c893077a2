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

package bot

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/NorthIsUp/cogloop/config"
	"github.com/NorthIsUp/cogloop/extension"
	"github.com/NorthIsUp/cogloop/internal/syncmap"
	"github.com/NorthIsUp/cogloop/internal/validation"
	"github.com/NorthIsUp/cogloop/log"
)

// FallbackLoader is the hook Discover hands symbols to when a group exports
// something that is neither an extension, a constructor, a command, nor a
// value the classifier knows to ignore or skip.
type FallbackLoader func(ctx context.Context, name string, value any) error

// Manifest is a named collection of extension groups for discovery. The
// package-level DefaultManifest collects groups registered by init functions;
// hosts can carry a private manifest via WithManifest instead.
type Manifest struct {
	groups *syncmap.SyncMap[string, extension.Group]
}

// NewManifest creates an empty manifest.
func NewManifest() *Manifest {
	return &Manifest{groups: syncmap.New[string, extension.Group]()}
}

// Add registers a group. Registering two groups under one name is a wiring
// error, so it panics rather than letting discovery silently shadow symbols.
func (x *Manifest) Add(group extension.Group) {
	if _, loaded := x.groups.GetOrSet(group.Name, group); loaded {
		panic("bot: group already registered: " + group.Name)
	}
}

// Groups returns the registered groups in lexical name order, the order
// Discover visits them in.
func (x *Manifest) Groups() []extension.Group {
	names := x.groups.Keys()
	sort.Strings(names)
	groups := make([]extension.Group, 0, len(names))
	for _, name := range names {
		if group, ok := x.groups.Get(name); ok {
			groups = append(groups, group)
		}
	}
	return groups
}

// DefaultManifest collects extension groups registered by package init
// functions.
var DefaultManifest = NewManifest()

// RegisterGroup adds a group to the package-level manifest. Call from init()
// in extension packages.
func RegisterGroup(group extension.Group) {
	DefaultManifest.Add(group)
}

// outcome is the classifier's verdict on one group symbol.
type outcome int

const (
	// outcomeIgnored drops the symbol with a debug trace: private names,
	// symbols originating outside the group, loggers and re-exported groups.
	outcomeIgnored outcome = iota
	// outcomeInstance registers the symbol as a ready extension instance.
	outcomeInstance
	// outcomeConstruct invokes the symbol to produce the instance first.
	outcomeConstruct
	// outcomeCommand routes the symbol to the command dispatcher.
	outcomeCommand
	// outcomeSkipped drops the symbol silently: primitive literals that are
	// plainly module constants, not loadable units.
	outcomeSkipped
	// outcomeFallback hands the symbol to the fallback loader.
	outcomeFallback
)

const privateMarker = "_"

// classify decides what Discover does with one group symbol. Name and origin
// gates run first, then the descriptor's own kind settles it.
func classify(group extension.Group, descriptor extension.Descriptor) outcome {
	if strings.HasPrefix(descriptor.Name(), privateMarker) {
		return outcomeIgnored
	}
	if origin := descriptor.Origin(); origin != "" && origin != group.Name {
		return outcomeIgnored
	}
	if _, ok := descriptor.Instance(); ok {
		return outcomeInstance
	}
	if _, ok := descriptor.Constructor(); ok {
		return outcomeConstruct
	}
	if _, ok := descriptor.Command(); ok {
		return outcomeCommand
	}

	value, ok := descriptor.Value()
	if !ok {
		return outcomeSkipped
	}
	switch value.(type) {
	case nil:
		return outcomeSkipped
	case log.Logger:
		return outcomeIgnored
	case extension.Group, *extension.Group:
		return outcomeIgnored
	case bool, string,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64:
		return outcomeSkipped
	default:
		return outcomeFallback
	}
}

// Discover walks the given groups in lexical name order, classifies every
// symbol and registers what classification admits. With no explicit groups it
// reads the host's manifest. The first failed registration aborts discovery.
func (x *Bot) Discover(ctx context.Context, groups ...extension.Group) error {
	if len(groups) == 0 {
		groups = x.manifest.Groups()
	} else {
		groups = append([]extension.Group(nil), groups...)
		sort.Slice(groups, func(i, j int) bool { return groups[i].Name < groups[j].Name })
	}

	for _, group := range groups {
		x.logger.Infof("discovering extensions in %s", group.Name)
		for _, descriptor := range group.Symbols {
			if err := x.load(ctx, group, descriptor); err != nil {
				return err
			}
		}
	}
	return nil
}

// load acts on the classifier's verdict for one symbol.
func (x *Bot) load(ctx context.Context, group extension.Group, descriptor extension.Descriptor) error {
	switch classify(group, descriptor) {
	case outcomeIgnored:
		x.logger.Debugf("ignoring %s.%s", group.Name, descriptor.Name())
		return nil
	case outcomeSkipped:
		return nil
	case outcomeInstance:
		ext, _ := descriptor.Instance()
		return x.Register(ctx, ext)
	case outcomeConstruct:
		ctor, _ := descriptor.Constructor()
		ext, err := ctor(x)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrExtensionConstruction, descriptor.Name(), err)
		}
		return x.Register(ctx, ext)
	case outcomeCommand:
		cmd, _ := descriptor.Command()
		return x.RegisterCommand(cmd)
	default:
		value, _ := descriptor.Value()
		if x.fallback == nil {
			x.logger.Debugf("no fallback loader for %s.%s", group.Name, descriptor.Name())
			return nil
		}
		x.logger.Debugf("falling back to loader for %s.%s", group.Name, descriptor.Name())
		return x.fallback(ctx, descriptor.Name(), value)
	}
}

// Register claims the extension's name slot and, if the extension is enabled,
// wires its bindings into the scheduler and its routes into the web host. A
// disabled extension still occupies its slot so a duplicate is refused either
// way.
func (x *Bot) Register(ctx context.Context, ext extension.Extension) error {
	name := ext.Name()
	if name == "" {
		return ErrNameRequired
	}
	if err := validation.NewNameValidator(name).Validate(); err != nil {
		x.logger.Errorf("refusing extension %q: %v", name, err)
		return ErrInvalidName
	}
	if _, loaded := x.extensions.GetOrSet(name, ext); loaded {
		x.logger.Errorf("extension %s already registered", name)
		return fmt.Errorf("%w: %s", ErrDuplicateExtension, name)
	}

	logger := x.logger.Named(name)
	typed := x.Typed(ext)
	if !extension.Enabled(ctx, typed, logger) {
		logger.Infof("extension %s is disabled, skipping task bindings", name)
		return nil
	}
	if err := x.checkSettings(ctx, ext, typed, logger); err != nil {
		return err
	}

	for _, binding := range ext.Bindings() {
		if err := x.scheduler.bind(ctx, ext, binding, typed, logger); err != nil {
			return err
		}
	}
	if provider, ok := ext.(extension.RouteProvider); ok {
		if err := x.mountRoutes(ctx, ext, provider, typed, logger); err != nil {
			return err
		}
	}
	x.logger.Infof("registered extension %s", name)
	return nil
}

// RegisterCommand adds a command to the dispatcher under its name.
func (x *Bot) RegisterCommand(cmd extension.Command) error {
	if cmd.Name == "" {
		return ErrNameRequired
	}
	if _, loaded := x.commands.GetOrSet(cmd.Name, cmd); loaded {
		return fmt.Errorf("%w: %s", ErrDuplicateCommand, cmd.Name)
	}
	x.logger.Debugf("registered command %s", cmd.Name)
	return nil
}

// checkSettings enforces the extension's configuration check level: settings
// declared without a default must resolve somewhere in the chain, or the
// check warns or refuses registration depending on the level.
func (x *Bot) checkSettings(ctx context.Context, ext extension.Extension, typed *config.TypedChain, logger log.Logger) error {
	checker, ok := ext.(extension.ConfigChecker)
	if !ok {
		return nil
	}
	level := checker.ConfigCheck()
	if level == extension.CheckDisabled {
		return nil
	}

	missing, err := typed.MissingSettings(ctx)
	if err != nil {
		return err
	}
	if len(missing) == 0 {
		logger.Debugf("config check passed")
		return nil
	}
	if level == extension.CheckWarn {
		logger.Warnf("config has missing settings: %s", strings.Join(missing, ", "))
		return nil
	}
	logger.Errorf("config has missing settings: %s", strings.Join(missing, ", "))
	return fmt.Errorf("%w: %s is missing %s", ErrMissingSettings, ext.Name(), strings.Join(missing, ", "))
}

// mountRoutes claims the provider's url root and binds a ready handler that
// performs the shared listener start, resolving the bind address through the
// extension's own chain.
func (x *Bot) mountRoutes(ctx context.Context, ext extension.Extension, provider extension.RouteProvider, typed *config.TypedChain, logger log.Logger) error {
	if err := x.web.mount(ext.Name(), provider.URLRoot(), provider.Routes()); err != nil {
		return err
	}
	start := extension.OnReady(func(ctx context.Context, _ extension.Event) error {
		host, err := typed.GetString(ctx, SettingHost)
		if err != nil {
			return err
		}
		port, err := typed.GetInt(ctx, SettingPort)
		if err != nil {
			return err
		}
		return x.web.start(ctx, host, port)
	}, extension.WithName("start"))
	return x.scheduler.bind(ctx, ext, start, typed, logger)
}
