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

package extension

import (
	"context"
	"sync"

	"github.com/NorthIsUp/cogloop/config"
	"github.com/NorthIsUp/cogloop/log"
)

// testHost is a minimal HostContext for exercising Base and the interval
// resolver without the full application host.
type testHost struct {
	name   string
	logger log.Logger
	env    *config.EnvSource

	mu         sync.Mutex
	dispatched []Event
}

var _ HostContext = (*testHost)(nil)

func newTestHost() *testHost {
	return &testHost{
		name:   "testapp",
		logger: log.DiscardLogger,
		env:    config.Env(),
	}
}

func (x *testHost) AppName() string {
	return x.name
}

func (x *testHost) Logger() log.Logger {
	return x.logger
}

func (x *testHost) Chain(ext Extension) *config.Chain {
	prefix := config.ResolvePrefix(x.name)
	scoped := config.NewPrefixed(x.env, prefix, config.ScreamingSnake(ext.Name()))
	process := config.NewPrefixed(x.env, prefix)
	return config.NewChain(scoped, process).WithLogger(x.logger)
}

func (x *testHost) Typed(ext Extension) *config.TypedChain {
	schema := ext.Schema().Clone()
	if _, ok := schema[SettingEnabled]; !ok {
		schema[SettingEnabled] = config.Setting{Kind: config.String, Default: "true"}
	}
	return config.NewTyped(x.Chain(ext), schema)
}

func (x *testHost) Dispatch(_ context.Context, event string, payload map[string]any) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.dispatched = append(x.dispatched, NewEvent(event, payload))
}

func (x *testHost) events() []Event {
	x.mu.Lock()
	defer x.mu.Unlock()
	return append([]Event(nil), x.dispatched...)
}

// greeter is a small extension fixture built on Base.
type greeter struct {
	Base
	ran int
}

func newGreeter(host HostContext) (*greeter, error) {
	g := new(greeter)
	g.Base = NewBase(host, g)
	return g, nil
}

func (x *greeter) Name() string {
	return "Greeter"
}

func (x *greeter) Schema() config.Schema {
	return config.Schema{
		"GREETING": {Kind: config.String, Default: "hello"},
		"INTERVAL": {Kind: config.Int},
	}
}

func (x *greeter) Bindings() []Binding {
	return []Binding{
		OnReady(x.greet),
	}
}

func (x *greeter) greet(_ context.Context, _ Event) error {
	x.ran++
	return nil
}
