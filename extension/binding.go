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
	"reflect"
	"runtime"
	"strings"
)

// Handler is a bound task body. Returned errors are caught and logged at the
// scheduler boundary; they never reach the dispatcher or other handlers.
type Handler func(ctx context.Context, ev Event) error

// Filter decides whether a dispatched event reaches the handler. A false
// result skips the invocation without affecting other bound handlers.
type Filter func(ev Event) bool

// InstanceFilter is a Filter that also sees the owning extension, for
// decisions that need its settings or state.
type InstanceFilter func(ext Extension, ev Event) bool

// Binding ties a handler to its trigger. Build them with OnEvent, OnReady,
// Periodic or Cron; the host wires them into the dispatcher at registration.
type Binding struct {
	listener       string
	name           string
	handler        Handler
	filter         Filter
	instanceFilter InstanceFilter
	interval       *IntervalSpec
	cron           string
}

// BindingOption configures a Binding at build time.
type BindingOption interface {
	// Apply sets the option value on the binding.
	Apply(b *Binding)
}

// enforce compilation error
var _ BindingOption = bindingOption(nil)

// bindingOption implements the BindingOption interface.
type bindingOption func(b *Binding)

func (f bindingOption) Apply(b *Binding) {
	f(b)
}

// WithFilter guards the binding with an event predicate. A false result
// skips the run and is logged at debug level.
func WithFilter(filter Filter) BindingOption {
	return bindingOption(func(b *Binding) {
		b.filter = filter
	})
}

// WithInstanceFilter guards the binding with a predicate over the owning
// extension and the event.
func WithInstanceFilter(filter InstanceFilter) BindingOption {
	return bindingOption(func(b *Binding) {
		b.instanceFilter = filter
	})
}

// WithListener overrides the trigger event. Periodic bindings default to
// EventReady; use this to anchor a loop to a custom event instead.
func WithListener(event string) BindingOption {
	return bindingOption(func(b *Binding) {
		b.listener = Topic(event)
	})
}

// WithName overrides the derived handler name used in log traces.
func WithName(name string) BindingOption {
	return bindingOption(func(b *Binding) {
		b.name = name
	})
}

// OnEvent binds a handler to the given event. The event name is normalized
// to its topic, so OnEvent("message", h) fires for Dispatch("message").
func OnEvent(event string, handler Handler, opts ...BindingOption) Binding {
	b := Binding{
		listener: Topic(event),
		name:     handlerName(handler),
		handler:  handler,
	}
	for _, opt := range opts {
		opt.Apply(&b)
	}
	return b
}

// OnReady binds a handler to the synthetic startup event.
func OnReady(handler Handler, opts ...BindingOption) Binding {
	return OnEvent(EventReady, handler, opts...)
}

// Periodic binds a long-lived loop. When the trigger event fires and the
// owning extension is enabled, the interval is resolved through the
// extension's settings chain once and the loop starts: run the handler,
// contain any failure, sleep the interval, repeat. A failing iteration never
// stops the loop.
func Periodic(spec IntervalSpec, handler Handler, opts ...BindingOption) Binding {
	b := Binding{
		listener: EventReady,
		name:     handlerName(handler),
		handler:  handler,
		interval: &spec,
	}
	for _, opt := range opts {
		opt.Apply(&b)
	}
	return b
}

// Cron binds a handler to a quartz cron expression, e.g. "0 */5 * * * *".
// Cron bindings are scheduled when the host starts and need no trigger
// event.
func Cron(expr string, handler Handler) Binding {
	return Binding{
		name:    handlerName(handler),
		handler: handler,
		cron:    expr,
	}
}

// Listener returns the topic that triggers the binding.
func (x Binding) Listener() string {
	return x.listener
}

// Name returns the handler name used in log traces.
func (x Binding) Name() string {
	return x.name
}

// Handler returns the bound task body.
func (x Binding) Handler() Handler {
	return x.handler
}

// Filter returns the event predicate, or nil.
func (x Binding) Filter() Filter {
	return x.filter
}

// InstanceFilter returns the extension-aware predicate, or nil.
func (x Binding) InstanceFilter() InstanceFilter {
	return x.instanceFilter
}

// Interval returns the periodic interval spec, or nil for one-shot
// bindings.
func (x Binding) Interval() *IntervalSpec {
	return x.interval
}

// Cron returns the cron expression, or "" for non-cron bindings.
func (x Binding) Cron() string {
	return x.cron
}

// IsPeriodic reports whether the binding starts a periodic loop.
func (x Binding) IsPeriodic() bool {
	return x.interval != nil
}

// IsCron reports whether the binding is scheduled by cron expression.
func (x Binding) IsCron() bool {
	return x.cron != ""
}

// handlerName derives a trace name from the handler's function name, e.g.
// the method value (*Cleaner).sweep yields "sweep".
func handlerName(handler Handler) string {
	if handler == nil {
		return "<nil>"
	}
	name := runtime.FuncForPC(reflect.ValueOf(handler).Pointer()).Name()
	name = strings.TrimSuffix(name, "-fm")
	if i := strings.LastIndex(name, "."); i >= 0 {
		name = name[i+1:]
	}
	return name
}
