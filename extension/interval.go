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
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/NorthIsUp/cogloop/config"
)

// ErrNonPositiveInterval is returned by IntervalSpec.Resolve when the
// components sum to zero or less. A loop on such an interval would spin.
var ErrNonPositiveInterval = errors.New("interval must be positive")

// Component is one term of an interval: either a literal amount or a
// reference into the extension's settings chain with a fallback. The zero
// value is the literal 0.
type Component struct {
	key   string
	value int64
}

// Lit builds a literal component.
func Lit(n int64) Component {
	return Component{value: n}
}

// FromConfig builds a component read from the extension's typed chain under
// the given key, falling back to def when the key is absent from every
// layer. The key must be declared in the extension's schema.
func FromConfig(key string, def int64) Component {
	return Component{key: key, value: def}
}

// ParseComponent accepts the string forms "15" (literal) and "INTERVAL=15"
// (read key INTERVAL, default 15).
func ParseComponent(s string) (Component, error) {
	if key, def, ok := strings.Cut(s, "="); ok {
		if key = strings.TrimSpace(key); key == "" {
			return Component{}, fmt.Errorf("interval component %q: empty setting name", s)
		}
		n, err := strconv.ParseInt(strings.TrimSpace(def), 10, 64)
		if err != nil {
			return Component{}, fmt.Errorf("interval component %q: %w", s, err)
		}
		return FromConfig(key, n), nil
	}
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return Component{}, fmt.Errorf("interval component %q: %w", s, err)
	}
	return Lit(n), nil
}

// resolve produces the component's amount, reading referenced settings
// through the typed chain.
func (x Component) resolve(ctx context.Context, typed *config.TypedChain) (int64, error) {
	if x.key == "" {
		return x.value, nil
	}
	return typed.IntOr(ctx, x.key, x.value)
}

// IntervalSpec is a duration expressed as a sum of calendar components.
// Each component may be a literal or a settings reference, so a deployment
// can retune a loop's cadence without a code change:
//
//	extension.Periodic(extension.IntervalSpec{
//		Minutes: extension.FromConfig("INTERVAL", 15),
//	}, x.sync)
type IntervalSpec struct {
	Weeks        Component
	Days         Component
	Hours        Component
	Minutes      Component
	Seconds      Component
	Milliseconds Component
}

// Resolve computes the total duration, reading referenced components
// through the given typed chain. The scheduler calls it when the trigger
// event fires, not at bind time, so the configuration in effect at runtime
// start governs the cadence.
func (x IntervalSpec) Resolve(ctx context.Context, typed *config.TypedChain) (time.Duration, error) {
	terms := []struct {
		component Component
		unit      time.Duration
	}{
		{x.Weeks, 7 * 24 * time.Hour},
		{x.Days, 24 * time.Hour},
		{x.Hours, time.Hour},
		{x.Minutes, time.Minute},
		{x.Seconds, time.Second},
		{x.Milliseconds, time.Millisecond},
	}

	var total time.Duration
	for _, term := range terms {
		n, err := term.component.resolve(ctx, typed)
		if err != nil {
			return 0, err
		}
		total += time.Duration(n) * term.unit
	}
	if total <= 0 {
		return 0, fmt.Errorf("%w: resolved %s", ErrNonPositiveInterval, total)
	}
	return total, nil
}
