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
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBase(t *testing.T) {
	t.Run("With eager wiring at construction", func(t *testing.T) {
		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)

		assert.Same(t, host, g.Host())
		require.NotNil(t, g.Config())
		require.NotNil(t, g.Settings())
		require.NotNil(t, g.Logger())
	})

	t.Run("With settings resolved through the extension scope", func(t *testing.T) {
		t.Setenv("TESTAPP__GREETER__GREETING", "hi there")

		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)

		value, err := g.Settings().GetString(context.TODO(), "GREETING")
		require.NoError(t, err)
		assert.Equal(t, "hi there", value)
	})

	t.Run("With the schema default on a miss", func(t *testing.T) {
		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)

		value, err := g.Settings().GetString(context.TODO(), "GREETING")
		require.NoError(t, err)
		assert.Equal(t, "hello", value)
	})

	t.Run("With dispatch reaching the host", func(t *testing.T) {
		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)

		g.Dispatch(context.TODO(), "greeted", map[string]any{"who": "world"})

		events := host.events()
		require.Len(t, events, 1)
		assert.Equal(t, "on_greeted", events[0].Name)
		assert.Equal(t, "world", events[0].String("who"))
	})
}

func TestEnabled(t *testing.T) {
	ctx := context.TODO()

	t.Run("With the injected default", func(t *testing.T) {
		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)
		assert.True(t, g.Enabled(ctx))
	})

	t.Run("With an explicit off switch", func(t *testing.T) {
		t.Setenv("TESTAPP__GREETER__ENABLED", "false")

		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)
		assert.False(t, g.Enabled(ctx))
	})

	t.Run("With an unparseable switch treated as off", func(t *testing.T) {
		t.Setenv("TESTAPP__GREETER__ENABLED", "maybe")

		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)
		assert.False(t, g.Enabled(ctx))
	})

	t.Run("With the process scope flipping the switch", func(t *testing.T) {
		t.Setenv("TESTAPP__ENABLED", "0")

		host := newTestHost()
		g, err := newGreeter(host)
		require.NoError(t, err)
		assert.False(t, g.Enabled(ctx))
	})
}
