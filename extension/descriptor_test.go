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

func TestDescriptor(t *testing.T) {
	t.Run("With an instance symbol", func(t *testing.T) {
		g, err := newGreeter(newTestHost())
		require.NoError(t, err)

		d := FromInstance(g)
		assert.Equal(t, "Greeter", d.Name())

		ext, ok := d.Instance()
		require.True(t, ok)
		assert.Same(t, g, ext)

		_, ok = d.Constructor()
		assert.False(t, ok)
	})

	t.Run("With a constructor symbol", func(t *testing.T) {
		d := FromConstructor("Greeter", func(host HostContext) (Extension, error) {
			return newGreeter(host)
		})
		assert.Equal(t, "Greeter", d.Name())

		ctor, ok := d.Constructor()
		require.True(t, ok)

		ext, err := ctor(newTestHost())
		require.NoError(t, err)
		assert.Equal(t, "Greeter", ext.Name())
	})

	t.Run("With a command symbol", func(t *testing.T) {
		d := FromCommand(Command{
			Name: "ping",
			Help: "replies with pong",
			Run: func(context.Context, []string) (string, error) {
				return "pong", nil
			},
		})
		assert.Equal(t, "ping", d.Name())

		cmd, ok := d.Command()
		require.True(t, ok)

		reply, err := cmd.Run(context.TODO(), nil)
		require.NoError(t, err)
		assert.Equal(t, "pong", reply)
	})

	t.Run("With a value symbol", func(t *testing.T) {
		d := FromValue("answer", 42)
		v, ok := d.Value()
		require.True(t, ok)
		assert.Equal(t, 42, v)
	})

	t.Run("With an origin tag", func(t *testing.T) {
		d := FromValue("helper", "x").WithOrigin("toolkit")
		assert.Equal(t, "toolkit", d.Origin())
		assert.Empty(t, FromValue("helper", "x").Origin())
	})
}

func TestConfigCheckString(t *testing.T) {
	assert.Equal(t, "disabled", CheckDisabled.String())
	assert.Equal(t, "warn", CheckWarn.String())
	assert.Equal(t, "raise", CheckRaise.String())
	assert.Equal(t, "unknown", ConfigCheck(99).String())
}
