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
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NorthIsUp/cogloop/extension"
	"github.com/NorthIsUp/cogloop/log"
)

func TestClassify(t *testing.T) {
	group := extension.Group{Name: "fixtures"}
	ctor := extension.Constructor(func(extension.HostContext) (extension.Extension, error) {
		return newRecorder("rec"), nil
	})
	cmd := extension.Command{Name: "ping", Run: func(context.Context, []string) (string, error) { return "pong", nil }}

	cases := []struct {
		name       string
		descriptor extension.Descriptor
		want       outcome
	}{
		{"private name", extension.FromValue("_secret", 42), outcomeIgnored},
		{"foreign origin", extension.FromInstance(newRecorder("rec")).WithOrigin("elsewhere"), outcomeIgnored},
		{"own origin", extension.FromInstance(newRecorder("rec")).WithOrigin("fixtures"), outcomeInstance},
		{"logger value", extension.FromValue("logger", log.DiscardLogger), outcomeIgnored},
		{"group value", extension.FromValue("subgroup", extension.Group{Name: "other"}), outcomeIgnored},
		{"group pointer", extension.FromValue("subgroup", &extension.Group{Name: "other"}), outcomeIgnored},
		{"instance", extension.FromInstance(newRecorder("rec")), outcomeInstance},
		{"constructor", extension.FromConstructor("rec", ctor), outcomeConstruct},
		{"command", extension.FromCommand(cmd), outcomeCommand},
		{"string literal", extension.FromValue("VERSION", "1.0.0"), outcomeSkipped},
		{"int literal", extension.FromValue("LIMIT", 10), outcomeSkipped},
		{"bool literal", extension.FromValue("DEBUG", true), outcomeSkipped},
		{"float literal", extension.FromValue("RATE", 0.5), outcomeSkipped},
		{"nil value", extension.FromValue("nothing", nil), outcomeSkipped},
		{"opaque value", extension.FromValue("client", &http.Client{}), outcomeFallback},
	}
	for _, tc := range cases {
		t.Run("With "+tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, classify(group, tc.descriptor))
		})
	}
}

func TestDiscover(t *testing.T) {
	ctx := context.Background()
	t.Run("With mixed group", func(t *testing.T) {
		rec := newRecorder("rec", "on_message")
		built := newRecorder("built", "on_message")
		group := extension.Group{Name: "fixtures", Symbols: []extension.Descriptor{
			extension.FromValue("_private", 1),
			extension.FromValue("VERSION", "1.0.0"),
			extension.FromInstance(rec),
			extension.FromConstructor("built", func(extension.HostContext) (extension.Extension, error) {
				return built, nil
			}),
			extension.FromCommand(extension.Command{
				Name: "ping",
				Run:  func(context.Context, []string) (string, error) { return "pong", nil },
			}),
		}}

		b := testBot(t, "testbot")
		require.NoError(t, b.Discover(ctx, group))

		_, ok := b.Extension("rec")
		assert.True(t, ok)
		_, ok = b.Extension("built")
		assert.True(t, ok)
		assert.Len(t, b.Extensions(), 2)

		out, err := b.HandleCommand(ctx, "ping")
		require.NoError(t, err)
		assert.Equal(t, "pong", out)
	})
	t.Run("With constructor failure", func(t *testing.T) {
		group := extension.Group{Name: "fixtures", Symbols: []extension.Descriptor{
			extension.FromConstructor("broken", func(extension.HostContext) (extension.Extension, error) {
				return nil, errors.New("no database")
			}),
		}}

		b := testBot(t, "testbot")
		err := b.Discover(ctx, group)
		require.ErrorIs(t, err, ErrExtensionConstruction)
		assert.ErrorContains(t, err, "broken")
	})
	t.Run("With constructor receiving the host", func(t *testing.T) {
		b := testBot(t, "testbot")
		group := extension.Group{Name: "fixtures", Symbols: []extension.Descriptor{
			extension.FromConstructor("rec", func(host extension.HostContext) (extension.Extension, error) {
				assert.Equal(t, "testbot", host.AppName())
				return newRecorder("rec"), nil
			}),
		}}
		require.NoError(t, b.Discover(ctx, group))
	})
	t.Run("With fallback loader", func(t *testing.T) {
		var gotName string
		var gotValue any
		loader := func(_ context.Context, name string, value any) error {
			gotName = name
			gotValue = value
			return nil
		}
		client := &http.Client{}
		group := extension.Group{Name: "fixtures", Symbols: []extension.Descriptor{
			extension.FromValue("client", client),
		}}

		b := testBot(t, "testbot", WithFallbackLoader(loader))
		require.NoError(t, b.Discover(ctx, group))
		assert.Equal(t, "client", gotName)
		assert.Same(t, client, gotValue)
	})
	t.Run("With no fallback loader", func(t *testing.T) {
		group := extension.Group{Name: "fixtures", Symbols: []extension.Descriptor{
			extension.FromValue("client", &http.Client{}),
		}}
		b := testBot(t, "testbot")
		require.NoError(t, b.Discover(ctx, group))
		assert.Empty(t, b.Extensions())
	})
	t.Run("With duplicate across groups", func(t *testing.T) {
		first := extension.Group{Name: "alpha", Symbols: []extension.Descriptor{
			extension.FromInstance(newRecorder("rec")),
		}}
		second := extension.Group{Name: "beta", Symbols: []extension.Descriptor{
			extension.FromInstance(newRecorder("rec")),
		}}

		b := testBot(t, "testbot")
		err := b.Discover(ctx, first, second)
		require.ErrorIs(t, err, ErrDuplicateExtension)
	})
}

func TestManifest(t *testing.T) {
	t.Run("With lexical group order", func(t *testing.T) {
		manifest := NewManifest()
		manifest.Add(extension.Group{Name: "zebra"})
		manifest.Add(extension.Group{Name: "alpha"})
		manifest.Add(extension.Group{Name: "middle"})

		groups := manifest.Groups()
		require.Len(t, groups, 3)
		assert.Equal(t, "alpha", groups[0].Name)
		assert.Equal(t, "middle", groups[1].Name)
		assert.Equal(t, "zebra", groups[2].Name)
	})
	t.Run("With duplicate group", func(t *testing.T) {
		manifest := NewManifest()
		manifest.Add(extension.Group{Name: "alpha"})
		assert.Panics(t, func() {
			manifest.Add(extension.Group{Name: "alpha"})
		})
	})
}

func TestRegister(t *testing.T) {
	ctx := context.Background()
	t.Run("With duplicate name", func(t *testing.T) {
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, newRecorder("rec", "on_message")))
		err := b.Register(ctx, newRecorder("rec", "on_message"))
		require.ErrorIs(t, err, ErrDuplicateExtension)
		assert.ErrorContains(t, err, "rec")
	})
	t.Run("With invalid name", func(t *testing.T) {
		b := testBot(t, "testbot")
		require.ErrorIs(t, b.Register(ctx, newRecorder("$omeN@me")), ErrInvalidName)
	})
	t.Run("With empty name", func(t *testing.T) {
		b := testBot(t, "testbot")
		require.ErrorIs(t, b.Register(ctx, newRecorder("")), ErrNameRequired)
	})
	t.Run("With disabled extension", func(t *testing.T) {
		t.Setenv("TESTBOT__SLEEPY__ENABLED", "false")
		rec := newRecorder("sleepy", "on_message")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, rec))

		// the slot is occupied even though no bindings were made
		_, ok := b.Extension("sleepy")
		assert.True(t, ok)
		require.ErrorIs(t, b.Register(ctx, newRecorder("sleepy")), ErrDuplicateExtension)

		startBot(t, b)
		b.Dispatch(ctx, "on_message", nil)
		assert.Never(t, func() bool { return rec.count() > 0 }, 150*time.Millisecond, 25*time.Millisecond)
	})
}

func TestConfigCheck(t *testing.T) {
	ctx := context.Background()
	t.Run("With raising check and missing settings", func(t *testing.T) {
		b := testBot(t, "testbot")
		err := b.Register(ctx, &strict{name: "vault", level: extension.CheckRaise})
		require.ErrorIs(t, err, ErrMissingSettings)
		assert.ErrorContains(t, err, "TOKEN")
	})
	t.Run("With raising check and satisfied settings", func(t *testing.T) {
		t.Setenv("TESTBOT__VAULT__TOKEN", "hunter2")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, &strict{name: "vault", level: extension.CheckRaise}))
	})
	t.Run("With warning check", func(t *testing.T) {
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, &strict{name: "vault", level: extension.CheckWarn}))
	})
	t.Run("With disabled check", func(t *testing.T) {
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, &strict{name: "vault", level: extension.CheckDisabled}))
	})
	t.Run("With disabled extension skipping the check", func(t *testing.T) {
		t.Setenv("TESTBOT__VAULT__ENABLED", "false")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, &strict{name: "vault", level: extension.CheckRaise}))
	})
}
