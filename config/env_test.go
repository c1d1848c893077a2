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

package config

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvSource(t *testing.T) {
	ctx := context.TODO()

	t.Run("With a value from the process environment", func(t *testing.T) {
		t.Setenv("ENV_SOURCE_PRESENT", "hello")
		env := Env()

		value, err := env.Get(ctx, "ENV_SOURCE_PRESENT")
		require.NoError(t, err)
		assert.Equal(t, "hello", value)
	})

	t.Run("With a missing variable", func(t *testing.T) {
		env := Env()
		_, err := env.Get(ctx, "ENV_SOURCE_ABSENT")
		require.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "ENV_SOURCE_ABSENT")
	})

	t.Run("With overrides shadowing the environment", func(t *testing.T) {
		t.Setenv("ENV_SOURCE_SHADOWED", "original")
		env := Env()
		require.NoError(t, env.Set(ctx, "ENV_SOURCE_SHADOWED", "override"))

		value, err := env.Get(ctx, "ENV_SOURCE_SHADOWED")
		require.NoError(t, err)
		assert.Equal(t, "override", value)
	})

	t.Run("With overrides not leaking into the process environment", func(t *testing.T) {
		env := Env()
		require.NoError(t, env.Set(ctx, "ENV_SOURCE_CONTAINED", "yes"))

		_, present := os.LookupEnv("ENV_SOURCE_CONTAINED")
		assert.False(t, present)
	})

	t.Run("With keys listing environment and overrides", func(t *testing.T) {
		t.Setenv("ENV_SOURCE_LISTED", "yes")
		env := Env()
		require.NoError(t, env.Set(ctx, "ENV_SOURCE_OVERRIDE_LISTED", "yes"))

		keys, err := env.Keys(ctx)
		require.NoError(t, err)
		assert.Contains(t, keys, "ENV_SOURCE_LISTED")
		assert.Contains(t, keys, "ENV_SOURCE_OVERRIDE_LISTED")
	})
}
