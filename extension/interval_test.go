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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NorthIsUp/cogloop/config"
)

func TestParseComponent(t *testing.T) {
	t.Run("With a literal", func(t *testing.T) {
		c, err := ParseComponent("15")
		require.NoError(t, err)
		assert.Equal(t, Lit(15), c)
	})

	t.Run("With a settings reference", func(t *testing.T) {
		c, err := ParseComponent("INTERVAL=15")
		require.NoError(t, err)
		assert.Equal(t, FromConfig("INTERVAL", 15), c)
	})

	t.Run("With a garbage literal", func(t *testing.T) {
		_, err := ParseComponent("soon")
		require.Error(t, err)
	})

	t.Run("With a garbage default", func(t *testing.T) {
		_, err := ParseComponent("INTERVAL=soon")
		require.Error(t, err)
	})

	t.Run("With an empty setting name", func(t *testing.T) {
		_, err := ParseComponent("=15")
		require.Error(t, err)
	})
}

func TestIntervalSpecResolve(t *testing.T) {
	ctx := context.TODO()

	typedEnv := func(t *testing.T, schema config.Schema) *config.TypedChain {
		t.Helper()
		chain := config.NewChain(config.Env())
		return config.NewTyped(chain, schema)
	}

	t.Run("With literal components summed", func(t *testing.T) {
		spec := IntervalSpec{
			Hours:   Lit(1),
			Minutes: Lit(30),
			Seconds: Lit(15),
		}
		d, err := spec.Resolve(ctx, typedEnv(t, config.Schema{}))
		require.NoError(t, err)
		assert.Equal(t, time.Hour+30*time.Minute+15*time.Second, d)
	})

	t.Run("With every calendar unit", func(t *testing.T) {
		spec := IntervalSpec{
			Weeks:        Lit(1),
			Days:         Lit(1),
			Milliseconds: Lit(250),
		}
		d, err := spec.Resolve(ctx, typedEnv(t, config.Schema{}))
		require.NoError(t, err)
		assert.Equal(t, 8*24*time.Hour+250*time.Millisecond, d)
	})

	t.Run("With a configured component", func(t *testing.T) {
		t.Setenv("INTERVAL", "5")
		spec := IntervalSpec{Minutes: FromConfig("INTERVAL", 15)}

		d, err := spec.Resolve(ctx, typedEnv(t, config.Schema{"INTERVAL": {Kind: config.Int}}))
		require.NoError(t, err)
		assert.Equal(t, 5*time.Minute, d)
	})

	t.Run("With the component default on a miss", func(t *testing.T) {
		spec := IntervalSpec{Minutes: FromConfig("INTERVAL", 15)}

		d, err := spec.Resolve(ctx, typedEnv(t, config.Schema{"INTERVAL": {Kind: config.Int}}))
		require.NoError(t, err)
		assert.Equal(t, 15*time.Minute, d)
	})

	t.Run("With an undeclared setting propagating", func(t *testing.T) {
		spec := IntervalSpec{Minutes: FromConfig("INTERVAL", 15)}

		_, err := spec.Resolve(ctx, typedEnv(t, config.Schema{}))
		require.ErrorIs(t, err, config.ErrUndeclaredKey)
	})

	t.Run("With a zero total refused", func(t *testing.T) {
		_, err := IntervalSpec{}.Resolve(ctx, typedEnv(t, config.Schema{}))
		require.ErrorIs(t, err, ErrNonPositiveInterval)
	})
}
