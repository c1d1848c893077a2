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
	"errors"
	"fmt"
	"strconv"

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/NorthIsUp/cogloop/log"
)

// loggedDefaults dedups default-used log lines per key per process.
var loggedDefaults = mapset.NewSet[string]()

// TypedChain reads through a chain and coerces raw values against a declared
// schema. Lookups for names the schema does not declare are hard errors, so
// misspelled settings fail loudly instead of silently resolving to nothing.
type TypedChain struct {
	chain  *Chain
	schema Schema
	logger log.Logger
}

// NewTyped creates a typed view over the chain with the given schema.
func NewTyped(chain *Chain, schema Schema) *TypedChain {
	return &TypedChain{
		chain:  chain,
		schema: schema,
		logger: chain.logger,
	}
}

// WithLogger sets the logger used for lookup diagnostics and returns the
// typed chain.
func (x *TypedChain) WithLogger(logger log.Logger) *TypedChain {
	x.logger = logger
	return x
}

// Chain returns the underlying raw chain.
func (x *TypedChain) Chain() *Chain {
	return x.chain
}

// Schema returns the declared schema.
func (x *TypedChain) Schema() Schema {
	return x.schema
}

// Get resolves and coerces the named setting. When every source misses and
// the schema declares a default, the default is returned; otherwise the miss
// propagates as ErrNotFound. Names the schema does not declare fail with
// ErrUndeclaredKey.
func (x *TypedChain) Get(ctx context.Context, name string) (any, error) {
	setting, ok := x.schema[name]
	if !ok {
		return nil, wrapKeyErr(ErrUndeclaredKey, name)
	}
	raw, err := x.chain.Get(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) && setting.Default != nil {
			if loggedDefaults.Add(name) {
				x.logger.Debugf("config %s using declared default", name)
			}
			return setting.Default, nil
		}
		return nil, err
	}
	return coerce(setting.Kind, name, raw)
}

// Set coerce-checks the value against the declared kind, renders it to its
// raw string form and writes it through the chain.
func (x *TypedChain) Set(ctx context.Context, name string, value any) error {
	setting, ok := x.schema[name]
	if !ok {
		return wrapKeyErr(ErrUndeclaredKey, name)
	}
	raw, err := formatValue(setting.Kind, name, value)
	if err != nil {
		return err
	}
	return x.chain.Set(ctx, name, raw)
}

// GetString resolves a setting declared as String.
func (x *TypedChain) GetString(ctx context.Context, name string) (string, error) {
	return typedGet[string](ctx, x, name)
}

// GetInt resolves a setting declared as Int.
func (x *TypedChain) GetInt(ctx context.Context, name string) (int64, error) {
	return typedGet[int64](ctx, x, name)
}

// GetFloat resolves a setting declared as Float.
func (x *TypedChain) GetFloat(ctx context.Context, name string) (float64, error) {
	return typedGet[float64](ctx, x, name)
}

// GetStrings resolves a setting declared as StringList.
func (x *TypedChain) GetStrings(ctx context.Context, name string) ([]string, error) {
	return typedGet[[]string](ctx, x, name)
}

// GetInts resolves a setting declared as IntList.
func (x *TypedChain) GetInts(ctx context.Context, name string) ([]int64, error) {
	return typedGet[[]int64](ctx, x, name)
}

// GetFloats resolves a setting declared as FloatList.
func (x *TypedChain) GetFloats(ctx context.Context, name string) ([]float64, error) {
	return typedGet[[]float64](ctx, x, name)
}

// GetStringSet resolves a setting declared as StringSet.
func (x *TypedChain) GetStringSet(ctx context.Context, name string) (mapset.Set[string], error) {
	return typedGet[mapset.Set[string]](ctx, x, name)
}

// GetIntSet resolves a setting declared as IntSet.
func (x *TypedChain) GetIntSet(ctx context.Context, name string) (mapset.Set[int64], error) {
	return typedGet[mapset.Set[int64]](ctx, x, name)
}

// StringOr resolves a String setting, falling back to def when no source
// holds a value and the schema declares no default. Undeclared names and
// unparseable values still fail.
func (x *TypedChain) StringOr(ctx context.Context, name, def string) (string, error) {
	value, err := x.GetString(ctx, name)
	if errors.Is(err, ErrNotFound) {
		x.logDefault(name)
		return def, nil
	}
	return value, err
}

// IntOr resolves an Int setting, falling back to def when no source holds a
// value and the schema declares no default.
func (x *TypedChain) IntOr(ctx context.Context, name string, def int64) (int64, error) {
	value, err := x.GetInt(ctx, name)
	if errors.Is(err, ErrNotFound) {
		x.logDefault(name)
		return def, nil
	}
	return value, err
}

// FloatOr resolves a Float setting, falling back to def when no source holds
// a value and the schema declares no default.
func (x *TypedChain) FloatOr(ctx context.Context, name string, def float64) (float64, error) {
	value, err := x.GetFloat(ctx, name)
	if errors.Is(err, ErrNotFound) {
		x.logDefault(name)
		return def, nil
	}
	return value, err
}

// BoolOr resolves a String setting and parses it as a boolean, falling back
// to def when no source holds a value and the schema declares no default.
func (x *TypedChain) BoolOr(ctx context.Context, name string, def bool) (bool, error) {
	raw, err := x.StringOr(ctx, name, strconv.FormatBool(def))
	if err != nil {
		return false, err
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("key %s cannot parse %q as bool: %w", name, raw, ErrInvalidValue)
	}
	return value, nil
}

// MissingSettings returns the declared settings that have no default and no
// value in any source, in lexical order. A non-empty result means the
// configuration is incomplete for strict checking.
func (x *TypedChain) MissingSettings(ctx context.Context) ([]string, error) {
	var missing []string
	for _, name := range x.schema.Names() {
		if x.schema[name].Default != nil {
			continue
		}
		_, err := x.chain.Get(ctx, name)
		switch {
		case err == nil:
		case errors.Is(err, ErrNotFound):
			missing = append(missing, name)
		default:
			return nil, err
		}
	}
	return missing, nil
}

func (x *TypedChain) logDefault(name string) {
	if loggedDefaults.Add(name) {
		x.logger.Debugf("config %s using caller default", name)
	}
}

// typedGet narrows the result of Get to the requested Go type.
func typedGet[T any](ctx context.Context, x *TypedChain, name string) (T, error) {
	var zero T
	value, err := x.Get(ctx, name)
	if err != nil {
		return zero, err
	}
	typed, ok := value.(T)
	if !ok {
		return zero, fmt.Errorf("key %s is declared as %s, not %T: %w", name, x.schema[name].Kind, zero, ErrInvalidValue)
	}
	return typed, nil
}
