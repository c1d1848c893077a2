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

	mapset "github.com/deckarep/golang-set/v2"

	"github.com/NorthIsUp/cogloop/log"
)

// loggedLookups dedups lookup outcome log lines per key per process, so a
// handler polling a missing key does not flood the log.
var loggedLookups = mapset.NewSet[string]()

// Chain resolves keys through an ordered list of sources: the first source
// holding a value wins. Writes land in the first source that accepts them.
type Chain struct {
	sources []Source
	logger  log.Logger
}

var _ Source = (*Chain)(nil)
var _ KeyLister = (*Chain)(nil)

// NewChain creates a resolution chain over the given sources, consulted in
// order.
func NewChain(sources ...Source) *Chain {
	return &Chain{
		sources: sources,
		logger:  log.DefaultLogger,
	}
}

// WithLogger sets the logger used for lookup diagnostics and returns the
// chain.
func (x *Chain) WithLogger(logger log.Logger) *Chain {
	x.logger = logger
	return x
}

// Sources returns the chain members in consultation order.
func (x *Chain) Sources() []Source {
	return x.sources
}

// Get resolves the key through the chain. A source miss moves on to the next
// source; any other failure stops the lookup. When every source misses, the
// miss is logged at most once per key per process and ErrNotFound is
// returned.
func (x *Chain) Get(ctx context.Context, name string) (string, error) {
	for _, source := range x.sources {
		value, err := source.Get(ctx, name)
		switch {
		case err == nil:
			if loggedLookups.Add(name) {
				x.logger.Debugf("config %s resolved from %s", name, sourceName(source))
			}
			return value, nil
		case errors.Is(err, ErrNotFound):
			continue
		default:
			return "", err
		}
	}
	if loggedLookups.Add(name) {
		x.logger.Debugf("config %s not found in any source", name)
	}
	return "", wrapKeyErr(ErrNotFound, name)
}

// Set stores the value in the first source that accepts writes.
func (x *Chain) Set(ctx context.Context, name, value string) error {
	for _, source := range x.sources {
		err := source.Set(ctx, name, value)
		if errors.Is(err, ErrReadOnly) {
			continue
		}
		return err
	}
	return wrapKeyErr(ErrReadOnly, name)
}

// Keys enumerates the union of keys across all chain members that can
// enumerate.
func (x *Chain) Keys(ctx context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	var keys []string
	for _, source := range x.sources {
		lister, ok := source.(KeyLister)
		if !ok {
			continue
		}
		names, err := lister.Keys(ctx)
		if err != nil {
			return nil, err
		}
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			keys = append(keys, name)
		}
	}
	return keys, nil
}

func (x *Chain) String() string {
	return "chain"
}
