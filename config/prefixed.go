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
	"strings"
)

// Prefixed scopes another source under a prefix: every logical setting name
// is qualified with the prefix before it is delegated. Two Prefixed sources
// with equal effective prefixes over the same inner source are
// interchangeable.
type Prefixed struct {
	prefix string
	inner  Source
}

var _ Source = (*Prefixed)(nil)
var _ KeyLister = (*Prefixed)(nil)

// NewPrefixed creates a prefix-scoped view over the inner source. Segments
// are joined and uppercased, so NewPrefixed(inner, "MyApp", "Cleaner")
// qualifies "CHANNELS" as "MYAPP__CLEANER__CHANNELS".
func NewPrefixed(inner Source, segments ...string) *Prefixed {
	return &Prefixed{
		prefix: Join(segments...).String(),
		inner:  inner,
	}
}

// Prefix returns the effective prefix.
func (x *Prefixed) Prefix() string {
	return x.prefix
}

// Qualify returns the fully qualified key for a setting name. A name that
// already carries the prefix is returned unchanged, so qualifying an
// already-qualified key is the identity.
func (x *Prefixed) Qualify(name string) Key {
	if name == x.prefix || strings.HasPrefix(name, x.prefix+Separator) {
		return Key(name)
	}
	return Join(x.prefix, name)
}

// Get resolves the qualified form of the name against the inner source.
func (x *Prefixed) Get(ctx context.Context, name string) (string, error) {
	return x.inner.Get(ctx, x.Qualify(name).String())
}

// Set stores the value under the qualified form of the name.
func (x *Prefixed) Set(ctx context.Context, name, value string) error {
	return x.inner.Set(ctx, x.Qualify(name).String(), value)
}

// Keys enumerates the inner source keys that carry the prefix. Sources that
// cannot enumerate yield no keys.
func (x *Prefixed) Keys(ctx context.Context) ([]string, error) {
	lister, ok := x.inner.(KeyLister)
	if !ok {
		return nil, nil
	}
	all, err := lister.Keys(ctx)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(all))
	for _, key := range all {
		if strings.HasPrefix(key, x.prefix+Separator) {
			keys = append(keys, key)
		}
	}
	return keys, nil
}

func (x *Prefixed) String() string {
	return "prefix(" + x.prefix + ", " + sourceName(x.inner) + ")"
}
