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
	"strings"

	"github.com/NorthIsUp/cogloop/internal/syncmap"
)

// EnvSource resolves keys against the process environment. Writes land in an
// in-process override layer and never leak into the environment of child
// processes; the override layer also shadows the real environment on reads.
type EnvSource struct {
	overrides *syncmap.SyncMap[string, string]
}

var _ Source = (*EnvSource)(nil)
var _ KeyLister = (*EnvSource)(nil)

// Env creates a source backed by the process environment.
func Env() *EnvSource {
	return &EnvSource{
		overrides: syncmap.New[string, string](),
	}
}

// Get returns the value of the environment variable named by the key.
func (x *EnvSource) Get(_ context.Context, name string) (string, error) {
	if value, ok := x.overrides.Get(name); ok {
		return value, nil
	}
	if value, ok := os.LookupEnv(name); ok {
		return value, nil
	}
	return "", wrapKeyErr(ErrNotFound, name)
}

// Set stores the value in the override layer.
func (x *EnvSource) Set(_ context.Context, name, value string) error {
	x.overrides.Set(name, value)
	return nil
}

// Keys enumerates the names of all environment variables plus overrides.
func (x *EnvSource) Keys(_ context.Context) ([]string, error) {
	seen := make(map[string]struct{})
	keys := make([]string, 0, x.overrides.Len())
	for _, name := range x.overrides.Keys() {
		seen[name] = struct{}{}
		keys = append(keys, name)
	}
	for _, kv := range os.Environ() {
		name, _, ok := strings.Cut(kv, "=")
		if !ok {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		keys = append(keys, name)
	}
	return keys, nil
}

func (x *EnvSource) String() string {
	return "env"
}
