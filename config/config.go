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

// Package config implements layered, typed, prefix-scoped configuration
// resolution. Values are looked up by setting name through a chain of
// sources; each source stores plain strings and a typed layer coerces them
// against a declared schema.
package config

import (
	"context"
	"errors"
	"os"
	"strings"
	"unicode"
)

var (
	// ErrNotFound is returned when no source holds a value for the key.
	ErrNotFound = errors.New("config key not found")
	// ErrUndeclaredKey is returned when a typed lookup names a setting that
	// the schema does not declare.
	ErrUndeclaredKey = errors.New("config key not declared in schema")
	// ErrInvalidValue is returned when a raw value cannot be coerced to the
	// declared kind.
	ErrInvalidValue = errors.New("config value is invalid")
	// ErrReadOnly is returned by sources that do not accept writes.
	ErrReadOnly = errors.New("config source is read-only")
)

// Separator joins prefix segments in fully qualified keys.
const Separator = "__"

// prefixOverrideSuffix names the bootstrap environment variable that
// overrides the process prefix: <APP>_CONFIG_PREFIX.
const prefixOverrideSuffix = "_CONFIG_PREFIX"

// Key is a fully qualified configuration key, such as
// "MYAPP__CLEANER__CHANNELS".
type Key string

// String returns the key as a plain string.
func (k Key) String() string {
	return string(k)
}

// Source resolves and stores raw string values by key. Implementations must
// be safe for concurrent use.
type Source interface {
	// Get returns the raw value stored under the key, or an error wrapping
	// ErrNotFound when the source holds no value for it.
	Get(ctx context.Context, name string) (string, error)
	// Set stores the raw value under the key, or returns an error wrapping
	// ErrReadOnly when the source does not accept writes.
	Set(ctx context.Context, name, value string) error
}

// KeyLister is implemented by sources that can enumerate their keys.
type KeyLister interface {
	Keys(ctx context.Context) ([]string, error)
}

// Join uppercases the given segments and joins them with the separator.
func Join(segments ...string) Key {
	return Key(strings.ToUpper(strings.Join(segments, Separator)))
}

// ScreamingSnake converts a CamelCase name to SCREAMING_SNAKE_CASE. An
// underscore is inserted before every run of capitals that does not open the
// name; a run that does open the name keeps its first letter bare and gains
// the underscore after it, mirroring how acronym-led names split.
//
// Examples:
//   - "MyExt" => "MY_EXT"
//   - "Cleaner" => "CLEANER"
//   - "ServerHTTP" => "SERVER_HTTP"
//   - "ABCDef" => "A_BCDEF"
func ScreamingSnake(name string) string {
	runes := []rune(name)
	var b strings.Builder
	b.Grow(len(name) + 4)
	for i, r := range runes {
		if unicode.IsUpper(r) && i > 0 {
			runStart := !unicode.IsUpper(runes[i-1])
			afterBlockedStart := i == 1 && unicode.IsUpper(runes[0])
			if runStart || afterBlockedStart {
				b.WriteRune('_')
			}
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// ResolvePrefix returns the configuration prefix for an application name.
// The prefix defaults to the SCREAMING_SNAKE_CASE form of the name and can
// be overridden at bootstrap with the <APP>_CONFIG_PREFIX environment
// variable.
func ResolvePrefix(appName string) string {
	snake := ScreamingSnake(appName)
	if override, ok := os.LookupEnv(snake + prefixOverrideSuffix); ok && override != "" {
		return strings.ToUpper(override)
	}
	return snake
}

// ReadOnly wraps a source so that writes fail with ErrReadOnly while reads
// pass through.
func ReadOnly(src Source) Source {
	return &readOnlySource{inner: src}
}

type readOnlySource struct {
	inner Source
}

var _ Source = (*readOnlySource)(nil)

func (x *readOnlySource) Get(ctx context.Context, name string) (string, error) {
	return x.inner.Get(ctx, name)
}

func (x *readOnlySource) Set(_ context.Context, name, _ string) error {
	return wrapKeyErr(ErrReadOnly, name)
}

func (x *readOnlySource) Keys(ctx context.Context) ([]string, error) {
	if lister, ok := x.inner.(KeyLister); ok {
		return lister.Keys(ctx)
	}
	return nil, nil
}

func (x *readOnlySource) String() string {
	return "readonly(" + sourceName(x.inner) + ")"
}

// wrapKeyErr attaches the offending key to a sentinel error.
func wrapKeyErr(sentinel error, name string) error {
	return &keyError{key: name, err: sentinel}
}

type keyError struct {
	key string
	err error
}

func (e *keyError) Error() string {
	return e.err.Error() + ": " + e.key
}

func (e *keyError) Unwrap() error {
	return e.err
}

// sourceName renders a source for log lines.
func sourceName(src Source) string {
	if s, ok := src.(interface{ String() string }); ok {
		return s.String()
	}
	return "source"
}
