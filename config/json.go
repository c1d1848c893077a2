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
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/NorthIsUp/cogloop/log"
)

// JSONFileSource stores settings in a single JSON document on disk. The
// document is loaded lazily on first access and rewritten atomically after
// every mutation, so the file never holds a partially written document.
//
// Beyond the flat Source contract, the document may hold nested objects:
// View and Update give transactional access to the whole document, and
// SetDefault and UpdateIn manipulate nested namespaces in one step.
type JSONFileSource struct {
	mu     sync.Mutex
	path   string
	loaded bool
	doc    map[string]any
	logger log.Logger
}

var _ Source = (*JSONFileSource)(nil)
var _ KeyLister = (*JSONFileSource)(nil)

// NewJSONFile creates a source backed by the JSON document at path. A
// leading "~/" expands to the user home directory. The file is created with
// an empty document on first load when it does not exist.
func NewJSONFile(path string) *JSONFileSource {
	return &JSONFileSource{
		path:   expandHome(path),
		logger: log.DefaultLogger,
	}
}

// WithLogger sets the logger used for load diagnostics and returns the
// source.
func (x *JSONFileSource) WithLogger(logger log.Logger) *JSONFileSource {
	x.mu.Lock()
	x.logger = logger
	x.mu.Unlock()
	return x
}

// Path returns the backing file path.
func (x *JSONFileSource) Path() string {
	return x.path
}

// Get returns the scalar value stored under the key. Numbers and booleans
// are rendered as strings; nested objects and arrays fail with
// ErrInvalidValue.
func (x *JSONFileSource) Get(_ context.Context, name string) (string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.load(); err != nil {
		return "", err
	}
	raw, ok := x.doc[name]
	if !ok || raw == nil {
		return "", wrapKeyErr(ErrNotFound, name)
	}
	return renderScalar(name, raw)
}

// Set stores the value under the key and rewrites the document.
func (x *JSONFileSource) Set(_ context.Context, name, value string) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.load(); err != nil {
		return err
	}
	x.doc[name] = value
	return x.save()
}

// Keys enumerates the top-level keys of the document.
func (x *JSONFileSource) Keys(_ context.Context) ([]string, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.load(); err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(x.doc))
	for key := range x.doc {
		keys = append(keys, key)
	}
	return keys, nil
}

// View runs fn with read access to the document. The document must not be
// mutated or retained; Update is the write path.
func (x *JSONFileSource) View(fn func(doc map[string]any) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.load(); err != nil {
		return err
	}
	return fn(x.doc)
}

// Update runs fn with write access to the document and rewrites the file
// when fn succeeds. When fn fails the document is reloaded on next access,
// discarding partial mutations.
func (x *JSONFileSource) Update(fn func(doc map[string]any) error) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.load(); err != nil {
		return err
	}
	if err := fn(x.doc); err != nil {
		x.loaded = false
		return err
	}
	return x.save()
}

// SetDefault stores the value under the key unless the key already holds
// one, returning the value that ended up in the document.
func (x *JSONFileSource) SetDefault(name string, value any) (any, error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.load(); err != nil {
		return nil, err
	}
	if existing, ok := x.doc[name]; ok && existing != nil {
		return existing, nil
	}
	x.doc[name] = value
	if err := x.save(); err != nil {
		return nil, err
	}
	return value, nil
}

// UpdateIn merges the given values into the object stored under the
// namespace key, creating the object when absent.
func (x *JSONFileSource) UpdateIn(namespace string, values map[string]any) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if err := x.load(); err != nil {
		return err
	}
	nested, ok := x.doc[namespace].(map[string]any)
	if !ok {
		if existing, present := x.doc[namespace]; present && existing != nil {
			return fmt.Errorf("namespace %s holds a %T, not an object: %w", namespace, existing, ErrInvalidValue)
		}
		nested = make(map[string]any)
		x.doc[namespace] = nested
	}
	for key, value := range values {
		nested[key] = value
	}
	return x.save()
}

// load reads the document from disk once. Callers must hold the mutex.
func (x *JSONFileSource) load() error {
	if x.loaded {
		return nil
	}
	data, err := os.ReadFile(x.path)
	switch {
	case os.IsNotExist(err):
		x.doc = make(map[string]any)
		x.loaded = true
		return x.save()
	case err != nil:
		return fmt.Errorf("reading %s: %w", x.path, err)
	}
	doc := make(map[string]any)
	if err := json.Unmarshal(data, &doc); err != nil {
		x.logger.Warnf("resetting %s: document is not valid JSON: %v", x.path, err)
		doc = make(map[string]any)
	}
	x.doc = doc
	x.loaded = true
	return nil
}

// save rewrites the document atomically. Callers must hold the mutex.
func (x *JSONFileSource) save() error {
	data, err := json.MarshalIndent(x.doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding %s: %w", x.path, err)
	}
	dir := filepath.Dir(x.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating %s: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(x.path)+"-*")
	if err != nil {
		return fmt.Errorf("staging %s: %w", x.path, err)
	}
	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", x.path, err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("writing %s: %w", x.path, err)
	}
	if err := os.Rename(tmp.Name(), x.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replacing %s: %w", x.path, err)
	}
	return nil
}

func (x *JSONFileSource) String() string {
	return "json:" + x.path
}

// renderScalar stringifies a scalar JSON value.
func renderScalar(name string, raw any) (string, error) {
	switch v := raw.(type) {
	case string:
		return v, nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case bool:
		return strconv.FormatBool(v), nil
	case json.Number:
		return v.String(), nil
	default:
		return "", fmt.Errorf("key %s holds a %T, not a scalar: %w", name, raw, ErrInvalidValue)
	}
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
