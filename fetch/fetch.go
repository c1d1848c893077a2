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

// Package fetch downloads remote resources with a bounded timeout, a retry
// policy for transient transport failures, and an LRU cache guarded by an
// explicit lock around the fetch-if-absent critical section, so concurrent
// tasks cannot interleave between an earlier task's cache miss and its
// fill.
package fetch

import (
	"context"
	"fmt"
	"io"
	nethttp "net/http"
	"sync"
	"time"

	"github.com/flowchartsman/retry"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/NorthIsUp/cogloop/internal/http"
	"github.com/NorthIsUp/cogloop/log"
)

const (
	// DefaultCacheSize bounds the number of cached resources.
	DefaultCacheSize = 128
	// DefaultTimeout bounds a single request attempt.
	DefaultTimeout = 30 * time.Second
	// defaultMaxRetries bounds attempts for transient transport failures.
	defaultMaxRetries = 3
)

// IncompleteError reports a response outside the 2xx range. It carries the
// failed resource's identity so callers can write an error tombstone
// instead of marking the resource handled.
type IncompleteError struct {
	URL        string
	StatusCode int
}

func (e *IncompleteError) Error() string {
	return fmt.Sprintf("incomplete fetch of %s: status %d", e.URL, e.StatusCode)
}

// Fetcher downloads and caches resources by URL.
type Fetcher struct {
	mu        sync.Mutex
	cache     *lru.Cache[string, []byte]
	client    *nethttp.Client
	cacheSize int
	timeout   time.Duration
	retries   int
	logger    log.Logger
}

// Option configures a Fetcher at construction.
type Option interface {
	// Apply sets the option value on the fetcher.
	Apply(f *Fetcher)
}

// enforce compilation error
var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(*Fetcher)

func (f OptionFunc) Apply(fetcher *Fetcher) {
	f(fetcher)
}

// WithClient sets the HTTP client.
func WithClient(client *nethttp.Client) Option {
	return OptionFunc(func(f *Fetcher) {
		f.client = client
	})
}

// WithCacheSize bounds the LRU cache.
func WithCacheSize(size int) Option {
	return OptionFunc(func(f *Fetcher) {
		f.cacheSize = size
	})
}

// WithTimeout bounds each request attempt.
func WithTimeout(timeout time.Duration) Option {
	return OptionFunc(func(f *Fetcher) {
		f.timeout = timeout
	})
}

// WithRetries sets how many attempts a fetch gets on transient failures.
func WithRetries(retries int) Option {
	return OptionFunc(func(f *Fetcher) {
		f.retries = retries
	})
}

// WithLogger sets the fetcher logger.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(f *Fetcher) {
		f.logger = logger
	})
}

// New builds a Fetcher.
func New(opts ...Option) (*Fetcher, error) {
	f := &Fetcher{
		client:    http.New(),
		cacheSize: DefaultCacheSize,
		timeout:   DefaultTimeout,
		retries:   defaultMaxRetries,
		logger:    log.DefaultLogger,
	}
	for _, opt := range opts {
		opt.Apply(f)
	}
	cache, err := lru.New[string, []byte](f.cacheSize)
	if err != nil {
		return nil, err
	}
	f.cache = cache
	return f, nil
}

// Fetch returns the resource at url, from cache when possible. The lock is
// held across the whole check-fetch-fill cycle: two concurrent fetches of
// the same URL produce one request.
func (x *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	if body, ok := x.cache.Get(url); ok {
		x.logger.Debugf("cache hit for %s", url)
		return body, nil
	}

	body, err := x.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	x.cache.Add(url, body)
	return body, nil
}

// fetch performs the request with the retry policy. Transport errors are
// retried; a non-2xx status is permanent and surfaces as *IncompleteError.
func (x *Fetcher) fetch(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	retrier := retry.NewRetrier(x.retries, 100*time.Millisecond, time.Second)
	err := retrier.RunContext(ctx, func(ctx context.Context) error {
		attemptCtx, cancel := context.WithTimeout(ctx, x.timeout)
		defer cancel()

		req, err := nethttp.NewRequestWithContext(attemptCtx, nethttp.MethodGet, url, nil)
		if err != nil {
			return retry.Stop(err)
		}

		resp, err := x.client.Do(req)
		if err != nil {
			x.logger.Debugf("fetch attempt for %s failed: %v", url, err)
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode < nethttp.StatusOK || resp.StatusCode >= nethttp.StatusMultipleChoices {
			return retry.Stop(&IncompleteError{URL: url, StatusCode: resp.StatusCode})
		}

		body, err = io.ReadAll(resp.Body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
