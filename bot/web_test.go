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
	"fmt"
	"io"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/travisjeffery/go-dynaport"
)

func TestWeb(t *testing.T) {
	ctx := context.Background()
	t.Run("With routes served", func(t *testing.T) {
		ports := dynaport.Get(1)
		t.Setenv("TESTBOT__PAGES__HOST", "127.0.0.1")
		t.Setenv("TESTBOT__PAGES__PORT", strconv.Itoa(ports[0]))

		ext := newPages("pages", "pages")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, ext))
		startBot(t, b)

		require.Eventually(t, func() bool { return b.web.addr() != "" }, time.Second, 10*time.Millisecond)

		body := getBody(t, fmt.Sprintf("http://%s/pages/status/", b.web.addr()))
		assert.Equal(t, "ok", body)
		assert.EqualValues(t, 1, ext.hits.Load())
	})
	t.Run("With slashes trimmed from the url root", func(t *testing.T) {
		ports := dynaport.Get(1)
		t.Setenv("TESTBOT__DOCS__HOST", "127.0.0.1")
		t.Setenv("TESTBOT__DOCS__PORT", strconv.Itoa(ports[0]))

		ext := newPages("docs", "/docs/")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, ext))
		startBot(t, b)

		require.Eventually(t, func() bool { return b.web.addr() != "" }, time.Second, 10*time.Millisecond)
		assert.Equal(t, "ok", getBody(t, fmt.Sprintf("http://%s/docs/status/", b.web.addr())))
	})
	t.Run("With one listener shared across providers", func(t *testing.T) {
		ports := dynaport.Get(1)
		t.Setenv("TESTBOT__HOST", "127.0.0.1")
		t.Setenv("TESTBOT__PORT", strconv.Itoa(ports[0]))

		alpha := newPages("alpha", "alpha")
		beta := newPages("beta", "beta")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, alpha))
		require.NoError(t, b.Register(ctx, beta))
		startBot(t, b)

		// both start handlers race on the ready event; the second is a no-op
		// and both roots come up on the single listener
		require.Eventually(t, func() bool { return b.web.addr() != "" }, time.Second, 10*time.Millisecond)
		assert.Equal(t, "ok", getBody(t, fmt.Sprintf("http://%s/alpha/status/", b.web.addr())))
		assert.Equal(t, "ok", getBody(t, fmt.Sprintf("http://%s/beta/status/", b.web.addr())))
	})
	t.Run("With duplicate url root", func(t *testing.T) {
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, newPages("original", "shared")))
		err := b.Register(ctx, newPages("squatter", "shared"))
		require.ErrorIs(t, err, ErrDuplicateURLRoot)
		assert.ErrorContains(t, err, "original")
	})
	t.Run("With invalid url root", func(t *testing.T) {
		b := testBot(t, "testbot")
		require.ErrorIs(t, b.Register(ctx, newPages("bad", "a/b")), ErrInvalidURLRoot)
		require.ErrorIs(t, b.Register(ctx, newPages("empty", "")), ErrEmptyURLRoot)
		require.ErrorIs(t, b.Register(ctx, newPages("slashes", "///")), ErrEmptyURLRoot)
	})
	t.Run("With disabled provider left unmounted", func(t *testing.T) {
		t.Setenv("TESTBOT__GHOST__ENABLED", "false")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, newPages("ghost", "ghost")))
		startBot(t, b)

		// nothing mounted and nothing bound to the ready event, so the site
		// never comes up
		assert.Never(t, func() bool { return b.web.addr() != "" }, 150*time.Millisecond, 25*time.Millisecond)
	})
	t.Run("With stop closing the listener", func(t *testing.T) {
		ports := dynaport.Get(1)
		t.Setenv("TESTBOT__PAGES__HOST", "127.0.0.1")
		t.Setenv("TESTBOT__PAGES__PORT", strconv.Itoa(ports[0]))

		ext := newPages("pages", "pages")
		b := testBot(t, "testbot")
		require.NoError(t, b.Register(ctx, ext))
		startBot(t, b)

		require.Eventually(t, func() bool { return b.web.addr() != "" }, time.Second, 10*time.Millisecond)
		address := b.web.addr()
		assert.Equal(t, "ok", getBody(t, fmt.Sprintf("http://%s/pages/status/", address)))

		require.NoError(t, b.Stop(context.Background()))
		client := http.Client{Timeout: 500 * time.Millisecond}
		_, err := client.Get(fmt.Sprintf("http://%s/pages/status/", address)) // nolint
		require.Error(t, err)
		client.CloseIdleConnections()
	})
}

// getBody fetches the url and returns the response body, requiring a 200.
func getBody(t *testing.T, url string) string {
	t.Helper()
	client := http.Client{Timeout: time.Second}
	t.Cleanup(client.CloseIdleConnections)
	resp, err := client.Get(url)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())
	require.Equal(t, http.StatusOK, resp.StatusCode)
	return string(body)
}
