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
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/NorthIsUp/cogloop/extension"
	"github.com/NorthIsUp/cogloop/internal/syncmap"
	"github.com/NorthIsUp/cogloop/internal/validation"
	"github.com/NorthIsUp/cogloop/log"
)

// webHost owns the process-wide HTTP listener shared by every route-providing
// extension. Each extension claims a unique url root; starting the listener
// is a one-time transition raced by the ready handlers of every provider, so
// it is gated by a semaphore and flagged once done.
type webHost struct {
	echo    *echo.Echo
	roots   *syncmap.SyncMap[string, string]
	gate    *semaphore.Weighted
	started *atomic.Bool
	ln      net.Listener
	logger  log.Logger
}

func newWebHost(logger log.Logger) *webHost {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	return &webHost{
		echo:    e,
		roots:   syncmap.New[string, string](),
		gate:    semaphore.NewWeighted(1),
		started: atomic.NewBool(false),
		logger:  logger.Named("web"),
	}
}

// mount claims the url root for the named extension and registers its routes
// under /<root>/<path>/. Roots and paths are single segments; surrounding
// slashes are stripped and embedded ones refused.
func (x *webHost) mount(owner, urlRoot string, routes []extension.Route) error {
	root := strings.Trim(urlRoot, "/")
	if root == "" {
		return fmt.Errorf("%w: extension %s", ErrEmptyURLRoot, owner)
	}
	if strings.Contains(root, "/") {
		return fmt.Errorf("%w: %q", ErrInvalidURLRoot, root)
	}
	if holder, loaded := x.roots.GetOrSet(root, owner); loaded {
		return fmt.Errorf("%w: %q is held by %s", ErrDuplicateURLRoot, root, holder)
	}

	group := x.echo.Group("/" + root)
	for _, route := range routes {
		path := strings.Trim(route.Path, "/")
		if strings.Contains(path, "/") {
			return fmt.Errorf("%w: route path %q", ErrInvalidURLRoot, route.Path)
		}
		group.Add(route.Method, "/"+path+"/", route.Handler)
		x.logger.Debugf("[%s] adding route: %s /%s/%s/", owner, route.Method, root, path)
	}
	return nil
}

// start performs the one-time listener binding. Only the first caller binds
// the socket; every later call logs and returns once the gate admits it.
func (x *webHost) start(ctx context.Context, host string, port int64) error {
	if err := x.gate.Acquire(ctx, 1); err != nil {
		return err
	}
	defer x.gate.Release(1)

	if x.started.Load() {
		x.logger.Info("site already started")
		return nil
	}

	address := net.JoinHostPort(host, strconv.FormatInt(port, 10))
	if err := validation.NewTCPAddressValidator(address).Validate(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	x.ln = ln
	x.echo.Listener = ln
	go func() {
		if err := x.echo.Start(""); err != nil && !errors.Is(err, http.ErrServerClosed) {
			x.logger.Errorf("site terminated: %v", err)
		}
	}()
	x.started.Store(true)
	x.logger.Infof("started site on %s", address)
	return nil
}

// shutdown stops the listener. Calling it when the site never started is a
// no-op.
func (x *webHost) shutdown(ctx context.Context) error {
	if !x.started.CompareAndSwap(true, false) {
		return nil
	}
	x.logger.Info("stopping site")
	return x.echo.Shutdown(ctx)
}

// addr reports the bound listener address, empty before start.
func (x *webHost) addr() string {
	if !x.started.Load() || x.ln == nil {
		return ""
	}
	return x.ln.Addr().String()
}
