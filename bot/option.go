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
	"time"

	"github.com/NorthIsUp/cogloop/config"
	"github.com/NorthIsUp/cogloop/log"
)

// Option is the interface that applies a configuration option to the Bot.
type Option interface {
	// Apply sets the Option value of a Bot.
	Apply(bot *Bot)
}

var _ Option = OptionFunc(nil)

// OptionFunc implements the Option interface.
type OptionFunc func(bot *Bot)

// Apply applies the Bot's option.
func (f OptionFunc) Apply(bot *Bot) {
	f(bot)
}

// WithLogger sets the logger the host and every extension chain log through.
func WithLogger(logger log.Logger) Option {
	return OptionFunc(func(bot *Bot) {
		bot.logger = logger
	})
}

// WithBaseSources sets the layered base every extension chain is built over,
// highest priority first. The default base is the process environment.
func WithBaseSources(sources ...config.Source) Option {
	return OptionFunc(func(bot *Bot) {
		bot.base = sources
	})
}

// WithManifest sets the manifest Discover reads groups from when called with
// no explicit groups. The default is the package-level manifest populated by
// RegisterGroup.
func WithManifest(manifest *Manifest) Option {
	return OptionFunc(func(bot *Bot) {
		bot.manifest = manifest
	})
}

// WithFallbackLoader sets the hook Discover hands unclassifiable group
// symbols to. Without one, such symbols are logged and dropped.
func WithFallbackLoader(loader FallbackLoader) Option {
	return OptionFunc(func(bot *Bot) {
		bot.fallback = loader
	})
}

// WithStopTimeout bounds how long Stop waits for the cron scheduler and
// in-flight handlers to drain when the caller's context carries no deadline.
func WithStopTimeout(timeout time.Duration) Option {
	return OptionFunc(func(bot *Bot) {
		bot.stopTimeout = timeout
	})
}
