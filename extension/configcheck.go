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

package extension

// ConfigCheck is the strictness applied to an extension's declared settings
// at registration. With CheckRaise, a declared setting without a default
// that is absent from every chain layer aborts the extension's registration
// and startup.
type ConfigCheck int

const (
	// CheckDisabled skips startup verification.
	CheckDisabled ConfigCheck = iota
	// CheckWarn logs missing settings and registers anyway.
	CheckWarn
	// CheckRaise refuses to register an extension with missing settings.
	CheckRaise
)

// configChecks maps the check levels to their log names.
var configChecks = []string{"disabled", "warn", "raise"}

func (x ConfigCheck) String() string {
	if x < CheckDisabled || x > CheckRaise {
		return "unknown"
	}
	return configChecks[x]
}
