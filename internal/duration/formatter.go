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

package duration

import (
	"fmt"
	"time"
)

// Elapsed returns a human-readable string for a measured duration, scaled to
// the unit that keeps the number legible: microseconds below one millisecond,
// milliseconds below a tenth of a second, seconds otherwise.
//
// Examples:
//   - 250 * time.Microsecond => "250.00µs"
//   - 42 * time.Millisecond => "42.00ms"
//   - 90 * time.Second => "90.00s"
func Elapsed(d time.Duration) string {
	secs := d.Seconds()
	switch {
	case secs < 0.001:
		return fmt.Sprintf("%.2fµs", secs*1e6)
	case secs < 0.1:
		return fmt.Sprintf("%.2fms", secs*1e3)
	default:
		return fmt.Sprintf("%.2fs", secs)
	}
}
