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

import "strings"

const (
	// EventReady is the synthetic startup event, fired once after discovery
	// and registration complete. It is the default trigger for periodic
	// tasks and for the web host start.
	EventReady = "on_ready"

	// eventPrefix tags every dispatched topic.
	eventPrefix = "on_"
)

// Topic normalizes an event name to its dispatch topic. Custom events
// dispatched bare get the "on_" prefix; names already carrying it pass
// through unchanged, so Dispatch("tinybeans_login") and a binding on
// "on_tinybeans_login" meet on the same topic.
func Topic(event string) string {
	if strings.HasPrefix(event, eventPrefix) {
		return event
	}
	return eventPrefix + event
}

// Event is a dispatched occurrence: a topic plus a free-form payload.
// Handlers receive the same Event value; payloads are read-only by
// convention.
type Event struct {
	// Name is the normalized topic, e.g. "on_ready".
	Name string
	// Payload carries the dispatch arguments keyed by name.
	Payload map[string]any
}

// NewEvent builds an event for the given name, normalizing it to its topic.
func NewEvent(name string, payload map[string]any) Event {
	return Event{Name: Topic(name), Payload: payload}
}

// Value returns the raw payload entry and whether it was present.
func (x Event) Value(key string) (any, bool) {
	v, ok := x.Payload[key]
	return v, ok
}

// String returns the payload entry as a string, or "" when absent or not a
// string.
func (x Event) String(key string) string {
	if v, ok := x.Payload[key].(string); ok {
		return v
	}
	return ""
}

// Int64 returns the payload entry as an int64. Integer and float payloads
// convert; anything else reads as zero.
func (x Event) Int64(key string) int64 {
	switch v := x.Payload[key].(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

// Float64 returns the payload entry as a float64, converting integer
// payloads; anything else reads as zero.
func (x Event) Float64(key string) float64 {
	switch v := x.Payload[key].(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

// Bool returns the payload entry as a bool, or false when absent or not a
// bool.
func (x Event) Bool(key string) bool {
	if v, ok := x.Payload[key].(bool); ok {
		return v
	}
	return false
}
