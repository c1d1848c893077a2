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

// Package seen persists dedup-by-id bookkeeping over the JSON state file.
//
// Extensions that process an external feed remember every handled id under
// the "seen" namespace: a first-sight timestamp marks an id handled, an
// "error: <kind>" tombstone records a failure while leaving the id eligible
// for retry. Because the surrounding check-then-mark cycle spans suspension
// points, a counting lock serializes the whole cycle — two tasks can never
// both observe "not yet seen" for the same id and double-process it.
package seen

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/NorthIsUp/cogloop/config"
	"github.com/NorthIsUp/cogloop/log"
)

// Namespace is the default top-level key in the JSON state file.
const Namespace = "seen"

// tombstonePrefix opens every error record.
const tombstonePrefix = "error: "

// Status classifies a record lookup.
type Status int

const (
	// NotYetSeen means the id has never been marked.
	NotYetSeen Status = iota
	// Seen means the id was successfully processed.
	Seen
	// Errored means a previous attempt failed and left a tombstone.
	Errored
)

// statuses maps the status levels to their log names.
var statuses = []string{"not-yet-seen", "seen", "errored"}

func (x Status) String() string {
	if x < NotYetSeen || x > Errored {
		return "unknown"
	}
	return statuses[x]
}

// Record is the parsed state of one id.
type Record struct {
	// Status is the three-state classification.
	Status Status
	// FirstSeen is the first-sight timestamp of a Seen record.
	FirstSeen time.Time
	// Kind names the failure of an Errored record.
	Kind string
	// RetryAfter delays retry of an Errored record. Zero means the id is
	// immediately eligible again.
	RetryAfter time.Time
}

// ShouldProcess reports whether a caller should process the id now. Seen
// records never reprocess; errored records reprocess once their retry time
// has passed (or immediately when none was recorded).
func (x Record) ShouldProcess(now time.Time) bool {
	switch x.Status {
	case Seen:
		return false
	case Errored:
		return x.RetryAfter.IsZero() || !now.Before(x.RetryAfter)
	default:
		return true
	}
}

// TombstoneError marks a processing failure that should be recorded as an
// error tombstone. Store.Once writes the tombstone when fn returns one, so
// callers can turn an incomplete fetch into a scheduled retry:
//
//	return &seen.TombstoneError{Kind: "incomplete", RetryAfter: later}
type TombstoneError struct {
	// Kind names the failure, e.g. "incomplete".
	Kind string
	// RetryAfter optionally delays the retry.
	RetryAfter time.Time
	// Err is the underlying cause, if any.
	Err error
}

func (e *TombstoneError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind
}

func (e *TombstoneError) Unwrap() error {
	return e.Err
}

// Store is the seen-record bookkeeper. All operations serialize on a
// counting lock of weight one, so a check-then-mark cycle can hold it across
// both steps.
type Store struct {
	src       *config.JSONFileSource
	namespace string
	lock      *semaphore.Weighted
	logger    log.Logger
	now       func() time.Time
}

// New builds a store over the given JSON state file under the default
// namespace.
func New(src *config.JSONFileSource) *Store {
	return &Store{
		src:       src,
		namespace: Namespace,
		lock:      semaphore.NewWeighted(1),
		logger:    log.DefaultLogger,
		now:       time.Now,
	}
}

// WithNamespace changes the top-level key records live under.
func (x *Store) WithNamespace(namespace string) *Store {
	x.namespace = namespace
	return x
}

// WithLogger sets the store logger.
func (x *Store) WithLogger(logger log.Logger) *Store {
	x.logger = logger
	return x
}

// WithClock overrides the time source.
func (x *Store) WithClock(now func() time.Time) *Store {
	x.now = now
	return x
}

// Check returns the parsed record for id. Acquiring the lock honors ctx.
func (x *Store) Check(ctx context.Context, id string) (Record, error) {
	if err := x.lock.Acquire(ctx, 1); err != nil {
		return Record{}, err
	}
	defer x.lock.Release(1)
	return x.check(id)
}

// ShouldProcess reports whether id is eligible for processing now.
func (x *Store) ShouldProcess(ctx context.Context, id string) (bool, error) {
	rec, err := x.Check(ctx, id)
	if err != nil {
		return false, err
	}
	return rec.ShouldProcess(x.now()), nil
}

// MarkSeen records the first-sight timestamp for id.
func (x *Store) MarkSeen(ctx context.Context, id string) error {
	if err := x.lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer x.lock.Release(1)
	return x.markSeen(id)
}

// MarkError writes an error tombstone for id. A zero retryAfter leaves the
// id immediately eligible for retry.
func (x *Store) MarkError(ctx context.Context, id, kind string, retryAfter time.Time) error {
	if err := x.lock.Acquire(ctx, 1); err != nil {
		return err
	}
	defer x.lock.Release(1)
	return x.markError(id, kind, retryAfter)
}

// Once runs fn unless id was already processed. The lock is held across the
// whole check-then-run-then-mark cycle. A successful fn marks the id seen;
// a fn returning a *TombstoneError gets its tombstone written; any other
// error leaves the record untouched so a later pass retries. The return
// reports whether fn ran. fn must not call back into the store.
func (x *Store) Once(ctx context.Context, id string, fn func(ctx context.Context) error) (bool, error) {
	if err := x.lock.Acquire(ctx, 1); err != nil {
		return false, err
	}
	defer x.lock.Release(1)

	rec, err := x.check(id)
	if err != nil {
		return false, err
	}
	if !rec.ShouldProcess(x.now()) {
		x.logger.Debugf("skipping %q: %s", id, rec.Status)
		return false, nil
	}

	if err := fn(ctx); err != nil {
		var tombstone *TombstoneError
		if errors.As(err, &tombstone) {
			if markErr := x.markError(id, tombstone.Kind, tombstone.RetryAfter); markErr != nil {
				return true, fmt.Errorf("recording tombstone for %q: %w", id, markErr)
			}
		}
		return true, err
	}
	return true, x.markSeen(id)
}

func (x *Store) check(id string) (Record, error) {
	var raw any
	found := false
	err := x.src.View(func(doc map[string]any) error {
		ns, ok := doc[x.namespace].(map[string]any)
		if !ok {
			return nil
		}
		raw, found = ns[id]
		return nil
	})
	if err != nil {
		return Record{}, err
	}
	if !found {
		return Record{Status: NotYetSeen}, nil
	}
	return parseRecord(raw), nil
}

func (x *Store) markSeen(id string) error {
	stamp := x.now().UTC().Format(time.RFC3339)
	return x.src.UpdateIn(x.namespace, map[string]any{id: stamp})
}

func (x *Store) markError(id, kind string, retryAfter time.Time) error {
	value := tombstonePrefix + kind
	if !retryAfter.IsZero() {
		value += " " + retryAfter.UTC().Format(time.RFC3339)
	}
	return x.src.UpdateIn(x.namespace, map[string]any{id: value})
}

// parseRecord interprets a raw namespace value. Strings hold either a
// first-sight timestamp or an "error: <kind> [retry-after]" tombstone;
// numeric values are epoch seconds written by earlier releases.
func parseRecord(raw any) Record {
	switch v := raw.(type) {
	case string:
		if rest, ok := strings.CutPrefix(v, tombstonePrefix); ok {
			return parseTombstone(rest)
		}
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return Record{Status: Seen, FirstSeen: ts}
		}
		if epoch, err := strconv.ParseFloat(v, 64); err == nil {
			return Record{Status: Seen, FirstSeen: epochTime(epoch)}
		}
		// unrecognized value: the id was marked by something, keep it seen
		return Record{Status: Seen}
	case float64:
		return Record{Status: Seen, FirstSeen: epochTime(v)}
	default:
		return Record{Status: Seen}
	}
}

func parseTombstone(rest string) Record {
	rec := Record{Status: Errored, Kind: rest}
	fields := strings.Fields(rest)
	if len(fields) < 2 {
		return rec
	}
	last := fields[len(fields)-1]
	if ts, err := time.Parse(time.RFC3339, last); err == nil {
		rec.Kind = strings.Join(fields[:len(fields)-1], " ")
		rec.RetryAfter = ts
	}
	return rec
}

func epochTime(epoch float64) time.Time {
	sec := int64(epoch)
	nsec := int64((epoch - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
