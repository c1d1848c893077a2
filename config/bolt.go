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
	"fmt"
	"os"
	"time"

	bbolt "go.etcd.io/bbolt"
)

const (
	boltFileMode   os.FileMode = 0o600
	boltBucketName             = "settings"
)

var (
	boltTimeout        = 5 * time.Second
	defaultBoltOptions = &bbolt.Options{Timeout: boltTimeout, NoGrowSync: true}
)

// BoltSource stores settings durably in a single-file BoltDB database. All
// keys live in one dedicated bucket. bbolt provides single-writer and
// multi-reader semantics, so the source needs no additional locking.
type BoltSource struct {
	db     *bbolt.DB
	bucket []byte
	path   string
}

var _ Source = (*BoltSource)(nil)
var _ KeyLister = (*BoltSource)(nil)

// NewBolt opens (or creates) the BoltDB database at path. The database is
// opened with a short timeout to avoid blocking on locked files. Closing the
// source closes the underlying database.
func NewBolt(path string) (*BoltSource, error) {
	optionsCopy := *defaultBoltOptions
	db, err := bbolt.Open(expandHome(path), boltFileMode, &optionsCopy)
	if err != nil {
		return nil, fmt.Errorf("opening boltdb: %w", err)
	}

	bucket := []byte(boltBucketName)
	if err := db.Update(func(tx *bbolt.Tx) error {
		_, e := tx.CreateBucketIfNotExists(bucket)
		return e
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initializing boltdb bucket: %w", err)
	}

	return &BoltSource{db: db, bucket: bucket, path: path}, nil
}

// Get returns the value stored under the key.
func (x *BoltSource) Get(_ context.Context, name string) (string, error) {
	var value []byte
	err := x.db.View(func(tx *bbolt.Tx) error {
		raw := tx.Bucket(x.bucket).Get([]byte(name))
		if raw != nil {
			value = make([]byte, len(raw))
			copy(value, raw)
		}
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("boltdb get %s: %w", name, err)
	}
	if value == nil {
		return "", wrapKeyErr(ErrNotFound, name)
	}
	return string(value), nil
}

// Set stores the value under the key.
func (x *BoltSource) Set(_ context.Context, name, value string) error {
	err := x.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(x.bucket).Put([]byte(name), []byte(value))
	})
	if err != nil {
		return fmt.Errorf("boltdb set %s: %w", name, err)
	}
	return nil
}

// SetDefault stores the value under the key unless the key already holds
// one, returning the value that ended up in the database.
func (x *BoltSource) SetDefault(_ context.Context, name, value string) (string, error) {
	result := value
	err := x.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(x.bucket)
		if existing := bucket.Get([]byte(name)); existing != nil {
			result = string(existing)
			return nil
		}
		return bucket.Put([]byte(name), []byte(value))
	})
	if err != nil {
		return "", fmt.Errorf("boltdb setdefault %s: %w", name, err)
	}
	return result, nil
}

// Keys enumerates every key in the settings bucket.
func (x *BoltSource) Keys(_ context.Context) ([]string, error) {
	var keys []string
	err := x.db.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(x.bucket).ForEach(func(k, _ []byte) error {
			keys = append(keys, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("boltdb keys: %w", err)
	}
	return keys, nil
}

// Close closes the underlying database.
func (x *BoltSource) Close() error {
	return x.db.Close()
}

func (x *BoltSource) String() string {
	return "boltdb:" + x.path
}
