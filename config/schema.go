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
	"fmt"
	"sort"
	"strconv"
	"strings"

	mapset "github.com/deckarep/golang-set/v2"
)

// Kind enumerates the value shapes a typed setting can declare. Collection
// kinds parse comma-separated raw strings; elements are trimmed and empty
// elements are dropped, so an empty raw string parses to an empty
// collection.
type Kind int

const (
	// String passes the raw value through.
	String Kind = iota
	// Int parses a 64-bit integer.
	Int
	// Float parses a 64-bit float.
	Float
	// StringList parses a comma-separated list of strings.
	StringList
	// IntList parses a comma-separated list of 64-bit integers.
	IntList
	// FloatList parses a comma-separated list of 64-bit floats.
	FloatList
	// StringSet parses a comma-separated list into a set of strings.
	StringSet
	// IntSet parses a comma-separated list into a set of 64-bit integers.
	IntSet
)

var kindNames = map[Kind]string{
	String:     "string",
	Int:        "int",
	Float:      "float",
	StringList: "string list",
	IntList:    "int list",
	FloatList:  "float list",
	StringSet:  "string set",
	IntSet:     "int set",
}

// String returns the kind name.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

// Setting declares the kind of one typed setting, with an optional default
// used when no source holds a value. A nil Default marks the setting as
// required for strict schema checking.
type Setting struct {
	Kind    Kind
	Default any
}

// Schema declares the typed settings an extension understands, keyed by
// setting name.
type Schema map[string]Setting

// Clone returns a shallow copy of the schema.
func (s Schema) Clone() Schema {
	clone := make(Schema, len(s))
	for name, setting := range s {
		clone[name] = setting
	}
	return clone
}

// Merge returns a schema holding the receiver's entries plus entries from
// other for names the receiver does not declare.
func (s Schema) Merge(other Schema) Schema {
	merged := s.Clone()
	for name, setting := range other {
		if _, ok := merged[name]; !ok {
			merged[name] = setting
		}
	}
	return merged
}

// Names returns the declared setting names in lexical order.
func (s Schema) Names() []string {
	names := make([]string, 0, len(s))
	for name := range s {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// coerce parses a raw string into the declared kind.
func coerce(kind Kind, name, raw string) (any, error) {
	switch kind {
	case String:
		return raw, nil
	case Int:
		value, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			return nil, coerceErr(kind, name, raw)
		}
		return value, nil
	case Float:
		value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			return nil, coerceErr(kind, name, raw)
		}
		return value, nil
	case StringList:
		return splitList(raw), nil
	case IntList:
		return parseInts(kind, name, raw)
	case FloatList:
		return parseFloats(kind, name, raw)
	case StringSet:
		return mapset.NewSet(splitList(raw)...), nil
	case IntSet:
		values, err := parseInts(kind, name, raw)
		if err != nil {
			return nil, err
		}
		return mapset.NewSet(values...), nil
	default:
		return nil, fmt.Errorf("key %s declared with unknown kind %d: %w", name, kind, ErrInvalidValue)
	}
}

// formatValue renders a typed value back into the raw string form that
// coerce accepts. Sets are rendered in sorted order for determinism.
func formatValue(kind Kind, name string, value any) (string, error) {
	switch kind {
	case String:
		if s, ok := value.(string); ok {
			return s, nil
		}
	case Int:
		if i, ok := asInt64(value); ok {
			return strconv.FormatInt(i, 10), nil
		}
	case Float:
		if f, ok := value.(float64); ok {
			return strconv.FormatFloat(f, 'f', -1, 64), nil
		}
	case StringList:
		if values, ok := value.([]string); ok {
			return strings.Join(values, ","), nil
		}
	case IntList:
		if values, ok := value.([]int64); ok {
			return joinInts(values), nil
		}
	case FloatList:
		if values, ok := value.([]float64); ok {
			parts := make([]string, len(values))
			for i, f := range values {
				parts[i] = strconv.FormatFloat(f, 'f', -1, 64)
			}
			return strings.Join(parts, ","), nil
		}
	case StringSet:
		if set, ok := value.(mapset.Set[string]); ok {
			values := set.ToSlice()
			sort.Strings(values)
			return strings.Join(values, ","), nil
		}
	case IntSet:
		if set, ok := value.(mapset.Set[int64]); ok {
			values := set.ToSlice()
			sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })
			return joinInts(values), nil
		}
	}
	return "", fmt.Errorf("key %s declared as %s cannot store a %T: %w", name, kind, value, ErrInvalidValue)
}

func splitList(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	values := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		values = append(values, trimmed)
	}
	return values
}

func parseInts(kind Kind, name, raw string) ([]int64, error) {
	parts := splitList(raw)
	values := make([]int64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseInt(part, 10, 64)
		if err != nil {
			return nil, coerceErr(kind, name, raw)
		}
		values = append(values, value)
	}
	return values, nil
}

func parseFloats(kind Kind, name, raw string) ([]float64, error) {
	parts := splitList(raw)
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		value, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, coerceErr(kind, name, raw)
		}
		values = append(values, value)
	}
	return values, nil
}

func joinInts(values []int64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = strconv.FormatInt(v, 10)
	}
	return strings.Join(parts, ",")
}

func asInt64(value any) (int64, bool) {
	switch v := value.(type) {
	case int64:
		return v, true
	case int:
		return int64(v), true
	case int32:
		return int64(v), true
	}
	return 0, false
}

func coerceErr(kind Kind, name, raw string) error {
	return fmt.Errorf("key %s declared as %s cannot parse %q: %w", name, kind, raw, ErrInvalidValue)
}
