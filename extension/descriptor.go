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

// Group is a named bundle of symbols an extension module publishes for
// discovery. Groups register themselves with the host manifest at init and
// are discovered in lexical name order, so registration order is
// deterministic.
type Group struct {
	// Name identifies the group; it doubles as the origin of its symbols.
	Name string
	// Symbols are the descriptors the group publishes.
	Symbols []Descriptor
}

// descriptorKind tags the Descriptor variants.
type descriptorKind int

const (
	kindValue descriptorKind = iota
	kindInstance
	kindConstructor
	kindCommand
)

// Descriptor is one published symbol: an extension instance, a constructor
// to invoke with the host, a standalone command, or an opaque value left to
// the host's fallback loader. Classification inspects the variant, the
// name's leading underscore, and the origin.
type Descriptor struct {
	name   string
	kind   descriptorKind
	ext    Extension
	ctor   Constructor
	cmd    Command
	value  any
	origin string
}

// FromInstance publishes an already-constructed extension.
func FromInstance(ext Extension) Descriptor {
	return Descriptor{name: ext.Name(), kind: kindInstance, ext: ext}
}

// FromConstructor publishes a constructor to be invoked with the host at
// discovery time.
func FromConstructor(name string, ctor Constructor) Descriptor {
	return Descriptor{name: name, kind: kindConstructor, ctor: ctor}
}

// FromCommand publishes a standalone command for the command dispatcher.
func FromCommand(cmd Command) Descriptor {
	return Descriptor{name: cmd.Name, kind: kindCommand, cmd: cmd}
}

// FromValue publishes an opaque value. Primitive literals are skipped
// silently at classification; anything else is handed to the host's
// fallback loader. A name starting with '_' marks the symbol private.
func FromValue(name string, value any) Descriptor {
	return Descriptor{name: name, kind: kindValue, value: value}
}

// WithOrigin tags the symbol with the group it was defined in. Discovery
// ignores symbols whose origin differs from the group under scan, so a
// symbol re-published by an importing group does not register twice.
func (x Descriptor) WithOrigin(origin string) Descriptor {
	x.origin = origin
	return x
}

// Name returns the symbol name.
func (x Descriptor) Name() string {
	return x.name
}

// Origin returns the defining group's name, or "" when untagged.
func (x Descriptor) Origin() string {
	return x.origin
}

// Instance returns the published extension, if this is an instance symbol.
func (x Descriptor) Instance() (Extension, bool) {
	return x.ext, x.kind == kindInstance
}

// Constructor returns the published constructor, if this is a constructor
// symbol.
func (x Descriptor) Constructor() (Constructor, bool) {
	return x.ctor, x.kind == kindConstructor
}

// Command returns the published command, if this is a command symbol.
func (x Descriptor) Command() (Command, bool) {
	return x.cmd, x.kind == kindCommand
}

// Value returns the published value, if this is a value symbol.
func (x Descriptor) Value() (any, bool) {
	return x.value, x.kind == kindValue
}
