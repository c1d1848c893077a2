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

import "errors"

var (
	// ErrNameRequired is returned when an application or extension is given
	// an empty name.
	ErrNameRequired = errors.New("name is required")

	// ErrInvalidName is returned when an application or extension name does
	// not pass validation. Names must contain only word characters
	// (alphanumerics plus non-leading '-' or '_') and be at most 255
	// characters long.
	ErrInvalidName = errors.New("invalid name, must contain only word characters (i.e. [a-zA-Z0-9] with the exception of non-leading '-' or '_')")

	// ErrDuplicateExtension is returned when an extension is registered
	// under a name that already occupies a registry slot.
	ErrDuplicateExtension = errors.New("extension already registered")

	// ErrDuplicateCommand is returned when a command is registered under a
	// name that is already taken.
	ErrDuplicateCommand = errors.New("command already registered")

	// ErrMissingSettings is returned when an extension with a raising
	// configuration check has at least one declared setting absent from
	// every layer of its chain.
	ErrMissingSettings = errors.New("required settings are missing from configuration")

	// ErrExtensionConstruction is returned when an extension constructor
	// discovered in a group fails to produce an instance.
	ErrExtensionConstruction = errors.New("extension construction failed")

	// ErrUnknownCommand is returned when a command line names a command
	// that no extension group registered.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrEmptyURLRoot is returned when a route provider declares an empty
	// url root.
	ErrEmptyURLRoot = errors.New("url root is required")

	// ErrInvalidURLRoot is returned when a url root or route path contains
	// a path separator. Roots and paths are single segments; the web host
	// owns the surrounding slashes.
	ErrInvalidURLRoot = errors.New("url root may not contain a '/'")

	// ErrDuplicateURLRoot is returned when two route providers claim the
	// same url root.
	ErrDuplicateURLRoot = errors.New("url root already mounted")
)
