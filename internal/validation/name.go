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

package validation

import "fmt"

const (
	namePattern   = "^[a-zA-Z0-9][a-zA-Z0-9-_]*$"
	maxNameLength = 255
)

// nameValidator validates identifiers such as host and extension names.
type nameValidator struct {
	name string
}

var _ Validator = nameValidator{}

// NewNameValidator creates an instance of the validator. A valid name starts
// with an alphanumeric character, continues with alphanumerics, dashes or
// underscores, and does not exceed 255 characters.
func NewNameValidator(name string) Validator {
	return nameValidator{name: name}
}

// Validate executes the validation
func (x nameValidator) Validate() error {
	if len(x.name) > maxNameLength {
		return fmt.Errorf("name=(%s) is too long: maximum length is %d characters", x.name, maxNameLength)
	}
	return NewPatternValidator(namePattern, x.name, fmt.Errorf("invalid name=(%s)", x.name)).Validate()
}
