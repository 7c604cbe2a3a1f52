/*
 * MIT License
 *
 * Copyright (c) 2020 Nicolas JUHEL
 *
 * Permission is hereby granted, free of charge, to any person obtaining a copy
 * of this software and associated documentation files (the "Software"), to deal
 * in the Software without restriction, including without limitation the rights
 * to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 * copies of the Software, and to permit persons to whom the Software is
 * furnished to do so, subject to the following conditions:
 *
 * The above copyright notice and this permission notice shall be included in all
 * copies or substantial portions of the Software.
 *
 * THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 * IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 * FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 * AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 * LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 * OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 * SOFTWARE.
 */

package tapserr

import (
	"errors"
	"fmt"
)

// Error is the error type every package in this module returns. It carries
// a Code for programmatic matching plus an optional wrapped cause.
type Error interface {
	error
	// Code returns the error kind.
	Code() Code
	// Unwrap returns the wrapped cause, or nil.
	Unwrap() error
}

type taErr struct {
	code    Code
	message string
	parent  error
}

func (e *taErr) Code() Code { return e.code }

func (e *taErr) Unwrap() error { return e.parent }

func (e *taErr) Error() string {
	if e.parent != nil {
		return fmt.Sprintf("%s: %s: %s", e.code, e.message, e.parent.Error())
	}
	if e.message != "" {
		return fmt.Sprintf("%s: %s", e.code, e.message)
	}
	return e.code.String()
}

// New builds an Error of the given kind with an optional message and
// optional wrapped cause.
func New(code Code, message string, parent ...error) Error {
	var p error
	for _, e := range parent {
		if e != nil {
			p = e
			break
		}
	}
	return &taErr{code: code, message: message, parent: p}
}

// Newf is New with a formatted message.
func Newf(code Code, format string, args ...any) Error {
	return New(code, fmt.Sprintf(format, args...))
}

// Is reports whether err carries the given Code, walking the Unwrap chain.
func Is(err error, code Code) bool {
	var e Error
	if errors.As(err, &e) {
		return e.Code() == code
	}
	return false
}

// CodeOf returns the Code carried by err, or Unknown if err is nil or
// carries none.
func CodeOf(err error) Code {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return Unknown
}
