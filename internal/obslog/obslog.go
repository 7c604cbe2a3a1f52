/*
 * MIT License
 *
 * Copyright (c) 2025 Nicolas JUHEL
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

// Package obslog supplies the structured-logging shape shared by the
// listener, connection and preconnection state machines: an optional
// factory function each stateful type accepts at construction, defaulting
// to a discard logger when none is given.
package obslog

import (
	"github.com/sirupsen/logrus"
)

// Fields is a structured key/value attachment for a single log line,
// mirroring the listener_id/connection_id/preconnection_id fields threaded
// through the state machines.
type Fields = logrus.Fields

// Logger is the minimal leveled, structured logging surface the core
// depends on.
type Logger interface {
	Debug(msg string, fld Fields)
	Info(msg string, fld Fields)
	Warn(msg string, fld Fields)
	Error(msg string, fld Fields)
}

// FuncLog returns a Logger instance. Stateful types accept a FuncLog rather
// than a Logger so construction can happen before logging is configured.
type FuncLog func() Logger

// entryLogger adapts a *logrus.Logger to Logger.
type entryLogger struct {
	l *logrus.Logger
}

func (e entryLogger) Debug(msg string, fld Fields) { e.l.WithFields(fld).Debug(msg) }
func (e entryLogger) Info(msg string, fld Fields)  { e.l.WithFields(fld).Info(msg) }
func (e entryLogger) Warn(msg string, fld Fields)  { e.l.WithFields(fld).Warn(msg) }
func (e entryLogger) Error(msg string, fld Fields) { e.l.WithFields(fld).Error(msg) }

// New wraps an existing *logrus.Logger.
func New(l *logrus.Logger) Logger {
	if l == nil {
		l = logrus.New()
	}
	return entryLogger{l: l}
}

// discard is the default Logger used when a stateful type is constructed
// with a nil FuncLog.
type discard struct{}

func (discard) Debug(string, Fields) {}
func (discard) Info(string, Fields)  {}
func (discard) Warn(string, Fields)  {}
func (discard) Error(string, Fields) {}

// Discard is a Logger that drops every line.
var Discard Logger = discard{}

// Resolve returns f() if f is non-nil and returns a non-nil Logger, else Discard.
func Resolve(f FuncLog) Logger {
	if f == nil {
		return Discard
	}
	if l := f(); l != nil {
		return l
	}
	return Discard
}
