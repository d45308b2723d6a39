// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import (
	"github.com/intuitivelabs/slog"
)

// Log is the package-level logger, shared by every Wheel. New sets its level
// on every call (LWARN unless WithLogLevel gives another), replacing any
// level set earlier with slog.SetLevel(&Log, ...).
var Log slog.Log

func init() {
	slog.SetLevel(&Log, slog.LWARN)
}

func DBGon() bool {
	return Log.Level >= slog.LDBG
}

func WARNon() bool {
	return Log.Level >= slog.LWARN
}

func ERRon() bool {
	return Log.Level >= slog.LERR
}

func DBG(f string, a ...interface{}) {
	if DBGon() {
		Log.Logf(slog.LDBG, 1, f, a...)
	}
}

func WARN(f string, a ...interface{}) {
	if WARNon() {
		Log.Logf(slog.LWARN, 1, f, a...)
	}
}

func ERR(f string, a ...interface{}) {
	if ERRon() {
		Log.Logf(slog.LERR, 1, f, a...)
	}
}

// BUG logs an internal invariant violation. It never crashes the process:
// the dispatcher's job is to isolate corruption to a single timer, not to
// bring the host down.
func BUG(f string, a ...interface{}) {
	Log.Logf(slog.LERR, 1, "BUG: "+f, a...)
}

// PANIC is reserved for corruption in the wheel's own bookkeeping (not
// caller input) that makes it unsafe to continue.
func PANIC(f string, a ...interface{}) {
	Log.Logf(slog.LCRIT, 1, "PANIC: "+f, a...)
	panic(Log.Sprintf(f, a...))
}
