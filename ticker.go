// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/intuitivelabs/timestamp"
)

// Ticker samples wall-clock time and forwards the elapsed milliseconds into
// a Wheel's Tick, for a host that doesn't already track its own delta time.
// It is optional: a host with its own event loop (a game tick, an epoll
// wait return) should compute its own elapsed ms and call Wheel.Tick
// directly instead. Grounded on wtimer_ticker.go/wtimer_run.go's ticker()
// method, minus the goroutine/run-queue machinery that doesn't belong in a
// single-threaded cooperative scheduler.
type Ticker struct {
	w        *Wheel
	clk      clock.Clock
	last     timestamp.TS
	badTicks uint32
}

// NewTicker builds a Ticker sampling the real wall clock.
func NewTicker(w *Wheel) *Ticker {
	return &Ticker{w: w, clk: clock.New(), last: timestamp.Now()}
}

// NewTickerWithClock injects the clock.Clock that sets Run's period, e.g.
// clock.NewMock() in tests. Advance still measures elapsed time with
// timestamp.Now(), not with this clock.
func NewTickerWithClock(w *Wheel, clk clock.Clock) *Ticker {
	return &Ticker{w: w, clk: clk, last: timestamp.Now()}
}

// Advance samples the current time and forwards the elapsed duration to the
// wheel as milliseconds. Must be called serially, same as Wheel.Tick.
func (tk *Ticker) Advance() {
	now := timestamp.Now()
	if now.Before(tk.last) {
		tk.badTicks++
		if WARNon() {
			WARN("ticker: time went backward (%d times so far)\n", tk.badTicks)
		}
		tk.last = now
		return
	}
	tk.badTicks = 0
	elapsed := now.Sub(tk.last)
	tk.last = now
	tk.w.Tick(float64(elapsed.Milliseconds()))
}

// Run starts a goroutine calling Advance every period until stop is closed.
// This is a convenience for hosts without their own loop; the core Wheel
// never spawns goroutines on its own, and nothing here allows two Advance
// calls (or an Advance and a direct Tick call) to run concurrently against
// the same Wheel — that remains the caller's responsibility.
func (tk *Ticker) Run(period time.Duration, stop <-chan struct{}) {
	t := tk.clk.Ticker(period)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			tk.Advance()
		}
	}
}
