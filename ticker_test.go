// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import (
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTickerDefaultsToRealClock(t *testing.T) {
	w := New()
	tk := NewTicker(w)
	require.NotNil(t, tk)
	assert.NotNil(t, tk.clk)
}

// TestTickerRunReturnsOnStop checks that Run, woken by an injected mock
// clock, returns once stop is closed and leaves an infinite loop timer
// pending. It does not count Advance calls: Advance samples the real wall
// clock via timestamp.Now(), the same as the teacher's ticker() does, so the
// mock clock only governs the cadence Run wakes up on, not what "elapsed"
// means once woken.
func TestTickerRunReturnsOnStop(t *testing.T) {
	w := New()
	fired := 0
	w.AddLoop(1, -1, 0, func(*Wheel, int64, interface{}, interface{}) {
		fired++
	}, nil, nil)

	mock := clock.NewMock()
	tk := NewTickerWithClock(w, mock)

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		tk.Run(time.Millisecond, stop)
		close(done)
	}()

	// Give Run's goroutine a chance to register its ticker before advancing.
	mock.WaitForAllTimers()
	for i := 0; i < 5; i++ {
		mock.Add(time.Millisecond)
	}
	close(stop)
	<-done

	assert.GreaterOrEqual(t, w.Len(), 1, "infinite loop timer should still be pending")
}

// TestTickerAdvanceIsMonotonicInThePresentCase checks the ordinary path:
// real time only ever moves forward between two Advance calls, so badTicks
// must stay at 0.
func TestTickerAdvanceIsMonotonicInThePresentCase(t *testing.T) {
	w := New()
	tk := NewTicker(w)

	tk.Advance()
	time.Sleep(time.Millisecond)
	tk.Advance()

	if tk.badTicks != 0 {
		t.Errorf("badTicks = %d after two forward-moving Advance calls, want 0\n", tk.badTicks)
	}
}
