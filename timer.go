// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

// Callback is invoked when a timer fires. w lets the callback re-arm,
// re-schedule or remove itself (or any other live timer) from inside the
// call — re-entrant calls into the wheel are part of the contract, see §5.
// A callback must not call Wheel.Tick or reach into a Pool directly.
type Callback func(w *Wheel, id int64, p1, p2 interface{})

// Timer is one scheduled record: a node in exactly one bucket list (or
// detached, mid-dispatch) plus the state the dispatcher needs to decide
// whether to re-arm it. The bucket back-pointer is what makes modify_*/
// remove O(1) instead of an O(bucket length) scan.
type Timer struct {
	next, prev *Timer // intrusive doubly linked list, see list.go

	id       int64
	interval uint64 // jiffies; 0 for one-shot timers
	expires  uint64 // absolute jiffy this record is scheduled to fire at
	loops    int64  // -1 = infinite, >0 = remaining fire count, 0 = spent
	bucket   int    // absolute index into Wheel.buckets, -1 if detached
	removed  bool   // lazily cancelled; unlinked the next time it's drained

	cb     Callback
	p1, p2 interface{}
}

// ID returns the timer's identifier, as handed back by AddDelay/AddLoop.
func (t *Timer) ID() int64 { return t.id }

// Expires returns the absolute jiffy the timer is currently scheduled for.
func (t *Timer) Expires() uint64 { return t.expires }

// Interval returns the timer's reschedule interval in jiffies (0 for a
// one-shot timer).
func (t *Timer) Interval() uint64 { return t.interval }

// reset restores a record to the state a freshly pooled timer must start
// from: detached, no callback, loops back at the -1 (infinite) sentinel. Mirrors the
// acquire/reset split the teacher's NewTimer/InitTimer pair uses.
func (t *Timer) reset() {
	t.next = nil
	t.prev = nil
	t.id = 0
	t.interval = 0
	t.expires = 0
	t.loops = -1
	t.bucket = -1
	t.removed = false
	t.cb = nil
	t.p1 = nil
	t.p2 = nil
}
