// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import (
	"math"

	"github.com/intuitivelabs/slog"
)

// Wheel is a hierarchical timing wheel: DEPTH levels of S buckets each,
// addressed by CalculateWheelIndex, driven one jiffy at a time by Tick.
// It is single-threaded cooperative, per spec §5: every exported method
// must be called from one goroutine at a time (typically the host's own
// event loop), including from inside a Callback.
type Wheel struct {
	cfg      Config
	jiffies  uint64
	buckets  [W]timerList
	registry map[int64]*Timer
	nextID   int64
	pool     Pool
}

// New builds a Wheel ready to accept timers. The zero Wheel is not usable;
// always go through New so the bucket sentinels and registry map are
// initialized.
func New(opts ...Option) *Wheel {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.pool == nil {
		cfg.pool = newSyncPool()
	}
	slog.SetLevel(&Log, cfg.logLevel)

	w := &Wheel{
		cfg:      cfg,
		jiffies:  cfg.startJiffies,
		registry: make(map[int64]*Timer),
		pool:     cfg.pool,
	}
	for i := range w.buckets {
		w.buckets[i].init()
	}
	return w
}

// Now returns the wheel's current jiffy counter.
func (w *Wheel) Now() uint64 { return w.jiffies }

// Len returns the number of live (neither removed nor retired) timers, i.e. |registry|,
// which by the registry invariants in spec §8 always equals the sum of
// non-cancelled entries across every bucket.
func (w *Wheel) Len() int { return len(w.registry) }

// Stats reports live timer counts per level, for hosts that want basic
// observability without reaching into private fields — grounded on
// wtimer_test.go's own style of walking internal wheel/list state directly
// for assertions.
type Stats struct {
	PerLevel [DEPTH]int
	Total    int
}

func (w *Wheel) Stats() Stats {
	var st Stats
	for id := range w.registry {
		t := w.registry[id]
		level := t.bucket / S
		st.PerLevel[level]++
		st.Total++
	}
	return st
}

// snapshotIDs returns every live timer id, unordered. Debug-only; nothing in
// the package calls it.
func (w *Wheel) snapshotIDs() []int64 {
	ids := make([]int64, 0, len(w.registry))
	for id := range w.registry {
		ids = append(ids, id)
	}
	return ids
}

func (w *Wheel) newID() int64 {
	w.nextID++
	return w.nextID
}

// insert computes the (level, bucket) pair for t.expires and appends it to
// that bucket, recording the back-pointer. Used both for fresh inserts and
// for cascade/reschedule reinsertions — it is oblivious to why it is being
// called, exactly matching spec's "the normal insertion path".
func (w *Wheel) insert(t *Timer) {
	level, idx := CalculateWheelIndex(t.expires, w.jiffies)
	b := level*S + idx
	t.bucket = b
	w.buckets[b].append(t)
}

func (w *Wheel) unlink(t *Timer) {
	w.buckets[t.bucket].remove(t)
	t.bucket = -1
}

// AddDelay schedules a one-shot timer to fire once, delay_ms from now
// (ceiling-rounded to jiffies), invoking cb(w, id, p1, p2). Returns -1 and a
// non-nil error on invalid arguments, per §7; it never panics.
func (w *Wheel) AddDelay(delayMs float64, cb Callback, p1, p2 interface{}) (int64, error) {
	if cb == nil {
		if WARNon() {
			WARN("AddDelay: nil callback\n")
		}
		return -1, ErrInvalidParameters
	}
	if delayMs < 0 || math.IsNaN(delayMs) {
		if WARNon() {
			WARN("AddDelay: invalid delay %v ms\n", delayMs)
		}
		return -1, ErrInvalidParameters
	}
	if math.IsInf(delayMs, 1) {
		if WARNon() {
			WARN("AddDelay: delay %v ms does not fit in a tick count\n", delayMs)
		}
		return -1, ErrTicksTooHigh
	}
	return w.addTimer(msToJiffies(delayMs), 0, 1, cb, p1, p2)
}

// AddLoop schedules a timer that re-fires every interval_ms, loops times
// (loops == -1 for "forever"), with an optional one-time leading delay_ms
// added only to the first expiry. Returns -1 and a non-nil error on invalid
// arguments.
func (w *Wheel) AddLoop(intervalMs float64, loops int64, delayMs float64, cb Callback, p1, p2 interface{}) (int64, error) {
	if cb == nil {
		if WARNon() {
			WARN("AddLoop: nil callback\n")
		}
		return -1, ErrInvalidParameters
	}
	if intervalMs <= 0 || math.IsNaN(intervalMs) {
		if WARNon() {
			WARN("AddLoop: invalid interval %v ms\n", intervalMs)
		}
		return -1, ErrInvalidParameters
	}
	if loops == 0 || loops < -1 {
		if WARNon() {
			WARN("AddLoop: invalid loops %d\n", loops)
		}
		return -1, ErrInvalidParameters
	}
	if delayMs < 0 || math.IsNaN(delayMs) {
		if WARNon() {
			WARN("AddLoop: invalid delay %v ms\n", delayMs)
		}
		return -1, ErrInvalidParameters
	}
	if math.IsInf(intervalMs, 1) || math.IsInf(delayMs, 1) {
		if WARNon() {
			WARN("AddLoop: interval/delay does not fit in a tick count\n")
		}
		return -1, ErrTicksTooHigh
	}
	intervalJ := msToJiffies(intervalMs)
	if intervalJ == 0 {
		if WARNon() {
			WARN("AddLoop: interval %v ms rounds to 0 jiffies\n", intervalMs)
		}
		return -1, ErrDurationTooSmall
	}
	firstDeltaJ := msToJiffies(intervalMs + delayMs)
	return w.addTimer(firstDeltaJ, intervalJ, loops, cb, p1, p2)
}

func (w *Wheel) addTimer(firstDeltaJ, intervalJ uint64, loops int64, cb Callback, p1, p2 interface{}) (int64, error) {
	if firstDeltaJ > MAX_DELTA {
		if DBGon() {
			DBG("add: delay %d jiffies exceeds MAX_DELTA, clamping to %d\n", firstDeltaJ, MAX_DELTA)
		}
		firstDeltaJ = MAX_DELTA
	}
	t := w.pool.Acquire()
	id := w.newID()
	if _, exists := w.registry[id]; exists {
		BUG("add: id %d collision in registry\n", id)
		w.pool.Release(t)
		return -1, ErrIDCollision
	}
	t.id = id
	t.interval = intervalJ
	t.loops = loops
	t.expires = w.jiffies + firstDeltaJ
	t.cb = cb
	t.p1, t.p2 = p1, p2
	w.registry[id] = t
	w.insert(t)
	return id, nil
}

// ModifyInterval changes a loop timer's interval and reschedules its next
// firing to interval_ms from now (phase reset, per the open-question
// decision recorded in SPEC_FULL.md/DESIGN.md). Returns an error for an
// unknown or already-removed id.
func (w *Wheel) ModifyInterval(id int64, intervalMs float64) error {
	if intervalMs <= 0 || math.IsNaN(intervalMs) {
		if WARNon() {
			WARN("ModifyInterval: invalid interval %v ms\n", intervalMs)
		}
		return ErrInvalidParameters
	}
	t, ok := w.live(id)
	if !ok {
		return ErrUnknownTimer
	}
	intervalJ := msToJiffies(intervalMs)
	if intervalJ == 0 {
		if WARNon() {
			WARN("ModifyInterval: interval %v ms rounds to 0 jiffies\n", intervalMs)
		}
		return ErrDurationTooSmall
	}
	if t.next == nil {
		// Detached because it is firing right now (called from its own
		// callback): fire re-arms it with the new interval afterwards.
		t.interval = intervalJ
		return nil
	}
	w.unlink(t)
	t.interval = intervalJ
	t.expires = w.jiffies + intervalJ
	w.insert(t)
	return nil
}

// ModifyDelay reschedules the next firing to interval+delay_ms from now,
// without touching the timer's interval. Returns an error for an unknown or
// already-removed id.
func (w *Wheel) ModifyDelay(id int64, delayMs float64) error {
	if delayMs < 0 || math.IsNaN(delayMs) {
		if WARNon() {
			WARN("ModifyDelay: invalid delay %v ms\n", delayMs)
		}
		return ErrInvalidParameters
	}
	t, ok := w.live(id)
	if !ok {
		return ErrUnknownTimer
	}
	w.unlink(t)
	deltaJ := t.interval + msToJiffies(delayMs)
	if deltaJ > MAX_DELTA {
		deltaJ = MAX_DELTA
	}
	t.expires = w.jiffies + deltaJ
	w.insert(t)
	return nil
}

// ModifyLoops changes the remaining fire count in place; no re-bucketing
// needed since expires is untouched. Returns an error for an unknown or
// already-removed id, or an invalid loops value.
func (w *Wheel) ModifyLoops(id int64, loops int64) error {
	if loops == 0 || loops < -1 {
		if WARNon() {
			WARN("ModifyLoops: invalid loops %d\n", loops)
		}
		return ErrInvalidParameters
	}
	t, ok := w.live(id)
	if !ok {
		return ErrUnknownTimer
	}
	t.loops = loops
	return nil
}

// ModifyCallback swaps the callback invoked on the next (and subsequent)
// firings. Returns an error for an unknown or already-removed id.
func (w *Wheel) ModifyCallback(id int64, cb Callback) error {
	if cb == nil {
		if WARNon() {
			WARN("ModifyCallback: nil callback\n")
		}
		return ErrInvalidParameters
	}
	t, ok := w.live(id)
	if !ok {
		return ErrUnknownTimer
	}
	t.cb = cb
	return nil
}

// ModifyParams swaps the two opaque parameters passed to the callback.
// Returns an error for an unknown or already-removed id.
func (w *Wheel) ModifyParams(id int64, p1, p2 interface{}) error {
	t, ok := w.live(id)
	if !ok {
		return ErrUnknownTimer
	}
	t.p1, t.p2 = p1, p2
	return nil
}

// Remove cancels a timer. Cancellation is lazy (spec §9's recommended
// default): the id is dropped from the registry immediately so a second
// Remove/Modify correctly reports ErrUnknownTimer, but the list node itself
// stays parked in its bucket (the cascade engine moves it down like any
// other entry) until the dispatcher reaches it, at which point it is
// silently retired instead of fired.
// Multiple Removes on the same id are safe, mirroring the teacher's own
// "multiple Del()s can be safely run on the same timer" contract.
func (w *Wheel) Remove(id int64) error {
	t, ok := w.registry[id]
	if !ok {
		return ErrUnknownTimer
	}
	delete(w.registry, id)
	t.removed = true
	return nil
}

func (w *Wheel) live(id int64) (*Timer, bool) {
	t, ok := w.registry[id]
	if !ok {
		if WARNon() {
			WARN("unknown timer id %d\n", id)
		}
		return nil, false
	}
	return t, true
}

// Tick advances the wheel by deltaMs of wall-clock time, rounded down to a
// whole number of jiffies, executing every timer whose bucket is reached
// along the way. It must be called serially — the driver contract in §5 —
// and must never be called from inside a Callback.
func (w *Wheel) Tick(deltaMs float64) {
	if deltaMs < 0 || math.IsNaN(deltaMs) {
		deltaMs = 0
	}
	if len(w.registry) == 0 {
		// Nothing scheduled: resetting jiffies keeps an idle wheel from
		// ever approaching CUTOFF, per spec §4.5.
		w.jiffies = 0
		return
	}
	n := int(deltaMs / jiffyMs)
	if w.cfg.smoothing {
		n = (n >> 1) + 1
	}
	for i := 0; i < n; i++ {
		// Advance first, then cascade, then dispatch the now-current level-0
		// bucket — in that order. A timer whose delta is an exact multiple
		// of S (e.g. 64 at HZ=1000) is cascaded into level-0 bucket 0 on the
		// very jiffy it is due; dispatching bucket 0 before the cascade runs
		// would miss it by a full revolution. Matches the reference
		// cascading-wheel's shift()-then-execute() ordering.
		w.jiffies++
		w.cascade()
		slot := int(w.jiffies & uint64(S-1))
		w.buckets[slot].drain(w.fire)
	}
}

// cascade drains every level whose granularity the current jiffies is an
// exact multiple of (levels DEPTH-1 down to 1; level 0 is never cascaded,
// it is dispatched directly by Tick), reinserting each entry through the
// normal insertion path so it either lands in a finer level or, once its
// delta has shrunk below S, in level 0 itself.
func (w *Wheel) cascade() {
	for level := lastLevel; level >= 1; level-- {
		gran := uint64(1) << uint(level*Shift)
		if w.jiffies&(gran-1) != 0 {
			continue
		}
		idx := bucketWithinLevel(level, w.jiffies)
		w.buckets[level*S+idx].drain(w.insert)
	}
}

// fire is the per-timer decision in spec §4.7: skip (retire) an invalid
// record, otherwise run its callback under panic isolation and, depending
// on its remaining loop count, either reschedule or retire it.
func (w *Wheel) fire(t *Timer) {
	if t.removed || t.loops == 0 || t.cb == nil {
		w.retire(t)
		return
	}
	w.runCallback(t)
	if t.removed {
		// The callback (or something it triggered) cancelled this timer.
		w.retire(t)
		return
	}
	if t.loops > 0 {
		t.loops--
	}
	if t.loops == -1 || t.loops > 0 {
		t.expires = w.jiffies + t.interval
		w.insert(t)
		return
	}
	w.retire(t)
}

func (w *Wheel) runCallback(t *Timer) {
	defer func() {
		if r := recover(); r != nil {
			ERR("timer %d callback panicked: %v\n", t.id, r)
			t.removed = true
		}
	}()
	t.cb(w, t.id, t.p1, t.p2)
}

func (w *Wheel) retire(t *Timer) {
	delete(w.registry, t.id)
	t.bucket = -1
	w.pool.Release(t)
}
