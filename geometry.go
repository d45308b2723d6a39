// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import "math"

// Wheel geometry, fixed at compile time. HZ is the tick rate the wheel's
// jiffy counter advances at; changing it changes what a "jiffy" means in
// wall-clock terms but never the bucket layout below.
const (
	HZ         = 1000
	DEPTH      = 9
	LevelBits  = 6
	Shift      = 3
	S          = 1 << LevelBits // buckets per level, 64
	W          = DEPTH * S      // total buckets, 576
	lastLevel  = DEPTH - 1
)

// CUTOFF is the largest delay (in jiffies) the wheel can place directly;
// LAST_GRANULARITY is the coarsest level's bucket width; MAX_DELTA is the
// clamp applied to any longer delay.
const (
	CUTOFF           = uint64(S)<<uint((DEPTH-1)*Shift) - 1
	LAST_GRANULARITY = uint64(1) << uint((DEPTH-1)*Shift)
	MAX_DELTA        = CUTOFF - LAST_GRANULARITY
)

const jiffyMs = float64(1000) / float64(HZ)

// msToJiffies converts a millisecond duration to a ceiling number of
// jiffies: a 1.2ms delay must not fire before 2 jiffies have elapsed at
// HZ=1000, a 0ms delay rounds to 0.
func msToJiffies(ms float64) uint64 {
	if ms <= 0 {
		return 0
	}
	return uint64(math.Ceil(ms / jiffyMs))
}

// jiffiesToMs converts a jiffy count back to milliseconds. Only the tests
// use it; never used on the scheduling hot path.
func jiffiesToMs(j uint64) float64 {
	return float64(j) * jiffyMs
}

// levelStart is the smallest delta (in jiffies from "now") handled by level
// L, for L >= 1. Level 0 covers [0, S) and has no start constant of its own.
func levelStart(level int) uint64 {
	if level <= 0 {
		return 0
	}
	return uint64(S) << uint((level-1)*Shift)
}

// bucketWithinLevel returns the bucket index (0..S-1, without the level's
// L*S offset) that an absolute jiffy value v maps to at level. It is a pure
// function of (level, v) — the same v always lands in the same bucket
// regardless of when it is evaluated, which is what lets the cascade engine
// reinsert timers using nothing but their stored expires field.
func bucketWithinLevel(level int, v uint64) int {
	shifted := v - levelStart(level)
	return int((shifted >> uint(level*Shift)) & uint64(S-1))
}

// CalculateWheelIndex maps an absolute expiry (in jiffies) to the (level,
// bucket-within-level) pair it belongs in, given the wheel's current jiffies.
// It never mutates anything and has no side effects, so both fresh inserts
// and cascade-driven reinserts go through it.
func CalculateWheelIndex(expires, jiffies uint64) (level, idx int) {
	if expires <= jiffies {
		// Already due (or due this jiffy): land in the level-0 bucket the
		// dispatcher will reach on its very next pass.
		return 0, int(jiffies & uint64(S-1))
	}
	delta := expires - jiffies
	for l := 1; l < DEPTH; l++ {
		if delta < levelStart(l) {
			level = l - 1
			return level, bucketWithinLevel(level, expires)
		}
	}
	// No level in [1, DEPTH) matched: delta is large enough for the
	// coarsest level, possibly after clamping to MAX_DELTA.
	level = lastLevel
	if delta >= CUTOFF {
		if DBGon() {
			DBG("CalculateWheelIndex: delay %d jiffies exceeds CUTOFF %d, clamping to %d\n",
				delta, CUTOFF, MAX_DELTA)
		}
		expires = jiffies + MAX_DELTA
	}
	return level, bucketWithinLevel(level, expires)
}
