// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import "sync"

// Pool recycles *Timer records. A Wheel only ever calls Acquire to get a
// record before scheduling it and Release once a record is retired
// (cancelled or run out of loops) or its registration failed on an id
// collision — the free-list itself is the caller's
// concern, grounded on the acquire/reset split the teacher's
// NewTimer/InitTimer/Reset trio already uses.
type Pool interface {
	Acquire() *Timer
	Release(t *Timer)
}

// syncPool is the default Pool, backed by sync.Pool. It is the right
// default for a single-threaded scheduler: sync.Pool's own locking is
// unused on the hot path in practice since Get/Put calls never race here,
// but it still gives per-P free lists and lets the GC reclaim timers under
// memory pressure, which a hand-rolled slice-based freelist would not.
type syncPool struct {
	p sync.Pool
}

func newSyncPool() *syncPool {
	return &syncPool{
		p: sync.Pool{
			New: func() interface{} {
				t := &Timer{}
				t.reset()
				return t
			},
		},
	}
}

func (sp *syncPool) Acquire() *Timer {
	t := sp.p.Get().(*Timer)
	t.reset()
	return t
}

func (sp *syncPool) Release(t *Timer) {
	t.reset()
	sp.p.Put(t)
}
