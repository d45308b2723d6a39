// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import "testing"

func TestTimerListAppendDrainOrder(t *testing.T) {
	var l timerList
	l.init()
	if !l.isEmpty() {
		t.Fatalf("fresh list should be empty\n")
	}
	want := []int64{1, 2, 3, 4, 5}
	for _, id := range want {
		tm := &Timer{id: id}
		l.append(tm)
	}
	if l.isEmpty() {
		t.Fatalf("list should not be empty after append\n")
	}
	var got []int64
	l.drain(func(tm *Timer) {
		got = append(got, tm.id)
	})
	if len(got) != len(want) {
		t.Fatalf("drained %d entries, want %d\n", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("drain order[%d] = %d, want %d\n", i, got[i], want[i])
		}
	}
	if !l.isEmpty() {
		t.Errorf("list should be empty after drain\n")
	}
}

func TestTimerListRemove(t *testing.T) {
	var l timerList
	l.init()
	a := &Timer{id: 1}
	b := &Timer{id: 2}
	c := &Timer{id: 3}
	l.append(a)
	l.append(b)
	l.append(c)
	l.remove(b)
	var got []int64
	l.drain(func(tm *Timer) { got = append(got, tm.id) })
	if len(got) != 2 || got[0] != 1 || got[1] != 3 {
		t.Errorf("after removing middle entry, drained %v, want [1 3]\n", got)
	}
}

// TestTimerListDrainReentrant checks that an append performed from inside
// drain's callback (simulating a cascade reinsert, or a fired callback
// scheduling a new timer into the bucket being drained) lands on a fresh
// list and is not picked up by the in-progress drain call.
func TestTimerListDrainReentrant(t *testing.T) {
	var l timerList
	l.init()
	l.append(&Timer{id: 1})
	l.append(&Timer{id: 2})

	var visited []int64
	l.drain(func(tm *Timer) {
		visited = append(visited, tm.id)
		if tm.id == 1 {
			l.append(&Timer{id: 99})
		}
	})
	if len(visited) != 2 {
		t.Fatalf("drain visited %v, want exactly the 2 original entries\n", visited)
	}
	if l.isEmpty() {
		t.Fatalf("reentrant append should have landed in the (now fresh) list\n")
	}
	var after []int64
	l.drain(func(tm *Timer) { after = append(after, tm.id) })
	if len(after) != 1 || after[0] != 99 {
		t.Errorf("second drain = %v, want [99]\n", after)
	}
}
