// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

// timerList is a circular, intrusive, doubly linked list of *Timer records:
// one wheel bucket. head is a sentinel node that is never itself a live
// record (same shape as the teacher's timerLst, minus the atomic wheel/flag
// bookkeeping tInfo needed under concurrent access — the single-threaded
// model means plain fields suffice).
type timerList struct {
	head Timer
}

func (l *timerList) init() {
	l.head.next = &l.head
	l.head.prev = &l.head
}

func (l *timerList) isEmpty() bool {
	return l.head.next == &l.head
}

// append adds t at the tail, preserving FIFO order within the bucket.
func (l *timerList) append(t *Timer) {
	if t.next != nil || t.prev != nil {
		BUG("append: timer %d already linked\n", t.id)
		return
	}
	t.prev = l.head.prev
	t.next = &l.head
	t.prev.next = t
	l.head.prev = t
}

// remove unlinks t from whichever list it is currently on. Used only by
// the eager paths (modify_* re-bucketing); cancellation itself is lazy.
func (l *timerList) remove(t *Timer) {
	t.prev.next = t.next
	t.next.prev = t.prev
	t.next = nil
	t.prev = nil
}

// drain empties l and calls f once per former member, in FIFO order. l is
// detached from its members via an O(1) sentinel swap *before* f runs on
// any of them, so a reentrant append (a callback scheduling a new timer
// into the very bucket being drained, or the cascade engine reinserting
// into a bucket it has not reached yet) lands on a fresh, empty list and is
// never visited by this same drain call. Each member is unlinked just before
// f runs on it, so a member that f moves elsewhere before its turn (a
// Modify* call from a callback) is skipped by this drain.
func (l *timerList) drain(f func(t *Timer)) {
	if l.isEmpty() {
		return
	}
	var tmp timerList
	tmp.head.next = l.head.next
	tmp.head.prev = l.head.prev
	tmp.head.next.prev = &tmp.head
	tmp.head.prev.next = &tmp.head
	l.init()

	for !tmp.isEmpty() {
		t := tmp.head.next
		tmp.head.next = t.next
		t.next.prev = &tmp.head
		t.next = nil
		t.prev = nil
		f(t)
	}
}
