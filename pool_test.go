// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import "testing"

func TestSyncPoolResetsOnAcquireAndRelease(t *testing.T) {
	p := newSyncPool()
	tm := p.Acquire()
	if tm.bucket != -1 || tm.loops != -1 || tm.cb != nil {
		t.Fatalf("freshly acquired timer not reset: %+v\n", tm)
	}
	tm.id = 42
	tm.bucket = 7
	tm.loops = 3
	tm.cb = func(*Wheel, int64, interface{}, interface{}) {}
	p.Release(tm)
	if tm.id != 0 || tm.bucket != -1 || tm.loops != -1 || tm.cb != nil {
		t.Errorf("released timer not reset: %+v\n", tm)
	}

	again := p.Acquire()
	if again.bucket != -1 || again.loops != -1 {
		t.Errorf("reacquired timer not reset: %+v\n", again)
	}
}
