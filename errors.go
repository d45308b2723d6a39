// Copyright 2021 Intuitive Labs GmbH. All rights reserved.
//
// Use of this source code is governed by a BSD-style license
// that can be found in the LICENSE.txt file in the root of the source
// tree.

package hwheel

import (
	"errors"
)

var ErrInvalidParameters = errors.New("invalid parameters")
var ErrUnknownTimer = errors.New("unknown timer id")
var ErrTicksTooHigh = errors.New("delay does not fit in a tick count")
var ErrDurationTooSmall = errors.New("duration rounds down to 0 jiffies")
var ErrIDCollision = errors.New("timer id collision")
