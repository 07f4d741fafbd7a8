// Copyright 2023-2026 The GoMLX Authors. SPDX-License-Identifier: Apache-2.0

package segments

import (
	"sync/atomic"

	"github.com/pkg/errors"
)

var (
	// ErrNegativeLength is returned (wrapped) when a segment has a negative length.
	ErrNegativeLength = errors.New("negative segment length")

	// ErrSegmentOutOfBounds is returned (wrapped) when the offsets of a segment fall outside the reduced axis.
	// This can only happen when using WithUnsafe.
	ErrSegmentOutOfBounds = errors.New("segment out of bounds")
)

// abortLatch holds the first error reported by any worker of a call.
// Once set, workers stop at their next work unit.
type abortLatch struct {
	first atomic.Pointer[error]
}

// abort records err if no other error has been recorded yet.
func (l *abortLatch) abort(err error) {
	l.first.CompareAndSwap(nil, &err)
}

func (l *abortLatch) isAborted() bool {
	return l.first.Load() != nil
}

// err returns the first error recorded, or nil.
func (l *abortLatch) err() error {
	if p := l.first.Load(); p != nil {
		return *p
	}
	return nil
}
