// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package reward

import (
	"errors"
	"fmt"
	"sort"

	"golang.org/x/exp/slices"
)

var ErrUnsortedCurve = errors.New("curve breakpoints are not sorted by height")

// Breakpoint sets the block reward to [Amount] starting at [Height].
type Breakpoint struct {
	Height uint64 `serialize:"true" json:"height"`
	Amount uint64 `serialize:"true" json:"amount"`
}

// Curve is a height-indexed reward table. Breakpoints must be in
// non-decreasing height order.
type Curve []Breakpoint

func (c Curve) Verify() error {
	for i := 1; i < len(c); i++ {
		if c[i].Height < c[i-1].Height {
			return fmt.Errorf("%w: breakpoint %d at height %d follows height %d",
				ErrUnsortedCurve, i, c[i].Height, c[i-1].Height)
		}
	}
	return nil
}

// Evaluate returns the amount of the greatest breakpoint at or below
// [height]. If there is no such breakpoint, [fallback] is returned.
//
// When several breakpoints share a height the last one wins.
func (c Curve) Evaluate(height, fallback uint64) uint64 {
	// index of the first breakpoint strictly above height
	i := sort.Search(len(c), func(i int) bool {
		return c[i].Height > height
	})
	if i == 0 {
		return fallback
	}
	return c[i-1].Amount
}

// Next returns the first breakpoint strictly above [height].
func (c Curve) Next(height uint64) (Breakpoint, bool) {
	i := sort.Search(len(c), func(i int) bool {
		return c[i].Height > height
	})
	if i == len(c) {
		return Breakpoint{}, false
	}
	return c[i], true
}

// Sorted returns a sorted copy of the curve. Breakpoints with equal heights
// keep their relative order.
func (c Curve) Sorted() Curve {
	sorted := slices.Clone(c)
	slices.SortStableFunc(sorted, func(a, b Breakpoint) int {
		switch {
		case a.Height < b.Height:
			return -1
		case a.Height > b.Height:
			return 1
		default:
			return 0
		}
	})
	return sorted
}
