// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package lock

import "github.com/OIEIEIO/kulupu/utils/saturating"

// Book is the set of reward locks an account still has outstanding.
// Unlike a Schedule produced by a Generator, merging into a Book accumulates
// amounts at equal heights.
type Book struct {
	*Schedule
}

func NewBook(entries ...Entry) *Book {
	b := &Book{Schedule: NewSchedule()}
	for _, e := range entries {
		b.Add(e.Height, e.Amount)
	}
	return b
}

// Merge adds every entry of [s] to the book.
func (b *Book) Merge(s *Schedule) {
	s.entries.Ascend(func(e Entry) bool {
		b.Add(e.Height, e.Amount)
		return true
	})
}

// Prune removes entries unlocking at or before [height] and returns how
// many were removed.
func (b *Book) Prune(height uint64) int {
	var expired []Entry
	b.entries.Ascend(func(e Entry) bool {
		if e.Height > height {
			return false
		}
		expired = append(expired, e)
		return true
	})
	for _, e := range expired {
		b.entries.Delete(e)
	}
	return len(expired)
}

// Locked returns the amount that is still locked at [height].
func (b *Book) Locked(height uint64) uint64 {
	return b.LockedAfter(height)
}

func (b *Book) Clone() *Book {
	return &Book{Schedule: b.Schedule.Clone()}
}

// fold moves the amount of [from] onto [to] and removes [from].
func (b *Book) fold(from, to Entry) {
	b.entries.Delete(from)
	current, _ := b.Get(to.Height)
	b.Set(to.Height, saturating.Add64(current, from.Amount))
}
