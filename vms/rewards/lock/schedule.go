// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package lock

import (
	"github.com/google/btree"

	"github.com/OIEIEIO/kulupu/utils/saturating"
)

const defaultTreeDegree = 8

// Entry is an amount that cannot be spent before Height.
type Entry struct {
	Height uint64 `serialize:"true" json:"height"`
	Amount uint64 `serialize:"true" json:"amount"`
}

func entryLess(a, b Entry) bool {
	return a.Height < b.Height
}

// Schedule is an ordered mapping from unlock height to locked amount.
type Schedule struct {
	entries *btree.BTreeG[Entry]
}

func NewSchedule() *Schedule {
	return &Schedule{
		entries: btree.NewG(defaultTreeDegree, entryLess),
	}
}

// Set stores [amount] at [height], replacing any previous amount.
func (s *Schedule) Set(height, amount uint64) {
	s.entries.ReplaceOrInsert(Entry{Height: height, Amount: amount})
}

// Add adds [amount] to the amount already stored at [height].
func (s *Schedule) Add(height, amount uint64) {
	prev, _ := s.entries.Get(Entry{Height: height})
	s.entries.ReplaceOrInsert(Entry{
		Height: height,
		Amount: saturating.Add64(prev.Amount, amount),
	})
}

func (s *Schedule) Get(height uint64) (uint64, bool) {
	e, ok := s.entries.Get(Entry{Height: height})
	return e.Amount, ok
}

func (s *Schedule) Delete(height uint64) {
	s.entries.Delete(Entry{Height: height})
}

func (s *Schedule) Len() int {
	return s.entries.Len()
}

// Entries returns all entries in increasing height order.
func (s *Schedule) Entries() []Entry {
	entries := make([]Entry, 0, s.entries.Len())
	s.entries.Ascend(func(e Entry) bool {
		entries = append(entries, e)
		return true
	})
	return entries
}

// Total returns the sum of all amounts.
func (s *Schedule) Total() uint64 {
	var total uint64
	s.entries.Ascend(func(e Entry) bool {
		total = saturating.Add64(total, e.Amount)
		return true
	})
	return total
}

// LockedAfter returns the sum of amounts unlocking strictly after [height].
func (s *Schedule) LockedAfter(height uint64) uint64 {
	var total uint64
	s.entries.AscendGreaterOrEqual(Entry{Height: saturating.Add64(height, 1)}, func(e Entry) bool {
		if e.Height > height {
			total = saturating.Add64(total, e.Amount)
		}
		return true
	})
	return total
}

func (s *Schedule) Clone() *Schedule {
	return &Schedule{entries: s.entries.Clone()}
}
