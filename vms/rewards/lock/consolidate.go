// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package lock

// Policy names how a Book that grew past MaxLocks is shrunk back. Every
// policy moves amounts to later heights only, so nothing unlocks earlier than
// it was scheduled to.
type Policy string

const (
	// PolicyNearest repeatedly merges the two closest unlock heights, moving
	// the earlier amount onto the later height.
	PolicyNearest Policy = "nearest"
	// PolicyLatest folds the earliest surplus heights into the earliest
	// height that is kept.
	PolicyLatest Policy = "latest"
)

type consolidator func(b *Book, maxLocks int)

var consolidators = map[Policy]consolidator{
	"":            consolidateNearest,
	PolicyNearest: consolidateNearest,
	PolicyLatest:  consolidateLatest,
}

func consolidateNearest(b *Book, maxLocks int) {
	for b.Len() > maxLocks && b.Len() > 1 {
		entries := b.Entries()
		closest := 0
		for i := 1; i < len(entries)-1; i++ {
			if entries[i+1].Height-entries[i].Height < entries[closest+1].Height-entries[closest].Height {
				closest = i
			}
		}
		b.fold(entries[closest], entries[closest+1])
	}
}

func consolidateLatest(b *Book, maxLocks int) {
	surplus := b.Len() - maxLocks
	if surplus <= 0 || maxLocks <= 0 {
		return
	}
	entries := b.Entries()
	kept := entries[surplus]
	for _, e := range entries[:surplus] {
		b.fold(e, kept)
	}
}
