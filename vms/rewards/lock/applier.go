// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package lock

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
)

// ID identifies a lock placed on an account balance. Setting a lock under an
// ID replaces any previous lock with that ID.
type ID [8]byte

// RewardsID is the lock ID reserved for vested block rewards.
var RewardsID = ID{'r', 'e', 'w', 'a', 'r', 'd', 's', ' '}

func (id ID) String() string {
	return string(id[:])
}

// Locker is the part of the ledger the applier needs.
type Locker interface {
	// SetLock restricts [amount] of [account]'s balance under [id]. An
	// amount of zero removes the lock.
	SetLock(id ID, account ids.ShortID, amount uint64) error
}

// Applier merges new reward schedules into account lock books and keeps
// the ledger lock in sync with them.
type Applier struct {
	locker      Locker
	maxLocks    int
	consolidate consolidator
}

func NewApplier(locker Locker, maxLocks uint32, policy Policy) (*Applier, error) {
	consolidate, ok := consolidators[policy]
	if !ok {
		return nil, fmt.Errorf("%w: %q", errUnknownPolicy, policy)
	}
	return &Applier{
		locker:      locker,
		maxLocks:    int(maxLocks),
		consolidate: consolidate,
	}, nil
}

// Apply merges [schedule] into [book], drops entries that unlocked at or
// before [height], consolidates the book down to MaxLocks and sets the
// account's ledger lock to the amount still locked.
func (a *Applier) Apply(account ids.ShortID, book *Book, schedule *Schedule, height uint64) error {
	book.Merge(schedule)
	return a.Refresh(account, book, height)
}

// Refresh drops expired entries from [book] and resets the ledger lock to
// what remains locked.
func (a *Applier) Refresh(account ids.ShortID, book *Book, height uint64) error {
	book.Prune(height)
	if book.Len() > a.maxLocks {
		a.consolidate(book, a.maxLocks)
	}
	if book.Len() > a.maxLocks {
		panic(fmt.Sprintf("account %s has %d locks, more than max locks %d", account, book.Len(), a.maxLocks))
	}

	if err := a.locker.SetLock(RewardsID, account, book.Locked(height)); err != nil {
		return fmt.Errorf("couldn't set reward lock of %s: %w", account, err)
	}
	return nil
}
