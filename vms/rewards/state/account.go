// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"golang.org/x/exp/slices"

	"github.com/OIEIEIO/kulupu/utils/saturating"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
)

// BalanceLock restricts spending of Amount from an account balance.
type BalanceLock struct {
	ID     lock.ID `serialize:"true" json:"id"`
	Amount uint64  `serialize:"true" json:"amount"`
}

// Account is the ledger record of a single address. Locks overlap: the
// balance that cannot be spent is the largest lock, not their sum.
type Account struct {
	Balance uint64        `serialize:"true" json:"balance"`
	Locks   []BalanceLock `serialize:"true" json:"locks"`
}

// Locked returns the part of the balance covered by locks.
func (a *Account) Locked() uint64 {
	var locked uint64
	for _, l := range a.Locks {
		if l.Amount > locked {
			locked = l.Amount
		}
	}
	if locked > a.Balance {
		return a.Balance
	}
	return locked
}

// Spendable returns the part of the balance not covered by locks.
func (a *Account) Spendable() uint64 {
	return saturating.Sub64(a.Balance, a.Locked())
}

// Lock returns the amount locked under [id].
func (a *Account) Lock(id lock.ID) uint64 {
	for _, l := range a.Locks {
		if l.ID == id {
			return l.Amount
		}
	}
	return 0
}

// setLock replaces the lock under [id]. A zero amount removes it.
func (a *Account) setLock(id lock.ID, amount uint64) {
	i := slices.IndexFunc(a.Locks, func(l BalanceLock) bool {
		return l.ID == id
	})
	switch {
	case i < 0 && amount == 0:
	case i < 0:
		a.Locks = append(a.Locks, BalanceLock{ID: id, Amount: amount})
	case amount == 0:
		a.Locks = slices.Delete(a.Locks, i, i+1)
	default:
		a.Locks[i].Amount = amount
	}
}

func (a *Account) clone() *Account {
	return &Account{
		Balance: a.Balance,
		Locks:   slices.Clone(a.Locks),
	}
}
