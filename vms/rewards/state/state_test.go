// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"math"
	"testing"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
)

var (
	testAccount = ids.GenerateTestShortID()
	testOther   = ids.GenerateTestShortID()
	otherLockID = lock.ID{'o', 't', 'h', 'e', 'r', ' ', ' ', ' '}
)

var errTestWrite = errors.New("test write failure")

// failingDB fails the next [failures] batch writes.
type failingDB struct {
	database.Database
	failures int
}

func (db *failingDB) NewBatch() database.Batch {
	return &failingBatch{Batch: db.Database.NewBatch(), db: db}
}

type failingBatch struct {
	database.Batch
	db *failingDB
}

func (b *failingBatch) Write() error {
	if b.db.failures > 0 {
		b.db.failures--
		return errTestWrite
	}
	return b.Batch.Write()
}

func newTestState(require *require.Assertions) (*memdb.Database, State) {
	db := memdb.New()
	s, err := NewState(db, prometheus.NewRegistry())
	require.NoError(err)
	return db, s
}

func TestMintAndTransfer(t *testing.T) {
	require := require.New(t)
	_, s := newTestState(require)

	require.NoError(s.Mint(testAccount, 100))
	require.NoError(s.Mint(testAccount, 0))
	require.Equal(uint64(100), s.GetCurrentSupply())

	require.NoError(s.SetLock(lock.RewardsID, testAccount, 60))
	require.NoError(s.Transfer(testAccount, testOther, 40))
	require.ErrorIs(s.Transfer(testAccount, testOther, 1), ErrInsufficientFunds)

	from, err := s.GetAccount(testAccount)
	require.NoError(err)
	require.Equal(uint64(60), from.Balance)
	require.Zero(from.Spendable())

	to, err := s.GetAccount(testOther)
	require.NoError(err)
	require.Equal(uint64(40), to.Balance)
	require.Equal(uint64(40), to.Spendable())

	// transfers don't change the supply
	require.Equal(uint64(100), s.GetCurrentSupply())
}

func TestMintSaturates(t *testing.T) {
	require := require.New(t)
	_, s := newTestState(require)

	require.NoError(s.Mint(testAccount, math.MaxUint64))
	require.NoError(s.Mint(testAccount, 1))

	acc, err := s.GetAccount(testAccount)
	require.NoError(err)
	require.Equal(uint64(math.MaxUint64), acc.Balance)
	require.Equal(uint64(math.MaxUint64), s.GetCurrentSupply())
}

func TestSetLock(t *testing.T) {
	tests := map[string]struct {
		locks     map[lock.ID]uint64
		balance   uint64
		locked    uint64
		spendable uint64
	}{
		"no locks": {
			balance:   10,
			spendable: 10,
		},
		"single lock": {
			locks:     map[lock.ID]uint64{lock.RewardsID: 4},
			balance:   10,
			locked:    4,
			spendable: 6,
		},
		"locks overlap": {
			locks:     map[lock.ID]uint64{lock.RewardsID: 4, otherLockID: 7},
			balance:   10,
			locked:    7,
			spendable: 3,
		},
		"lock larger than balance": {
			locks:     map[lock.ID]uint64{lock.RewardsID: 40},
			balance:   10,
			locked:    10,
			spendable: 0,
		},
		"zero lock removes": {
			locks:     map[lock.ID]uint64{lock.RewardsID: 0},
			balance:   10,
			spendable: 10,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			_, s := newTestState(require)

			require.NoError(s.Mint(testAccount, tt.balance))
			require.NoError(s.SetLock(lock.RewardsID, testAccount, 99))
			for id, amount := range tt.locks {
				require.NoError(s.SetLock(id, testAccount, amount))
			}
			if _, ok := tt.locks[lock.RewardsID]; !ok {
				require.NoError(s.SetLock(lock.RewardsID, testAccount, 0))
			}

			acc, err := s.GetAccount(testAccount)
			require.NoError(err)
			require.Equal(tt.locked, acc.Locked())
			require.Equal(tt.spendable, acc.Spendable())
			require.LessOrEqual(len(acc.Locks), len(tt.locks))
		})
	}
}

func TestCommitAndReload(t *testing.T) {
	require := require.New(t)
	db, s := newTestState(require)

	config := reward.Config{
		BaseReward: 60,
		MinReward:  1,
		Taxation:   100_000,
		Curve:      reward.Curve{{Height: 10, Amount: 30}},
	}
	s.SetRewardConfig(config)
	s.SetLastRewarded(7)
	require.NoError(s.Mint(testAccount, 54))
	require.NoError(s.SetLock(lock.RewardsID, testAccount, 50))
	s.SetRewardLocks(testAccount, lock.NewBook(lock.Entry{Height: 11, Amount: 25}, lock.Entry{Height: 21, Amount: 25}))
	s.SetRewardLocks(testOther, lock.NewBook())
	require.NoError(s.SetInitialized())
	require.NoError(s.Commit())

	reloaded, err := NewState(db, prometheus.NewRegistry())
	require.NoError(err)

	initialized, err := reloaded.IsInitialized()
	require.NoError(err)
	require.True(initialized)

	require.Equal(uint64(54), reloaded.GetCurrentSupply())
	height, ok := reloaded.GetLastRewarded()
	require.True(ok)
	require.Equal(uint64(7), height)

	gotConfig := reloaded.GetRewardConfig()
	require.Equal(config.BaseReward, gotConfig.BaseReward)
	require.Equal(config.MinReward, gotConfig.MinReward)
	require.Equal(config.Taxation, gotConfig.Taxation)
	require.Equal(config.Curve, gotConfig.Curve)

	acc, err := reloaded.GetAccount(testAccount)
	require.NoError(err)
	require.Equal(uint64(54), acc.Balance)
	require.Equal(uint64(50), acc.Lock(lock.RewardsID))

	book, err := reloaded.GetRewardLocks(testAccount)
	require.NoError(err)
	require.Equal([]lock.Entry{{Height: 11, Amount: 25}, {Height: 21, Amount: 25}}, book.Entries())

	empty, err := reloaded.GetRewardLocks(testOther)
	require.NoError(err)
	require.Zero(empty.Len())
}

func TestAbort(t *testing.T) {
	require := require.New(t)
	_, s := newTestState(require)

	s.SetRewardConfig(reward.Config{BaseReward: 60})
	require.NoError(s.Mint(testAccount, 10))
	require.NoError(s.SetInitialized())
	require.NoError(s.Commit())

	require.NoError(s.Mint(testAccount, 5))
	s.SetLastRewarded(3)
	s.SetRewardLocks(testAccount, lock.NewBook(lock.Entry{Height: 3, Amount: 1}))
	s.Abort()

	acc, err := s.GetAccount(testAccount)
	require.NoError(err)
	require.Equal(uint64(10), acc.Balance)
	require.Equal(uint64(10), s.GetCurrentSupply())
	_, ok := s.GetLastRewarded()
	require.False(ok)
	book, err := s.GetRewardLocks(testAccount)
	require.NoError(err)
	require.Zero(book.Len())
}

func TestRewardLocksAreCopied(t *testing.T) {
	require := require.New(t)
	_, s := newTestState(require)

	book := lock.NewBook(lock.Entry{Height: 1, Amount: 1})
	s.SetRewardLocks(testAccount, book)
	book.Set(2, 2)

	stored, err := s.GetRewardLocks(testAccount)
	require.NoError(err)
	require.Equal(1, stored.Len())

	stored.Set(3, 3)
	again, err := s.GetRewardLocks(testAccount)
	require.NoError(err)
	require.Equal(1, again.Len())
}

func TestFailedCommitIsRolledBack(t *testing.T) {
	require := require.New(t)

	db := &failingDB{Database: memdb.New()}
	s, err := NewState(db, prometheus.NewRegistry())
	require.NoError(err)
	require.NoError(s.SetInitialized())
	require.NoError(s.Commit())

	// cache the account before it is modified
	_, err = s.GetAccount(testAccount)
	require.NoError(err)

	db.failures = 1
	require.NoError(s.Mint(testAccount, 100))
	require.ErrorIs(s.Commit(), errTestWrite)

	acc, err := s.GetAccount(testAccount)
	require.NoError(err)
	require.Zero(acc.Balance)
	require.Zero(s.GetCurrentSupply())

	require.NoError(s.Mint(testOther, 1))
	require.NoError(s.Commit())

	reloaded, err := NewState(db, prometheus.NewRegistry())
	require.NoError(err)
	acc, err = reloaded.GetAccount(testAccount)
	require.NoError(err)
	require.Zero(acc.Balance)
	other, err := reloaded.GetAccount(testOther)
	require.NoError(err)
	require.Equal(uint64(1), other.Balance)
	require.Equal(uint64(1), reloaded.GetCurrentSupply())
}
