// Copyright (C) 2022, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/cache"
	"github.com/ava-labs/avalanchego/cache/metercacher"
	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/database/prefixdb"
	"github.com/ava-labs/avalanchego/database/versiondb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OIEIEIO/kulupu/utils/saturating"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
)

const accountCacheSize = 2048

var (
	// These are prefixes for db keys.
	// It's important to set different prefixes for each separate database objects.
	singletonStatePrefix = []byte("singleton")
	accountPrefix        = []byte("account")
	rewardLocksPrefix    = []byte("reward locks")

	_ State = (*state)(nil)

	ErrInsufficientFunds = errors.New("insufficient spendable funds")
)

// Ledger is the balance store rewards are paid into.
type Ledger interface {
	lock.Locker

	// Mint creates [amount] new tokens in [account].
	Mint(account ids.ShortID, amount uint64) error
	// Transfer moves [amount] spendable tokens from [from] to [to].
	Transfer(from, to ids.ShortID, amount uint64) error
}

type Chain interface {
	Ledger

	GetAccount(account ids.ShortID) (*Account, error)
	GetRewardLocks(account ids.ShortID) (*lock.Book, error)
	SetRewardLocks(account ids.ShortID, book *lock.Book)

	GetCurrentSupply() uint64

	GetRewardConfig() reward.Config
	SetRewardConfig(config reward.Config)

	// GetLastRewarded returns the last height a reward was issued at. The
	// bool is false if no reward was ever issued.
	GetLastRewarded() (uint64, bool)
	SetLastRewarded(height uint64)
}

// State persists the ledger and reward bookkeeping. Changes are buffered
// until Commit and dropped by Abort.
type State interface {
	SingletonState
	Chain

	Abort()
	Commit() error
	CommitBatch() (database.Batch, error)
	Close() error
}

type state struct {
	SingletonState
	baseDB *versiondb.Database

	singletonDB database.Database

	accountDB        database.Database
	accountCache     cache.Cacher[ids.ShortID, *Account] // account -> *Account. If the entry is nil, it isn't in the database
	modifiedAccounts map[ids.ShortID]*Account

	rewardLocksDB       database.Database
	modifiedRewardLocks map[ids.ShortID]*lock.Book

	currentSupply uint64
	lastRewarded  uint64
	hasRewarded   bool
	rewardConfig  reward.Config
}

type rewardLocks struct {
	Entries []lock.Entry `serialize:"true"`
}

func NewState(db database.Database, metricsReg prometheus.Registerer) (State, error) {
	baseDB := versiondb.New(db)
	singletonDB := prefixdb.New(singletonStatePrefix, baseDB)

	accountCache, err := metercacher.New[ids.ShortID, *Account](
		"account_cache",
		metricsReg,
		&cache.LRU[ids.ShortID, *Account]{Size: accountCacheSize},
	)
	if err != nil {
		return nil, err
	}

	s := &state{
		SingletonState: NewSingletonState(singletonDB),
		baseDB:         baseDB,
		singletonDB:    singletonDB,

		accountDB:        prefixdb.New(accountPrefix, baseDB),
		accountCache:     accountCache,
		modifiedAccounts: make(map[ids.ShortID]*Account),

		rewardLocksDB:       prefixdb.New(rewardLocksPrefix, baseDB),
		modifiedRewardLocks: make(map[ids.ShortID]*lock.Book),
	}
	if err := s.loadMetadata(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *state) loadMetadata() error {
	initialized, err := s.IsInitialized()
	if err != nil || !initialized {
		s.currentSupply = 0
		s.lastRewarded = 0
		s.hasRewarded = false
		s.rewardConfig = reward.Config{}
		return err
	}

	s.currentSupply, err = database.GetUInt64(s.singletonDB, currentSupplyKey)
	if err != nil {
		return fmt.Errorf("failed to load current supply: %w", err)
	}

	s.lastRewarded, err = database.GetUInt64(s.singletonDB, lastRewardedKey)
	switch {
	case err == nil:
		s.hasRewarded = true
	case errors.Is(err, database.ErrNotFound):
		s.hasRewarded = false
	default:
		return fmt.Errorf("failed to load last rewarded height: %w", err)
	}

	configBytes, err := s.singletonDB.Get(rewardConfigKey)
	if err != nil {
		return fmt.Errorf("failed to load reward config: %w", err)
	}
	s.rewardConfig = reward.Config{}
	if _, err := Codec.Unmarshal(configBytes, &s.rewardConfig); err != nil {
		return fmt.Errorf("failed to parse reward config: %w", err)
	}
	return nil
}

func (s *state) GetAccount(account ids.ShortID) (*Account, error) {
	if acc, exists := s.modifiedAccounts[account]; exists {
		return acc.clone(), nil
	}
	if acc, cached := s.accountCache.Get(account); cached {
		if acc == nil {
			return &Account{}, nil
		}
		return acc.clone(), nil
	}

	accountBytes, err := s.accountDB.Get(account[:])
	if errors.Is(err, database.ErrNotFound) {
		s.accountCache.Put(account, nil)
		return &Account{}, nil
	} else if err != nil {
		return nil, err
	}

	acc := &Account{}
	if _, err := Codec.Unmarshal(accountBytes, acc); err != nil {
		return nil, fmt.Errorf("failed to parse account %s: %w", account, err)
	}
	s.accountCache.Put(account, acc)
	return acc.clone(), nil
}

func (s *state) setAccount(account ids.ShortID, acc *Account) {
	s.modifiedAccounts[account] = acc
}

func (s *state) Mint(account ids.ShortID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	acc, err := s.GetAccount(account)
	if err != nil {
		return err
	}
	acc.Balance = saturating.Add64(acc.Balance, amount)
	s.setAccount(account, acc)
	s.currentSupply = saturating.Add64(s.currentSupply, amount)
	return nil
}

func (s *state) Transfer(from, to ids.ShortID, amount uint64) error {
	if amount == 0 {
		return nil
	}
	fromAcc, err := s.GetAccount(from)
	if err != nil {
		return err
	}
	if spendable := fromAcc.Spendable(); spendable < amount {
		return fmt.Errorf("%w: %s has %d, needs %d", ErrInsufficientFunds, from, spendable, amount)
	}
	if from == to {
		return nil
	}
	toAcc, err := s.GetAccount(to)
	if err != nil {
		return err
	}

	fromAcc.Balance -= amount
	toAcc.Balance = saturating.Add64(toAcc.Balance, amount)
	s.setAccount(from, fromAcc)
	s.setAccount(to, toAcc)
	return nil
}

func (s *state) SetLock(id lock.ID, account ids.ShortID, amount uint64) error {
	acc, err := s.GetAccount(account)
	if err != nil {
		return err
	}
	acc.setLock(id, amount)
	s.setAccount(account, acc)
	return nil
}

func (s *state) GetRewardLocks(account ids.ShortID) (*lock.Book, error) {
	if book, exists := s.modifiedRewardLocks[account]; exists {
		return book.Clone(), nil
	}

	locksBytes, err := s.rewardLocksDB.Get(account[:])
	if errors.Is(err, database.ErrNotFound) {
		return lock.NewBook(), nil
	} else if err != nil {
		return nil, err
	}

	locks := rewardLocks{}
	if _, err := Codec.Unmarshal(locksBytes, &locks); err != nil {
		return nil, fmt.Errorf("failed to parse reward locks of %s: %w", account, err)
	}
	return lock.NewBook(locks.Entries...), nil
}

func (s *state) SetRewardLocks(account ids.ShortID, book *lock.Book) {
	s.modifiedRewardLocks[account] = book.Clone()
}

func (s *state) GetCurrentSupply() uint64 {
	return s.currentSupply
}

func (s *state) GetRewardConfig() reward.Config {
	config := s.rewardConfig
	config.Curve = append(reward.Curve(nil), s.rewardConfig.Curve...)
	return config
}

func (s *state) SetRewardConfig(config reward.Config) {
	config.Curve = append(reward.Curve(nil), config.Curve...)
	s.rewardConfig = config
}

func (s *state) GetLastRewarded() (uint64, bool) {
	return s.lastRewarded, s.hasRewarded
}

func (s *state) SetLastRewarded(height uint64) {
	s.lastRewarded = height
	s.hasRewarded = true
}

// Commit commits pending operations to baseDB
func (s *state) Commit() error {
	defer s.Abort()
	batch, err := s.CommitBatch()
	if err != nil {
		return err
	}
	return batch.Write()
}

func (s *state) CommitBatch() (database.Batch, error) {
	if err := s.write(); err != nil {
		return nil, err
	}
	return s.baseDB.CommitBatch()
}

func (s *state) writeAccounts() error {
	for account, acc := range s.modifiedAccounts {
		account := account

		accountBytes, err := Codec.Marshal(Version, acc)
		if err != nil {
			return fmt.Errorf("failed to serialize account %s: %w", account, err)
		}

		delete(s.modifiedAccounts, account)
		// the batch may still fail to be written
		s.accountCache.Evict(account)
		if err := s.accountDB.Put(account[:], accountBytes); err != nil {
			return fmt.Errorf("failed to write account %s: %w", account, err)
		}
	}
	return nil
}

func (s *state) writeRewardLocks() error {
	for account, book := range s.modifiedRewardLocks {
		account := account
		delete(s.modifiedRewardLocks, account)

		if book.Len() == 0 {
			if err := s.rewardLocksDB.Delete(account[:]); err != nil {
				return fmt.Errorf("failed to delete reward locks of %s: %w", account, err)
			}
			continue
		}

		locksBytes, err := Codec.Marshal(Version, &rewardLocks{Entries: book.Entries()})
		if err != nil {
			return fmt.Errorf("failed to serialize reward locks of %s: %w", account, err)
		}
		if err := s.rewardLocksDB.Put(account[:], locksBytes); err != nil {
			return fmt.Errorf("failed to write reward locks of %s: %w", account, err)
		}
	}
	return nil
}

func (s *state) writeMetadata() error {
	configBytes, err := Codec.Marshal(Version, &s.rewardConfig)
	if err != nil {
		return fmt.Errorf("failed to serialize reward config: %w", err)
	}

	errs := wrappers.Errs{}
	errs.Add(
		database.PutUInt64(s.singletonDB, currentSupplyKey, s.currentSupply),
		s.singletonDB.Put(rewardConfigKey, configBytes),
	)
	if s.hasRewarded {
		errs.Add(database.PutUInt64(s.singletonDB, lastRewardedKey, s.lastRewarded))
	}
	return errs.Err
}

func (s *state) write() error {
	errs := wrappers.Errs{}
	errs.Add(
		s.writeAccounts(),
		s.writeRewardLocks(),
		s.writeMetadata(),
	)
	return errs.Err
}

// Abort drops every change that was not committed.
func (s *state) Abort() {
	s.baseDB.Abort()
	for account := range s.modifiedAccounts {
		delete(s.modifiedAccounts, account)
	}
	for account := range s.modifiedRewardLocks {
		delete(s.modifiedRewardLocks, account)
	}
	// a failed reload leaves the in-memory values of the aborted block; the
	// next Commit reports the database error
	_ = s.loadMetadata()
}

// Close closes the underlying base database
func (s *state) Close() error {
	errs := wrappers.Errs{}
	errs.Add(
		s.accountDB.Close(),
		s.rewardLocksDB.Close(),
		s.singletonDB.Close(),
		s.baseDB.Close(),
	)
	return errs.Err
}
