// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

// Package indexer persists reward events so they can be queried by height
// and by block author.
package indexer

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"
	bolt "go.etcd.io/bbolt"
	"go.uber.org/zap"

	"github.com/OIEIEIO/kulupu/vms/rewards/events"
)

var (
	_ events.Visitor = (*Indexer)(nil)

	ErrNotFound = errors.New("not found")

	bucketRewards = []byte("rewards")
	bucketAuthors = []byte("authors")
	bucketChanges = []byte("changes")
)

// Indexer is an event subscriber backed by a bbolt file.
type Indexer struct {
	db  *bolt.DB
	log logging.Logger
}

// Change is a stored configuration or unlock event.
type Change struct {
	Sequence uint64          `json:"sequence"`
	Kind     string          `json:"kind"`
	Event    json.RawMessage `json:"event"`
}

func New(path string, log logging.Logger) (*Indexer, error) {
	db, err := bolt.Open(path, 0o600, &bolt.Options{
		Timeout: 1 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("open index %s: %w", path, err)
	}
	if err := db.Update(func(tx *bolt.Tx) error {
		for _, b := range [][]byte{bucketRewards, bucketAuthors, bucketChanges} {
			if _, err := tx.CreateBucketIfNotExists(b); err != nil {
				return fmt.Errorf("create bucket %s: %w", string(b), err)
			}
		}
		return nil
	}); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Indexer{db: db, log: log}, nil
}

func (i *Indexer) Close() error {
	return i.db.Close()
}

func heightKey(height uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, height)
	return key
}

func authorKey(author ids.ShortID, height uint64) []byte {
	key := make([]byte, 0, ids.ShortIDLen+8)
	key = append(key, author[:]...)
	return append(key, heightKey(height)...)
}

func (i *Indexer) Rewarded(e *events.Rewarded) error {
	value, err := json.Marshal(e)
	if err != nil {
		return err
	}
	err = i.db.Update(func(tx *bolt.Tx) error {
		if err := tx.Bucket(bucketRewards).Put(heightKey(e.Height), value); err != nil {
			return err
		}
		return tx.Bucket(bucketAuthors).Put(authorKey(e.Author, e.Height), []byte{})
	})
	if err != nil {
		return fmt.Errorf("index reward at %d: %w", e.Height, err)
	}
	i.log.Verbo("indexed reward",
		zap.Uint64("height", e.Height),
		zap.Stringer("author", e.Author),
	)
	return nil
}

func (i *Indexer) RewardChanged(e *events.RewardChanged) error {
	return i.putChange("rewardChanged", e)
}

func (i *Indexer) TaxationChanged(e *events.TaxationChanged) error {
	return i.putChange("taxationChanged", e)
}

func (i *Indexer) CurveChanged(e *events.CurveChanged) error {
	return i.putChange("curveChanged", e)
}

func (i *Indexer) LocksUnlocked(e *events.LocksUnlocked) error {
	return i.putChange("locksUnlocked", e)
}

// Skipped blocks minted nothing, so there is nothing to index.
func (*Indexer) Skipped(*events.Skipped) error {
	return nil
}

func (i *Indexer) putChange(kind string, e events.Event) error {
	eventBytes, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return i.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketChanges)
		seq, err := b.NextSequence()
		if err != nil {
			return err
		}
		value, err := json.Marshal(Change{
			Sequence: seq,
			Kind:     kind,
			Event:    eventBytes,
		})
		if err != nil {
			return err
		}
		return b.Put(heightKey(seq), value)
	})
}

// GetRewarded returns the reward issued at [height].
func (i *Indexer) GetRewarded(height uint64) (*events.Rewarded, error) {
	var e *events.Rewarded
	err := i.db.View(func(tx *bolt.Tx) error {
		v := tx.Bucket(bucketRewards).Get(heightKey(height))
		if v == nil {
			return fmt.Errorf("%w: reward at height %d", ErrNotFound, height)
		}
		e = &events.Rewarded{}
		return json.Unmarshal(v, e)
	})
	return e, err
}

// Rewards returns up to [limit] rewards at or above [start], ordered by
// height.
func (i *Indexer) Rewards(start uint64, limit int) ([]*events.Rewarded, error) {
	var rewards []*events.Rewarded
	err := i.db.View(func(tx *bolt.Tx) error {
		c := tx.Bucket(bucketRewards).Cursor()
		for k, v := c.Seek(heightKey(start)); k != nil && len(rewards) < limit; k, v = c.Next() {
			e := &events.Rewarded{}
			if err := json.Unmarshal(v, e); err != nil {
				return err
			}
			rewards = append(rewards, e)
		}
		return nil
	})
	return rewards, err
}

// RewardsOf returns up to [limit] rewards of [author] at or above [start],
// ordered by height.
func (i *Indexer) RewardsOf(author ids.ShortID, start uint64, limit int) ([]*events.Rewarded, error) {
	var rewards []*events.Rewarded
	err := i.db.View(func(tx *bolt.Tx) error {
		rewardBucket := tx.Bucket(bucketRewards)
		c := tx.Bucket(bucketAuthors).Cursor()
		prefix := author[:]
		for k, _ := c.Seek(authorKey(author, start)); k != nil && bytes.HasPrefix(k, prefix) && len(rewards) < limit; k, _ = c.Next() {
			v := rewardBucket.Get(k[len(prefix):])
			if v == nil {
				return fmt.Errorf("%w: reward at height %d", ErrNotFound, binary.BigEndian.Uint64(k[len(prefix):]))
			}
			e := &events.Rewarded{}
			if err := json.Unmarshal(v, e); err != nil {
				return err
			}
			rewards = append(rewards, e)
		}
		return nil
	})
	return rewards, err
}

// Changes returns every stored non-reward event in emission order.
func (i *Indexer) Changes() ([]Change, error) {
	var changes []Change
	err := i.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket(bucketChanges).ForEach(func(_, v []byte) error {
			var c Change
			if err := json.Unmarshal(v, &c); err != nil {
				return err
			}
			changes = append(changes, c)
			return nil
		})
	})
	return changes, err
}
