// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lock

import (
	"errors"
	"fmt"
)

var (
	errZeroDivide          = errors.New("divide must be positive")
	errZeroDays            = errors.New("days must be positive")
	errZeroMaxLocks        = errors.New("max locks must be positive")
	errMaxLocksBelowDivide = errors.New("max locks is lower than divide")
	errPeriodBelowDivide   = errors.New("total lock period is shorter than divide")
	errUnknownPolicy       = errors.New("unknown consolidation policy")
)

type Config struct {
	// Immediate is the part of every reward that is never locked
	Immediate uint64 `json:"immediate"`
	// Divide is the number of tranches the locked reward is split into
	Divide uint64 `json:"divide"`
	// TotalLockPeriod, in blocks, is the height distance between the reward
	// and its last tranche
	TotalLockPeriod uint64 `json:"totalLockPeriod"`
	// Days is the granularity, in blocks, unlock heights are rounded down to
	Days uint64 `json:"days"`
	// MaxLocks is the maximum number of outstanding unlock heights tracked
	// for a single account
	MaxLocks uint32 `json:"maxLocks"`
	// Consolidation selects how surplus unlock heights are merged once an
	// account reaches MaxLocks
	Consolidation Policy `json:"consolidation"`
}

func (c *Config) Verify() error {
	switch {
	case c.Divide == 0:
		return errZeroDivide
	case c.Days == 0:
		return errZeroDays
	case c.MaxLocks == 0:
		return errZeroMaxLocks
	case uint64(c.MaxLocks) < c.Divide:
		return fmt.Errorf("%w: %d < %d", errMaxLocksBelowDivide, c.MaxLocks, c.Divide)
	case c.TotalLockPeriod < c.Divide:
		return fmt.Errorf("%w: %d < %d", errPeriodBelowDivide, c.TotalLockPeriod, c.Divide)
	}
	if _, ok := consolidators[c.Consolidation]; !ok {
		return fmt.Errorf("%w: %q", errUnknownPolicy, c.Consolidation)
	}
	return nil
}
