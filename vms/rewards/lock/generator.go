// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package lock

import (
	"fmt"

	"github.com/OIEIEIO/kulupu/utils/saturating"
)

var _ Generator = (*generator)(nil)

// Generator decides how a freshly minted reward is vested.
type Generator interface {
	// GenerateRewardLocks returns the unlock schedule for [totalReward]
	// minted at [currentHeight]. It must be deterministic.
	GenerateRewardLocks(currentHeight, totalReward uint64) *Schedule
	// MaxLocks is the maximum number of unlock heights an account may have
	// outstanding.
	MaxLocks() uint32
}

type generator struct {
	immediate      uint64
	divide         uint64
	trancheSpacing uint64
	days           uint64
	maxLocks       uint32
}

// NewGenerator returns the tranche vesting policy described by [c]. [c] must
// have been verified.
func NewGenerator(c Config) Generator {
	return &generator{
		immediate:      c.Immediate,
		divide:         c.Divide,
		trancheSpacing: c.TotalLockPeriod / c.Divide,
		days:           c.Days,
		maxLocks:       c.MaxLocks,
	}
}

// GenerateRewardLocks keeps [immediate] spendable and splits the rest into
// [divide] equal tranches spaced evenly over the lock period. Tranche heights
// are rounded down to whole days. The division remainder is not locked and
// not returned.
//
// lockedReward = totalReward - immediate
// tranche = lockedReward / divide
// height(i) = floor((currentHeight + (i+1) * lockPeriod / divide) / days) * days
func (g *generator) GenerateRewardLocks(currentHeight, totalReward uint64) *Schedule {
	schedule := NewSchedule()

	lockedReward := saturating.Sub64(totalReward, g.immediate)
	if lockedReward == 0 {
		return schedule
	}

	tranche := lockedReward / g.divide
	for i := uint64(0); i < g.divide; i++ {
		estimate := saturating.Add64(currentHeight, saturating.Mul64(i+1, g.trancheSpacing))
		actual := estimate / g.days * g.days

		// tranches rounding to the same day overwrite each other
		schedule.Set(actual, tranche)
	}

	if uint32(schedule.Len()) > g.maxLocks {
		panic(fmt.Sprintf("generated %d locks, more than max locks %d", schedule.Len(), g.maxLocks))
	}
	return schedule
}

func (g *generator) MaxLocks() uint32 {
	return g.maxLocks
}
