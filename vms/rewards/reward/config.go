// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package reward

import (
	"errors"
	"fmt"
	"math/big"
)

// PercentDenominator is the denominator used to calculate percentages
const PercentDenominator = 1_000_000

// bigPercentDenominator is the magnitude offset used to emulate
// floating point fractions.
var bigPercentDenominator = new(big.Int).SetUint64(PercentDenominator)

var (
	ErrInvalidTaxation = errors.New("taxation rate exceeds percent denominator")
	ErrRewardTooLow    = errors.New("reward is below minimum reward")
)

type Config struct {
	// BaseReward is the reward issued per block when the curve has no
	// breakpoint at or below the block height.
	BaseReward uint64 `serialize:"true" json:"baseReward"`

	// MinReward is the smallest base reward that may be configured. An
	// account receiving less than this would not survive in the ledger.
	MinReward uint64 `serialize:"true" json:"minReward"`

	// Taxation is the fraction of every block reward sent to the donation
	// destination, multiplied by PercentDenominator.
	Taxation uint64 `serialize:"true" json:"taxation"`

	// Curve overrides BaseReward starting at given heights.
	Curve Curve `serialize:"true" json:"curve"`
}

func (c *Config) Verify() error {
	if c.Taxation > PercentDenominator {
		return fmt.Errorf("%w: %d > %d", ErrInvalidTaxation, c.Taxation, PercentDenominator)
	}
	if c.BaseReward < c.MinReward {
		return fmt.Errorf("%w: %d < %d", ErrRewardTooLow, c.BaseReward, c.MinReward)
	}
	return c.Curve.Verify()
}

// Reward returns the block reward at [height].
func (c *Config) Reward(height uint64) uint64 {
	return c.Curve.Evaluate(height, c.BaseReward)
}
