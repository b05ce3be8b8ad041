// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/units"

	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
	"github.com/OIEIEIO/kulupu/vms/rewards/state"
)

// BlocksPerDay is the number of blocks mined per day at the one minute
// target block time.
const BlocksPerDay = 24 * 60

var (
	errEmptyDonationDestination = errors.New("donation destination is empty")
	errDuplicatedAllocation     = errors.New("allocation address is duplicated")
	errInvalidRewardConfig      = errors.New("invalid reward config")
	errInvalidLockConfig        = errors.New("invalid lock config")

	// LocalParams are the defaults used by local networks and by flags that
	// are not set.
	LocalParams = Params{
		Reward: reward.Config{
			BaseReward: 60 * units.Avax,
			MinReward:  units.MilliAvax,
			Taxation:   100_000,
		},
		Lock: lock.Config{
			Immediate:       units.Avax,
			Divide:          10,
			TotalLockPeriod: 100 * BlocksPerDay,
			Days:            BlocksPerDay,
			// one unlock height per day of the lock period
			MaxLocks:      100,
			Consolidation: lock.PolicyNearest,
		},
	}
)

type Params struct {
	Reward reward.Config `json:"reward"`
	Lock   lock.Config   `json:"lock"`
}

type Allocation struct {
	Address ids.ShortID
	Amount  uint64
}

type Config struct {
	NetworkID           uint32
	DonationDestination ids.ShortID
	Params
	Allocations []Allocation
	Message     string
}

func (c *Config) Verify() error {
	if c.DonationDestination == ids.ShortEmpty {
		return errEmptyDonationDestination
	}
	if err := c.Reward.Verify(); err != nil {
		return fmt.Errorf("%w: %w", errInvalidRewardConfig, err)
	}
	if err := c.Lock.Verify(); err != nil {
		return fmt.Errorf("%w: %w", errInvalidLockConfig, err)
	}

	addresses := make(map[ids.ShortID]struct{}, len(c.Allocations))
	for _, a := range c.Allocations {
		if _, ok := addresses[a.Address]; ok {
			return fmt.Errorf("%w: %s", errDuplicatedAllocation, a.Address)
		}
		addresses[a.Address] = struct{}{}
	}
	return nil
}

// Apply writes the genesis balances and reward configuration into [chain].
func (c *Config) Apply(chain state.Chain) error {
	chain.SetRewardConfig(c.Reward)
	for _, a := range c.Allocations {
		if err := chain.Mint(a.Address, a.Amount); err != nil {
			return fmt.Errorf("couldn't mint allocation of %s: %w", a.Address, err)
		}
	}
	return nil
}

// FromJSON parses and verifies a genesis in its unparsed json form.
func FromJSON(genesisBytes []byte) (*Config, error) {
	uc := UnparsedConfig{}
	if err := json.Unmarshal(genesisBytes, &uc); err != nil {
		return nil, fmt.Errorf("unable to unmarshal genesis: %w", err)
	}
	c, err := uc.Parse()
	if err != nil {
		return nil, fmt.Errorf("unable to parse genesis: %w", err)
	}
	if err := c.Verify(); err != nil {
		return nil, fmt.Errorf("genesis config validation failed: %w", err)
	}
	return &c, nil
}

// FromFile reads the genesis at [path].
func FromFile(path string) (*Config, error) {
	genesisBytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read genesis file %q: %w", path, err)
	}
	return FromJSON(genesisBytes)
}

// Local returns a local network genesis donating to [donationDestination].
func Local(donationDestination ids.ShortID) *Config {
	return &Config{
		NetworkID:           constants.LocalID,
		DonationDestination: donationDestination,
		Params:              LocalParams,
	}
}
