// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/database/memdb"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
	"github.com/OIEIEIO/kulupu/vms/rewards/state"
)

func TestConfigVerify(t *testing.T) {
	donation := ids.ShortID{0xff}

	tests := map[string]struct {
		config      func() *Config
		expectedErr error
	}{
		"OK": {
			config: func() *Config { return Local(donation) },
		},
		"Empty donation destination": {
			config:      func() *Config { return Local(ids.ShortEmpty) },
			expectedErr: errEmptyDonationDestination,
		},
		"Taxation above denominator": {
			config: func() *Config {
				c := Local(donation)
				c.Reward.Taxation = reward.PercentDenominator + 1
				return c
			},
			expectedErr: reward.ErrInvalidTaxation,
		},
		"Unsorted curve": {
			config: func() *Config {
				c := Local(donation)
				c.Reward.Curve = reward.Curve{{Height: 10, Amount: 1}, {Height: 5, Amount: 2}}
				return c
			},
			expectedErr: reward.ErrUnsortedCurve,
		},
		"Invalid lock config": {
			config: func() *Config {
				c := Local(donation)
				c.Lock.Divide = 0
				return c
			},
			expectedErr: errInvalidLockConfig,
		},
		"Duplicated allocation": {
			config: func() *Config {
				c := Local(donation)
				c.Allocations = []Allocation{
					{Address: ids.ShortID{1}, Amount: 1},
					{Address: ids.ShortID{1}, Amount: 2},
				}
				return c
			},
			expectedErr: errDuplicatedAllocation,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require.ErrorIs(t, tt.config().Verify(), tt.expectedErr)
		})
	}
}

func TestLocalParamsVerify(t *testing.T) {
	require := require.New(t)
	require.NoError(LocalParams.Reward.Verify())
	require.NoError(LocalParams.Lock.Verify())
	require.Equal(lock.PolicyNearest, LocalParams.Lock.Consolidation)
}

func TestFromFile(t *testing.T) {
	require := require.New(t)

	c := Local(ids.ShortID{0xff})
	c.Allocations = []Allocation{{Address: ids.ShortID{1}, Amount: 42}}
	uc, err := c.Unparse()
	require.NoError(err)
	genesisBytes, err := json.Marshal(uc)
	require.NoError(err)

	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(os.WriteFile(path, genesisBytes, 0o600))

	parsed, err := FromFile(path)
	require.NoError(err)
	require.Equal(c, parsed)

	_, err = FromFile(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorContains(err, "unable to read genesis file")

	_, err = FromJSON([]byte(`{"networkID":12345,"donationDestination":""}`))
	require.ErrorContains(err, "unable to parse genesis")
}

func TestFromJSONRejectsInvalidConfig(t *testing.T) {
	c := Local(ids.ShortID{0xff})
	c.Reward.BaseReward = 0
	uc, err := c.Unparse()
	require.NoError(t, err)
	genesisBytes, err := json.Marshal(uc)
	require.NoError(t, err)

	_, err = FromJSON(genesisBytes)
	require.ErrorIs(t, err, reward.ErrRewardTooLow)
}

func TestApply(t *testing.T) {
	require := require.New(t)

	s, err := state.NewState(memdb.New(), prometheus.NewRegistry())
	require.NoError(err)

	c := Local(ids.ShortID{0xff})
	c.NetworkID = constants.LocalID
	c.Allocations = []Allocation{
		{Address: ids.ShortID{1}, Amount: 10},
		{Address: ids.ShortID{2}, Amount: 20},
	}
	require.NoError(c.Apply(s))

	require.Equal(uint64(30), s.GetCurrentSupply())
	require.Equal(c.Reward, s.GetRewardConfig())
	acc, err := s.GetAccount(ids.ShortID{2})
	require.NoError(err)
	require.Equal(uint64(20), acc.Balance)
}
