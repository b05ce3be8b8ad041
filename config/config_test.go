// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/OIEIEIO/kulupu/genesis"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
)

var donation = ids.ShortID{0xff}

func donationAddress(t *testing.T) string {
	addr, err := address.Format("X", constants.GetHRP(constants.LocalID), donation.Bytes())
	require.NoError(t, err)
	return addr
}

func buildViper(t *testing.T, args ...string) *viper.Viper {
	t.Helper()
	fs := BuildFlagSet()
	require.NoError(t, fs.Parse(args))
	v, err := BuildViper(fs)
	require.NoError(t, err)
	return v
}

func TestGetConfigDefaults(t *testing.T) {
	require := require.New(t)
	v := buildViper(t, "--"+DonationDestinationKey+"="+donationAddress(t))

	c, err := GetConfig(v)
	require.NoError(err)
	require.Equal(constants.LocalID, c.NetworkID)
	require.Equal(uint16(9650), c.HTTPPort)
	require.Empty(c.DBDir)
	require.Equal(logging.Info, c.Logging.Level)
	require.Equal(logging.Info, c.Logging.DisplayLevel)
	require.False(c.Logging.JSON)

	require.Equal(donation, c.Genesis.DonationDestination)
	require.Equal(genesis.LocalParams, c.Genesis.Params)
}

func TestGetConfigFlags(t *testing.T) {
	require := require.New(t)
	v := buildViper(t,
		"--"+DonationDestinationKey+"="+donationAddress(t),
		"--"+RewardBaseKey+"=60",
		"--"+RewardMinKey+"=1",
		"--"+RewardCurveKey+"=10:70, 100:50",
		"--"+LockImmediateKey+"=1",
		"--"+LockDivideKey+"=10",
		"--"+LockPeriodKey+"=100",
		"--"+LockDaysKey+"=1",
		"--"+LockMaxLocksKey+"=20",
		"--"+LockConsolidationKey+"=latest",
		"--"+LogFormatKey+"=json",
		"--"+LogDisplayLevelKey+"=debug",
	)

	c, err := GetConfig(v)
	require.NoError(err)
	require.Equal(reward.Config{
		BaseReward: 60,
		MinReward:  1,
		Taxation:   genesis.LocalParams.Reward.Taxation,
		Curve:      reward.Curve{{Height: 10, Amount: 70}, {Height: 100, Amount: 50}},
	}, c.Genesis.Reward)
	require.Equal(lock.Config{
		Immediate:       1,
		Divide:          10,
		TotalLockPeriod: 100,
		Days:            1,
		MaxLocks:        20,
		Consolidation:   lock.PolicyLatest,
	}, c.Genesis.Lock)
	require.True(c.Logging.JSON)
	require.Equal(logging.Debug, c.Logging.DisplayLevel)
}

func TestGetConfigEnv(t *testing.T) {
	t.Setenv("KULUPU_REWARD_BASE", "77000000000")
	t.Setenv("KULUPU_DONATION_DESTINATION", donationAddress(t))

	c, err := GetConfig(buildViper(t))
	require.NoError(t, err)
	require.Equal(t, uint64(77000000000), c.Genesis.Reward.BaseReward)
}

func TestGetConfigFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"donation-destination": "`+donationAddress(t)+`",
		"http-port": 9000,
		"reward-curve": {"100": 50, "10": 70}
	}`), 0o600))

	c, err := GetConfig(buildViper(t, "--"+ConfigFileKey+"="+path))
	require.NoError(err)
	require.Equal(uint16(9000), c.HTTPPort)
	require.Equal(reward.Curve{{Height: 10, Amount: 70}, {Height: 100, Amount: 50}}, c.Genesis.Reward.Curve)
}

func TestGetConfigGenesisFile(t *testing.T) {
	require := require.New(t)

	path := filepath.Join(t.TempDir(), "genesis.json")
	require.NoError(os.WriteFile(path, []byte(`{
		"networkID": 12345,
		"donationDestination": "`+donationAddress(t)+`",
		"reward": {"baseReward": 60, "minReward": 1, "taxation": 100000},
		"lock": {"immediate": 1, "divide": 10, "totalLockPeriod": 100, "days": 1, "maxLocks": 100},
		"allocations": []
	}`), 0o600))

	c, err := GetConfig(buildViper(t, "--"+GenesisFileKey+"="+path))
	require.NoError(err)
	require.Equal(uint64(60), c.Genesis.Reward.BaseReward)
	require.Equal(lock.Policy(""), c.Genesis.Lock.Consolidation)
}

func TestGetConfigErrors(t *testing.T) {
	tests := map[string]struct {
		args        []string
		expectedErr error
	}{
		"No donation destination": {
			expectedErr: errNoDonation,
		},
		"Bad curve": {
			args:        []string{"--" + RewardCurveKey + "=10"},
			expectedErr: errInvalidBreakpoint,
		},
		"Port out of range": {
			args:        []string{"--" + HTTPPortKey + "=70000"},
			expectedErr: errInvalidPort,
		},
		"Unsorted curve": {
			args:        []string{"--" + RewardCurveKey + "=100:1,10:2"},
			expectedErr: reward.ErrUnsortedCurve,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			args := tt.args
			if tt.expectedErr != errNoDonation {
				args = append(args, "--"+DonationDestinationKey+"="+donationAddress(t))
			}
			_, err := GetConfig(buildViper(t, args...))
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

func TestParseCurve(t *testing.T) {
	tests := map[string]struct {
		value       interface{}
		expected    reward.Curve
		expectedErr error
	}{
		"Nil": {},
		"Empty string": {
			value: " ",
		},
		"String": {
			value:    "1:2,3:4",
			expected: reward.Curve{{Height: 1, Amount: 2}, {Height: 3, Amount: 4}},
		},
		"Map": {
			value:    map[string]interface{}{"3": "4", "1": 2},
			expected: reward.Curve{{Height: 1, Amount: 2}, {Height: 3, Amount: 4}},
		},
		"Negative amount": {
			value:       "1:-2",
			expectedErr: errInvalidBreakpoint,
		},
		"Not a curve": {
			value:       42,
			expectedErr: errInvalidBreakpoint,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			require := require.New(t)
			curve, err := ParseCurve(tt.value)
			require.ErrorIs(err, tt.expectedErr)
			require.Equal(tt.expected, curve)
		})
	}
}
