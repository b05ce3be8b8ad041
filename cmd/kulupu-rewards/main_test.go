// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/stretchr/testify/require"

	"github.com/OIEIEIO/kulupu/config"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
)

var scenarioFlags = []string{
	"--reward-base=60",
	"--reward-min=1",
	"--reward-taxation=100000",
	"--lock-immediate=1",
	"--lock-divide=10",
	"--lock-period=100",
	"--lock-days=1",
	"--lock-max-locks=100",
	"--log-level=off",
}

func formatAddress(t *testing.T, addr ids.ShortID) string {
	addrStr, err := address.Format("X", constants.GetHRP(constants.LocalID), addr.Bytes())
	require.NoError(t, err)
	return addrStr
}

func execute(t *testing.T, args ...string) ([]byte, error) {
	t.Helper()
	out := &bytes.Buffer{}
	cmd := newRootCmd()
	cmd.SetOut(out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.Bytes(), err
}

func TestScheduleCmd(t *testing.T) {
	require := require.New(t)

	outBytes, err := execute(t, append([]string{"schedule", "--height=1"}, scenarioFlags...)...)
	require.NoError(err)

	out := scheduleOutput{}
	require.NoError(json.Unmarshal(outBytes, &out))
	require.Equal(uint64(60), out.Reward)
	require.Equal(uint64(54), out.MinerAmount)
	require.Equal(uint64(6), out.DonationAmount)
	require.Equal(uint64(50), out.Locked)
	require.Len(out.Locks, 10)
	require.Equal(lock.Entry{Height: 11, Amount: 5}, out.Locks[0])
	require.Equal(lock.Entry{Height: 101, Amount: 5}, out.Locks[9])
}

func TestScheduleCmdReward(t *testing.T) {
	require := require.New(t)

	outBytes, err := execute(t, "schedule", "--reward=1", "--reward-taxation=0")
	require.NoError(err)

	out := scheduleOutput{}
	require.NoError(json.Unmarshal(outBytes, &out))
	require.Equal(uint64(1), out.MinerAmount)
	require.Empty(out.Locks)
}

func TestScheduleCmdInvalidLockConfig(t *testing.T) {
	_, err := execute(t, "schedule", "--lock-divide=0", "--log-level=off")
	require.ErrorContains(t, err, "invalid lock config")
}

func TestSimulateCmd(t *testing.T) {
	require := require.New(t)

	author := formatAddress(t, ids.ShortID{1})
	donation := formatAddress(t, ids.ShortID{0xff})
	args := append([]string{
		"simulate",
		"--blocks=1",
		"--authors=" + author,
		"--donation-destination=" + donation,
	}, scenarioFlags...)

	outBytes, err := execute(t, args...)
	require.NoError(err)

	out := simulateOutput{}
	require.NoError(json.Unmarshal(outBytes, &out))
	require.Equal(uint64(1), out.LastRewarded)
	require.Equal(uint64(60), out.Supply)
	require.Equal(accountOutput{
		Address:   donation,
		Balance:   6,
		Spendable: 6,
	}, out.Donation)
	require.Equal([]accountOutput{{
		Address:   author,
		Balance:   54,
		Locked:    50,
		Spendable: 4,
		NumLocks:  10,
	}}, out.Authors)
}

func TestSimulateCmdBoundsLocks(t *testing.T) {
	require := require.New(t)

	first := formatAddress(t, ids.ShortID{1})
	second := formatAddress(t, ids.ShortID{2})
	args := append([]string{
		"simulate",
		"--blocks=400",
		"--authors=" + first + "," + second,
		"--donation-destination=" + formatAddress(t, ids.ShortID{0xff}),
	}, scenarioFlags...)
	args = append(args, "--lock-max-locks=20")

	outBytes, err := execute(t, args...)
	require.NoError(err)

	out := simulateOutput{}
	require.NoError(json.Unmarshal(outBytes, &out))
	require.Len(out.Authors, 2)
	for _, acc := range out.Authors {
		require.LessOrEqual(acc.NumLocks, 20)
		require.Equal(acc.Balance, acc.Locked+acc.Spendable)
	}
}

func TestSimulateCmdErrors(t *testing.T) {
	tests := map[string]struct {
		args        []string
		expectedErr error
	}{
		"No authors": {
			args: []string{
				"simulate",
				"--donation-destination=" + formatAddress(t, ids.ShortID{0xff}),
				"--log-level=off",
			},
			expectedErr: errNoAuthors,
		},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.ErrorIs(t, err, tt.expectedErr)
		})
	}
}

type bufferCloser struct {
	bytes.Buffer
}

func (*bufferCloser) Close() error {
	return nil
}

func TestNewLogger(t *testing.T) {
	require := require.New(t)

	dir := t.TempDir()
	display := &bufferCloser{}
	log := newLogger(config.LoggingConfig{
		Level:        logging.Debug,
		DisplayLevel: logging.Info,
		Directory:    dir,
		MaxSize:      1,
	}, display)
	log.Debug("only in file")
	log.Info("everywhere")
	log.Stop()

	require.Contains(display.String(), "everywhere")
	require.NotContains(display.String(), "only in file")

	fileBytes, err := os.ReadFile(filepath.Join(dir, logFileName))
	require.NoError(err)
	require.Contains(string(fileBytes), "everywhere")
	require.Contains(string(fileBytes), "only in file")
}
