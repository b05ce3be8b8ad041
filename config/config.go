// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"errors"
	"fmt"
	"math"
	"path/filepath"
	"strings"

	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/spf13/cast"
	"github.com/spf13/viper"

	"github.com/OIEIEIO/kulupu/genesis"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
)

var (
	errInvalidBreakpoint = errors.New("invalid reward curve breakpoint")
	errInvalidPort       = errors.New("invalid http port")
	errInvalidMaxLocks   = errors.New("invalid max locks")
	errNoDonation        = fmt.Errorf("%s must be set when no genesis file is given", DonationDestinationKey)
)

type Config struct {
	NetworkID uint32
	Genesis   *genesis.Config

	// DBDir is empty for an in-memory database
	DBDir     string
	IndexFile string

	HTTPHost string
	HTTPPort uint16

	Logging LoggingConfig
}

type LoggingConfig struct {
	Level        logging.Level
	DisplayLevel logging.Level
	JSON         bool
	// Directory is empty if logs are only displayed
	Directory string
	MaxSize   int
	MaxFiles  int
	MaxAge    int
	Compress  bool
}

// GetConfig reads the node configuration from [v].
func GetConfig(v *viper.Viper) (Config, error) {
	c := Config{
		DBDir:     v.GetString(DBDirKey),
		IndexFile: v.GetString(IndexFileKey),
		HTTPHost:  v.GetString(HTTPHostKey),
	}

	networkID, err := cast.ToUint32E(v.Get(NetworkIDKey))
	if err != nil {
		return Config{}, fmt.Errorf("invalid %s: %w", NetworkIDKey, err)
	}
	c.NetworkID = networkID

	port := v.GetUint(HTTPPortKey)
	if port > math.MaxUint16 {
		return Config{}, fmt.Errorf("%w: %d", errInvalidPort, port)
	}
	c.HTTPPort = uint16(port)

	c.Logging, err = getLoggingConfig(v)
	if err != nil {
		return Config{}, err
	}

	c.Genesis, err = getGenesis(v, networkID)
	if err != nil {
		return Config{}, err
	}
	return c, nil
}

func getLoggingConfig(v *viper.Viper) (LoggingConfig, error) {
	c := LoggingConfig{
		MaxSize:  int(v.GetUint(LogMaxSizeKey)),
		MaxFiles: int(v.GetUint(LogMaxFilesKey)),
		MaxAge:   int(v.GetUint(LogMaxAgeKey)),
		Compress: v.GetBool(LogCompressKey),
	}

	var err error
	c.Level, err = logging.ToLevel(v.GetString(LogLevelKey))
	if err != nil {
		return c, err
	}
	c.DisplayLevel = c.Level
	if displayLevel := v.GetString(LogDisplayLevelKey); displayLevel != "" {
		c.DisplayLevel, err = logging.ToLevel(displayLevel)
		if err != nil {
			return c, err
		}
	}

	switch format := strings.ToLower(v.GetString(LogFormatKey)); format {
	case "plain":
	case "json":
		c.JSON = true
	default:
		return c, fmt.Errorf("unknown %s %q", LogFormatKey, format)
	}

	if dir := v.GetString(LogDirKey); dir != "" {
		c.Directory = filepath.Clean(dir)
	}
	return c, nil
}

// getGenesis loads the genesis file if one is set. Otherwise the genesis is
// built from the reward and lock flags.
func getGenesis(v *viper.Viper, networkID uint32) (*genesis.Config, error) {
	if genesisFile := v.GetString(GenesisFileKey); genesisFile != "" {
		return genesis.FromFile(genesisFile)
	}

	donationStr := v.GetString(DonationDestinationKey)
	if donationStr == "" {
		return nil, errNoDonation
	}
	donation, err := address.ParseToID(donationStr)
	if err != nil {
		return nil, fmt.Errorf("couldn't parse %s: %w", DonationDestinationKey, err)
	}

	params, err := GetParams(v)
	if err != nil {
		return nil, err
	}

	c := &genesis.Config{
		NetworkID:           networkID,
		DonationDestination: donation,
		Params:              params,
	}
	if err := c.Verify(); err != nil {
		return nil, err
	}
	return c, nil
}

// GetParams reads the reward and lock parameters from [v].
func GetParams(v *viper.Viper) (genesis.Params, error) {
	curve, err := ParseCurve(v.Get(RewardCurveKey))
	if err != nil {
		return genesis.Params{}, err
	}
	maxLocks := v.GetUint64(LockMaxLocksKey)
	if maxLocks > math.MaxUint32 {
		return genesis.Params{}, fmt.Errorf("%w: %d", errInvalidMaxLocks, maxLocks)
	}

	return genesis.Params{
		Reward: reward.Config{
			BaseReward: v.GetUint64(RewardBaseKey),
			MinReward:  v.GetUint64(RewardMinKey),
			Taxation:   v.GetUint64(RewardTaxationKey),
			Curve:      curve,
		},
		Lock: lock.Config{
			Immediate:       v.GetUint64(LockImmediateKey),
			Divide:          v.GetUint64(LockDivideKey),
			TotalLockPeriod: v.GetUint64(LockPeriodKey),
			Days:            v.GetUint64(LockDaysKey),
			MaxLocks:        uint32(maxLocks),
			Consolidation:   lock.Policy(v.GetString(LockConsolidationKey)),
		},
	}, nil
}

// ParseCurve reads reward breakpoints either from a "height:amount" comma
// separated string, as given on the command line, or from a height to
// amount map, as given in a config file.
func ParseCurve(value interface{}) (reward.Curve, error) {
	var curve reward.Curve
	switch value := value.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(value) == "" {
			return nil, nil
		}
		for _, part := range strings.Split(value, ",") {
			height, amount, ok := strings.Cut(strings.TrimSpace(part), ":")
			if !ok {
				return nil, fmt.Errorf("%w: %q", errInvalidBreakpoint, part)
			}
			bp, err := toBreakpoint(height, amount)
			if err != nil {
				return nil, err
			}
			curve = append(curve, bp)
		}
	default:
		m, err := cast.ToStringMapE(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errInvalidBreakpoint, err)
		}
		for height, amount := range m {
			bp, err := toBreakpoint(height, amount)
			if err != nil {
				return nil, err
			}
			curve = append(curve, bp)
		}
		// map iteration order is random
		curve = curve.Sorted()
	}
	return curve, nil
}

func toBreakpoint(height, amount interface{}) (reward.Breakpoint, error) {
	h, err := cast.ToUint64E(height)
	if err != nil {
		return reward.Breakpoint{}, fmt.Errorf("%w: height %v: %w", errInvalidBreakpoint, height, err)
	}
	a, err := cast.ToUint64E(amount)
	if err != nil {
		return reward.Breakpoint{}, fmt.Errorf("%w: amount %v: %w", errInvalidBreakpoint, amount, err)
	}
	return reward.Breakpoint{Height: h, Amount: a}, nil
}
