// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package config

import (
	"flag"
	"fmt"
	"strings"

	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/OIEIEIO/kulupu/genesis"
)

// EnvPrefix prefixes the environment variables overriding flags, e.g.
// KULUPU_REWARD_BASE overrides --reward-base.
const EnvPrefix = "kulupu"

const appName = "kulupu-rewards"

func addNodeFlags(fs *flag.FlagSet) {
	fs.String(ConfigFileKey, "", "Specifies a config file")
	fs.Uint(NetworkIDKey, uint(constants.LocalID), "Network ID this node runs on")
	fs.String(GenesisFileKey, "", "Specifies a genesis config file. Genesis is built from the reward and lock flags if empty")
	fs.String(DBDirKey, "", "Path to the database directory. The database is kept in memory if empty")
	fs.String(IndexFileKey, "", "Path to the reward index file. Rewards aren't indexed if empty")
	fs.String(HTTPHostKey, "127.0.0.1", "Address of the HTTP server")
	fs.Uint(HTTPPortKey, 9650, "Port of the HTTP server")
}

func addLogFlags(fs *flag.FlagSet) {
	fs.String(LogLevelKey, "info", "The log level. Should be one of {verbo, debug, trace, info, warn, error, fatal, off}")
	fs.String(LogDisplayLevelKey, "", "The log display level. If left blank, will inherit the value of log-level")
	fs.String(LogFormatKey, "plain", "The structure of log format. Should be one of {plain, json}")
	fs.String(LogDirKey, "", "Logging directory. Logs are only displayed if empty")
	fs.Uint(LogMaxSizeKey, 8, "The maximum file size in megabytes of the log file before it gets rotated")
	fs.Uint(LogMaxFilesKey, 7, "The maximum number of old log files to retain. 0 means retain all old log files")
	fs.Uint(LogMaxAgeKey, 0, "The maximum number of days to retain old log files based on the timestamp encoded in their filename. 0 means retain all old log files")
	fs.Bool(LogCompressKey, false, "Enables the compression of rotated log files through gzip")
}

func addRewardFlags(fs *flag.FlagSet) {
	fs.String(DonationDestinationKey, "", "Address receiving the taxed share of every reward")
	fs.Uint64(RewardBaseKey, genesis.LocalParams.Reward.BaseReward, "Reward, in nAVAX, of blocks below the first curve breakpoint")
	fs.Uint64(RewardMinKey, genesis.LocalParams.Reward.MinReward, "Minimum base reward, in nAVAX")
	fs.Uint64(RewardTaxationKey, genesis.LocalParams.Reward.Taxation, "Fraction of every reward donated, out of 1,000,000")
	fs.String(RewardCurveKey, "", "Comma separated height:amount reward breakpoints, e.g. 100:50,200:25")

	fs.Uint64(LockImmediateKey, genesis.LocalParams.Lock.Immediate, "Part of every reward, in nAVAX, that is spendable immediately")
	fs.Uint64(LockDivideKey, genesis.LocalParams.Lock.Divide, "Number of tranches the locked reward is split into")
	fs.Uint64(LockPeriodKey, genesis.LocalParams.Lock.TotalLockPeriod, "Number of blocks until the last tranche unlocks")
	fs.Uint64(LockDaysKey, genesis.LocalParams.Lock.Days, "Number of blocks unlock heights are rounded down to")
	fs.Uint(LockMaxLocksKey, uint(genesis.LocalParams.Lock.MaxLocks), "Maximum number of unlock heights kept per account")
	fs.String(LockConsolidationKey, string(genesis.LocalParams.Lock.Consolidation), "How unlock heights above the maximum are merged. Should be one of {nearest, latest}")
}

// BuildFlagSet returns a complete set of flags
func BuildFlagSet() *pflag.FlagSet {
	fs := flag.NewFlagSet(appName, flag.ContinueOnError)
	addNodeFlags(fs)
	addLogFlags(fs)
	addRewardFlags(fs)

	pfs := pflag.NewFlagSet(appName, pflag.ContinueOnError)
	pfs.AddGoFlagSet(fs)
	return pfs
}

// BuildViper returns the viper environment from parsed flags and the config
// file, if one is set.
func BuildViper(fs *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix(EnvPrefix)
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if configFile := v.GetString(ConfigFileKey); configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("couldn't read config file %q: %w", configFile, err)
		}
	}
	return v, nil
}
