// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package config

const (
	ConfigFileKey  = "config-file"
	NetworkIDKey   = "network-id"
	GenesisFileKey = "genesis-file"
	DBDirKey       = "db-dir"
	IndexFileKey   = "index-file"
	HTTPHostKey    = "http-host"
	HTTPPortKey    = "http-port"

	LogLevelKey        = "log-level"
	LogDisplayLevelKey = "log-display-level"
	LogFormatKey       = "log-format"
	LogDirKey          = "log-dir"
	LogMaxSizeKey      = "log-rotater-max-size"
	LogMaxFilesKey     = "log-rotater-max-files"
	LogMaxAgeKey       = "log-rotater-max-age"
	LogCompressKey     = "log-rotater-compress-enabled"

	DonationDestinationKey = "donation-destination"
	RewardBaseKey          = "reward-base"
	RewardMinKey           = "reward-min"
	RewardTaxationKey      = "reward-taxation"
	RewardCurveKey         = "reward-curve"

	LockImmediateKey     = "lock-immediate"
	LockDivideKey        = "lock-divide"
	LockPeriodKey        = "lock-period"
	LockDaysKey          = "lock-days"
	LockMaxLocksKey      = "lock-max-locks"
	LockConsolidationKey = "lock-consolidation"
)
