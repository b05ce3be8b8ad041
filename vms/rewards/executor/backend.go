// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/logging"

	"github.com/OIEIEIO/kulupu/vms/rewards/events"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
)

// Backend holds the parts of reward processing that don't change between
// blocks.
type Backend struct {
	// DonationDestination receives the taxed share of every reward
	DonationDestination ids.ShortID
	Generator           lock.Generator
	Consolidation       lock.Policy

	Emitter events.Emitter
	Log     logging.Logger
}
