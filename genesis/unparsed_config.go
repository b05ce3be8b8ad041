// Copyright (C) 2022, Chain4Travel AG. All rights reserved.
//
// This file is a derived work, based on ava-labs code whose
// original notices appear below.
//
// It is distributed under the same license conditions as the
// original code from which it is derived.
//
// Much love to the original authors for their work.
// **********************************************************

// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package genesis

import (
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
)

const configChainIDAlias = "X"

var (
	errCannotParseDonationDestination = "cannot parse donationDestination from genesis: %w"
	errCannotParseAllocation          = "cannot parse allocation address %q: %w"
)

type UnparsedAllocation struct {
	Address string `json:"address"`
	Amount  uint64 `json:"amount"`
}

func (ua UnparsedAllocation) Parse() (Allocation, error) {
	addr, err := parseAddress(ua.Address)
	if err != nil {
		return Allocation{}, fmt.Errorf(errCannotParseAllocation, ua.Address, err)
	}
	return Allocation{
		Address: addr,
		Amount:  ua.Amount,
	}, nil
}

// UnparsedConfig is the json form of a genesis. Addresses are bech32
// formatted with a chain alias, e.g. "X-local1...".
type UnparsedConfig struct {
	NetworkID uint32 `json:"networkID"`

	DonationDestination string `json:"donationDestination"`
	Params

	Allocations []UnparsedAllocation `json:"allocations"`

	Message string `json:"message"`
}

func (uc UnparsedConfig) Parse() (Config, error) {
	c := Config{
		NetworkID:   uc.NetworkID,
		Params:      uc.Params,
		Allocations: make([]Allocation, len(uc.Allocations)),
		Message:     uc.Message,
	}

	donationDestination, err := parseAddress(uc.DonationDestination)
	if err != nil {
		return c, fmt.Errorf(errCannotParseDonationDestination, err)
	}
	c.DonationDestination = donationDestination

	for i, ua := range uc.Allocations {
		c.Allocations[i], err = ua.Parse()
		if err != nil {
			return c, err
		}
	}
	return c, nil
}

func (c Config) Unparse() (UnparsedConfig, error) {
	uc := UnparsedConfig{
		NetworkID:   c.NetworkID,
		Params:      c.Params,
		Allocations: make([]UnparsedAllocation, len(c.Allocations)),
		Message:     c.Message,
	}

	donationDestination, err := formatAddress(c.NetworkID, c.DonationDestination)
	if err != nil {
		return uc, err
	}
	uc.DonationDestination = donationDestination

	for i, a := range c.Allocations {
		addr, err := formatAddress(c.NetworkID, a.Address)
		if err != nil {
			return uc, err
		}
		uc.Allocations[i] = UnparsedAllocation{
			Address: addr,
			Amount:  a.Amount,
		}
	}
	return uc, nil
}

func parseAddress(addrStr string) (ids.ShortID, error) {
	_, _, addrBytes, err := address.Parse(addrStr)
	if err != nil {
		return ids.ShortEmpty, err
	}
	return ids.ToShortID(addrBytes)
}

func formatAddress(networkID uint32, addr ids.ShortID) (string, error) {
	return address.Format(
		configChainIDAlias,
		constants.GetHRP(networkID),
		addr.Bytes(),
	)
}
