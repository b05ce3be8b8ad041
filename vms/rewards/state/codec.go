// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package state

import (
	"github.com/ava-labs/avalanchego/codec"
	"github.com/ava-labs/avalanchego/codec/linearcodec"
	"github.com/ava-labs/avalanchego/utils/timer/mockable"
)

// Version is the current default codec version
const Version = 0

// Codec serializes accounts, lock books and the reward configuration.
var Codec codec.Manager

func init() {
	c := linearcodec.NewDefault(mockable.MaxTime)
	Codec = codec.NewDefaultManager()
	if err := Codec.RegisterCodec(Version, c); err != nil {
		panic(err)
	}
}
