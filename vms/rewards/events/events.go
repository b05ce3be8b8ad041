// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

// Package events carries the observable outcomes of reward processing to
// indexers and metrics.
package events

import (
	"github.com/ava-labs/avalanchego/ids"

	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
)

var (
	_ Event = (*Rewarded)(nil)
	_ Event = (*RewardChanged)(nil)
	_ Event = (*TaxationChanged)(nil)
	_ Event = (*CurveChanged)(nil)
	_ Event = (*LocksUnlocked)(nil)
	_ Event = (*Skipped)(nil)
)

type Event interface {
	Visit(Visitor) error
}

type Visitor interface {
	Rewarded(*Rewarded) error
	RewardChanged(*RewardChanged) error
	TaxationChanged(*TaxationChanged) error
	CurveChanged(*CurveChanged) error
	LocksUnlocked(*LocksUnlocked) error
	Skipped(*Skipped) error
}

// Rewarded is emitted once per rewarded block.
type Rewarded struct {
	Height         uint64      `json:"height"`
	Author         ids.ShortID `json:"author"`
	MinerAmount    uint64      `json:"minerAmount"`
	DonationAmount uint64      `json:"donationAmount"`
	// Locked is the author's total locked reward after this block
	Locked uint64 `json:"locked"`
}

func (e *Rewarded) Visit(v Visitor) error {
	return v.Rewarded(e)
}

type RewardChanged struct {
	Reward uint64 `json:"reward"`
}

func (e *RewardChanged) Visit(v Visitor) error {
	return v.RewardChanged(e)
}

type TaxationChanged struct {
	Taxation uint64 `json:"taxation"`
}

func (e *TaxationChanged) Visit(v Visitor) error {
	return v.TaxationChanged(e)
}

type CurveChanged struct {
	Curve reward.Curve `json:"curve"`
}

func (e *CurveChanged) Visit(v Visitor) error {
	return v.CurveChanged(e)
}

// LocksUnlocked is emitted when expired reward locks of an account are
// released outside of block rewarding.
type LocksUnlocked struct {
	Height  uint64      `json:"height"`
	Account ids.ShortID `json:"account"`
	Locked  uint64      `json:"locked"`
}

func (e *LocksUnlocked) Visit(v Visitor) error {
	return v.LocksUnlocked(e)
}

// Skipped is emitted for a block processed without an author.
type Skipped struct {
	Height uint64 `json:"height"`
}

func (e *Skipped) Visit(v Visitor) error {
	return v.Skipped(e)
}
