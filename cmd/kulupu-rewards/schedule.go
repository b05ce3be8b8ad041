// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OIEIEIO/kulupu/config"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
)

const (
	heightKey = "height"
	rewardKey = "reward"
)

type scheduleOutput struct {
	Height         uint64       `json:"height"`
	Reward         uint64       `json:"reward"`
	MinerAmount    uint64       `json:"minerAmount"`
	DonationAmount uint64       `json:"donationAmount"`
	Locks          []lock.Entry `json:"locks"`
	Locked         uint64       `json:"locked"`
}

func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the reward and unlock schedule of a single block",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			v, err := config.BuildViper(cmd.Flags())
			if err != nil {
				return err
			}
			params, err := config.GetParams(v)
			if err != nil {
				return err
			}
			if err := params.Reward.Verify(); err != nil {
				return fmt.Errorf("invalid reward config: %w", err)
			}
			if err := params.Lock.Verify(); err != nil {
				return fmt.Errorf("invalid lock config: %w", err)
			}

			height := v.GetUint64(heightKey)
			total := params.Reward.Reward(height)
			if cmd.Flags().Changed(rewardKey) {
				total = v.GetUint64(rewardKey)
			}
			minerAmount, donationAmount := reward.Split(total, params.Reward.Taxation)
			schedule := lock.NewGenerator(params.Lock).GenerateRewardLocks(height, minerAmount)

			return writeJSON(cmd.OutOrStdout(), scheduleOutput{
				Height:         height,
				Reward:         total,
				MinerAmount:    minerAmount,
				DonationAmount: donationAmount,
				Locks:          schedule.Entries(),
				Locked:         schedule.Total(),
			})
		},
	}
	cmd.Flags().Uint64(heightKey, 1, "Height of the rewarded block")
	cmd.Flags().Uint64(rewardKey, 0, "Total block reward. Read from the reward curve if not set")
	return cmd
}
