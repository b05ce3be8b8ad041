// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/OIEIEIO/kulupu/vms/rewards"
)

const (
	blocksKey  = "blocks"
	authorsKey = "authors"
)

var errNoAuthors = errors.New("at least one author is required")

type accountOutput struct {
	Address   string `json:"address"`
	Balance   uint64 `json:"balance"`
	Locked    uint64 `json:"locked"`
	Spendable uint64 `json:"spendable"`
	NumLocks  int    `json:"numLocks"`
}

type simulateOutput struct {
	LastRewarded uint64          `json:"lastRewarded"`
	Supply       uint64          `json:"supply"`
	Donation     accountOutput   `json:"donation"`
	Authors      []accountOutput `json:"authors"`
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Reward a sequence of blocks authored round robin and print the resulting balances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			blocks, err := cmd.Flags().GetUint64(blocksKey)
			if err != nil {
				return err
			}
			authorStrs, err := cmd.Flags().GetStringSlice(authorsKey)
			if err != nil {
				return err
			}
			if len(authorStrs) == 0 {
				return errNoAuthors
			}
			authors := make([]ids.ShortID, len(authorStrs))
			for i, authorStr := range authorStrs {
				authors[i], err = address.ParseToID(authorStr)
				if err != nil {
					return fmt.Errorf("couldn't parse author %q: %w", authorStr, err)
				}
			}

			log := newLogger(c.Logging, stderr)
			defer log.Stop()

			registerer := prometheus.NewRegistry()
			db, err := openDB(c.DBDir, log, registerer)
			if err != nil {
				return err
			}

			vm := &rewards.VM{}
			if err := vm.Initialize(&rewards.Context{
				NetworkID: c.NetworkID,
				Log:       log,
				Metrics:   registerer,
				DB:        db,
				IndexPath: c.IndexFile,
			}, c.Genesis); err != nil {
				_ = db.Close()
				return err
			}
			defer func() {
				if err := vm.Shutdown(cmd.Context()); err != nil {
					log.Error("failed to shut down", zap.Error(err))
				}
			}()

			start := uint64(1)
			if last, ok := vm.LastRewarded(); ok {
				start = last + 1
			}
			for i := uint64(0); i < blocks; i++ {
				author := authors[i%uint64(len(authors))]
				if err := vm.AcceptBlock(cmd.Context(), start+i, author); err != nil {
					return fmt.Errorf("couldn't reward block %d: %w", start+i, err)
				}
			}

			out := simulateOutput{
				Supply:  vm.CurrentSupply(),
				Authors: make([]accountOutput, 0, len(authors)),
			}
			out.LastRewarded, _ = vm.LastRewarded()

			seen := make(map[ids.ShortID]struct{}, len(authors))
			for _, author := range authors {
				if _, ok := seen[author]; ok {
					continue
				}
				seen[author] = struct{}{}

				if err := vm.Unlock(cmd.Context(), author); err != nil {
					return err
				}
				acc, err := describe(vm, c.NetworkID, author)
				if err != nil {
					return err
				}
				out.Authors = append(out.Authors, acc)
			}
			out.Donation, err = describe(vm, c.NetworkID, c.Genesis.DonationDestination)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), out)
		},
	}
	cmd.Flags().Uint64(blocksKey, 1000, "Number of blocks to reward")
	cmd.Flags().StringSlice(authorsKey, nil, "Addresses authoring the blocks, in turn")
	return cmd
}

func describe(vm *rewards.VM, networkID uint32, addr ids.ShortID) (accountOutput, error) {
	acc, book, err := vm.Balance(addr)
	if err != nil {
		return accountOutput{}, err
	}
	addrStr, err := address.Format("X", constants.GetHRP(networkID), addr.Bytes())
	if err != nil {
		return accountOutput{}, err
	}
	return accountOutput{
		Address:   addrStr,
		Balance:   acc.Balance,
		Locked:    acc.Locked(),
		Spendable: acc.Spendable(),
		NumLocks:  book.Len(),
	}, nil
}
