// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package rewards

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/constants"
	"github.com/ava-labs/avalanchego/utils/formatting/address"
	"github.com/ava-labs/avalanchego/utils/json"
	"go.uber.org/zap"

	"github.com/OIEIEIO/kulupu/vms/rewards/events"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
)

const (
	// Max number of items allowed in a page
	maxPageSize = 1024

	chainAlias = "X"
)

var errNoAddress = errors.New("no address provided")

// Service is the API service for this VM
type Service struct {
	vm *VM
}

type GetRewardArgs struct {
	// Height defaults to the height after the last rewarded one, or 1
	// before any block was processed
	Height *json.Uint64 `json:"height"`
}

type GetRewardReply struct {
	Height         json.Uint64 `json:"height"`
	Reward         json.Uint64 `json:"reward"`
	MinerAmount    json.Uint64 `json:"minerAmount"`
	DonationAmount json.Uint64 `json:"donationAmount"`
	Taxation       json.Uint64 `json:"taxation"`
}

// GetReward returns the reward a block at [args.Height] would issue
func (s *Service) GetReward(_ *http.Request, args *GetRewardArgs, reply *GetRewardReply) error {
	s.vm.ctx.Log.Debug("API called",
		zap.String("service", Name),
		zap.String("method", "getReward"),
	)

	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	height := uint64(1)
	if args.Height != nil {
		height = uint64(*args.Height)
	} else if last, ok := s.vm.state.GetLastRewarded(); ok {
		height = last + 1
	}

	config := s.vm.state.GetRewardConfig()
	total := config.Reward(height)
	minerAmount, donationAmount := reward.Split(total, config.Taxation)

	reply.Height = json.Uint64(height)
	reply.Reward = json.Uint64(total)
	reply.MinerAmount = json.Uint64(minerAmount)
	reply.DonationAmount = json.Uint64(donationAmount)
	reply.Taxation = json.Uint64(config.Taxation)
	return nil
}

type AddressArgs struct {
	Address string `json:"address"`
}

type APILock struct {
	ID     string      `json:"id"`
	Amount json.Uint64 `json:"amount"`
}

type GetBalanceReply struct {
	Balance   json.Uint64 `json:"balance"`
	Locked    json.Uint64 `json:"locked"`
	Spendable json.Uint64 `json:"spendable"`
	Locks     []APILock   `json:"locks"`
}

// GetBalance returns the balance of [args.Address] and the locks on it
func (s *Service) GetBalance(_ *http.Request, args *AddressArgs, reply *GetBalanceReply) error {
	s.vm.ctx.Log.Debug("API called",
		zap.String("service", Name),
		zap.String("method", "getBalance"),
		zap.String("address", args.Address),
	)

	addr, err := parseAddress(args.Address)
	if err != nil {
		return err
	}

	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	acc, err := s.vm.state.GetAccount(addr)
	if err != nil {
		return fmt.Errorf("couldn't get account %s: %w", args.Address, err)
	}

	reply.Balance = json.Uint64(acc.Balance)
	reply.Locked = json.Uint64(acc.Locked())
	reply.Spendable = json.Uint64(acc.Spendable())
	reply.Locks = make([]APILock, len(acc.Locks))
	for i, l := range acc.Locks {
		reply.Locks[i] = APILock{
			ID:     l.ID.String(),
			Amount: json.Uint64(l.Amount),
		}
	}
	return nil
}

type APIUnlock struct {
	Height json.Uint64 `json:"height"`
	Amount json.Uint64 `json:"amount"`
}

type GetLocksReply struct {
	Locks  []APIUnlock `json:"locks"`
	Locked json.Uint64 `json:"locked"`
}

// GetLocks returns the outstanding reward unlock heights of [args.Address]
func (s *Service) GetLocks(_ *http.Request, args *AddressArgs, reply *GetLocksReply) error {
	s.vm.ctx.Log.Debug("API called",
		zap.String("service", Name),
		zap.String("method", "getLocks"),
		zap.String("address", args.Address),
	)

	addr, err := parseAddress(args.Address)
	if err != nil {
		return err
	}

	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	book, err := s.vm.state.GetRewardLocks(addr)
	if err != nil {
		return fmt.Errorf("couldn't get reward locks of %s: %w", args.Address, err)
	}
	last, _ := s.vm.state.GetLastRewarded()

	entries := book.Entries()
	reply.Locks = make([]APIUnlock, len(entries))
	for i, e := range entries {
		reply.Locks[i] = APIUnlock{
			Height: json.Uint64(e.Height),
			Amount: json.Uint64(e.Amount),
		}
	}
	reply.Locked = json.Uint64(book.Locked(last))
	return nil
}

type GetCurrentSupplyReply struct {
	Supply       json.Uint64 `json:"supply"`
	LastRewarded json.Uint64 `json:"lastRewarded"`
}

// GetCurrentSupply returns the amount minted so far
func (s *Service) GetCurrentSupply(_ *http.Request, _ *struct{}, reply *GetCurrentSupplyReply) error {
	s.vm.ctx.Log.Debug("API called",
		zap.String("service", Name),
		zap.String("method", "getCurrentSupply"),
	)

	s.vm.lock.RLock()
	defer s.vm.lock.RUnlock()

	last, _ := s.vm.state.GetLastRewarded()
	reply.Supply = json.Uint64(s.vm.state.GetCurrentSupply())
	reply.LastRewarded = json.Uint64(last)
	return nil
}

type GetRewardEventsArgs struct {
	// Author filters events by block author if set
	Author      string      `json:"author"`
	StartHeight json.Uint64 `json:"startHeight"`
	Limit       json.Uint32 `json:"limit"`
}

type APIRewarded struct {
	Height         json.Uint64 `json:"height"`
	Author         string      `json:"author"`
	MinerAmount    json.Uint64 `json:"minerAmount"`
	DonationAmount json.Uint64 `json:"donationAmount"`
	Locked         json.Uint64 `json:"locked"`
}

type GetRewardEventsReply struct {
	Events []APIRewarded `json:"events"`
}

// GetRewardEvents returns indexed rewards starting at [args.StartHeight]
func (s *Service) GetRewardEvents(_ *http.Request, args *GetRewardEventsArgs, reply *GetRewardEventsReply) error {
	s.vm.ctx.Log.Debug("API called",
		zap.String("service", Name),
		zap.String("method", "getRewardEvents"),
	)

	if s.vm.indexer == nil {
		return errIndexerNotEnabled
	}

	limit := int(args.Limit)
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	var (
		rewarded []*events.Rewarded
		err      error
	)
	if args.Author == "" {
		rewarded, err = s.vm.indexer.Rewards(uint64(args.StartHeight), limit)
	} else {
		var author ids.ShortID
		author, err = parseAddress(args.Author)
		if err != nil {
			return err
		}
		rewarded, err = s.vm.indexer.RewardsOf(author, uint64(args.StartHeight), limit)
	}
	if err != nil {
		return fmt.Errorf("couldn't read reward index: %w", err)
	}

	reply.Events = make([]APIRewarded, len(rewarded))
	for i, e := range rewarded {
		author, err := s.formatAddress(e.Author)
		if err != nil {
			return err
		}
		reply.Events[i] = APIRewarded{
			Height:         json.Uint64(e.Height),
			Author:         author,
			MinerAmount:    json.Uint64(e.MinerAmount),
			DonationAmount: json.Uint64(e.DonationAmount),
			Locked:         json.Uint64(e.Locked),
		}
	}
	return nil
}

func (s *Service) formatAddress(addr ids.ShortID) (string, error) {
	return address.Format(chainAlias, constants.GetHRP(s.vm.ctx.NetworkID), addr.Bytes())
}

func parseAddress(addrStr string) (ids.ShortID, error) {
	if addrStr == "" {
		return ids.ShortEmpty, errNoAddress
	}
	addr, err := address.ParseToID(addrStr)
	if err != nil {
		return ids.ShortEmpty, fmt.Errorf("couldn't parse address %q: %w", addrStr, err)
	}
	return addr, nil
}
