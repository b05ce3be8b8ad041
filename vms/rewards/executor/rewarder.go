// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package executor

import (
	"errors"
	"fmt"

	"github.com/ava-labs/avalanchego/ids"
	"go.uber.org/zap"

	"github.com/OIEIEIO/kulupu/vms/rewards/events"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
	"github.com/OIEIEIO/kulupu/vms/rewards/state"
)

var ErrAlreadyRewarded = errors.New("height was already processed")

// Rewarder issues block rewards into State.
type Rewarder struct {
	*Backend
	State state.Chain // state is expected to be modified
}

// OnBlock rewards [author] for the block at [height]. It must be called once
// per height, in increasing height order. A block without author
// (ids.ShortEmpty) mints nothing.
func (r *Rewarder) OnBlock(height uint64, author ids.ShortID) error {
	if last, ok := r.State.GetLastRewarded(); ok && height <= last {
		return fmt.Errorf("%w: height %d, last processed %d", ErrAlreadyRewarded, height, last)
	}

	if author == ids.ShortEmpty {
		r.Log.Debug("skipping reward of block without author",
			zap.Uint64("height", height),
		)
		r.State.SetLastRewarded(height)
		r.emit(&events.Skipped{Height: height})
		return nil
	}

	config := r.State.GetRewardConfig()
	total := config.Reward(height)
	minerAmount, donationAmount := reward.Split(total, config.Taxation)

	if err := r.State.Mint(r.DonationDestination, donationAmount); err != nil {
		return fmt.Errorf("couldn't mint donation: %w", err)
	}
	if err := r.State.Mint(author, minerAmount); err != nil {
		return fmt.Errorf("couldn't mint reward of %s: %w", author, err)
	}

	schedule := r.Generator.GenerateRewardLocks(height, minerAmount)
	if uint32(schedule.Len()) > r.Generator.MaxLocks() {
		panic(fmt.Sprintf("reward schedule has %d locks, more than max locks %d",
			schedule.Len(), r.Generator.MaxLocks()))
	}

	locked, err := r.applyLocks(author, height, func(applier *lock.Applier, book *lock.Book) error {
		return applier.Apply(author, book, schedule, height)
	})
	if err != nil {
		return err
	}
	r.State.SetLastRewarded(height)

	r.Log.Debug("rewarded block author",
		zap.Uint64("height", height),
		zap.Stringer("author", author),
		zap.Uint64("reward", total),
		zap.Uint64("minerAmount", minerAmount),
		zap.Uint64("donationAmount", donationAmount),
		zap.Uint64("locked", locked),
	)

	r.emit(&events.Rewarded{
		Height:         height,
		Author:         author,
		MinerAmount:    minerAmount,
		DonationAmount: donationAmount,
		Locked:         locked,
	})
	return nil
}

// Unlock releases the reward locks of [account] that expired at or before
// [height].
func (r *Rewarder) Unlock(account ids.ShortID, height uint64) error {
	locked, err := r.applyLocks(account, height, func(applier *lock.Applier, book *lock.Book) error {
		return applier.Refresh(account, book, height)
	})
	if err != nil {
		return err
	}

	r.Log.Debug("refreshed reward locks",
		zap.Stringer("account", account),
		zap.Uint64("height", height),
		zap.Uint64("locked", locked),
	)
	r.emit(&events.LocksUnlocked{
		Height:  height,
		Account: account,
		Locked:  locked,
	})
	return nil
}

// SetReward changes the base reward used where the curve has no breakpoint.
func (r *Rewarder) SetReward(amount uint64) error {
	config := r.State.GetRewardConfig()
	if amount < config.MinReward {
		return fmt.Errorf("%w: %d < %d", reward.ErrRewardTooLow, amount, config.MinReward)
	}
	config.BaseReward = amount
	r.State.SetRewardConfig(config)

	r.Log.Info("base reward changed", zap.Uint64("reward", amount))
	r.emit(&events.RewardChanged{Reward: amount})
	return nil
}

// SetTaxation changes the donated fraction of every reward.
func (r *Rewarder) SetTaxation(rate uint64) error {
	if rate > reward.PercentDenominator {
		return fmt.Errorf("%w: %d > %d", reward.ErrInvalidTaxation, rate, reward.PercentDenominator)
	}
	config := r.State.GetRewardConfig()
	config.Taxation = rate
	r.State.SetRewardConfig(config)

	r.Log.Info("taxation changed", zap.Uint64("taxation", rate))
	r.emit(&events.TaxationChanged{Taxation: rate})
	return nil
}

// SetCurve replaces the reward curve.
func (r *Rewarder) SetCurve(curve reward.Curve) error {
	if err := curve.Verify(); err != nil {
		return err
	}
	config := r.State.GetRewardConfig()
	config.Curve = curve
	r.State.SetRewardConfig(config)

	r.Log.Info("reward curve changed", zap.Int("numBreakpoints", len(curve)))
	r.emit(&events.CurveChanged{Curve: curve})
	return nil
}

func (r *Rewarder) applyLocks(
	account ids.ShortID,
	height uint64,
	apply func(*lock.Applier, *lock.Book) error,
) (uint64, error) {
	applier, err := lock.NewApplier(r.State, r.Generator.MaxLocks(), r.Consolidation)
	if err != nil {
		return 0, err
	}
	book, err := r.State.GetRewardLocks(account)
	if err != nil {
		return 0, fmt.Errorf("couldn't get reward locks of %s: %w", account, err)
	}
	if err := apply(applier, book); err != nil {
		return 0, err
	}
	r.State.SetRewardLocks(account, book)
	return book.Locked(height), nil
}

// emit publishes [e]. Subscribers only observe rewards, so their failures
// are logged and don't fail the block.
func (r *Rewarder) emit(e events.Event) {
	if r.Emitter == nil {
		return
	}
	if err := r.Emitter.Emit(e); err != nil {
		r.Log.Error("failed to emit reward event",
			zap.String("event", fmt.Sprintf("%T", e)),
			zap.Error(err),
		)
	}
}
