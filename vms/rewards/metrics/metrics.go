// Copyright (C) 2022, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.
package metrics

import (
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/OIEIEIO/kulupu/vms/rewards/events"
)

var _ Metrics = (*metrics)(nil)

type Metrics interface {
	events.Visitor
}

func New(
	namespace string,
	registerer prometheus.Registerer,
) (Metrics, error) {
	m := &metrics{
		numRewarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blks_rewarded",
			Help:      "Number of blocks whose author was rewarded",
		}),
		numSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "blks_skipped",
			Help:      "Number of blocks processed without an author",
		}),
		minerMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "miner_minted",
			Help:      "Total amount minted to block authors",
		}),
		donationMinted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "donation_minted",
			Help:      "Total amount minted to the donation destination",
		}),
		lastLocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_author_locked",
			Help:      "Locked reward of the most recent block author",
		}),
		reward: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "base_reward",
			Help:      "Configured base block reward",
		}),
		taxation: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "taxation",
			Help:      "Configured taxation rate, multiplied by the percent denominator",
		}),
		numCurveChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "curve_changes",
			Help:      "Number of reward curve updates",
		}),
		numUnlocks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "unlocks",
			Help:      "Number of explicit reward lock refreshes",
		}),
	}

	errs := wrappers.Errs{}
	errs.Add(
		registerer.Register(m.numRewarded),
		registerer.Register(m.numSkipped),
		registerer.Register(m.minerMinted),
		registerer.Register(m.donationMinted),
		registerer.Register(m.lastLocked),
		registerer.Register(m.reward),
		registerer.Register(m.taxation),
		registerer.Register(m.numCurveChanges),
		registerer.Register(m.numUnlocks),
	)
	return m, errs.Err
}

type metrics struct {
	numRewarded, numSkipped prometheus.Counter

	minerMinted, donationMinted prometheus.Counter
	lastLocked                  prometheus.Gauge

	reward, taxation prometheus.Gauge

	numCurveChanges, numUnlocks prometheus.Counter
}

func (m *metrics) Skipped(*events.Skipped) error {
	m.numSkipped.Inc()
	return nil
}

func (m *metrics) Rewarded(e *events.Rewarded) error {
	m.numRewarded.Inc()
	m.minerMinted.Add(float64(e.MinerAmount))
	m.donationMinted.Add(float64(e.DonationAmount))
	m.lastLocked.Set(float64(e.Locked))
	return nil
}

func (m *metrics) RewardChanged(e *events.RewardChanged) error {
	m.reward.Set(float64(e.Reward))
	return nil
}

func (m *metrics) TaxationChanged(e *events.TaxationChanged) error {
	m.taxation.Set(float64(e.Taxation))
	return nil
}

func (m *metrics) CurveChanged(*events.CurveChanged) error {
	m.numCurveChanges.Inc()
	return nil
}

func (m *metrics) LocksUnlocked(*events.LocksUnlocked) error {
	m.numUnlocks.Inc()
	return nil
}
