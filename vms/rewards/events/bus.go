// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package events

import (
	"fmt"

	"github.com/ava-labs/avalanchego/utils/wrappers"
)

var (
	_ Emitter = (*Bus)(nil)
	_ Emitter = (*Recorder)(nil)
)

type Emitter interface {
	Emit(Event) error
}

// Bus delivers every event to all subscribers, synchronously and in
// subscription order.
type Bus struct {
	subscribers []Visitor
}

func NewBus(subscribers ...Visitor) *Bus {
	return &Bus{subscribers: subscribers}
}

func (b *Bus) Subscribe(v Visitor) {
	b.subscribers = append(b.subscribers, v)
}

// Emit delivers [e] to every subscriber even if some of them fail.
func (b *Bus) Emit(e Event) error {
	errs := wrappers.Errs{}
	for _, v := range b.subscribers {
		if err := e.Visit(v); err != nil {
			errs.Add(fmt.Errorf("%T failed to handle %T: %w", v, e, err))
		}
	}
	return errs.Err
}

// Recorder keeps every event it receives, either as a subscriber or as an
// emitter.
type Recorder struct {
	Events []Event
}

func (r *Recorder) Emit(e Event) error {
	return e.Visit(r)
}

func (r *Recorder) Rewarded(e *Rewarded) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) RewardChanged(e *RewardChanged) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) TaxationChanged(e *TaxationChanged) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) CurveChanged(e *CurveChanged) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) LocksUnlocked(e *LocksUnlocked) error {
	r.Events = append(r.Events, e)
	return nil
}

func (r *Recorder) Skipped(e *Skipped) error {
	r.Events = append(r.Events, e)
	return nil
}
