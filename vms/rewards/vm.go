// Copyright (C) 2024, Chain4Travel AG. All rights reserved.
// See the file LICENSE for licensing terms.

package rewards

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/ava-labs/avalanchego/database"
	"github.com/ava-labs/avalanchego/ids"
	"github.com/ava-labs/avalanchego/utils/json"
	"github.com/ava-labs/avalanchego/utils/logging"
	"github.com/ava-labs/avalanchego/utils/wrappers"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/OIEIEIO/kulupu/genesis"
	"github.com/OIEIEIO/kulupu/vms/rewards/events"
	"github.com/OIEIEIO/kulupu/vms/rewards/executor"
	"github.com/OIEIEIO/kulupu/vms/rewards/indexer"
	"github.com/OIEIEIO/kulupu/vms/rewards/lock"
	"github.com/OIEIEIO/kulupu/vms/rewards/metrics"
	"github.com/OIEIEIO/kulupu/vms/rewards/reward"
	"github.com/OIEIEIO/kulupu/vms/rewards/state"
)

const (
	Name = "rewards"

	// Endpoint is the path the json-rpc service is served at
	Endpoint = "/ext/" + Name
)

var (
	errNotInitialized     = errors.New("vm is not initialized")
	errIndexerNotEnabled  = errors.New("reward indexing is not enabled")
	errGenesisNetworkID   = errors.New("genesis network ID doesn't match")
	errAlreadyInitialized = errors.New("vm is already initialized")
)

// Context is the environment a VM runs in.
type Context struct {
	NetworkID uint32
	Log       logging.Logger
	Metrics   prometheus.Registerer
	DB        database.Database

	// IndexPath is the bbolt file reward events are indexed in. Indexing is
	// disabled when it is empty.
	IndexPath string
}

// VM accepts blocks in height order and rewards their authors. Calls are
// serialized by the VM lock.
type VM struct {
	ctx     *Context
	genesis *genesis.Config

	lock sync.RWMutex

	metrics metrics.Metrics
	state   state.State
	indexer *indexer.Indexer

	bus *events.Bus
	// events of the block being processed, published once it is committed
	pending  events.Recorder
	rewarder *executor.Rewarder
}

// Initialize this vm
// [ctx] is this vm's context
// [genesisConfig] is applied to the database if it was never initialized
func (vm *VM) Initialize(ctx *Context, genesisConfig *genesis.Config) error {
	if vm.ctx != nil {
		return errAlreadyInitialized
	}
	if genesisConfig.NetworkID != ctx.NetworkID {
		return fmt.Errorf("%w: expected %d, got %d",
			errGenesisNetworkID, ctx.NetworkID, genesisConfig.NetworkID)
	}
	ctx.Log.Info("initializing rewards vm",
		zap.Uint32("networkID", ctx.NetworkID),
		zap.Stringer("donationDestination", genesisConfig.DonationDestination),
	)

	var err error
	// Initialize metrics as soon as possible
	vm.metrics, err = metrics.New("", ctx.Metrics)
	if err != nil {
		return fmt.Errorf("failed to initialize metrics: %w", err)
	}

	vm.state, err = state.NewState(ctx.DB, ctx.Metrics)
	if err != nil {
		return err
	}

	vm.ctx = ctx
	vm.genesis = genesisConfig
	if err := vm.initGenesis(); err != nil {
		return err
	}

	vm.bus = events.NewBus(vm.metrics)
	if ctx.IndexPath != "" {
		vm.indexer, err = indexer.New(ctx.IndexPath, ctx.Log)
		if err != nil {
			return fmt.Errorf("failed to open reward index: %w", err)
		}
		vm.bus.Subscribe(vm.indexer)
	}

	vm.rewarder = &executor.Rewarder{
		Backend: &executor.Backend{
			DonationDestination: genesisConfig.DonationDestination,
			Generator:           lock.NewGenerator(genesisConfig.Lock),
			Consolidation:       genesisConfig.Lock.Consolidation,
			Emitter:             &vm.pending,
			Log:                 ctx.Log,
		},
		State: vm.state,
	}

	if last, ok := vm.state.GetLastRewarded(); ok {
		ctx.Log.Info("initializing last rewarded",
			zap.Uint64("height", last),
		)
	}
	return nil
}

// Initializes Genesis if required
func (vm *VM) initGenesis() error {
	stateInitialized, err := vm.state.IsInitialized()
	if err != nil {
		return err
	}

	// if state is already initialized, skip init genesis.
	if stateInitialized {
		return nil
	}

	if err := vm.genesis.Apply(vm.state); err != nil {
		vm.state.Abort()
		return fmt.Errorf("error while applying genesis: %w", err)
	}

	// Mark this vm's state as initialized, so we can skip initGenesis in further restarts
	if err := vm.state.SetInitialized(); err != nil {
		return fmt.Errorf("error while setting db to initialized: %w", err)
	}

	vm.ctx.Log.Info("initialized genesis",
		zap.Int("numAllocations", len(vm.genesis.Allocations)),
		zap.Uint64("currentSupply", vm.state.GetCurrentSupply()),
	)
	// Flush VM's database to underlying db
	return vm.state.Commit()
}

// AcceptBlock rewards [author] for the block at [height] and commits the
// result. Nothing is written when rewarding fails.
func (vm *VM) AcceptBlock(_ context.Context, height uint64, author ids.ShortID) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.execute(func(r *executor.Rewarder) error {
		return r.OnBlock(height, author)
	})
}

// Unlock releases the expired reward locks of [account] as of the last
// rewarded height.
func (vm *VM) Unlock(_ context.Context, account ids.ShortID) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.execute(func(r *executor.Rewarder) error {
		height, _ := vm.state.GetLastRewarded()
		return r.Unlock(account, height)
	})
}

func (vm *VM) SetReward(_ context.Context, amount uint64) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.execute(func(r *executor.Rewarder) error {
		return r.SetReward(amount)
	})
}

func (vm *VM) SetTaxation(_ context.Context, rate uint64) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.execute(func(r *executor.Rewarder) error {
		return r.SetTaxation(rate)
	})
}

func (vm *VM) SetCurve(_ context.Context, curve reward.Curve) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	return vm.execute(func(r *executor.Rewarder) error {
		return r.SetCurve(curve)
	})
}

// execute runs [f] against the state and commits it. Events emitted by [f]
// are published only once the commit succeeded. Assumes the VM lock is held.
func (vm *VM) execute(f func(*executor.Rewarder) error) error {
	if vm.rewarder == nil {
		return errNotInitialized
	}
	vm.pending.Events = nil

	if err := f(vm.rewarder); err != nil {
		vm.state.Abort()
		vm.pending.Events = nil
		return err
	}
	if err := vm.state.Commit(); err != nil {
		vm.pending.Events = nil
		return fmt.Errorf("failed to commit rewards state: %w", err)
	}

	for _, e := range vm.pending.Events {
		// subscribers only observe rewards, the block is already committed
		if err := vm.bus.Emit(e); err != nil {
			vm.ctx.Log.Error("failed to publish reward event",
				zap.String("event", fmt.Sprintf("%T", e)),
				zap.Error(err),
			)
		}
	}
	vm.pending.Events = nil
	return nil
}

// Balance returns the account of [addr] and its outstanding reward locks.
func (vm *VM) Balance(addr ids.ShortID) (*state.Account, *lock.Book, error) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.state == nil {
		return nil, nil, errNotInitialized
	}
	acc, err := vm.state.GetAccount(addr)
	if err != nil {
		return nil, nil, err
	}
	book, err := vm.state.GetRewardLocks(addr)
	if err != nil {
		return nil, nil, err
	}
	return acc, book, nil
}

// LastRewarded returns the last processed height, if any.
func (vm *VM) LastRewarded() (uint64, bool) {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.state == nil {
		return 0, false
	}
	return vm.state.GetLastRewarded()
}

func (vm *VM) CurrentSupply() uint64 {
	vm.lock.RLock()
	defer vm.lock.RUnlock()

	if vm.state == nil {
		return 0
	}
	return vm.state.GetCurrentSupply()
}

// CreateHandler returns the http handler serving this VM's json-rpc service
// at Endpoint.
func (vm *VM) CreateHandler() (http.Handler, error) {
	server := rpc.NewServer()
	server.RegisterCodec(json.NewCodec(), "application/json")
	server.RegisterCodec(json.NewCodec(), "application/json;charset=UTF-8")
	if err := server.RegisterService(&Service{vm: vm}, Name); err != nil {
		return nil, err
	}

	router := mux.NewRouter()
	router.Handle(Endpoint, server).Methods(http.MethodPost)
	return router, nil
}

// Shutdown this vm
func (vm *VM) Shutdown(context.Context) error {
	vm.lock.Lock()
	defer vm.lock.Unlock()

	if vm.state == nil {
		return nil
	}

	errs := wrappers.Errs{}
	if vm.indexer != nil {
		errs.Add(vm.indexer.Close())
	}
	errs.Add(vm.state.Close())
	return errs.Err
}
