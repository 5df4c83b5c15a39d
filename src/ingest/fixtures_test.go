package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pipeos/pipes/src/store"
	"github.com/pipeos/pipes/src/utils/model"
)

const tokenPayload = `{
	"kind": "smartcontract",
	"chainid": "3",
	"abi": [
		{"type": "constructor", "inputs": [{"name": "supply", "type": "uint256"}]},
		{"name": "transfer", "type": "function", "inputs": [{"name": "to", "type": "address"}, {"name": "value", "type": "uint256"}]},
		{"name": "balanceOf", "type": "function", "inputs": [{"name": "owner", "type": "address"}]},
		{"name": "Transfer", "type": "event", "inputs": [{"name": "from", "type": "address", "indexed": true}]}
	],
	"devdoc": {"methods": {"transfer(address,uint256)": {"details": "Transfers tokens"}}},
	"userdoc": {"methods": {}}
}`

func newTokenContainer() *model.PipeContainer {
	container := &model.PipeContainer{
		Name: "Token",
		Uri:  "ipfs://token",
		Tags: []string{"erc20"},
	}
	err := json.Unmarshal([]byte(tokenPayload), &container.Container)
	if err != nil {
		panic(err)
	}
	return container
}

// Pretends to create the function at the given call number, without storing it
type lossyFunctions struct {
	store.FunctionRepository

	mtx    sync.Mutex
	calls  int
	dropAt int
}

func newLossyFunctions(functions store.FunctionRepository, dropAt int) *lossyFunctions {
	return &lossyFunctions{FunctionRepository: functions, dropAt: dropAt}
}

func (self *lossyFunctions) Children(containerId string) store.Repository[model.PipeFunction] {
	return &lossyChildren{
		Repository: self.FunctionRepository.Children(containerId),
		parent:     self,
	}
}

type lossyChildren struct {
	store.Repository[model.PipeFunction]
	parent *lossyFunctions
}

func (self *lossyChildren) Create(ctx context.Context, function *model.PipeFunction) (*model.PipeFunction, error) {
	self.parent.mtx.Lock()
	self.parent.calls++
	drop := self.parent.calls == self.parent.dropAt
	self.parent.mtx.Unlock()

	if drop {
		function.Id = "lost-" + function.ContainerId
		return function, nil
	}
	return self.Repository.Create(ctx, function)
}

// Slows down creating functions and records the highest number of concurrent creates
type slowFunctions struct {
	store.FunctionRepository

	delay    time.Duration
	inFlight atomic.Int32
	maxSeen  atomic.Int32
}

func newSlowFunctions(functions store.FunctionRepository, delay time.Duration) *slowFunctions {
	return &slowFunctions{FunctionRepository: functions, delay: delay}
}

func (self *slowFunctions) Children(containerId string) store.Repository[model.PipeFunction] {
	return &slowChildren{
		Repository: self.FunctionRepository.Children(containerId),
		parent:     self,
	}
}

type slowChildren struct {
	store.Repository[model.PipeFunction]
	parent *slowFunctions
}

func (self *slowChildren) Create(ctx context.Context, function *model.PipeFunction) (*model.PipeFunction, error) {
	current := self.parent.inFlight.Add(1)
	defer self.parent.inFlight.Add(-1)

	for {
		seen := self.parent.maxSeen.Load()
		if current <= seen || self.parent.maxSeen.CompareAndSwap(seen, current) {
			break
		}
	}

	time.Sleep(self.parent.delay)
	return self.Repository.Create(ctx, function)
}

var errUnavailable = errors.New("store unavailable")

// Deleting functions always fails
type undeletableFunctions struct {
	store.FunctionRepository
	deletes atomic.Int32
}

func (self *undeletableFunctions) Delete(ctx context.Context, filter *store.Filter) (int64, error) {
	self.deletes.Add(1)
	return 0, errUnavailable
}

// Deleting containers always fails
type undeletableContainers struct {
	store.Repository[model.PipeContainer]
	deletes atomic.Int32
}

func (self *undeletableContainers) DeleteById(ctx context.Context, id string) error {
	self.deletes.Add(1)
	return errUnavailable
}
