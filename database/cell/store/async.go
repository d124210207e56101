// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package store

import (
	"errors"
	"fmt"
	"sync"

	"github.com/0xsoniclabs/cellar/common"
	"github.com/0xsoniclabs/cellar/common/future"
	"github.com/0xsoniclabs/cellar/common/result"
	"github.com/0xsoniclabs/cellar/database/cell"
)

// Async wraps a Store and performs Put operations on a background worker.
// Reads observe all Puts issued before them.
type Async struct {
	store *Store

	commands chan<- command  // < commands to background worker
	syncs    <-chan struct{} // < signalled when syncing with background worker
	done     <-chan struct{} // < when background work is done

	failures putFailures // < errors of background Puts since the last Sync
}

// command is either a put of a root cell or, if root is nil, a sync request.
type command struct {
	root   *cell.Cell
	result *future.Promise[result.Result[common.Hash]]
}

// NewAsync starts a background worker writing to the given store. The
// resulting Async takes ownership of the store.
func NewAsync(store *Store) *Async {
	commands := make(chan command, 1024)
	syncs := make(chan struct{})
	done := make(chan struct{})

	res := &Async{
		store:    store,
		commands: commands,
		syncs:    syncs,
		done:     done,
	}
	go func() {
		defer close(done)
		processCommands(store, commands, syncs, &res.failures)
	}()
	return res
}

// Put schedules the cell DAG below root for storage. The returned future
// resolves to the root's hash once all cells are written. Failures are
// reported through the future and by the next Sync.
func (a *Async) Put(root *cell.Cell) future.Future[result.Result[common.Hash]] {
	promise, future := future.Create[result.Result[common.Hash]]()
	a.commands <- command{root: root, result: &promise}
	return future
}

func processCommands(
	store *Store,
	commands <-chan command,
	syncs chan<- struct{},
	failures *putFailures,
) {
	for command := range commands {
		if command.root == nil {
			syncs <- struct{}{}
			continue
		}
		hash, err := store.Put(command.root)
		failures.record(command.root, err)
		command.result.Fulfill(result.Of(hash, err))
	}
}

// Sync waits for all scheduled Puts to complete and returns the errors they
// produced since the last Sync.
func (a *Async) Sync() error {
	a.commands <- command{}
	<-a.syncs
	return a.failures.drain()
}

func (a *Async) Get(hash common.Hash) (*cell.Cell, error) {
	if err := a.Sync(); err != nil {
		return nil, err
	}
	return a.store.Get(hash)
}

func (a *Async) Has(hash common.Hash) (bool, error) {
	if err := a.Sync(); err != nil {
		return false, err
	}
	return a.store.Has(hash)
}

func (a *Async) Flush() error {
	if err := a.Sync(); err != nil {
		return err
	}
	return a.store.Flush()
}

// Close waits for pending work, stops the worker and closes the store.
func (a *Async) Close() error {
	err := a.Sync()
	close(a.commands)
	<-a.done
	return errors.Join(err, a.store.Close())
}

// maxReportedPutFailures bounds the errors kept between two Syncs. Further
// failures are only counted.
const maxReportedPutFailures = 10

// putFailures accumulates the errors of background Puts until the next Sync.
type putFailures struct {
	mutex    sync.Mutex
	reported []error
	omitted  int
}

func (f *putFailures) record(root *cell.Cell, err error) {
	if err == nil {
		return
	}
	f.mutex.Lock()
	defer f.mutex.Unlock()
	if len(f.reported) == maxReportedPutFailures {
		f.omitted++
		return
	}
	f.reported = append(f.reported, fmt.Errorf("put of %v: %w", root.ReprHash(), err))
}

// drain returns the recorded failures as one joined error and resets f.
func (f *putFailures) drain() error {
	f.mutex.Lock()
	defer f.mutex.Unlock()
	failures := f.reported
	if f.omitted > 0 {
		failures = append(failures, fmt.Errorf("%d more failed puts omitted", f.omitted))
	}
	f.reported, f.omitted = nil, 0
	return errors.Join(failures...)
}
