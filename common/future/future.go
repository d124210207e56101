// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package future provides a single-assignment placeholder for values produced
// by background workers. A Promise is the write end, a Future the read end:
//
//	promise, f := future.Create[T]()
//	go func() { promise.Fulfill(work()) }()
//	...
//	value := f.Await()
package future

import "context"

// Promise is the producer handle of a Future. It must be fulfilled exactly
// once.
type Promise[T any] struct {
	c chan<- T
}

// Future is the consumer handle of a pending value. Its value can be received
// once.
type Future[T any] struct {
	c <-chan T
}

// Create returns a linked Promise and Future pair.
func Create[T any]() (Promise[T], Future[T]) {
	c := make(chan T, 1)
	return Promise[T]{c: c}, Future[T]{c: c}
}

// Immediate returns a Future which is already fulfilled with value.
func Immediate[T any](value T) Future[T] {
	promise, res := Create[T]()
	promise.Fulfill(value)
	return res
}

// Fulfill publishes the value to the linked Future.
func (p Promise[T]) Fulfill(value T) {
	p.c <- value
	close(p.c)
}

// Await blocks until the value is available.
func (f Future[T]) Await() T {
	return <-f.c
}

// AwaitContext is like Await but gives up when ctx is done. The value is
// lost if the context ends first.
func (f Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case res := <-f.c:
		return res, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
