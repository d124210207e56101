// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package result

// Result pairs a value with an error so that outcomes of operations can be
// passed through channels and futures as a single value.
type Result[T any] struct {
	value T
	err   error
}

func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

func Err[T any](err error) Result[T] {
	return Result[T]{err: err}
}

// Of wraps the usual (value, error) return pair.
func Of[T any](value T, err error) Result[T] {
	if err != nil {
		return Err[T](err)
	}
	return Ok(value)
}

// Get unpacks the result. The value is the zero value if an error is set.
func (r Result[T]) Get() (T, error) {
	return r.value, r.err
}

func (r Result[T]) Err() error {
	return r.err
}
