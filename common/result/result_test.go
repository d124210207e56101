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

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestResult_Ok_CarriesValue(t *testing.T) {
	value, err := Ok(42).Get()
	require.NoError(t, err)
	require.Equal(t, 42, value)
}

func TestResult_Err_CarriesError(t *testing.T) {
	issue := errors.New("injected")
	r := Err[int](issue)
	value, err := r.Get()
	require.ErrorIs(t, err, issue)
	require.ErrorIs(t, r.Err(), issue)
	require.Zero(t, value)
}

func TestResult_Of_DropsValueOnError(t *testing.T) {
	issue := errors.New("injected")
	value, err := Of(5, issue).Get()
	require.ErrorIs(t, err, issue)
	require.Zero(t, value)

	value, err = Of(5, nil).Get()
	require.NoError(t, err)
	require.Equal(t, 5, value)
}
