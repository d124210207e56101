// Copyright (c) 2025 Sonic Operations Ltd
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at soniclabs.com/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

// Package depot is a generated GoMock package.
package depot

import (
	reflect "reflect"

	common "github.com/0xsoniclabs/cellar/common"
	gomock "go.uber.org/mock/gomock"
)

// MockDepot is a mock of Depot interface.
type MockDepot struct {
	ctrl     *gomock.Controller
	recorder *MockDepotMockRecorder
	isgomock struct{}
}

// MockDepotMockRecorder is the mock recorder for MockDepot.
type MockDepotMockRecorder struct {
	mock *MockDepot
}

// NewMockDepot creates a new mock instance.
func NewMockDepot(ctrl *gomock.Controller) *MockDepot {
	mock := &MockDepot{ctrl: ctrl}
	mock.recorder = &MockDepotMockRecorder{mock}
	return mock
}

// EXPECT returns an object that allows the caller to indicate expected use.
func (m *MockDepot) EXPECT() *MockDepotMockRecorder {
	return m.recorder
}

// Close mocks base method.
func (m *MockDepot) Close() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Close")
	ret0, _ := ret[0].(error)
	return ret0
}

// Close indicates an expected call of Close.
func (mr *MockDepotMockRecorder) Close() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Close", reflect.TypeOf((*MockDepot)(nil).Close))
}

// Flush mocks base method.
func (m *MockDepot) Flush() error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Flush")
	ret0, _ := ret[0].(error)
	return ret0
}

// Flush indicates an expected call of Flush.
func (mr *MockDepotMockRecorder) Flush() *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Flush", reflect.TypeOf((*MockDepot)(nil).Flush))
}

// Get mocks base method.
func (m *MockDepot) Get(key common.Hash) ([]byte, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Get", key)
	ret0, _ := ret[0].([]byte)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Get indicates an expected call of Get.
func (mr *MockDepotMockRecorder) Get(key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Get", reflect.TypeOf((*MockDepot)(nil).Get), key)
}

// Has mocks base method.
func (m *MockDepot) Has(key common.Hash) (bool, error) {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Has", key)
	ret0, _ := ret[0].(bool)
	ret1, _ := ret[1].(error)
	return ret0, ret1
}

// Has indicates an expected call of Has.
func (mr *MockDepotMockRecorder) Has(key any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Has", reflect.TypeOf((*MockDepot)(nil).Has), key)
}

// Set mocks base method.
func (m *MockDepot) Set(key common.Hash, value []byte) error {
	m.ctrl.T.Helper()
	ret := m.ctrl.Call(m, "Set", key, value)
	ret0, _ := ret[0].(error)
	return ret0
}

// Set indicates an expected call of Set.
func (mr *MockDepotMockRecorder) Set(key, value any) *gomock.Call {
	mr.mock.ctrl.T.Helper()
	return mr.mock.ctrl.RecordCallWithMethodType(mr.mock, "Set", reflect.TypeOf((*MockDepot)(nil).Set), key, value)
}
