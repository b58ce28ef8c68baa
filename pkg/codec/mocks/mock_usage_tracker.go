// Mocks in this package follow mockery's testify template as configured
// in .mockery.yml. Regenerate them by running mockery from the module root.

package mocks

import (
	mock "github.com/stretchr/testify/mock"
)

// NewMockUsageTracker creates a new instance of MockUsageTracker. It also registers a testing interface on the mock and a cleanup function to assert the mocks expectations.
// The first argument is typically a *testing.T value.
func NewMockUsageTracker(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockUsageTracker {
	mock := &MockUsageTracker{}
	mock.Mock.Test(t)

	t.Cleanup(func() { mock.AssertExpectations(t) })

	return mock
}

// MockUsageTracker is an autogenerated mock type for the UsageTracker type
type MockUsageTracker struct {
	mock.Mock
}

type MockUsageTracker_Expecter struct {
	mock *mock.Mock
}

func (_m *MockUsageTracker) EXPECT() *MockUsageTracker_Expecter {
	return &MockUsageTracker_Expecter{mock: &_m.Mock}
}

// EndDeviceUsage provides a mock function for the type MockUsageTracker
func (_mock *MockUsageTracker) EndDeviceUsage() error {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for EndDeviceUsage")
	}

	var r0 error
	if returnFunc, ok := ret.Get(0).(func() error); ok {
		r0 = returnFunc()
	} else {
		r0 = ret.Error(0)
	}
	return r0
}

// MockUsageTracker_EndDeviceUsage_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'EndDeviceUsage'
type MockUsageTracker_EndDeviceUsage_Call struct {
	*mock.Call
}

// EndDeviceUsage is a helper method to define mock.On call
func (_e *MockUsageTracker_Expecter) EndDeviceUsage() *MockUsageTracker_EndDeviceUsage_Call {
	return &MockUsageTracker_EndDeviceUsage_Call{Call: _e.mock.On("EndDeviceUsage")}
}

func (_c *MockUsageTracker_EndDeviceUsage_Call) Run(run func()) *MockUsageTracker_EndDeviceUsage_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockUsageTracker_EndDeviceUsage_Call) Return(err error) *MockUsageTracker_EndDeviceUsage_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MockUsageTracker_EndDeviceUsage_Call) RunAndReturn(run func() error) *MockUsageTracker_EndDeviceUsage_Call {
	_c.Call.Return(run)
	return _c
}

// StartDeviceUsage provides a mock function for the type MockUsageTracker
func (_mock *MockUsageTracker) StartDeviceUsage() error {
	ret := _mock.Called()

	if len(ret) == 0 {
		panic("no return value specified for StartDeviceUsage")
	}

	var r0 error
	if returnFunc, ok := ret.Get(0).(func() error); ok {
		r0 = returnFunc()
	} else {
		r0 = ret.Error(0)
	}
	return r0
}

// MockUsageTracker_StartDeviceUsage_Call is a *mock.Call that shadows Run/Return methods with type explicit version for method 'StartDeviceUsage'
type MockUsageTracker_StartDeviceUsage_Call struct {
	*mock.Call
}

// StartDeviceUsage is a helper method to define mock.On call
func (_e *MockUsageTracker_Expecter) StartDeviceUsage() *MockUsageTracker_StartDeviceUsage_Call {
	return &MockUsageTracker_StartDeviceUsage_Call{Call: _e.mock.On("StartDeviceUsage")}
}

func (_c *MockUsageTracker_StartDeviceUsage_Call) Run(run func()) *MockUsageTracker_StartDeviceUsage_Call {
	_c.Call.Run(func(args mock.Arguments) {
		run()
	})
	return _c
}

func (_c *MockUsageTracker_StartDeviceUsage_Call) Return(err error) *MockUsageTracker_StartDeviceUsage_Call {
	_c.Call.Return(err)
	return _c
}

func (_c *MockUsageTracker_StartDeviceUsage_Call) RunAndReturn(run func() error) *MockUsageTracker_StartDeviceUsage_Call {
	_c.Call.Return(run)
	return _c
}
