package doctor

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockCheck is a testify mock of Check in the mockery EXPECT style.
type MockCheck struct {
	mock.Mock
}

// NewMockCheck creates a MockCheck whose expectations are asserted when the
// test ends.
func NewMockCheck(t interface {
	mock.TestingT
	Cleanup(func())
}) *MockCheck {
	m := &MockCheck{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

type MockCheck_Expecter struct {
	mock *mock.Mock
}

func (m *MockCheck) EXPECT() *MockCheck_Expecter {
	return &MockCheck_Expecter{mock: &m.Mock}
}

func (m *MockCheck) Name() string {
	ret := m.Called()
	return ret.String(0)
}

func (e *MockCheck_Expecter) Name() *mock.Call {
	return e.mock.On("Name")
}

func (m *MockCheck) Category() string {
	ret := m.Called()
	return ret.String(0)
}

func (e *MockCheck_Expecter) Category() *mock.Call {
	return e.mock.On("Category")
}

func (m *MockCheck) Run(ctx context.Context) *CheckResult {
	ret := m.Called(ctx)
	if r, ok := ret.Get(0).(*CheckResult); ok {
		return r
	}
	return nil
}

func (e *MockCheck_Expecter) Run(ctx any) *mock.Call {
	return e.mock.On("Run", ctx)
}
