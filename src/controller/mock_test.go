package controller

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type MarketDataServiceMock struct {
	mock.Mock
}

func (m *MarketDataServiceMock) GetRawRows(ctx context.Context, windowName string) ([]model.RawRow, model.Window, error) {
	args := m.Called(ctx, windowName)
	rows, _ := args.Get(0).([]model.RawRow)
	return rows, args.Get(1).(model.Window), args.Error(2)
}
func (m *MarketDataServiceMock) GetProcessedData(ctx context.Context, windowName string) (model.MarketDataset, error) {
	args := m.Called(ctx, windowName)
	return args.Get(0).(model.MarketDataset), args.Error(1)
}

type RefresherMock struct {
	mock.Mock
}

func (m *RefresherMock) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}
func (m *RefresherMock) State() model.RefreshState {
	args := m.Called()
	return args.Get(0).(model.RefreshState)
}

type AutoRefreshMock struct {
	mock.Mock
}

func (m *AutoRefreshMock) Start(interval time.Duration) error {
	args := m.Called(interval)
	return args.Error(0)
}
func (m *AutoRefreshMock) Stop() {
	m.Called()
}
func (m *AutoRefreshMock) Toggle() bool {
	args := m.Called()
	return args.Bool(0)
}

type StatsProviderMock struct {
	mock.Mock
}

func (m *StatsProviderMock) Last() (model.SpreadStat, bool) {
	args := m.Called()
	return args.Get(0).(model.SpreadStat), args.Bool(1)
}

type EntryLevelCalculatorMock struct {
	mock.Mock
}

func (m *EntryLevelCalculatorMock) Calculate(request model.EntryLevelRequest) (model.EntryLevel, error) {
	args := m.Called(request)
	return args.Get(0).(model.EntryLevel), args.Error(1)
}

type PreferencesProviderMock struct {
	mock.Mock
}

func (m *PreferencesProviderMock) GetPreferences() (model.DashboardPreferences, error) {
	args := m.Called()
	return args.Get(0).(model.DashboardPreferences), args.Error(1)
}

type HealthCheckerMock struct {
	mock.Mock
}

func (m *HealthCheckerMock) HealthCheck() model.DashboardHealth {
	args := m.Called()
	return args.Get(0).(model.DashboardHealth)
}
