package service

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
)

type TimeServiceMock struct {
	mock.Mock
}

func (m *TimeServiceMock) GetNowUnix() int64 {
	args := m.Called()
	return args.Get(0).(int64)
}
func (m *TimeServiceMock) GetNow() time.Time {
	args := m.Called()
	return args.Get(0).(time.Time)
}
func (m *TimeServiceMock) NewTicker(interval time.Duration) utils.TickerInterface {
	args := m.Called(interval)
	return args.Get(0).(utils.TickerInterface)
}

type FakeTicker struct {
	channel chan time.Time
	mu      sync.Mutex
	stopped bool
}

func NewFakeTicker() *FakeTicker {
	return &FakeTicker{channel: make(chan time.Time, 16)}
}

func (f *FakeTicker) C() <-chan time.Time {
	return f.channel
}
func (f *FakeTicker) Stop() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}
func (f *FakeTicker) IsStopped() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stopped
}
func (f *FakeTicker) Tick() {
	f.channel <- time.Now()
}

type DatasetStorageMock struct {
	mock.Mock
}

func (m *DatasetStorageMock) SaveDataset(dataset model.MarketDataset) error {
	args := m.Called(dataset)
	return args.Error(0)
}
func (m *DatasetStorageMock) LoadDataset() (*model.MarketDataset, error) {
	args := m.Called()
	dataset, _ := args.Get(0).(*model.MarketDataset)
	return dataset, args.Error(1)
}

// FakeSurface records the data of every series the way a rendered chart would hold it.
type FakeSurface struct {
	mu           sync.Mutex
	sequence     int
	names        map[string]string
	data         map[string]model.Series
	setDataCalls int
	removed      []string
	visible      *model.TimeRange
}

func NewFakeSurface() *FakeSurface {
	return &FakeSurface{
		names: make(map[string]string),
		data:  make(map[string]model.Series),
	}
}

func (f *FakeSurface) AddLineSeries(options model.LineSeriesOptions) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.sequence++
	seriesId := fmt.Sprintf("series-%d", f.sequence)
	f.names[seriesId] = options.Name

	return seriesId, nil
}
func (f *FakeSurface) SetData(seriesId string, points model.Series) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, exist := f.names[seriesId]; !exist {
		return fmt.Errorf("series %s is removed", seriesId)
	}

	f.setDataCalls++
	f.data[seriesId] = points

	return nil
}
func (f *FakeSurface) RemoveSeries(seriesId string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.names, seriesId)
	delete(f.data, seriesId)
	f.removed = append(f.removed, seriesId)
}
func (f *FakeSurface) VisibleRange() (model.TimeRange, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.visible == nil {
		return model.TimeRange{}, false
	}

	return *f.visible, true
}
func (f *FakeSurface) SetVisibleRange(timeRange model.TimeRange) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.visible = &timeRange
}

// DataByName returns the data of the live series with the given name.
func (f *FakeSurface) DataByName(name string) (model.Series, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for seriesId, seriesName := range f.names {
		if seriesName == name {
			data, exist := f.data[seriesId]
			return data, exist
		}
	}

	return nil, false
}
func (f *FakeSurface) SeriesCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.names)
}
func (f *FakeSurface) SetDataCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.setDataCalls
}

type MarketDataClientMock struct {
	mock.Mock
}

func (m *MarketDataClientMock) FetchPayload(ctx context.Context, window string) (model.MarketPayload, error) {
	args := m.Called(ctx, window)
	return args.Get(0).(model.MarketPayload), args.Error(1)
}

type EventDispatcherMock struct {
	mock.Mock
}

func (m *EventDispatcherMock) Dispatch(event interface{}, eventName string) {
	m.Called(event, eventName)
}

type ParametersStorageMock struct {
	mock.Mock
}

func (m *ParametersStorageMock) SaveParameters(params model.NormalizationParameters) error {
	args := m.Called(params)
	return args.Error(0)
}
func (m *ParametersStorageMock) LoadParameters() (model.NormalizationParameters, error) {
	args := m.Called()
	return args.Get(0).(model.NormalizationParameters), args.Error(1)
}

type MarketDataStorageMock struct {
	mock.Mock
}

func (m *MarketDataStorageMock) GetRows(ctx context.Context, window model.Window, newestFirst bool) ([]model.RawRow, error) {
	args := m.Called(ctx, window, newestFirst)
	rows, _ := args.Get(0).([]model.RawRow)
	return rows, args.Error(1)
}
func (m *MarketDataStorageMock) ReplaceRows(ctx context.Context, window model.Window, rows []model.RawRow) error {
	args := m.Called(ctx, window, rows)
	return args.Error(0)
}
func (m *MarketDataStorageMock) GetLastTimestamp(ctx context.Context, window model.Window) (int64, bool) {
	args := m.Called(ctx, window)
	return args.Get(0).(int64), args.Bool(1)
}

type ProcessedDataCacheMock struct {
	mock.Mock
}

func (m *ProcessedDataCacheMock) GetProcessedData(window string) *model.MarketDataset {
	args := m.Called(window)
	dataset, _ := args.Get(0).(*model.MarketDataset)
	return dataset
}
func (m *ProcessedDataCacheMock) SaveProcessedData(window string, dataset model.MarketDataset) {
	m.Called(window, dataset)
}

type KLineSourceMock struct {
	mock.Mock
}

func (m *KLineSourceMock) GetKLinesSince(ctx context.Context, symbol string, interval string, since time.Time) ([]model.KLine, error) {
	args := m.Called(ctx, symbol, interval, since)
	kLines, _ := args.Get(0).([]model.KLine)
	return kLines, args.Error(1)
}
