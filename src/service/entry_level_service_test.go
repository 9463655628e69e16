package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/spread-dashboard/src/event"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/validator"
)

type ParametersProviderMock struct {
	mock.Mock
}

func (m *ParametersProviderMock) Parameters() (model.NormalizationParameters, bool) {
	args := m.Called()
	return args.Get(0).(model.NormalizationParameters), args.Bool(1)
}

type PreferencesStorageMock struct {
	mock.Mock
}

func (m *PreferencesStorageMock) SaveInputs(btcInput float64, ethInput float64) error {
	args := m.Called(btcInput, ethInput)
	return args.Error(0)
}
func (m *PreferencesStorageMock) SaveEntryLine(value float64) error {
	args := m.Called(value)
	return args.Error(0)
}
func (m *PreferencesStorageMock) GetPreferences() (model.DashboardPreferences, error) {
	args := m.Called()
	return args.Get(0).(model.DashboardPreferences), args.Error(1)
}

func newEntryLevelService(t *testing.T, provider ParametersProviderInterface, preferences PreferencesStorageInterface, dispatcher EventDispatcherInterface) (*EntryLevelService, *FakeSurface) {
	registry := ChartRegistry{Sanitizer: &Sanitizer{}}
	surface := NewFakeSurface()
	assert.Nil(t, registry.Register("spread", surface, model.LineSeriesOptions{Name: model.SeriesRelativeSpread}))

	return &EntryLevelService{
		Validator:       &validator.EntryLevelValidator{},
		Engine:          &MetricsEngine{},
		Registry:        &registry,
		Parameters:      provider,
		Preferences:     preferences,
		EventDispatcher: dispatcher,
		Chart:           "spread",
	}, surface
}

func TestEntryLevelIsCalculatedAndDrawn(t *testing.T) {
	assertion := assert.New(t)
	params := model.NormalizationParameters{AvgRatio180d: 10, BtcMin: 2000, BtcMax: 3000, EthMin: 2000, EthMax: 3000}
	provider := ParametersProviderMock{}
	provider.On("Parameters").Return(params, true)
	preferences := PreferencesStorageMock{}
	preferences.On("SaveInputs", 25000.0, 2200.0).Return(nil).Once()
	preferences.On("SaveEntryLine", mock.Anything).Return(nil).Once()
	dispatcher := EventDispatcherMock{}
	dispatcher.On("Dispatch", mock.Anything, event.EventEntryLevelUpdated).Return().Once()

	entryLevelService, surface := newEntryLevelService(t, &provider, &preferences, &dispatcher)
	surface.SetVisibleRange(model.TimeRange{From: 10, To: 20})

	entryLevel, err := entryLevelService.Calculate(model.EntryLevelRequest{BtcInput: "25000", EthInput: "2200"})

	assertion.Nil(err)
	assertion.InDelta(0.3, entryLevel.Value, 1e-9)
	assertion.True(entryLevel.Drawn)
	marker, exist := surface.DataByName(model.MarkerSeriesPrefix + "spread")
	assertion.True(exist)
	assertion.Len(marker, 2)
	preferences.AssertExpectations(t)
	dispatcher.AssertExpectations(t)
}

func TestEntryLevelRejectsInvalidInputWithoutSideEffects(t *testing.T) {
	assertion := assert.New(t)
	provider := ParametersProviderMock{}
	preferences := PreferencesStorageMock{}
	dispatcher := EventDispatcherMock{}

	entryLevelService, surface := newEntryLevelService(t, &provider, &preferences, &dispatcher)
	surface.SetVisibleRange(model.TimeRange{From: 10, To: 20})

	_, err := entryLevelService.Calculate(model.EntryLevelRequest{BtcInput: "abc", EthInput: "2200"})

	assertion.True(errors.Is(err, model.ErrInvalidInput))
	assertion.Equal(1, surface.SeriesCount())
	preferences.AssertNotCalled(t, "SaveInputs", mock.Anything, mock.Anything)
	dispatcher.AssertNotCalled(t, "Dispatch", mock.Anything, mock.Anything)
}

func TestEntryLevelRequiresParameters(t *testing.T) {
	assertion := assert.New(t)
	provider := ParametersProviderMock{}
	provider.On("Parameters").Return(model.NormalizationParameters{}, false)
	preferences := PreferencesStorageMock{}

	entryLevelService, _ := newEntryLevelService(t, &provider, &preferences, nil)
	_, err := entryLevelService.Calculate(model.EntryLevelRequest{BtcInput: "25000", EthInput: "2200"})

	assertion.True(errors.Is(err, model.ErrNoDataset))
	preferences.AssertNotCalled(t, "SaveEntryLine", mock.Anything)
}

func TestEntryLevelRedrawsStoredLine(t *testing.T) {
	assertion := assert.New(t)
	entryLine := 0.25
	preferences := PreferencesStorageMock{}
	preferences.On("GetPreferences").Return(model.DashboardPreferences{EntryLine: &entryLine}, nil)

	entryLevelService, surface := newEntryLevelService(t, &ParametersProviderMock{}, &preferences, nil)
	assertion.False(entryLevelService.Redraw())

	surface.SetVisibleRange(model.TimeRange{From: 1, To: 2})
	assertion.True(entryLevelService.Redraw())

	marker, _ := surface.DataByName(model.MarkerSeriesPrefix + "spread")
	assertion.Equal(model.Series{{Time: 1, Value: 0.25}, {Time: 2, Value: 0.25}}, marker)
}
