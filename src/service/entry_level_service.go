package service

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/event"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/validator"
)

type PreferencesStorageInterface interface {
	SaveInputs(btcInput float64, ethInput float64) error
	SaveEntryLine(value float64) error
	GetPreferences() (model.DashboardPreferences, error)
}

type ParametersProviderInterface interface {
	Parameters() (model.NormalizationParameters, bool)
}

type EntryLevelService struct {
	Validator       *validator.EntryLevelValidator
	Engine          *MetricsEngine
	Registry        *ChartRegistry
	Parameters      ParametersProviderInterface
	Preferences     PreferencesStorageInterface
	EventDispatcher EventDispatcherInterface
	Chart           string
}

// Calculate validates the manual inputs and overlays the resulting level on the entry chart.
// Invalid input is returned before anything is stored or drawn.
func (s *EntryLevelService) Calculate(request model.EntryLevelRequest) (model.EntryLevel, error) {
	btcInput, ethInput, err := s.Validator.Validate(request)
	if err != nil {
		return model.EntryLevel{}, err
	}

	params, ok := s.Parameters.Parameters()
	if !ok {
		return model.EntryLevel{}, fmt.Errorf("%w: normalization parameters are not loaded yet", model.ErrNoDataset)
	}

	value, err := s.Engine.EntryLevel(btcInput, ethInput, params)
	if err != nil {
		return model.EntryLevel{}, err
	}

	if err = s.Preferences.SaveInputs(btcInput, ethInput); err != nil {
		log.Warnf("[entry] inputs are not persisted: %s", err.Error())
	}
	if err = s.Preferences.SaveEntryLine(value); err != nil {
		log.Warnf("[entry] entry line is not persisted: %s", err.Error())
	}

	entryLevel := model.EntryLevel{
		BtcInput: btcInput,
		EthInput: ethInput,
		Value:    value,
		Chart:    s.Chart,
		Drawn:    s.Registry.DrawMarkerLine(s.Chart, value),
	}

	if s.EventDispatcher != nil {
		s.EventDispatcher.Dispatch(event.EntryLevelUpdated{EntryLevel: entryLevel}, event.EventEntryLevelUpdated)
	}

	return entryLevel, nil
}

// Redraw puts the last stored entry line back, e.g. once a chart got its visible range.
func (s *EntryLevelService) Redraw() bool {
	preferences, err := s.Preferences.GetPreferences()
	if err != nil || preferences.EntryLine == nil {
		return false
	}

	return s.Registry.DrawMarkerLine(s.Chart, *preferences.EntryLine)
}
