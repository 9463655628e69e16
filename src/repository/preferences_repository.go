package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type ObjectStorageInterface interface {
	LoadObject(key string, object interface{}) error
	SaveObject(key string, object interface{}) error
}

// PreferencesRepository stores every preference under its own key of the object storage.
type PreferencesRepository struct {
	ObjectRepository ObjectStorageInterface
}

func (p *PreferencesRepository) SaveParameters(params model.NormalizationParameters) error {
	values := map[string]float64{
		model.PreferenceAvgRatio24h:  params.AvgRatio24h,
		model.PreferenceAvgRatio180d: params.AvgRatio180d,
		model.PreferenceBtcMin:       params.BtcMin,
		model.PreferenceBtcMax:       params.BtcMax,
		model.PreferenceEthMin:       params.EthMin,
		model.PreferenceEthMax:       params.EthMax,
	}

	for _, key := range parameterKeys {
		if err := p.ObjectRepository.SaveObject(key, values[key]); err != nil {
			return fmt.Errorf("preference %s: %w", key, err)
		}
	}

	return nil
}

func (p *PreferencesRepository) LoadParameters() (model.NormalizationParameters, error) {
	params := model.NormalizationParameters{}
	targets := map[string]*float64{
		model.PreferenceAvgRatio24h:  &params.AvgRatio24h,
		model.PreferenceAvgRatio180d: &params.AvgRatio180d,
		model.PreferenceBtcMin:       &params.BtcMin,
		model.PreferenceBtcMax:       &params.BtcMax,
		model.PreferenceEthMin:       &params.EthMin,
		model.PreferenceEthMax:       &params.EthMax,
	}

	for _, key := range parameterKeys {
		if err := p.ObjectRepository.LoadObject(key, targets[key]); err != nil {
			return model.NormalizationParameters{}, fmt.Errorf("preference %s: %w", key, err)
		}
	}

	return params, nil
}

func (p *PreferencesRepository) SaveInputs(btcInput float64, ethInput float64) error {
	if err := p.ObjectRepository.SaveObject(model.PreferenceBtcInput, btcInput); err != nil {
		return err
	}

	return p.ObjectRepository.SaveObject(model.PreferenceEthInput, ethInput)
}

func (p *PreferencesRepository) SaveEntryLine(value float64) error {
	return p.ObjectRepository.SaveObject(model.PreferenceEntryLine, value)
}

// GetPreferences reads whatever is stored; missing keys stay nil.
func (p *PreferencesRepository) GetPreferences() (model.DashboardPreferences, error) {
	preferences := model.DashboardPreferences{}

	params, err := p.LoadParameters()
	if err == nil {
		preferences.Parameters = &params
	} else if !errors.Is(err, sql.ErrNoRows) {
		return preferences, err
	}

	for key, target := range map[string]**float64{
		model.PreferenceBtcInput:  &preferences.BtcInput,
		model.PreferenceEthInput:  &preferences.EthInput,
		model.PreferenceEntryLine: &preferences.EntryLine,
	} {
		value, err := p.loadFloat(key)
		if err != nil {
			return preferences, err
		}
		*target = value
	}

	return preferences, nil
}

func (p *PreferencesRepository) loadFloat(key string) (*float64, error) {
	var value float64
	err := p.ObjectRepository.LoadObject(key, &value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("preference %s: %w", key, err)
	}

	return &value, nil
}

var parameterKeys = []string{
	model.PreferenceAvgRatio24h,
	model.PreferenceAvgRatio180d,
	model.PreferenceBtcMin,
	model.PreferenceBtcMax,
	model.PreferenceEthMin,
	model.PreferenceEthMax,
}
