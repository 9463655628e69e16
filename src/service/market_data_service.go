package service

import (
	"context"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type MarketDataStorageInterface interface {
	GetRows(ctx context.Context, window model.Window, newestFirst bool) ([]model.RawRow, error)
	ReplaceRows(ctx context.Context, window model.Window, rows []model.RawRow) error
	GetLastTimestamp(ctx context.Context, window model.Window) (int64, bool)
}

type ProcessedDataCacheInterface interface {
	GetProcessedData(window string) *model.MarketDataset
	SaveProcessedData(window string, dataset model.MarketDataset)
}

// MarketDataService serves the stored windows raw or derived.
type MarketDataService struct {
	Storage MarketDataStorageInterface
	Cache   ProcessedDataCacheInterface
	Engine  *MetricsEngine
}

// GetRawRows returns the window rows newest first; only known windows map to a table.
func (m *MarketDataService) GetRawRows(ctx context.Context, windowName string) ([]model.RawRow, model.Window, error) {
	window, err := model.GetWindow(windowName)
	if err != nil {
		return nil, model.Window{}, err
	}

	rows, err := m.Storage.GetRows(ctx, window, true)
	if err != nil {
		return nil, window, err
	}

	return rows, window, nil
}

// GetProcessedData derives the window with normalization parameters of the 180d window
// and the average ratio of the 24h window.
func (m *MarketDataService) GetProcessedData(ctx context.Context, windowName string) (model.MarketDataset, error) {
	window, err := model.GetWindow(windowName)
	if err != nil {
		return model.MarketDataset{}, err
	}

	if m.Cache != nil {
		if cached := m.Cache.GetProcessedData(window.Name); cached != nil {
			return *cached, nil
		}
	}

	rows, err := m.Storage.GetRows(ctx, window, false)
	if err != nil {
		return model.MarketDataset{}, err
	}

	params, err := m.Parameters(ctx)
	if err != nil {
		return model.MarketDataset{}, err
	}

	dataset := m.Engine.Derive(rows, params)

	if params == nil && window.Name == model.Window24h.Name {
		if avgRatio, err := m.Engine.AverageRatio(rows); err == nil {
			dataset.Scalars[model.ScalarAvgRatio24h] = avgRatio
		}
	}

	if m.Cache != nil {
		m.Cache.SaveProcessedData(window.Name, dataset)
	}

	return dataset, nil
}

// Parameters returns nil when the stored windows are too degenerate to normalize against.
func (m *MarketDataService) Parameters(ctx context.Context) (*model.NormalizationParameters, error) {
	longRows, err := m.Storage.GetRows(ctx, model.Window180d, false)
	if err != nil {
		return nil, err
	}

	params, err := m.Engine.Parameters(longRows)
	if err != nil {
		log.Warnf("[%s] normalization parameters are not available: %s", model.Window180d.Name, err.Error())
		return nil, nil
	}

	shortRows, err := m.Storage.GetRows(ctx, model.Window24h, false)
	if err != nil {
		return nil, err
	}

	if avgRatio, err := m.Engine.AverageRatio(shortRows); err == nil {
		params.AvgRatio24h = avgRatio
	}

	return &params, nil
}
