package service

import (
	"fmt"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type MetricsEngine struct {
}

// Derive builds every dataset series from raw rows in one pass, pairing BTC and ETH by row.
// Rows may come newest first; series are always ascending by time.
// Norm variants are produced only when params are present and valid.
func (e *MetricsEngine) Derive(rows []model.RawRow, params *model.NormalizationParameters) model.MarketDataset {
	rows = e.ascending(rows)
	dataset := model.NewMarketDataset()
	btc := make(model.Series, 0, len(rows))
	eth := make(model.Series, 0, len(rows))
	btcAsEth := make(model.Series, 0, len(rows))

	withNorm := params != nil && params.Validate() == nil
	btcAsEthNorm := make(model.Series, 0)
	ethNorm := make(model.Series, 0)
	relativeSpread := make(model.Series, 0)
	percentageDiffNorm := make(model.Series, 0)

	for _, row := range rows {
		if !row.IsValid() {
			continue
		}

		timestamp := row.Timestamp.Value()
		btcClose := row.CloseBtc.Value()
		ethClose := row.CloseEth.Value()

		btc = append(btc, model.Point{Time: timestamp, Value: btcClose})
		eth = append(eth, model.Point{Time: timestamp, Value: ethClose})

		if ratio, ok := e.Ratio(btcClose, ethClose); ok {
			btcAsEth = append(btcAsEth, model.Point{Time: timestamp, Value: ratio})
		}

		if !withNorm {
			continue
		}

		btcValue, btcErr := e.Normalize(btcClose/params.AvgRatio180d, params.BtcMin, params.BtcMax)
		ethValue, ethErr := e.Normalize(ethClose, params.EthMin, params.EthMax)
		if btcErr != nil || ethErr != nil {
			continue
		}

		spread := btcValue - ethValue
		btcAsEthNorm = append(btcAsEthNorm, model.Point{Time: timestamp, Value: btcValue})
		ethNorm = append(ethNorm, model.Point{Time: timestamp, Value: ethValue})
		relativeSpread = append(relativeSpread, model.Point{Time: timestamp, Value: spread})
		percentageDiffNorm = append(percentageDiffNorm, model.Point{Time: timestamp, Value: spread * 100})
	}

	percentageDiff, err := e.PercentageDiff(btcAsEth)
	if err != nil {
		log.Warnf("[metrics] percentage_diff skipped: %s", err.Error())
		percentageDiff = model.Series{}
	}

	dataset.Series[model.SeriesBtc] = btc
	dataset.Series[model.SeriesEth] = eth
	dataset.Series[model.SeriesBtcAsEth] = btcAsEth
	dataset.Series[model.SeriesPercentageDiff] = percentageDiff

	if withNorm {
		dataset.Series[model.SeriesBtcAsEthNorm] = btcAsEthNorm
		dataset.Series[model.SeriesEthNorm] = ethNorm
		dataset.Series[model.SeriesRelativeSpread] = relativeSpread
		dataset.Series[model.SeriesPercentageDiffNorm] = percentageDiffNorm
		for name, value := range params.ToScalars() {
			dataset.Scalars[name] = value
		}
	}

	return dataset
}

func (e *MetricsEngine) ascending(rows []model.RawRow) []model.RawRow {
	sorted := make([]model.RawRow, len(rows))
	copy(sorted, rows)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp < sorted[j].Timestamp
	})

	return sorted
}

// Ratio is btc/eth, undefined for a zero or non-finite result.
func (e *MetricsEngine) Ratio(btc float64, eth float64) (float64, bool) {
	if eth == 0 || !model.IsFinite(btc) || !model.IsFinite(eth) {
		return 0, false
	}

	ratio := btc / eth

	return ratio, model.IsFinite(ratio)
}

// PercentageDiff expresses each point as the percentage distance from the series mean.
func (e *MetricsEngine) PercentageDiff(series model.Series) (model.Series, error) {
	if len(series) == 0 {
		return model.Series{}, nil
	}

	average := e.Mean(series.Values())
	if average == 0 || !model.IsFinite(average) {
		return nil, fmt.Errorf("%w: %v", model.ErrDegenerateAverage, average)
	}

	result := make(model.Series, 0, len(series))
	for _, point := range series {
		value := (point.Value - average) / average * 100
		if !model.IsFinite(value) {
			continue
		}
		result = append(result, model.Point{Time: point.Time, Value: value})
	}

	return result, nil
}

func (e *MetricsEngine) Normalize(value float64, min float64, max float64) (float64, error) {
	if !model.IsFinite(min) || !model.IsFinite(max) || max == min {
		return 0, fmt.Errorf("%w: [%v, %v]", model.ErrDegenerateBounds, min, max)
	}

	normalized := (value - min) / (max - min)
	if !model.IsFinite(normalized) {
		return 0, fmt.Errorf("%w: value %v", model.ErrDegenerateBounds, value)
	}

	return normalized, nil
}

// EntryLevel uses the long-horizon ratio and bounds so that the reference stays stable across refreshes.
func (e *MetricsEngine) EntryLevel(btcInput float64, ethInput float64, params model.NormalizationParameters) (float64, error) {
	if err := params.Validate(); err != nil {
		return 0, err
	}

	btcValue, err := e.Normalize(btcInput/params.AvgRatio180d, params.BtcMin, params.BtcMax)
	if err != nil {
		return 0, err
	}

	ethValue, err := e.Normalize(ethInput, params.EthMin, params.EthMax)
	if err != nil {
		return 0, err
	}

	return btcValue - ethValue, nil
}

// Parameters computes the summary statistics of a long-horizon window.
func (e *MetricsEngine) Parameters(rows []model.RawRow) (model.NormalizationParameters, error) {
	avgRatio, err := e.AverageRatio(rows)
	if err != nil {
		return model.NormalizationParameters{}, err
	}

	params := model.NormalizationParameters{
		AvgRatio180d: avgRatio,
		BtcMin:       math.Inf(1),
		BtcMax:       math.Inf(-1),
		EthMin:       math.Inf(1),
		EthMax:       math.Inf(-1),
	}

	for _, row := range rows {
		if !row.IsValid() {
			continue
		}

		btcAsEth := row.CloseBtc.Value() / avgRatio
		params.BtcMin = math.Min(params.BtcMin, btcAsEth)
		params.BtcMax = math.Max(params.BtcMax, btcAsEth)
		params.EthMin = math.Min(params.EthMin, row.CloseEth.Value())
		params.EthMax = math.Max(params.EthMax, row.CloseEth.Value())
	}

	if err = params.Validate(); err != nil {
		return model.NormalizationParameters{}, err
	}

	return params, nil
}

// AverageRatio is the mean of per-row btc/eth ratios; rows without a ratio are skipped.
func (e *MetricsEngine) AverageRatio(rows []model.RawRow) (float64, error) {
	ratios := make([]float64, 0, len(rows))
	for _, row := range rows {
		if !row.IsValid() {
			continue
		}
		if ratio, ok := e.Ratio(row.CloseBtc.Value(), row.CloseEth.Value()); ok {
			ratios = append(ratios, ratio)
		}
	}

	if len(ratios) == 0 {
		return 0, fmt.Errorf("%w: no valid rows", model.ErrDegenerateRatio)
	}

	average := e.Mean(ratios)
	if average == 0 || !model.IsFinite(average) {
		return 0, fmt.Errorf("%w: %v", model.ErrDegenerateRatio, average)
	}

	return average, nil
}

func (e *MetricsEngine) Mean(values []float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}

	sum := 0.00
	for _, value := range values {
		sum += value
	}

	return sum / float64(len(values))
}
