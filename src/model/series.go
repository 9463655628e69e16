package model

const SeriesBtc = "btc"
const SeriesEth = "eth"
const SeriesBtcAsEth = "btc_as_eth"
const SeriesPercentageDiff = "percentage_diff"
const SeriesBtcAsEthNorm = "btc_as_eth_norm"
const SeriesEthNorm = "eth_norm"
const SeriesPercentageDiffNorm = "percentage_diff_norm"
const SeriesRelativeSpread = "relative_spread"

const ScalarAvgRatio24h = "avg_ratio_24h"
const ScalarAvgRatio180d = "avg_ratio_180d"
const ScalarBtcAsEthMin = "btc_as_eth_min"
const ScalarBtcAsEthMax = "btc_as_eth_max"
const ScalarEthMin = "eth_min"
const ScalarEthMax = "eth_max"

var DatasetSeriesNames = []string{
	SeriesBtc,
	SeriesEth,
	SeriesBtcAsEth,
	SeriesPercentageDiff,
	SeriesBtcAsEthNorm,
	SeriesEthNorm,
	SeriesPercentageDiffNorm,
	SeriesRelativeSpread,
}

type Point struct {
	Time  int64   `json:"time"`
	Value float64 `json:"value"`
}

func (p Point) IsValid() bool {
	return IsFinite(p.Value)
}

// Series is ordered ascending by Time. Duplicate timestamps are kept.
type Series []Point

func (s Series) Values() []float64 {
	values := make([]float64, 0, len(s))
	for _, point := range s {
		values = append(values, point.Value)
	}

	return values
}

func (s Series) Last() (Point, bool) {
	if len(s) == 0 {
		return Point{}, false
	}

	return s[len(s)-1], true
}

func (s Series) TimeRange() (TimeRange, bool) {
	if len(s) == 0 {
		return TimeRange{}, false
	}

	timeRange := TimeRange{From: s[0].Time, To: s[0].Time}
	for _, point := range s {
		if point.Time < timeRange.From {
			timeRange.From = point.Time
		}
		if point.Time > timeRange.To {
			timeRange.To = point.Time
		}
	}

	return timeRange, true
}

type TimeRange struct {
	From int64 `json:"from"`
	To   int64 `json:"to"`
}
