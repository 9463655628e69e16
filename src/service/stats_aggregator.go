package service

import (
	"sync"

	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
)

type StatsAggregator struct {
	Formatter   *utils.Formatter
	TimeService utils.TimeServiceInterface

	mu   sync.RWMutex
	last *model.SpreadStat
}

// Summarize takes current from the last point, not the last valid one. An empty series has no summary.
func (s *StatsAggregator) Summarize(series model.Series) (model.Summary, bool) {
	last, ok := series.Last()
	if !ok {
		return model.Summary{}, false
	}

	summary := model.Summary{
		Current: last.Value,
		Max:     series[0].Value,
		Min:     series[0].Value,
	}

	for _, point := range series {
		if point.Value > summary.Max {
			summary.Max = point.Value
		}
		if point.Value < summary.Min {
			summary.Min = point.Value
		}
	}

	return summary, true
}

func (s *StatsAggregator) SignOf(value float64) model.Sign {
	if value > 0 {
		return model.SignPositive
	}
	if value < 0 {
		return model.SignNegative
	}

	return model.SignZero
}

func (s *StatsAggregator) FormatPercent(value float64) string {
	return s.Formatter.FormatPercent(value)
}

// Report summarizes the series and remembers the result for later reads.
func (s *StatsAggregator) Report(series model.Series) (model.SpreadStat, bool) {
	summary, ok := s.Summarize(series)
	if !ok {
		return model.SpreadStat{}, false
	}

	stat := model.SpreadStat{
		Summary:          summary,
		CurrentFormatted: s.FormatPercent(summary.Current),
		MaxFormatted:     s.FormatPercent(summary.Max),
		MinFormatted:     s.FormatPercent(summary.Min),
		Sign:             s.SignOf(summary.Current),
		UpdatedAt:        s.TimeService.GetNowUnix(),
	}

	s.mu.Lock()
	s.last = &stat
	s.mu.Unlock()

	return stat, true
}

func (s *StatsAggregator) Last() (model.SpreadStat, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.last == nil {
		return model.SpreadStat{}, false
	}

	return *s.last, true
}
