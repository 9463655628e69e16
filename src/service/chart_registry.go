package service

import (
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

// ChartSurface is the minimal rendering capability a chart exposes.
type ChartSurface interface {
	AddLineSeries(options model.LineSeriesOptions) (string, error)
	SetData(seriesId string, points model.Series) error
	RemoveSeries(seriesId string)
	VisibleRange() (model.TimeRange, bool)
}

type registeredChart struct {
	surface   ChartSurface
	series    map[string]string
	displayed map[string]model.Series
	marker    string
}

// ChartRegistry maps chart name to series name to surface handle. Surfaces are registered once.
type ChartRegistry struct {
	Sanitizer *Sanitizer

	mu     sync.Mutex
	charts map[string]*registeredChart
}

func (r *ChartRegistry) Register(chartName string, surface ChartSurface, series ...model.LineSeriesOptions) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.charts == nil {
		r.charts = make(map[string]*registeredChart)
	}

	if _, exist := r.charts[chartName]; exist {
		return fmt.Errorf("chart %s is already registered", chartName)
	}

	chart := registeredChart{
		surface:   surface,
		series:    make(map[string]string),
		displayed: make(map[string]model.Series),
	}

	declared := make(map[string]bool, len(series))
	for _, options := range series {
		if declared[options.Name] {
			return fmt.Errorf("chart %s: series %s is declared twice", chartName, options.Name)
		}
		declared[options.Name] = true
	}

	for _, options := range series {
		seriesId, err := surface.AddLineSeries(options)
		if err != nil {
			for _, addedId := range chart.series {
				surface.RemoveSeries(addedId)
			}
			return fmt.Errorf("chart %s: series %s: %w", chartName, options.Name, err)
		}
		chart.series[options.Name] = seriesId
	}

	r.charts[chartName] = &chart
	log.Infof("[%s] chart registered with %d series", chartName, len(chart.series))

	return nil
}

// ApplySeries sanitizes raw data and replaces the slot's data. Missing slots, non-arrays and
// empty results are no-ops that keep the previously displayed data.
func (r *ChartRegistry) ApplySeries(chartName string, seriesName string, raw any) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	chart, exist := r.charts[chartName]
	if !exist {
		log.Warnf("[%s] chart is not registered", chartName)
		return false
	}

	seriesId, exist := chart.series[seriesName]
	if !exist {
		log.Warnf("[%s] series %s is not registered", chartName, seriesName)
		return false
	}

	series, ok := r.Sanitizer.Sanitize(raw)
	if !ok {
		log.Warnf("[%s] series %s: data is not an array", chartName, seriesName)
		return false
	}

	if len(series) == 0 {
		log.Debugf("[%s] series %s: nothing to show", chartName, seriesName)
		return false
	}

	if err := chart.surface.SetData(seriesId, series); err != nil {
		log.Warnf("[%s] series %s: %s", chartName, seriesName, err.Error())
		return false
	}

	chart.displayed[seriesName] = series

	return true
}

func (r *ChartRegistry) ApplySeriesData(chartName string, seriesName string, series model.Series) bool {
	return r.ApplySeries(chartName, seriesName, series)
}

// Displayed returns a copy of the data last applied to the slot.
func (r *ChartRegistry) Displayed(chartName string, seriesName string) (model.Series, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	chart, exist := r.charts[chartName]
	if !exist {
		return nil, false
	}

	series, exist := chart.displayed[seriesName]
	if !exist {
		return nil, false
	}

	copied := make(model.Series, len(series))
	copy(copied, series)

	return copied, true
}

// DrawMarkerLine keeps at most one horizontal marker per chart across the visible time range.
// Without a visible range the draw is skipped and the previous marker stays.
func (r *ChartRegistry) DrawMarkerLine(chartName string, value float64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !model.IsFinite(value) {
		log.Warnf("[%s] marker line value is not finite", chartName)
		return false
	}

	chart, exist := r.charts[chartName]
	if !exist {
		log.Warnf("[%s] chart is not registered", chartName)
		return false
	}

	visibleRange, ok := chart.surface.VisibleRange()
	if !ok {
		log.Debugf("[%s] no visible range, marker line skipped", chartName)
		return false
	}

	if chart.marker != "" {
		chart.surface.RemoveSeries(chart.marker)
		chart.marker = ""
	}

	markerId, err := chart.surface.AddLineSeries(model.LineSeriesOptions{
		Name:      model.MarkerSeriesPrefix + chartName,
		Color:     "#e74c3c",
		LineWidth: 1,
		Precision: 4,
		Dashed:    true,
	})
	if err != nil {
		log.Warnf("[%s] marker line: %s", chartName, err.Error())
		return false
	}

	chart.marker = markerId
	err = chart.surface.SetData(markerId, model.Series{
		{Time: visibleRange.From, Value: value},
		{Time: visibleRange.To, Value: value},
	})
	if err != nil {
		log.Warnf("[%s] marker line: %s", chartName, err.Error())
		return false
	}

	return true
}

func (r *ChartRegistry) HasChart(chartName string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exist := r.charts[chartName]

	return exist
}

// RegisterLayout creates a surface for every chart of the layout.
func (r *ChartRegistry) RegisterLayout(layout model.ChartLayout, factory func(definition model.ChartDefinition) ChartSurface) error {
	for _, definition := range layout.Charts {
		options := make([]model.LineSeriesOptions, 0, len(definition.Series))
		for _, binding := range definition.Series {
			options = append(options, binding.Options)
		}

		if err := r.Register(definition.Name, factory(definition), options...); err != nil {
			return fmt.Errorf("%w: %w", model.ErrChartLayout, err)
		}
	}

	return nil
}
