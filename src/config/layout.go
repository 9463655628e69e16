package config

import (
	_ "embed"
	"fmt"
	"os"
	"slices"

	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gopkg.in/yaml.v3"
)

//go:embed layout.yaml
var defaultLayout []byte

// LoadChartLayout reads the layout file, or the built-in layout when path is empty.
func LoadChartLayout(path string) (model.ChartLayout, error) {
	content := defaultLayout
	if path != "" {
		var err error
		content, err = os.ReadFile(path)
		if err != nil {
			return model.ChartLayout{}, fmt.Errorf("%w: %s", model.ErrChartLayout, err.Error())
		}
	}

	return ParseChartLayout(content)
}

func ParseChartLayout(content []byte) (model.ChartLayout, error) {
	var layout model.ChartLayout
	if err := yaml.Unmarshal(content, &layout); err != nil {
		return model.ChartLayout{}, fmt.Errorf("%w: %s", model.ErrChartLayout, err.Error())
	}

	if len(layout.Charts) == 0 {
		return model.ChartLayout{}, fmt.Errorf("%w: no charts", model.ErrChartLayout)
	}

	names := make([]string, 0, len(layout.Charts))
	for _, chart := range layout.Charts {
		if chart.Name == "" || slices.Contains(names, chart.Name) {
			return model.ChartLayout{}, fmt.Errorf("%w: chart name %q is empty or duplicated", model.ErrChartLayout, chart.Name)
		}
		names = append(names, chart.Name)

		for _, binding := range chart.Series {
			if !slices.Contains(model.DatasetSeriesNames, binding.DatasetKey) {
				return model.ChartLayout{}, fmt.Errorf("%w: chart %s binds unknown series %q", model.ErrChartLayout, chart.Name, binding.DatasetKey)
			}
			if binding.Options.Name == "" {
				return model.ChartLayout{}, fmt.Errorf("%w: chart %s has a series without name", model.ErrChartLayout, chart.Name)
			}
		}
	}

	if layout.EntryChart != "" && !slices.Contains(names, layout.EntryChart) {
		return model.ChartLayout{}, fmt.Errorf("%w: entry chart %q is not defined", model.ErrChartLayout, layout.EntryChart)
	}

	if layout.StatsSeries == "" {
		layout.StatsSeries = model.SeriesPercentageDiff
	}
	if !slices.Contains(model.DatasetSeriesNames, layout.StatsSeries) {
		return model.ChartLayout{}, fmt.Errorf("%w: unknown stats series %q", model.ErrChartLayout, layout.StatsSeries)
	}

	return layout, nil
}
