package model

const MarkerSeriesPrefix = "marker-"

type LineSeriesOptions struct {
	Name      string `json:"name" yaml:"name"`
	Color     string `json:"color" yaml:"color"`
	LineWidth int    `json:"lineWidth" yaml:"lineWidth"`
	Precision int    `json:"precision" yaml:"precision"`
	Dashed    bool   `json:"dashed" yaml:"dashed"`
}

// SeriesBinding routes one dataset series into one chart slot.
type SeriesBinding struct {
	DatasetKey string            `yaml:"dataset"`
	Options    LineSeriesOptions `yaml:",inline"`
}

type ChartDefinition struct {
	Name        string          `yaml:"name"`
	ContainerId string          `yaml:"container"`
	Series      []SeriesBinding `yaml:"series"`
}

type ChartLayout struct {
	Charts []ChartDefinition `yaml:"charts"`
	// Chart that receives the entry-level marker line.
	EntryChart string `yaml:"entryChart"`
	// Dataset series summarized for the spread stats.
	StatsSeries string `yaml:"statsSeries"`
}
