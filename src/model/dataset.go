package model

import (
	"encoding/json"
	"fmt"
	"time"
)

type MarketDataset struct {
	Series    map[string]Series
	Scalars   map[string]float64
	FetchedAt time.Time
}

func NewMarketDataset() MarketDataset {
	return MarketDataset{
		Series:  make(map[string]Series),
		Scalars: make(map[string]float64),
	}
}

func (d MarketDataset) Get(name string) (Series, bool) {
	series, exist := d.Series[name]

	return series, exist
}

func (d MarketDataset) Scalar(name string) (float64, bool) {
	value, exist := d.Scalars[name]
	if !exist || !IsFinite(value) {
		return 0, false
	}

	return value, true
}

func (d MarketDataset) IsEmpty() bool {
	for _, series := range d.Series {
		if len(series) > 0 {
			return false
		}
	}

	return true
}

// Clone copies series slices so that cached datasets are never mutated by readers.
func (d MarketDataset) Clone() MarketDataset {
	clone := NewMarketDataset()
	clone.FetchedAt = d.FetchedAt
	for name, series := range d.Series {
		copied := make(Series, len(series))
		copy(copied, series)
		clone.Series[name] = copied
	}
	for name, value := range d.Scalars {
		clone.Scalars[name] = value
	}

	return clone
}

// MarshalJSON writes the flat shape served by /api/processed-data.
func (d MarketDataset) MarshalJSON() ([]byte, error) {
	flat := make(map[string]any, len(d.Series)+len(d.Scalars))
	for name, series := range d.Series {
		if series == nil {
			series = Series{}
		}
		flat[name] = series
	}
	for name, value := range d.Scalars {
		if IsFinite(value) {
			flat[name] = value
		}
	}

	return json.Marshal(flat)
}

func (d *MarketDataset) UnmarshalJSON(b []byte) error {
	var flat map[string]json.RawMessage
	if err := json.Unmarshal(b, &flat); err != nil {
		return fmt.Errorf("MarketDataset: %w", err)
	}

	dataset := NewMarketDataset()
	for name, raw := range flat {
		var series Series
		if err := json.Unmarshal(raw, &series); err == nil {
			dataset.Series[name] = series
			continue
		}

		var value float64
		if err := json.Unmarshal(raw, &value); err == nil {
			dataset.Scalars[name] = value
		}
	}

	*d = dataset

	return nil
}

// RawRow is one aligned BTC/ETH close pair as stored in market_data_<window>.
type RawRow struct {
	Timestamp UnixTimestamp `json:"timestamp"`
	CloseBtc  Price         `json:"close_btc"`
	CloseEth  Price         `json:"close_eth"`
}

func (r RawRow) IsValid() bool {
	return r.CloseBtc.IsFinite() && r.CloseEth.IsFinite()
}

type PayloadKind string

const PayloadPreDerived PayloadKind = "pre_derived"
const PayloadRaw PayloadKind = "raw"

// MarketPayload is either pre-derived fields or raw rows; only the metrics engine consumes Raw.
// Pre-derived series arrays are kept undecoded until the sanitizer sees them.
type MarketPayload struct {
	Kind   PayloadKind
	Fields map[string]any
	Rows   []RawRow
}

func NewPreDerivedPayload(fields map[string]any) MarketPayload {
	return MarketPayload{Kind: PayloadPreDerived, Fields: fields}
}

func NewRawPayload(rows []RawRow) MarketPayload {
	return MarketPayload{Kind: PayloadRaw, Rows: rows}
}

func (p MarketPayload) IsRaw() bool {
	return p.Kind == PayloadRaw
}
