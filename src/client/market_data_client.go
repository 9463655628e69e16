package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

// Fields a pre-derived payload must carry.
var requiredDatasetFields = []string{
	model.SeriesBtc,
	model.SeriesEth,
	model.SeriesBtcAsEth,
	model.SeriesPercentageDiff,
}

// MarketDataClient polls a market-data endpoint and tells raw rows from pre-derived datasets.
type MarketDataClient struct {
	HttpClient HttpClientInterface
	BaseUrl    string
	Path       string
}

func (m *MarketDataClient) FetchPayload(ctx context.Context, window string) (model.MarketPayload, error) {
	endpoint := fmt.Sprintf("%s%s?table=%s", strings.TrimRight(m.BaseUrl, "/"), m.Path, url.QueryEscape(window))

	body, err := m.HttpClient.Get(ctx, endpoint, map[string]string{})
	if err != nil {
		return model.MarketPayload{}, err
	}

	return DecodePayload(body)
}

// DecodePayload treats rows carrying close_btc/close_eth as raw and everything else as pre-derived.
func DecodePayload(body []byte) (model.MarketPayload, error) {
	if !gjson.ValidBytes(body) {
		return model.MarketPayload{}, fmt.Errorf("%w: invalid json", model.ErrMalformedPayload)
	}

	result := gjson.ParseBytes(body)

	if result.IsArray() {
		return decodeRawRows(result)
	}

	if !result.IsObject() {
		return model.MarketPayload{}, fmt.Errorf("%w: %s given", model.ErrMalformedPayload, result.Type.String())
	}

	if result.Get("close_btc").Exists() || result.Get("close_eth").Exists() {
		return decodeRawRows(gjson.Parse("[" + result.Raw + "]"))
	}

	for _, field := range requiredDatasetFields {
		if !result.Get(field).Exists() {
			return model.MarketPayload{}, fmt.Errorf("%w: field %s is missing", model.ErrMalformedPayload, field)
		}
	}

	fields := make(map[string]any)
	if err := json.Unmarshal(body, &fields); err != nil {
		return model.MarketPayload{}, fmt.Errorf("%w: %s", model.ErrMalformedPayload, err.Error())
	}

	return model.NewPreDerivedPayload(fields), nil
}

func decodeRawRows(result gjson.Result) (model.MarketPayload, error) {
	elements := result.Array()
	rows := make([]model.RawRow, 0, len(elements))

	for index, element := range elements {
		if timestamp := element.Get("timestamp"); !timestamp.Exists() || timestamp.Type == gjson.Null {
			log.Debugf("[market_data] row %d skipped: no timestamp", index)
			continue
		}

		if !element.Get("close_btc").Exists() || !element.Get("close_eth").Exists() {
			log.Debugf("[market_data] row %d skipped: no close prices", index)
			continue
		}

		var row model.RawRow
		if err := json.Unmarshal([]byte(element.Raw), &row); err != nil {
			log.Debugf("[market_data] row %d skipped: %s", index, err.Error())
			continue
		}
		rows = append(rows, row)
	}

	return model.NewRawPayload(rows), nil
}
