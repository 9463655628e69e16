package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/spread-dashboard/src/event"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
)

func testLayout() model.ChartLayout {
	return model.ChartLayout{
		Charts: []model.ChartDefinition{
			{Name: "btc", Series: []model.SeriesBinding{
				{DatasetKey: model.SeriesBtc, Options: model.LineSeriesOptions{Name: model.SeriesBtc}},
			}},
			{Name: "btc-eth", Series: []model.SeriesBinding{
				{DatasetKey: model.SeriesBtcAsEth, Options: model.LineSeriesOptions{Name: model.SeriesBtcAsEth}},
			}},
			{Name: "diff", Series: []model.SeriesBinding{
				{DatasetKey: model.SeriesPercentageDiff, Options: model.LineSeriesOptions{Name: model.SeriesPercentageDiff}},
			}},
			{Name: "spread", Series: []model.SeriesBinding{
				{DatasetKey: model.SeriesRelativeSpread, Options: model.LineSeriesOptions{Name: model.SeriesRelativeSpread}},
			}},
		},
		EntryChart:  "spread",
		StatsSeries: model.SeriesPercentageDiff,
	}
}

func newTestPipeline(t *testing.T, client MarketDataClientInterface, dispatcher EventDispatcherInterface) *PipelineContext {
	timeService := TimeServiceMock{}
	timeService.On("GetNow").Return(time.Unix(1700000000, 0))
	timeService.On("GetNowUnix").Return(int64(1700000000))

	sanitizer := Sanitizer{}
	registry := ChartRegistry{Sanitizer: &sanitizer}
	layout := testLayout()
	err := registry.RegisterLayout(layout, func(definition model.ChartDefinition) ChartSurface {
		return NewFakeSurface()
	})
	assert.Nil(t, err)

	return &PipelineContext{
		Registry:        &registry,
		Cache:           &SeriesCache{},
		Engine:          &MetricsEngine{},
		Sanitizer:       &sanitizer,
		Stats:           &StatsAggregator{Formatter: &utils.Formatter{}, TimeService: &timeService},
		Client:          client,
		EventDispatcher: dispatcher,
		TimeService:     &timeService,
		Layout:          layout,
		Window:          "24h",
	}
}

func TestPipelineDerivesRawPayload(t *testing.T) {
	assertion := assert.New(t)
	client := MarketDataClientMock{}
	client.On("FetchPayload", mock.Anything, "24h").Return(model.NewRawPayload([]model.RawRow{
		row(60, 20000, 2000),
		row(120, 21000, 0),
		row(180, 30000, 2000),
	}), nil)
	dispatcher := EventDispatcherMock{}
	dispatcher.On("Dispatch", mock.Anything, event.EventDatasetRefreshed).Return()

	pipeline := newTestPipeline(t, &client, &dispatcher)
	assertion.Nil(pipeline.Refresh(context.Background()))

	btcAsEth, _ := pipeline.Registry.Displayed("btc-eth", model.SeriesBtcAsEth)
	assertion.Len(btcAsEth, 2)
	diff, _ := pipeline.Registry.Displayed("diff", model.SeriesPercentageDiff)
	assertion.Len(diff, 2)
	btc, _ := pipeline.Registry.Displayed("btc", model.SeriesBtc)
	assertion.Len(btc, 3)

	stat, ok := pipeline.Stats.Last()
	assertion.True(ok)
	assertion.InDelta(20.0, stat.Summary.Current, 1e-9)
	assertion.Equal(model.SignPositive, stat.Sign)

	state := pipeline.State()
	assertion.Equal(int64(1700000000), state.LastSuccess)
	assertion.False(state.Stale)
	dispatcher.AssertNumberOfCalls(t, "Dispatch", 1)
}

func TestPipelineUsesPreDerivedFields(t *testing.T) {
	assertion := assert.New(t)
	params := testParams()
	client := MarketDataClientMock{}
	client.On("FetchPayload", mock.Anything, "24h").Return(model.NewPreDerivedPayload(map[string]any{
		"btc":             []any{map[string]any{"time": 1.0, "value": 20000.0}},
		"eth":             []any{map[string]any{"time": 1.0, "value": 2000.0}},
		"btc_as_eth":      []any{map[string]any{"time": 1.0, "value": 10.0}},
		"percentage_diff": []any{map[string]any{"timestamp": "1970-01-01T00:00:01Z", "value": "-1.5"}},
		"relative_spread": []any{map[string]any{"time": 1.0, "value": 0.3}, nil},
		"avg_ratio_24h":   10.0,
		"avg_ratio_180d":  10.0,
		"btc_as_eth_min":  2000.0,
		"btc_as_eth_max":  3000.0,
		"eth_min":         2000.0,
		"eth_max":         3000.0,
	}), nil)
	dispatcher := EventDispatcherMock{}
	dispatcher.On("Dispatch", mock.Anything, event.EventDatasetRefreshed).Return()
	storage := ParametersStorageMock{}
	storage.On("SaveParameters", params).Return(nil).Once()

	pipeline := newTestPipeline(t, &client, &dispatcher)
	pipeline.ParametersStorage = &storage

	assertion.Nil(pipeline.Refresh(context.Background()))
	assertion.Nil(pipeline.Refresh(context.Background()))

	spread, _ := pipeline.Registry.Displayed("spread", model.SeriesRelativeSpread)
	assertion.Equal(model.Series{{Time: 1, Value: 0.3}}, spread)

	stat, _ := pipeline.Stats.Last()
	assertion.Equal("-1.50%", stat.CurrentFormatted)
	assertion.Equal(model.SignNegative, stat.Sign)

	stored, ok := pipeline.Parameters()
	assertion.True(ok)
	assertion.Equal(params, stored)
	storage.AssertExpectations(t)
}

func TestPipelineFallsBackToCachedDataset(t *testing.T) {
	assertion := assert.New(t)
	client := MarketDataClientMock{}
	client.On("FetchPayload", mock.Anything, "24h").Return(model.NewRawPayload([]model.RawRow{
		row(60, 20000, 2000),
		row(120, 30000, 2000),
	}), nil).Once()
	client.On("FetchPayload", mock.Anything, "24h").Return(model.MarketPayload{}, errors.New("HTTP 503")).Once()
	dispatcher := EventDispatcherMock{}
	dispatcher.On("Dispatch", mock.Anything, event.EventDatasetRefreshed).Return()
	dispatcher.On("Dispatch", mock.Anything, event.EventDatasetStale).Return().Once()

	pipeline := newTestPipeline(t, &client, &dispatcher)
	assertion.Nil(pipeline.Refresh(context.Background()))
	before, _ := pipeline.Registry.Displayed("btc", model.SeriesBtc)

	err := pipeline.Refresh(context.Background())
	assertion.True(errors.Is(err, model.ErrStaleDataset))

	after, _ := pipeline.Registry.Displayed("btc", model.SeriesBtc)
	assertion.Equal(before, after)
	assertion.True(pipeline.State().Stale)
	dispatcher.AssertExpectations(t)
	dispatcher.AssertNumberOfCalls(t, "Dispatch", 2)
}

func TestPipelineFailsWithoutCache(t *testing.T) {
	assertion := assert.New(t)
	client := MarketDataClientMock{}
	client.On("FetchPayload", mock.Anything, "24h").Return(model.MarketPayload{}, model.ErrMalformedPayload)
	dispatcher := EventDispatcherMock{}
	dispatcher.On("Dispatch", mock.Anything, event.EventRefreshFailed).Return().Once()

	pipeline := newTestPipeline(t, &client, &dispatcher)
	err := pipeline.Refresh(context.Background())

	assertion.True(errors.Is(err, model.ErrNoDataset))
	assertion.True(errors.Is(err, model.ErrMalformedPayload))
	_, exist := pipeline.Registry.Displayed("btc", model.SeriesBtc)
	assertion.False(exist)
	_, ok := pipeline.Stats.Last()
	assertion.False(ok)
	dispatcher.AssertExpectations(t)
}

type blockingClient struct {
	started chan struct{}
	release chan struct{}
}

func (b *blockingClient) FetchPayload(ctx context.Context, window string) (model.MarketPayload, error) {
	close(b.started)
	<-b.release

	return model.NewRawPayload([]model.RawRow{row(60, 20000, 2000)}), nil
}

func TestPipelineSkipsOverlappingRun(t *testing.T) {
	assertion := assert.New(t)
	client := blockingClient{started: make(chan struct{}), release: make(chan struct{})}
	dispatcher := EventDispatcherMock{}
	dispatcher.On("Dispatch", mock.Anything, mock.Anything).Return()

	pipeline := newTestPipeline(t, &client, &dispatcher)

	var wg sync.WaitGroup
	var firstErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, firstErr = pipeline.Run(context.Background())
	}()

	<-client.started
	assertion.True(pipeline.IsRunning())
	_, err := pipeline.Run(context.Background())
	assertion.True(errors.Is(err, model.ErrRefreshInProgress))
	err = pipeline.Refresh(context.Background())
	assertion.True(errors.Is(err, model.ErrRefreshInProgress))

	close(client.release)
	wg.Wait()

	assertion.Nil(firstErr)
	assertion.False(pipeline.IsRunning())
}
