package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

func datasetWith(name string, points ...model.Point) model.MarketDataset {
	dataset := model.NewMarketDataset()
	dataset.Series[name] = points

	return dataset
}

func succeed(dataset model.MarketDataset) DatasetFetcher {
	return func(ctx context.Context) (model.MarketDataset, error) {
		return dataset, nil
	}
}

func fail(err error) DatasetFetcher {
	return func(ctx context.Context) (model.MarketDataset, error) {
		return model.MarketDataset{}, err
	}
}

func TestFetchWithFallbackServesCachedDataset(t *testing.T) {
	assertion := assert.New(t)
	cache := SeriesCache{}
	ctx := context.Background()
	first := datasetWith(model.SeriesBtc, model.Point{Time: 1, Value: 100})

	result, err := cache.FetchWithFallback(ctx, succeed(first))
	assertion.Nil(err)
	assertion.Equal(first.Series, result.Series)

	result, err = cache.FetchWithFallback(ctx, fail(errors.New("HTTP 502")))
	assertion.True(errors.Is(err, model.ErrStaleDataset))
	assertion.Contains(err.Error(), "HTTP 502")
	assertion.Equal(first.Series, result.Series)

	var staleErr *model.StaleDatasetError
	assertion.True(errors.As(err, &staleErr))
}

func TestFetchWithFallbackKeepsLatestDataset(t *testing.T) {
	assertion := assert.New(t)
	cache := SeriesCache{}
	ctx := context.Background()
	first := datasetWith(model.SeriesBtc, model.Point{Time: 1, Value: 100})
	second := datasetWith(model.SeriesBtc, model.Point{Time: 2, Value: 200})

	_, _ = cache.FetchWithFallback(ctx, succeed(first))
	_, _ = cache.FetchWithFallback(ctx, succeed(second))

	cached, exist := cache.Get()
	assertion.True(exist)
	assertion.Equal(second.Series, cached.Series)
}

func TestFetchWithFallbackWithoutCache(t *testing.T) {
	assertion := assert.New(t)
	cache := SeriesCache{}
	cause := errors.New("connection refused")

	result, err := cache.FetchWithFallback(context.Background(), fail(cause))

	assertion.Nil(result)
	assertion.True(errors.Is(err, model.ErrNoDataset))
	assertion.True(errors.Is(err, cause))
	assertion.False(errors.Is(err, model.ErrStaleDataset))

	_, exist := cache.Get()
	assertion.False(exist)
}

func TestMalformedPayloadNeverOverwritesCache(t *testing.T) {
	assertion := assert.New(t)
	cache := SeriesCache{}
	ctx := context.Background()
	good := datasetWith(model.SeriesEth, model.Point{Time: 1, Value: 2000})

	_, _ = cache.FetchWithFallback(ctx, succeed(good))
	_, err := cache.FetchWithFallback(ctx, fail(model.ErrMalformedPayload))
	assertion.True(errors.Is(err, model.ErrMalformedPayload))

	cached, _ := cache.Get()
	assertion.Equal(good.Series, cached.Series)
}

func TestCachedDatasetIsNotMutatedByReaders(t *testing.T) {
	assertion := assert.New(t)
	cache := SeriesCache{}
	cache.Put(datasetWith(model.SeriesBtc, model.Point{Time: 1, Value: 100}))

	cached, _ := cache.Get()
	cached.Series[model.SeriesBtc][0].Value = -1

	again, _ := cache.Get()
	assertion.Equal(100.0, again.Series[model.SeriesBtc][0].Value)
}

func TestCacheWritesThroughAndRestores(t *testing.T) {
	assertion := assert.New(t)
	storage := DatasetStorageMock{}
	persisted := datasetWith(model.SeriesBtc, model.Point{Time: 5, Value: 500})
	storage.On("LoadDataset").Return(&persisted, nil)
	storage.On("SaveDataset", mock.Anything).Return(nil)

	cache := SeriesCache{Storage: &storage}
	assertion.True(cache.Restore())
	assertion.False(cache.Restore())

	result, err := cache.FetchWithFallback(context.Background(), fail(errors.New("timeout")))
	assertion.True(errors.Is(err, model.ErrStaleDataset))
	assertion.Equal(persisted.Series, result.Series)

	cache.Put(datasetWith(model.SeriesBtc, model.Point{Time: 6, Value: 600}))
	storage.AssertNumberOfCalls(t, "SaveDataset", 1)
}
