package service

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type DatasetStorageInterface interface {
	SaveDataset(dataset model.MarketDataset) error
	LoadDataset() (*model.MarketDataset, error)
}

type DatasetFetcher func(ctx context.Context) (model.MarketDataset, error)

// SeriesCache keeps the last good dataset. It is overwritten only by successful fetches and never cleared.
type SeriesCache struct {
	Storage DatasetStorageInterface
	Metrics CacheMetricsInterface

	mu      sync.RWMutex
	dataset *model.MarketDataset
}

type CacheMetricsInterface interface {
	ObserveFallback(stale bool)
}

func (c *SeriesCache) Get() (*model.MarketDataset, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.dataset == nil {
		return nil, false
	}

	clone := c.dataset.Clone()

	return &clone, true
}

func (c *SeriesCache) Put(dataset model.MarketDataset) {
	clone := dataset.Clone()

	c.mu.Lock()
	c.dataset = &clone
	c.mu.Unlock()

	if c.Storage != nil {
		if err := c.Storage.SaveDataset(clone); err != nil {
			log.Warnf("[cache] dataset is not persisted: %s", err.Error())
		}
	}
}

// Restore loads the persisted dataset into an empty cache.
func (c *SeriesCache) Restore() bool {
	if c.Storage == nil {
		return false
	}

	dataset, err := c.Storage.LoadDataset()
	if err != nil || dataset == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.dataset != nil {
		return false
	}

	c.dataset = dataset
	log.Infof("[cache] restored dataset fetched at %s", dataset.FetchedAt.Format("2006-01-02 15:04:05"))

	return true
}

// FetchWithFallback returns the fetched dataset, or the cached one with a *model.StaleDatasetError.
// Without a cached dataset it returns nil and an error wrapping model.ErrNoDataset.
func (c *SeriesCache) FetchWithFallback(ctx context.Context, fetcher DatasetFetcher) (*model.MarketDataset, error) {
	dataset, err := fetcher(ctx)
	if err == nil {
		c.Put(dataset)
		result := dataset.Clone()

		return &result, nil
	}

	cached, exist := c.Get()
	if c.Metrics != nil {
		c.Metrics.ObserveFallback(exist)
	}

	if exist {
		return cached, &model.StaleDatasetError{Cause: err}
	}

	return nil, fmt.Errorf("%w: %w", model.ErrNoDataset, err)
}
