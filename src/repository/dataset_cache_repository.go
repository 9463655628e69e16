package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

const processedDataTTL = time.Second * 5
const datasetTTL = time.Hour * 24

type DatasetCacheRepository struct {
	RDB           *redis.Client
	Ctx           *context.Context
	DashboardUuid string
}

func (d *DatasetCacheRepository) SaveDataset(dataset model.MarketDataset) error {
	encoded, err := json.Marshal(cachedDataset{Dataset: dataset, FetchedAt: dataset.FetchedAt.Unix()})
	if err != nil {
		return err
	}

	return d.RDB.Set(*d.Ctx, fmt.Sprintf("dataset-cache-%s", d.DashboardUuid), string(encoded), datasetTTL).Err()
}

func (d *DatasetCacheRepository) LoadDataset() (*model.MarketDataset, error) {
	encoded, err := d.RDB.Get(*d.Ctx, fmt.Sprintf("dataset-cache-%s", d.DashboardUuid)).Result()
	if err != nil {
		return nil, err
	}

	var cached cachedDataset
	if err = json.Unmarshal([]byte(encoded), &cached); err != nil {
		return nil, err
	}

	dataset := cached.Dataset
	dataset.FetchedAt = time.Unix(cached.FetchedAt, 0)

	return &dataset, nil
}

func (d *DatasetCacheRepository) GetProcessedData(window string) *model.MarketDataset {
	encoded := d.RDB.Get(*d.Ctx, fmt.Sprintf("processed-data-%s", window)).Val()
	if len(encoded) == 0 {
		return nil
	}

	var dataset model.MarketDataset
	if err := json.Unmarshal([]byte(encoded), &dataset); err != nil {
		return nil
	}

	return &dataset
}

func (d *DatasetCacheRepository) SaveProcessedData(window string, dataset model.MarketDataset) {
	encoded, err := json.Marshal(dataset)
	if err == nil {
		d.RDB.Set(*d.Ctx, fmt.Sprintf("processed-data-%s", window), string(encoded), processedDataTTL)
	}
}

type cachedDataset struct {
	Dataset   model.MarketDataset `json:"dataset"`
	FetchedAt int64               `json:"fetchedAt"`
}
