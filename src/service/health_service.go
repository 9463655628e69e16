package service

import (
	"context"
	"database/sql"
	"runtime"
	"time"

	"github.com/rafacas/sysstats"
	"github.com/redis/go-redis/v9"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type DashboardProviderInterface interface {
	GetCurrentDashboardCached() *model.Dashboard
}

type RefreshStateInterface interface {
	State() model.RefreshState
}

type ClientCounterInterface interface {
	ClientCount() int
}

type HealthService struct {
	DB                  *sql.DB
	RDB                 *redis.Client
	Ctx                 *context.Context
	DashboardRepository DashboardProviderInterface
	MarketDataStorage   MarketDataStorageInterface
	Refresh             RefreshStateInterface
	Cache               *SeriesCache
	Clients             ClientCounterInterface
}

func (h *HealthService) HealthCheck() model.DashboardHealth {
	updateMap := make(map[string]string)
	for _, window := range model.Windows {
		dateString := ""
		if timestamp, ok := h.MarketDataStorage.GetLastTimestamp(*h.Ctx, window); ok {
			dateString = time.Unix(timestamp, 0).UTC().Format("2006-01-02 15:04:05")
		}
		updateMap[window.Name] = dateString
	}

	memStats, _ := sysstats.GetMemStats()
	loadAvg, _ := sysstats.GetLoadAvg()

	dbStatus := model.DbStatusOk
	if h.DB.Ping() != nil {
		dbStatus = model.DbStatusFail
	}
	redisStatus := model.RedisStatusOk
	if h.RDB.Ping(*h.Ctx).Err() != nil {
		redisStatus = model.RedisStatusFail
	}

	refreshState := h.Refresh.State()
	dataStatus := model.DataStatusOk
	if cached, exist := h.Cache.Get(); !exist || cached.IsEmpty() {
		dataStatus = model.DataStatusEmpty
	} else if refreshState.Stale {
		dataStatus = model.DataStatusStale
	}

	dashboard := model.Dashboard{}
	if current := h.DashboardRepository.GetCurrentDashboardCached(); current != nil {
		dashboard = *current
	}

	clients := 0
	if h.Clients != nil {
		clients = h.Clients.ClientCount()
	}

	return model.DashboardHealth{
		Dashboard:   dashboard,
		DbStatus:    dbStatus,
		RedisStatus: redisStatus,
		DataStatus:  dataStatus,
		Refresh:     refreshState,
		Clients:     clients,
		Cores:       runtime.NumCPU(),
		Memory:      memStats,
		LoadAvg:     loadAvg,
		Updates:     updateMap,
	}
}
