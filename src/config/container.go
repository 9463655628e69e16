package config

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/client"
	"gitlab.com/open-soft/spread-dashboard/src/controller"
	"gitlab.com/open-soft/spread-dashboard/src/event_subscriber"
	"gitlab.com/open-soft/spread-dashboard/src/metrics"
	"gitlab.com/open-soft/spread-dashboard/src/migrations"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/repository"
	"gitlab.com/open-soft/spread-dashboard/src/service"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
	"gitlab.com/open-soft/spread-dashboard/src/validator"
	"golang.org/x/time/rate"
)

const binanceMaxAttempts = 3
const binanceRetryDelay = 2 * time.Second

func InitServiceContainer(config Config) Container {
	db, err := sql.Open("mysql", config.DatabaseDsn)
	if err != nil {
		log.Fatal(fmt.Sprintf("MySQL can't connect: %s", err.Error()))
	}

	db.SetMaxIdleConns(16)
	db.SetMaxOpenConns(16)
	db.SetConnMaxLifetime(time.Minute)

	var ctx = context.Background()
	if err := migrations.Apply(ctx, db); err != nil {
		log.Fatal(fmt.Sprintf("Migrations failed: %s", err.Error()))
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     config.RedisDsn,
		Password: config.RedisPassword,
		DB:       0,
	})

	dashboardUuid := config.DashboardUuid
	if dashboardUuid == "" {
		dashboardUuid = uuid.NewString()
		log.Warnf("DASHBOARD_UUID is not set, dashboard [%s] is created", dashboardUuid)
	}

	dashboardRepository := repository.DashboardRepository{
		DB:            db,
		RDB:           rdb,
		Ctx:           &ctx,
		DashboardUuid: dashboardUuid,
	}

	currentDashboard := dashboardRepository.GetCurrentDashboard()
	if currentDashboard == nil {
		err := dashboardRepository.Create(model.Dashboard{Uuid: dashboardUuid})
		if err != nil {
			log.Fatal(err)
		}

		currentDashboard = dashboardRepository.GetCurrentDashboard()
		if currentDashboard == nil {
			log.Fatal(fmt.Sprintf("Can't initialize dashboard: %s", dashboardUuid))
		}
	}

	log.Printf("Dashboard [%s] is initialized successfully", currentDashboard.Uuid)

	layout, err := LoadChartLayout(config.ChartLayoutFile)
	if err != nil {
		log.Fatal(err)
	}

	timeService := utils.TimeHelper{}
	formatter := utils.Formatter{}
	collector := metrics.NewCollector()

	objectRepository := repository.ObjectRepository{
		DB:               db,
		CurrentDashboard: currentDashboard,
	}
	preferencesRepository := repository.PreferencesRepository{
		ObjectRepository: &objectRepository,
	}
	marketDataRepository := repository.MarketDataRepository{
		DB: db,
	}
	datasetCacheRepository := repository.DatasetCacheRepository{
		RDB:           rdb,
		Ctx:           &ctx,
		DashboardUuid: currentDashboard.Uuid,
	}

	httpClient := client.HttpClient{}
	binance := client.Binance{
		HttpClient:  &httpClient,
		DSN:         config.BinanceApiDsn,
		Limiter:     rate.NewLimiter(rate.Limit(config.BinanceRps), 1),
		MaxAttempts: binanceMaxAttempts,
		RetryDelay:  binanceRetryDelay,
	}
	marketDataClient := client.MarketDataClient{
		HttpClient: &httpClient,
		BaseUrl:    config.MarketDataDsn,
		Path:       config.MarketDataPath,
	}

	sanitizer := service.Sanitizer{}
	engine := service.MetricsEngine{}
	chartHub := service.NewChartHub(&timeService)
	chartRegistry := service.ChartRegistry{
		Sanitizer: &sanitizer,
	}
	err = chartRegistry.RegisterLayout(layout, func(definition model.ChartDefinition) service.ChartSurface {
		return chartHub.Surface(definition.Name)
	})
	if err != nil {
		log.Fatal(err)
	}

	eventDispatcher := service.EventDispatcher{
		Subscribers: []event_subscriber.SubscriberInterface{
			event_subscriber.DisplayEventSubscriber{Display: chartHub},
		},
		Enabled: true,
	}

	statsAggregator := service.StatsAggregator{
		Formatter:   &formatter,
		TimeService: &timeService,
	}
	seriesCache := service.SeriesCache{
		Storage: &datasetCacheRepository,
		Metrics: collector,
	}

	pipeline := service.PipelineContext{
		Registry:          &chartRegistry,
		Cache:             &seriesCache,
		Engine:            &engine,
		Sanitizer:         &sanitizer,
		Stats:             &statsAggregator,
		Client:            &marketDataClient,
		ParametersStorage: &preferencesRepository,
		EventDispatcher:   &eventDispatcher,
		Metrics:           collector,
		TimeService:       &timeService,
		Layout:            layout,
		Window:            config.MarketDataWindow,
	}
	refreshController := service.RefreshController{
		TimeService:     &timeService,
		Task:            pipeline.Refresh,
		Ctx:             &ctx,
		DefaultInterval: config.RefreshInterval,
	}
	pipeline.Controller = &refreshController

	entryLevelService := service.EntryLevelService{
		Validator:       &validator.EntryLevelValidator{},
		Engine:          &engine,
		Registry:        &chartRegistry,
		Parameters:      &pipeline,
		Preferences:     &preferencesRepository,
		EventDispatcher: &eventDispatcher,
		Chart:           layout.EntryChart,
	}

	chartHub.OnVisibleRange = func(chartName string) {
		if chartName == layout.EntryChart {
			entryLevelService.Redraw()
		}
	}

	marketDataService := service.MarketDataService{
		Storage: &marketDataRepository,
		Cache:   &datasetCacheRepository,
		Engine:  &engine,
	}
	ingestService := service.IngestService{
		Source:      &binance,
		Storage:     &marketDataRepository,
		TimeService: &timeService,
		Metrics:     collector,
		BtcSymbol:   config.BtcSymbol,
		EthSymbol:   config.EthSymbol,
	}
	ingestScheduler := service.IngestScheduler{
		Ingest:   &ingestService,
		Ctx:      &ctx,
		Interval: config.IngestInterval,
	}

	healthService := service.HealthService{
		DB:                  db,
		RDB:                 rdb,
		Ctx:                 &ctx,
		DashboardRepository: &dashboardRepository,
		MarketDataStorage:   &marketDataRepository,
		Refresh:             &pipeline,
		Cache:               &seriesCache,
		Clients:             chartHub,
	}

	return Container{
		Config:            config,
		Ctx:               &ctx,
		Db:                db,
		RDB:               rdb,
		CurrentDashboard:  currentDashboard,
		Layout:            layout,
		Metrics:           collector,
		ChartHub:          chartHub,
		Pipeline:          &pipeline,
		RefreshController: &refreshController,
		SeriesCache:       &seriesCache,
		EntryLevelService: &entryLevelService,
		IngestService:     &ingestService,
		IngestScheduler:   &ingestScheduler,
		MarketDataController: &controller.MarketDataController{
			MarketDataService: &marketDataService,
		},
		DashboardController: &controller.DashboardController{
			Pipeline:          &pipeline,
			AutoRefresh:       &refreshController,
			Stats:             &statsAggregator,
			EntryLevelService: &entryLevelService,
			Preferences:       &preferencesRepository,
		},
		HealthController: &controller.HealthController{
			HealthService:    &healthService,
			CurrentDashboard: currentDashboard,
		},
	}
}

type Container struct {
	Config               Config
	Ctx                  *context.Context
	Db                   *sql.DB
	RDB                  *redis.Client
	CurrentDashboard     *model.Dashboard
	Layout               model.ChartLayout
	Metrics              *metrics.Collector
	ChartHub             *service.ChartHub
	Pipeline             *service.PipelineContext
	RefreshController    *service.RefreshController
	SeriesCache          *service.SeriesCache
	EntryLevelService    *service.EntryLevelService
	IngestService        *service.IngestService
	IngestScheduler      *service.IngestScheduler
	MarketDataController *controller.MarketDataController
	DashboardController  *controller.DashboardController
	HealthController     *controller.HealthController
}

func (c *Container) Router() *mux.Router {
	router := mux.NewRouter()
	router.Use(c.Metrics.Middleware)

	router.HandleFunc("/api/market-data", c.MarketDataController.GetMarketDataAction)
	router.HandleFunc("/api/processed-data", c.MarketDataController.GetProcessedDataAction)
	router.HandleFunc("/api/dashboard/stats", c.DashboardController.GetStatsAction)
	router.HandleFunc("/api/dashboard/refresh", c.DashboardController.PostRefreshAction)
	router.HandleFunc("/api/dashboard/auto-refresh", c.DashboardController.PostAutoRefreshAction)
	router.HandleFunc("/api/dashboard/entry-level", c.DashboardController.PostEntryLevelAction)
	router.HandleFunc("/api/dashboard/preferences", c.DashboardController.GetPreferencesAction)
	router.HandleFunc("/health/check", c.HealthController.GetHealthCheckAction)
	router.HandleFunc("/ws", c.ChartHub.ServeWs)
	router.Handle("/metrics", c.Metrics.Handler())

	return router
}

func (c *Container) StartHttpServer() *http.Server {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", c.Config.HttpPort),
		Handler: c.Router(),
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal(fmt.Sprintf("HTTP server: %s", err.Error()))
		}
	}()

	log.Printf("HTTP server is listening on %s", server.Addr)

	return server
}
