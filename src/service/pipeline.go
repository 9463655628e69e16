package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/event"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
)

type MarketDataClientInterface interface {
	FetchPayload(ctx context.Context, window string) (model.MarketPayload, error)
}

type ParametersStorageInterface interface {
	SaveParameters(params model.NormalizationParameters) error
	LoadParameters() (model.NormalizationParameters, error)
}

type PipelineMetricsInterface interface {
	ObserveRun(outcome string, duration time.Duration)
}

const PipelineOutcomeSuccess = "success"
const PipelineOutcomeStale = "stale"
const PipelineOutcomeFailed = "failed"
const PipelineOutcomeSkipped = "skipped"

// PipelineContext carries the state of one dashboard: registry, cache, timer and the last parameters.
type PipelineContext struct {
	Registry          *ChartRegistry
	Cache             *SeriesCache
	Controller        *RefreshController
	Engine            *MetricsEngine
	Sanitizer         *Sanitizer
	Stats             *StatsAggregator
	Client            MarketDataClientInterface
	ParametersStorage ParametersStorageInterface
	EventDispatcher   EventDispatcherInterface
	Metrics           PipelineMetricsInterface
	TimeService       utils.TimeServiceInterface
	Layout            model.ChartLayout
	Window            string

	inFlight    atomic.Bool
	lastAttempt atomic.Int64
	lastSuccess atomic.Int64
	stale       atomic.Bool

	mu     sync.RWMutex
	params *model.NormalizationParameters
}

// Refresh runs the pipeline and turns a failed cycle into a display event.
func (p *PipelineContext) Refresh(ctx context.Context) error {
	_, err := p.Run(ctx)
	if err == nil || errors.Is(err, model.ErrRefreshInProgress) {
		return err
	}

	if errors.Is(err, model.ErrStaleDataset) {
		cached, _ := p.Cache.Get()
		fetchedAt := time.Time{}
		if cached != nil {
			fetchedAt = cached.FetchedAt
		}
		p.dispatch(event.DatasetStale{Window: p.Window, Cause: err, FetchedAt: fetchedAt}, event.EventDatasetStale)

		return err
	}

	p.dispatch(event.RefreshFailed{Window: p.Window, Cause: err}, event.EventRefreshFailed)

	return err
}

// Run fetches, derives, applies and summarizes one dataset. A concurrent run is skipped with
// model.ErrRefreshInProgress. A stale dataset is still applied and returned with its error.
func (p *PipelineContext) Run(ctx context.Context) (*model.MarketDataset, error) {
	if !p.inFlight.CompareAndSwap(false, true) {
		p.observe(PipelineOutcomeSkipped, 0)
		return nil, model.ErrRefreshInProgress
	}
	defer p.inFlight.Store(false)

	started := p.TimeService.GetNow()
	p.lastAttempt.Store(started.Unix())

	dataset, err := p.Cache.FetchWithFallback(ctx, p.fetchDataset)
	if dataset == nil {
		p.observe(PipelineOutcomeFailed, p.TimeService.GetNow().Sub(started))
		return nil, err
	}

	if err != nil {
		p.stale.Store(true)
	} else {
		p.stale.Store(false)
		p.lastSuccess.Store(p.TimeService.GetNowUnix())
	}

	p.apply(*dataset, err != nil)

	if err != nil {
		p.observe(PipelineOutcomeStale, p.TimeService.GetNow().Sub(started))
		return dataset, err
	}

	p.observe(PipelineOutcomeSuccess, p.TimeService.GetNow().Sub(started))

	return dataset, nil
}

func (p *PipelineContext) IsRunning() bool {
	return p.inFlight.Load()
}

// Parameters returns the normalization parameters of the last dataset that carried them.
func (p *PipelineContext) Parameters() (model.NormalizationParameters, bool) {
	p.mu.RLock()
	params := p.params
	p.mu.RUnlock()

	if params != nil {
		return *params, true
	}

	if p.ParametersStorage == nil {
		return model.NormalizationParameters{}, false
	}

	stored, err := p.ParametersStorage.LoadParameters()
	if err != nil || stored.Validate() != nil {
		return model.NormalizationParameters{}, false
	}

	p.setParameters(stored, false)

	return stored, true
}

func (p *PipelineContext) State() model.RefreshState {
	state := model.RefreshState{}
	if p.Controller != nil {
		state = p.Controller.State()
	}

	state.LastAttempt = p.lastAttempt.Load()
	state.LastSuccess = p.lastSuccess.Load()
	state.Stale = p.stale.Load()

	return state
}

func (p *PipelineContext) fetchDataset(ctx context.Context) (model.MarketDataset, error) {
	payload, err := p.Client.FetchPayload(ctx, p.Window)
	if err != nil {
		return model.MarketDataset{}, err
	}

	var dataset model.MarketDataset
	if payload.IsRaw() {
		var params *model.NormalizationParameters
		if stored, ok := p.Parameters(); ok {
			params = &stored
		}
		dataset = p.Engine.Derive(payload.Rows, params)
	} else {
		dataset = p.datasetFromFields(payload.Fields)
	}

	dataset.FetchedAt = p.TimeService.GetNow()

	return dataset, nil
}

func (p *PipelineContext) datasetFromFields(fields map[string]any) model.MarketDataset {
	dataset := model.NewMarketDataset()

	for name, raw := range fields {
		switch raw.(type) {
		case float64, json.Number:
			if value, ok := CoerceValue(raw); ok {
				dataset.Scalars[name] = value
			}
			continue
		}

		series, ok := p.Sanitizer.Sanitize(raw)
		if !ok {
			log.Debugf("[%s] field %s is neither a series nor a number", p.Window, name)
			continue
		}
		dataset.Series[name] = series
	}

	return dataset
}

// apply draws the dataset. A stale dataset is announced by Refresh, not as a fresh one.
func (p *PipelineContext) apply(dataset model.MarketDataset, stale bool) {
	for _, chart := range p.Layout.Charts {
		for _, binding := range chart.Series {
			series, exist := dataset.Get(binding.DatasetKey)
			if !exist {
				continue
			}
			p.Registry.ApplySeriesData(chart.Name, binding.Options.Name, series)
		}
	}

	if params, ok := model.NormalizationFromDataset(dataset); ok && params.Validate() == nil {
		p.setParameters(params, true)
	}

	var stat *model.SpreadStat
	if result, ok := p.Stats.Report(dataset.Series[p.Layout.StatsSeries]); ok {
		stat = &result
	}

	if stale {
		return
	}

	p.dispatch(event.DatasetRefreshed{Window: p.Window, Stat: stat, FetchedAt: dataset.FetchedAt}, event.EventDatasetRefreshed)
}

func (p *PipelineContext) setParameters(params model.NormalizationParameters, persist bool) {
	p.mu.Lock()
	changed := p.params == nil || *p.params != params
	p.params = &params
	p.mu.Unlock()

	if !persist || !changed || p.ParametersStorage == nil {
		return
	}

	if err := p.ParametersStorage.SaveParameters(params); err != nil {
		log.Warnf("[%s] normalization parameters are not persisted: %s", p.Window, err.Error())
	}
}

func (p *PipelineContext) dispatch(eventModel interface{}, eventName string) {
	if p.EventDispatcher == nil {
		return
	}

	p.EventDispatcher.Dispatch(eventModel, eventName)
}

func (p *PipelineContext) observe(outcome string, duration time.Duration) {
	if p.Metrics == nil {
		return
	}

	p.Metrics.ObserveRun(outcome, duration)
}
