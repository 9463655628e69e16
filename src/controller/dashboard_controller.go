package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type RefresherInterface interface {
	Refresh(ctx context.Context) error
	State() model.RefreshState
}

type AutoRefreshInterface interface {
	Start(interval time.Duration) error
	Stop()
	Toggle() bool
}

type StatsProviderInterface interface {
	Last() (model.SpreadStat, bool)
}

type EntryLevelCalculatorInterface interface {
	Calculate(request model.EntryLevelRequest) (model.EntryLevel, error)
}

type PreferencesProviderInterface interface {
	GetPreferences() (model.DashboardPreferences, error)
}

type DashboardController struct {
	Pipeline          RefresherInterface
	AutoRefresh       AutoRefreshInterface
	Stats             StatsProviderInterface
	EntryLevelService EntryLevelCalculatorInterface
	Preferences       PreferencesProviderInterface
}

func (d *DashboardController) GetStatsAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	stat, exist := d.Stats.Last()
	if !exist {
		http.Error(w, "Stats are not calculated yet", http.StatusNotFound)

		return
	}

	encoded, _ := json.Marshal(stat)
	_, _ = w.Write(encoded)
}

func (d *DashboardController) PostRefreshAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	err := d.Pipeline.Refresh(req.Context())
	if errors.Is(err, model.ErrRefreshInProgress) {
		http.Error(w, err.Error(), http.StatusConflict)

		return
	}

	if err != nil && !errors.Is(err, model.ErrStaleDataset) {
		http.Error(w, err.Error(), http.StatusBadGateway)

		return
	}

	encoded, _ := json.Marshal(d.Pipeline.State())
	_, _ = w.Write(encoded)
}

func (d *DashboardController) PostAutoRefreshAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	var request model.AutoRefreshRequest
	if req.ContentLength != 0 {
		if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	}

	if request.Interval < 0 {
		http.Error(w, "interval must be positive", http.StatusBadRequest)

		return
	}

	switch {
	case request.Enabled == nil:
		d.AutoRefresh.Toggle()
	case *request.Enabled:
		interval := time.Duration(request.Interval) * time.Second
		if interval == 0 {
			interval = time.Duration(d.Pipeline.State().IntervalSeconds) * time.Second
		}
		if err := d.AutoRefresh.Start(interval); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)

			return
		}
	default:
		d.AutoRefresh.Stop()
	}

	state := d.Pipeline.State()
	log.Infof("Auto refresh enabled: %t, interval: %ds", state.Enabled, state.IntervalSeconds)

	encoded, _ := json.Marshal(state)
	_, _ = w.Write(encoded)
}

func (d *DashboardController) PostEntryLevelAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "POST" {
		http.Error(w, "Only POST method is allowed", http.StatusMethodNotAllowed)

		return
	}

	var request model.EntryLevelRequest
	if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)

		return
	}

	entryLevel, err := d.EntryLevelService.Calculate(request)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrInvalidInput):
			http.Error(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, model.ErrNoDataset):
			http.Error(w, err.Error(), http.StatusConflict)
		default:
			http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		}

		return
	}

	encoded, _ := json.Marshal(entryLevel)
	_, _ = w.Write(encoded)
}

func (d *DashboardController) GetPreferencesAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	preferences, err := d.Preferences.GetPreferences()
	if err != nil {
		log.Errorf("[preferences] %s", err.Error())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	preferences.Refresh = d.Pipeline.State()

	encoded, _ := json.Marshal(preferences)
	_, _ = w.Write(encoded)
}
