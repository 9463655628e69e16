package controller

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type MarketDataServiceInterface interface {
	GetRawRows(ctx context.Context, windowName string) ([]model.RawRow, model.Window, error)
	GetProcessedData(ctx context.Context, windowName string) (model.MarketDataset, error)
}

type MarketDataController struct {
	MarketDataService MarketDataServiceInterface
}

func (m *MarketDataController) GetMarketDataAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "GET" {
		http.Error(w, "Only GET method is allowed", http.StatusMethodNotAllowed)

		return
	}

	rows, window, err := m.MarketDataService.GetRawRows(req.Context(), tableParameter(req))
	if err != nil {
		writeWindowError(w, err)

		return
	}

	w.Header().Set("X-Data-Source", window.TableName())
	encoded, _ := json.Marshal(rows)
	_, _ = w.Write(encoded)
}

func (m *MarketDataController) GetProcessedDataAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	if req.Method != "GET" {
		http.Error(w, "Only GET method is allowed", http.StatusMethodNotAllowed)

		return
	}

	dataset, err := m.MarketDataService.GetProcessedData(req.Context(), tableParameter(req))
	if err != nil {
		writeWindowError(w, err)

		return
	}

	encoded, err := json.Marshal(dataset)
	if err != nil {
		log.Errorf("[processed-data] encode: %s", err.Error())
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)

		return
	}

	_, _ = w.Write(encoded)
}

func tableParameter(req *http.Request) string {
	table := req.URL.Query().Get("table")
	if table == "" {
		return model.Window24h.Name
	}

	return table
}

func writeWindowError(w http.ResponseWriter, err error) {
	if errors.Is(err, model.ErrUnknownWindow) {
		http.Error(w, err.Error(), http.StatusNotFound)

		return
	}

	log.Errorf("[market-data] %s", err.Error())
	http.Error(w, "Internal Server Error", http.StatusInternalServerError)
}
