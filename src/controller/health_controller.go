package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type HealthCheckerInterface interface {
	HealthCheck() model.DashboardHealth
}

type HealthController struct {
	HealthService    HealthCheckerInterface
	CurrentDashboard *model.Dashboard
}

func (h *HealthController) GetHealthCheckAction(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
	w.Header().Set("Content-Type", "application/json")

	if req.Method == "OPTIONS" {
		fmt.Fprint(w, "OK")
		return
	}

	dashboardUuid := req.URL.Query().Get("dashboardUuid")

	if dashboardUuid != h.CurrentDashboard.Uuid {
		http.Error(w, "Forbidden", http.StatusForbidden)

		return
	}

	encoded, _ := json.Marshal(h.HealthService.HealthCheck())
	_, _ = w.Write(encoded)
}
