package controller

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

func TestGetHealthCheckAction(t *testing.T) {
	assertion := assert.New(t)
	dashboard := model.Dashboard{Id: 1, Uuid: "a1"}
	healthService := HealthCheckerMock{}
	healthService.On("HealthCheck").Return(model.DashboardHealth{Dashboard: dashboard, DbStatus: model.DbStatusOk})

	controller := HealthController{HealthService: &healthService, CurrentDashboard: &dashboard}

	recorder := httptest.NewRecorder()
	controller.GetHealthCheckAction(recorder, httptest.NewRequest(http.MethodGet, "/health/check?dashboardUuid=b2", nil))
	assertion.Equal(http.StatusForbidden, recorder.Code)

	recorder = httptest.NewRecorder()
	controller.GetHealthCheckAction(recorder, httptest.NewRequest(http.MethodGet, "/health/check?dashboardUuid=a1", nil))
	assertion.Equal(http.StatusOK, recorder.Code)
	assertion.Contains(recorder.Body.String(), `"dbStatus":"ok"`)
}
