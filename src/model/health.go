package model

import (
	"github.com/rafacas/sysstats"
)

const DbStatusOk = "ok"
const DbStatusFail = "fail"
const RedisStatusOk = "ok"
const RedisStatusFail = "fail"
const DataStatusOk = "ok"
const DataStatusStale = "stale"
const DataStatusEmpty = "empty"

type DashboardHealth struct {
	Dashboard   Dashboard         `json:"dashboard"`
	DbStatus    string            `json:"dbStatus"`
	RedisStatus string            `json:"redisStatus"`
	DataStatus  string            `json:"dataStatus"`
	Refresh     RefreshState      `json:"refresh"`
	Clients     int               `json:"clients"`
	Cores       int               `json:"cores"`
	Memory      sysstats.MemStats `json:"memory"`
	LoadAvg     sysstats.LoadAvg  `json:"loadAvg"`
	// Last successful ingestion per window, formatted as a date.
	Updates map[string]string `json:"updates"`
}
