package event

import (
	"time"

	"gitlab.com/open-soft/spread-dashboard/src/model"
)

const EventDatasetRefreshed = "event_dataset_refreshed"
const EventDatasetStale = "event_dataset_stale"
const EventRefreshFailed = "event_refresh_failed"
const EventEntryLevelUpdated = "event_entry_level_updated"

type DatasetRefreshed struct {
	Window    string
	Stat      *model.SpreadStat
	FetchedAt time.Time
}

// DatasetStale is dispatched when a refresh failed but the cached dataset was applied.
type DatasetStale struct {
	Window    string
	Cause     error
	FetchedAt time.Time
}

type RefreshFailed struct {
	Window string
	Cause  error
}

type EntryLevelUpdated struct {
	EntryLevel model.EntryLevel
}
