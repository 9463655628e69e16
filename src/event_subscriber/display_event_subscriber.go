package event_subscriber

import (
	"fmt"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/event"
)

type DisplayEventSubscriber struct {
	Display DisplaySinkInterface
}

func (d DisplayEventSubscriber) GetSubscribedEvents() map[string]func(interface{}) {
	return map[string]func(interface{}){
		event.EventDatasetRefreshed:  d.OnDatasetRefreshed,
		event.EventDatasetStale:      d.OnDatasetStale,
		event.EventRefreshFailed:     d.OnRefreshFailed,
		event.EventEntryLevelUpdated: d.OnEntryLevelUpdated,
	}
}

func (d DisplayEventSubscriber) OnDatasetRefreshed(eventModel interface{}) {
	e, ok := eventModel.(event.DatasetRefreshed)
	if !ok || e.Stat == nil {
		return
	}

	d.Display.ShowStats(*e.Stat)
}

func (d DisplayEventSubscriber) OnDatasetStale(eventModel interface{}) {
	e, ok := eventModel.(event.DatasetStale)
	if !ok {
		return
	}

	log.Warnf("[%s] showing cached data: %s", e.Window, e.Cause.Error())
	d.Display.ShowMessage(fmt.Sprintf(
		"Failed to refresh data, showing cached data from %s",
		e.FetchedAt.Format("2006-01-02 15:04:05"),
	))
}

func (d DisplayEventSubscriber) OnRefreshFailed(eventModel interface{}) {
	e, ok := eventModel.(event.RefreshFailed)
	if !ok {
		return
	}

	log.Errorf("[%s] refresh failed: %s", e.Window, e.Cause.Error())
	d.Display.ShowMessage("Failed to load market data")
}

func (d DisplayEventSubscriber) OnEntryLevelUpdated(eventModel interface{}) {
	e, ok := eventModel.(event.EntryLevelUpdated)
	if !ok {
		return
	}

	d.Display.ShowEntryLevel(e.EntryLevel)
}
