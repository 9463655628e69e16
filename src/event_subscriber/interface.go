package event_subscriber

import "gitlab.com/open-soft/spread-dashboard/src/model"

type SubscriberInterface interface {
	GetSubscribedEvents() map[string]func(interface{})
}

// DisplaySinkInterface shows transient messages and spread stats to connected dashboards.
type DisplaySinkInterface interface {
	ShowMessage(text string)
	ShowStats(stat model.SpreadStat)
	ShowEntryLevel(entryLevel model.EntryLevel)
}
