package service

import (
	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/event_subscriber"
)

type EventDispatcherInterface interface {
	Dispatch(event interface{}, eventName string)
}

// EventDispatcher fans pipeline events out to the display subscribers.
type EventDispatcher struct {
	Subscribers []event_subscriber.SubscriberInterface
	Enabled     bool
}

func (d *EventDispatcher) Dispatch(event interface{}, eventName string) {
	if !d.Enabled {
		log.Debugf("[dispatcher] %s skipped, dispatcher is disabled", eventName)
		return
	}

	handled := 0
	for _, subscriber := range d.Subscribers {
		callback, ok := subscriber.GetSubscribedEvents()[eventName]
		if !ok {
			continue
		}
		callback(event)
		handled++
	}

	if handled == 0 {
		log.Debugf("[dispatcher] %s has no subscribers", eventName)
	}
}
