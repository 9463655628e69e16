package event_subscriber

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gitlab.com/open-soft/spread-dashboard/src/event"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

type DisplaySinkMock struct {
	mock.Mock
}

func (m *DisplaySinkMock) ShowMessage(text string) {
	m.Called(text)
}
func (m *DisplaySinkMock) ShowStats(stat model.SpreadStat) {
	m.Called(stat)
}
func (m *DisplaySinkMock) ShowEntryLevel(entryLevel model.EntryLevel) {
	m.Called(entryLevel)
}

func TestDatasetRefreshedShowsStats(t *testing.T) {
	display := DisplaySinkMock{}
	stat := model.SpreadStat{CurrentFormatted: "2.50%", Sign: model.SignPositive}
	display.On("ShowStats", stat).Return().Once()

	subscriber := DisplayEventSubscriber{Display: &display}
	subscriber.GetSubscribedEvents()[event.EventDatasetRefreshed](event.DatasetRefreshed{Window: "24h", Stat: &stat})
	subscriber.OnDatasetRefreshed(event.DatasetRefreshed{Window: "24h"})

	display.AssertExpectations(t)
}

func TestStaleDatasetShowsCachedTime(t *testing.T) {
	display := DisplaySinkMock{}
	display.On("ShowMessage", "Failed to refresh data, showing cached data from 2023-11-14 22:13:20").Return().Once()

	subscriber := DisplayEventSubscriber{Display: &display}
	subscriber.OnDatasetStale(event.DatasetStale{
		Window:    "24h",
		Cause:     errors.New("HTTP 503"),
		FetchedAt: time.Unix(1700000000, 0).UTC(),
	})

	display.AssertExpectations(t)
}

func TestRefreshFailedShowsMessage(t *testing.T) {
	display := DisplaySinkMock{}
	display.On("ShowMessage", "Failed to load market data").Return().Once()

	subscriber := DisplayEventSubscriber{Display: &display}
	subscriber.OnRefreshFailed(event.RefreshFailed{Window: "24h", Cause: model.ErrMalformedPayload})
	subscriber.OnRefreshFailed("unexpected")

	display.AssertExpectations(t)
}

func TestEntryLevelUpdatedIsShown(t *testing.T) {
	assertion := assert.New(t)
	display := DisplaySinkMock{}
	entryLevel := model.EntryLevel{Value: 0.25, Chart: "spread", Drawn: true}
	display.On("ShowEntryLevel", entryLevel).Return().Once()

	subscriber := DisplayEventSubscriber{Display: &display}
	assertion.Len(subscriber.GetSubscribedEvents(), 4)
	subscriber.OnEntryLevelUpdated(event.EntryLevelUpdated{EntryLevel: entryLevel})

	display.AssertExpectations(t)
}
