package model

const SocketMessageSeriesAdd = "series.add"
const SocketMessageSeriesSet = "series.set"
const SocketMessageSeriesRemove = "series.remove"
const SocketMessageDisplay = "message"
const SocketMessageDismiss = "message.dismiss"
const SocketMessageStats = "stats"
const SocketMessageEntryLevel = "entry_level"

// Sent by clients once a chart is sized and whenever it is scrolled or zoomed.
const SocketMessageVisibleRange = "range"

// SocketMessage is a frame of the chart feed, both directions.
type SocketMessage struct {
	Type       string             `json:"type"`
	Chart      string             `json:"chart,omitempty"`
	SeriesId   string             `json:"seriesId,omitempty"`
	Options    *LineSeriesOptions `json:"options,omitempty"`
	Data       Series             `json:"data,omitempty"`
	Range      *TimeRange         `json:"range,omitempty"`
	Message    *DisplayMessage    `json:"message,omitempty"`
	Stat       *SpreadStat        `json:"stat,omitempty"`
	EntryLevel *EntryLevel        `json:"entryLevel,omitempty"`
}

type DisplayMessage struct {
	Id        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt int64  `json:"createdAt"`
	ExpiresAt int64  `json:"expiresAt"`
}
