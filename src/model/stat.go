package model

type Sign string

const SignPositive Sign = "positive"
const SignNegative Sign = "negative"
const SignZero Sign = "zero"

type Summary struct {
	Current float64 `json:"current"`
	Max     float64 `json:"max"`
	Min     float64 `json:"min"`
}

// SpreadStat is a Summary prepared for display.
type SpreadStat struct {
	Summary          Summary `json:"summary"`
	CurrentFormatted string  `json:"currentFormatted"`
	MaxFormatted     string  `json:"maxFormatted"`
	MinFormatted     string  `json:"minFormatted"`
	Sign             Sign    `json:"sign"`
	UpdatedAt        int64   `json:"updatedAt"`
}

type EntryLevel struct {
	BtcInput float64 `json:"btcInput"`
	EthInput float64 `json:"ethInput"`
	Value    float64 `json:"value"`
	Chart    string  `json:"chart"`
	Drawn    bool    `json:"drawn"`
}

type EntryLevelRequest struct {
	BtcInput string `json:"btcInput"`
	EthInput string `json:"ethInput"`
}

type AutoRefreshRequest struct {
	Enabled  *bool `json:"enabled"`
	Interval int64 `json:"interval"`
}

type RefreshState struct {
	Enabled         bool  `json:"enabled"`
	IntervalSeconds int64 `json:"interval"`
	LastSuccess     int64 `json:"lastSuccess"`
	LastAttempt     int64 `json:"lastAttempt"`
	Stale           bool  `json:"stale"`
}
