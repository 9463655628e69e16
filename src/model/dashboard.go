package model

type Dashboard struct {
	Id   int64  `json:"id"`
	Uuid string `json:"uuid"`
}

// Preference keys of the dashboard key-value storage, one key per value.
const PreferenceBtcMin = "btcMin"
const PreferenceBtcMax = "btcMax"
const PreferenceEthMin = "ethMin"
const PreferenceEthMax = "ethMax"
const PreferenceAvgRatio24h = "avg_ratio_24h"
const PreferenceAvgRatio180d = "avg_ratio_180d"
const PreferenceBtcInput = "btcInput"
const PreferenceEthInput = "ethInput"
const PreferenceEntryLine = "entryLine"

type DashboardPreferences struct {
	Parameters *NormalizationParameters `json:"parameters"`
	BtcInput   *float64                 `json:"btcInput"`
	EthInput   *float64                 `json:"ethInput"`
	EntryLine  *float64                 `json:"entryLine"`
	Refresh    RefreshState             `json:"refresh"`
}
