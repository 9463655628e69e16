package model

// KLine is one exchange candle reduced to what the ingest needs.
type KLine struct {
	Symbol   string
	Interval string
	OpenTime TimestampMilli
	Close    Price
}

func (k KLine) GetTimestamp() int64 {
	return k.OpenTime.Value() / 1000
}

type TimestampMilli int64

func (t TimestampMilli) Value() int64 {
	return int64(t)
}
