package utils

import "time"

type TickerInterface interface {
	C() <-chan time.Time
	Stop()
}

type TimeServiceInterface interface {
	GetNowUnix() int64
	GetNow() time.Time
	NewTicker(interval time.Duration) TickerInterface
}

type TimeHelper struct {
}

func (t *TimeHelper) GetNowUnix() int64 {
	return time.Now().Unix()
}
func (t *TimeHelper) GetNow() time.Time {
	return time.Now()
}
func (t *TimeHelper) NewTicker(interval time.Duration) TickerInterface {
	return &systemTicker{ticker: time.NewTicker(interval)}
}

type systemTicker struct {
	ticker *time.Ticker
}

func (s *systemTicker) C() <-chan time.Time {
	return s.ticker.C
}

func (s *systemTicker) Stop() {
	s.ticker.Stop()
}
