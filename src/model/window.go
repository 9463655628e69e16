package model

import (
	"fmt"
	"time"
)

// Window is a stored market-data horizon, one table per window.
type Window struct {
	Name     string
	Interval string
	Lookback time.Duration
}

var Window24h = Window{Name: "24h", Interval: "1m", Lookback: 24 * time.Hour}
var Window180d = Window{Name: "180d", Interval: "1d", Lookback: 180 * 24 * time.Hour}

var Windows = []Window{Window24h, Window180d}

func GetWindow(name string) (Window, error) {
	for _, window := range Windows {
		if window.Name == name {
			return window, nil
		}
	}

	return Window{}, fmt.Errorf("%w: %q", ErrUnknownWindow, name)
}

func (w Window) TableName() string {
	return fmt.Sprintf("market_data_%s", w.Name)
}
