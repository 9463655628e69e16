package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"gitlab.com/open-soft/spread-dashboard/src/utils"
)

const DefaultBtcSymbol = "BTCUSDT"
const DefaultEthSymbol = "ETHUSDT"

type KLineSourceInterface interface {
	GetKLinesSince(ctx context.Context, symbol string, interval string, since time.Time) ([]model.KLine, error)
}

type IngestMetricsInterface interface {
	ObserveIngest(window string, rows int, err error)
}

// IngestService copies exchange candles of both symbols into the window tables.
type IngestService struct {
	Source      KLineSourceInterface
	Storage     MarketDataStorageInterface
	TimeService utils.TimeServiceInterface
	Metrics     IngestMetricsInterface
	BtcSymbol   string
	EthSymbol   string

	mu sync.Mutex
}

// IngestAll refreshes every window; a failed window does not stop the others.
func (i *IngestService) IngestAll(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	errs := make([]error, 0)
	for _, window := range model.Windows {
		if _, err := i.IngestWindow(ctx, window); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// IngestWindow replaces the window table with candles of the last window lookback.
// Nothing is written when either symbol fails or the join is empty.
func (i *IngestService) IngestWindow(ctx context.Context, window model.Window) (int, error) {
	since := i.TimeService.GetNow().Add(-window.Lookback)

	btc, err := i.Source.GetKLinesSince(ctx, i.symbol(i.BtcSymbol, DefaultBtcSymbol), window.Interval, since)
	if err != nil {
		return 0, i.fail(window, fmt.Errorf("[%s] btc candles: %w", window.Name, err))
	}

	eth, err := i.Source.GetKLinesSince(ctx, i.symbol(i.EthSymbol, DefaultEthSymbol), window.Interval, since)
	if err != nil {
		return 0, i.fail(window, fmt.Errorf("[%s] eth candles: %w", window.Name, err))
	}

	rows := JoinOnTimestamp(btc, eth)
	if len(rows) == 0 {
		return 0, i.fail(window, fmt.Errorf("[%s] %w: no aligned candles", window.Name, model.ErrNoDataset))
	}

	if err = i.Storage.ReplaceRows(ctx, window, rows); err != nil {
		return 0, i.fail(window, fmt.Errorf("[%s] store rows: %w", window.Name, err))
	}

	log.Infof("[%s] ingested %d rows into %s", window.Name, len(rows), window.TableName())
	if i.Metrics != nil {
		i.Metrics.ObserveIngest(window.Name, len(rows), nil)
	}

	return len(rows), nil
}

func (i *IngestService) fail(window model.Window, err error) error {
	log.Errorf("Ingest failed: %s", err.Error())
	if i.Metrics != nil {
		i.Metrics.ObserveIngest(window.Name, 0, err)
	}

	return err
}

func (i *IngestService) symbol(configured string, fallback string) string {
	if configured == "" {
		return fallback
	}

	return configured
}

// JoinOnTimestamp keeps only candles present for both symbols, ordered by btc candles.
func JoinOnTimestamp(btc []model.KLine, eth []model.KLine) []model.RawRow {
	ethByTime := make(map[int64]model.KLine, len(eth))
	for _, kLine := range eth {
		ethByTime[kLine.GetTimestamp()] = kLine
	}

	rows := make([]model.RawRow, 0, len(btc))
	seen := make(map[int64]bool, len(btc))
	for _, kLine := range btc {
		timestamp := kLine.GetTimestamp()
		ethKLine, exist := ethByTime[timestamp]
		if !exist || seen[timestamp] {
			continue
		}
		seen[timestamp] = true

		rows = append(rows, model.RawRow{
			Timestamp: model.UnixTimestamp(timestamp),
			CloseBtc:  kLine.Close,
			CloseEth:  ethKLine.Close,
		})
	}

	return rows
}
