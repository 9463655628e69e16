package client

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
	"gitlab.com/open-soft/spread-dashboard/src/model"
	"golang.org/x/time/rate"
)

const BinanceKLinesLimit = 1000

// A page shorter than this is the last one.
const binanceLastPageThreshold = 999

type Binance struct {
	HttpClient  HttpClientInterface
	DSN         string
	Limiter     *rate.Limiter
	MaxAttempts int
	RetryDelay  time.Duration
}

// GetKLines fetches one page of candles starting at startTime (milliseconds).
func (b *Binance) GetKLines(ctx context.Context, symbol string, interval string, startTime int64, limit int) ([]model.KLine, error) {
	query := url.Values{}
	query.Set("symbol", strings.ToUpper(symbol))
	query.Set("interval", interval)
	query.Set("startTime", strconv.FormatInt(startTime, 10))
	query.Set("limit", strconv.Itoa(limit))

	endpoint := fmt.Sprintf("%s/api/v3/klines?%s", strings.TrimRight(b.DSN, "/"), query.Encode())

	var body []byte
	err := b.retry(ctx, func() error {
		if b.Limiter != nil {
			if err := b.Limiter.Wait(ctx); err != nil {
				return err
			}
		}

		var err error
		body, err = b.HttpClient.Get(ctx, endpoint, map[string]string{})

		return err
	})

	if err != nil {
		log.Printf("[%s] GetKLines: %s", symbol, err.Error())
		return nil, err
	}

	return parseKLines(symbol, interval, body)
}

// GetKLinesSince pages through candles from since until the exchange returns a short page.
func (b *Binance) GetKLinesSince(ctx context.Context, symbol string, interval string, since time.Time) ([]model.KLine, error) {
	startTime := since.UnixMilli()
	kLines := make([]model.KLine, 0)

	for {
		page, err := b.GetKLines(ctx, symbol, interval, startTime, BinanceKLinesLimit)
		if err != nil {
			return nil, err
		}

		if len(page) == 0 {
			break
		}

		kLines = append(kLines, page...)
		startTime = page[len(page)-1].OpenTime.Value() + 1

		if len(page) < binanceLastPageThreshold {
			break
		}
	}

	return kLines, nil
}

func (b *Binance) retry(ctx context.Context, call func() error) error {
	attempts := b.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = call()
		if err == nil {
			return nil
		}

		var statusErr *HttpStatusError
		if errors.As(err, &statusErr) && statusErr.StatusCode < 500 && statusErr.StatusCode != 429 {
			return err
		}

		if attempt == attempts {
			break
		}

		log.Warnf("Binance request attempt %d/%d failed: %s", attempt, attempts, err.Error())

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(b.RetryDelay):
		}
	}

	return err
}

// Binance answers with arrays: [openTime, open, high, low, close, volume, closeTime, ...].
func parseKLines(symbol string, interval string, body []byte) ([]model.KLine, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%w: invalid klines response", model.ErrMalformedPayload)
	}

	result := gjson.ParseBytes(body)
	if !result.IsArray() {
		return nil, fmt.Errorf("%w: klines response is %s", model.ErrMalformedPayload, result.Type.String())
	}

	kLines := make([]model.KLine, 0)
	for _, item := range result.Array() {
		openTime := item.Get("0")
		closePrice := item.Get("4")
		if !openTime.Exists() || !closePrice.Exists() {
			return nil, fmt.Errorf("%w: kline has no open time or close price", model.ErrMalformedPayload)
		}

		value, err := strconv.ParseFloat(closePrice.String(), 64)
		if err != nil {
			return nil, fmt.Errorf("%w: close price %q", model.ErrMalformedPayload, closePrice.String())
		}

		kLines = append(kLines, model.KLine{
			Symbol:   strings.ToUpper(symbol),
			Interval: interval,
			OpenTime: model.TimestampMilli(openTime.Int()),
			Close:    model.Price(value),
		})
	}

	return kLines, nil
}
