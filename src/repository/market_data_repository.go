package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gitlab.com/open-soft/spread-dashboard/src/model"
)

const insertBatchSize = 500

// MarketDataRepository reads and replaces the aligned close prices of one window table.
// Table names come from model.Window only, never from request input.
type MarketDataRepository struct {
	DB *sql.DB
}

func (m *MarketDataRepository) GetRows(ctx context.Context, window model.Window, newestFirst bool) ([]model.RawRow, error) {
	order := "ASC"
	if newestFirst {
		order = "DESC"
	}

	res, err := m.DB.QueryContext(ctx, fmt.Sprintf(`
		SELECT
			md.timestamp as Timestamp,
			md.close_btc as CloseBtc,
			md.close_eth as CloseEth
		FROM %s md
		ORDER BY md.timestamp %s
	`, window.TableName(), order))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", window.TableName(), err)
	}
	defer res.Close()

	rows := make([]model.RawRow, 0)
	for res.Next() {
		var row model.RawRow
		var timestamp int64
		var closeBtc, closeEth float64
		err := res.Scan(&timestamp, &closeBtc, &closeEth)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", window.TableName(), err)
		}
		row.Timestamp = model.UnixTimestamp(timestamp)
		row.CloseBtc = model.Price(closeBtc)
		row.CloseEth = model.Price(closeEth)
		rows = append(rows, row)
	}

	return rows, res.Err()
}

// ReplaceRows swaps the whole window content in one transaction.
func (m *MarketDataRepository) ReplaceRows(ctx context.Context, window model.Window, rows []model.RawRow) error {
	tx, err := m.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}

	if _, err = tx.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s", window.TableName())); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("%s: %w", window.TableName(), err)
	}

	for start := 0; start < len(rows); start += insertBatchSize {
		end := start + insertBatchSize
		if end > len(rows) {
			end = len(rows)
		}

		batch := rows[start:end]
		placeholders := make([]string, 0, len(batch))
		args := make([]interface{}, 0, len(batch)*3)
		for _, row := range batch {
			placeholders = append(placeholders, "(?, ?, ?)")
			args = append(args, row.Timestamp.Value(), row.CloseBtc.Value(), row.CloseEth.Value())
		}

		_, err = tx.ExecContext(ctx, fmt.Sprintf(
			"INSERT INTO %s (timestamp, close_btc, close_eth) VALUES %s",
			window.TableName(),
			strings.Join(placeholders, ", "),
		), args...)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: %w", window.TableName(), err)
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}

	log.Infof("[%s] stored %d rows", window.Name, len(rows))

	return nil
}

func (m *MarketDataRepository) GetLastTimestamp(ctx context.Context, window model.Window) (int64, bool) {
	var timestamp sql.NullInt64
	err := m.DB.QueryRowContext(ctx, fmt.Sprintf("SELECT MAX(md.timestamp) FROM %s md", window.TableName())).Scan(&timestamp)
	if err != nil || !timestamp.Valid {
		return 0, false
	}

	return timestamp.Int64, true
}
