package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"

	"swapwatch/internal/model"
)

// Store provides Postgres persistence for price history, processed
// transactions, user settings and scan cursors.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}
	cfg.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InitSchema creates the tables if they do not exist.
func (s *Store) InitSchema(ctx context.Context) error {
	for _, stmt := range schemaStatements {
		if _, err := s.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// AppendPriceRecord appends one price history point.
func (s *Store) AppendPriceRecord(ctx context.Context, rec model.PriceRecord) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO price_records (pair_id, price, liquidity, market_cap, volume_24h, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, rec.PairID, rec.Price, rec.Liquidity, rec.MarketCap, rec.Volume24h, rec.CreatedAt)
	return err
}

// AppendTransaction inserts a processed buy keyed by transaction hash. The
// primary key on tx_hash makes the insert the dedup claim: the bool result is
// true only for the first insert of a given hash, false on replay.
func (s *Store) AppendTransaction(ctx context.Context, rec model.TransactionRecord) (bool, error) {
	ct, err := s.pool.Exec(ctx, `
		INSERT INTO transactions (tx_hash, pair_id, amount, usd_value, price, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (tx_hash) DO NOTHING
	`, rec.TxHash, rec.PairID, rec.Amount, rec.USDValue, rec.Price, rec.CreatedAt)
	if err != nil {
		return false, err
	}
	return ct.RowsAffected() == 1, nil
}

// Volume24h sums the USD value of the pair's transactions inside
// [now-24h, now].
func (s *Store) Volume24h(ctx context.Context, pairID string, now time.Time) (decimal.Decimal, error) {
	var volume decimal.Decimal
	row := s.pool.QueryRow(ctx, `
		SELECT COALESCE(SUM(usd_value), 0)
		FROM transactions
		WHERE pair_id = $1 AND created_at >= $2 AND created_at <= $3
	`, pairID, now.Add(-24*time.Hour), now)
	if err := row.Scan(&volume); err != nil {
		return decimal.Zero, err
	}
	return volume, nil
}

// PriceHistory returns the pair's price records since the given time, oldest
// first.
func (s *Store) PriceHistory(ctx context.Context, pairID string, since time.Time) ([]model.PriceRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT pair_id, price, liquidity, market_cap, volume_24h, created_at
		FROM price_records
		WHERE pair_id = $1 AND created_at >= $2
		ORDER BY created_at
	`, pairID, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.PriceRecord
	for rows.Next() {
		var rec model.PriceRecord
		if err := rows.Scan(&rec.PairID, &rec.Price, &rec.Liquidity, &rec.MarketCap, &rec.Volume24h, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetUserSettings returns a user's settings if they exist.
func (s *Store) GetUserSettings(ctx context.Context, userID int64) (model.UserSettings, bool, error) {
	var settings model.UserSettings
	row := s.pool.QueryRow(ctx, `
		SELECT user_id, chat_id, alerts, threshold, threshold_op, wallets, updated_at
		FROM user_settings
		WHERE user_id = $1
	`, userID)
	if err := scanSettings(row, &settings); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.UserSettings{}, false, nil
		}
		return model.UserSettings{}, false, err
	}
	return settings, true, nil
}

// UpsertUserSettings writes the full merged settings row.
func (s *Store) UpsertUserSettings(ctx context.Context, settings model.UserSettings) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO user_settings (user_id, chat_id, alerts, threshold, threshold_op, wallets, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, now())
		ON CONFLICT (user_id) DO UPDATE SET
			chat_id = EXCLUDED.chat_id,
			alerts = EXCLUDED.alerts,
			threshold = EXCLUDED.threshold,
			threshold_op = EXCLUDED.threshold_op,
			wallets = EXCLUDED.wallets,
			updated_at = now()
	`, settings.UserID, settings.ChatID, settings.Alerts, settings.Threshold, settings.ThresholdOp, settings.Wallets)
	return err
}

// ListSubscribers returns every user with alerts enabled.
func (s *Store) ListSubscribers(ctx context.Context) ([]model.UserSettings, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT user_id, chat_id, alerts, threshold, threshold_op, wallets, updated_at
		FROM user_settings
		WHERE alerts
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var subscribers []model.UserSettings
	for rows.Next() {
		var settings model.UserSettings
		if err := scanSettings(rows, &settings); err != nil {
			return nil, err
		}
		subscribers = append(subscribers, settings)
	}
	return subscribers, rows.Err()
}

// LoadCursor returns the last scanned block for a name.
func (s *Store) LoadCursor(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("cursor name required")
	}
	var block int64
	row := s.pool.QueryRow(ctx, `SELECT last_block FROM scanner_state WHERE name=$1`, name)
	if err := row.Scan(&block); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return uint64(block), true, nil
}

// SaveCursor upserts the last scanned block for a name.
func (s *Store) SaveCursor(ctx context.Context, name string, block uint64) error {
	if name == "" {
		return fmt.Errorf("cursor name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO scanner_state (name, last_block, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_block = EXCLUDED.last_block, updated_at = now()
	`, name, int64(block))
	return err
}

func scanSettings(row pgx.Row, settings *model.UserSettings) error {
	return row.Scan(
		&settings.UserID,
		&settings.ChatID,
		&settings.Alerts,
		&settings.Threshold,
		&settings.ThresholdOp,
		&settings.Wallets,
		&settings.UpdatedAt,
	)
}
