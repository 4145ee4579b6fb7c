package postgres

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS price_records (
		id BIGSERIAL PRIMARY KEY,
		pair_id TEXT NOT NULL,
		price NUMERIC NOT NULL,
		liquidity NUMERIC NOT NULL,
		market_cap NUMERIC NOT NULL,
		volume_24h NUMERIC NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS price_records_pair_time_idx
		ON price_records (pair_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS transactions (
		tx_hash TEXT PRIMARY KEY,
		pair_id TEXT NOT NULL,
		amount NUMERIC NOT NULL,
		usd_value NUMERIC NOT NULL,
		price NUMERIC NOT NULL,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS transactions_pair_time_idx
		ON transactions (pair_id, created_at)`,
	`CREATE TABLE IF NOT EXISTS user_settings (
		user_id BIGINT PRIMARY KEY,
		chat_id BIGINT NOT NULL,
		alerts BOOLEAN NOT NULL DEFAULT TRUE,
		threshold NUMERIC,
		threshold_op TEXT NOT NULL DEFAULT '',
		wallets TEXT[] NOT NULL DEFAULT '{}',
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS scanner_state (
		name TEXT PRIMARY KEY,
		last_block BIGINT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	)`,
}
