package storage

// schema is the single source of truth for the database layout. All
// statements are idempotent; Migrate runs them on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS investment_types (
    id   INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS exchanges (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    name     TEXT NOT NULL UNIQUE,
    country  TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS platforms (
    id       INTEGER PRIMARY KEY AUTOINCREMENT,
    name     TEXT NOT NULL UNIQUE,
    country  TEXT NOT NULL DEFAULT '',
    currency TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS tickers (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    symbol     TEXT NOT NULL,
    name       TEXT NOT NULL,
    currency   TEXT NOT NULL,
    type_id    INTEGER NOT NULL DEFAULT 0,
    exchange   TEXT NOT NULL DEFAULT '',
    country    TEXT NOT NULL DEFAULT '',
    sector     TEXT NOT NULL DEFAULT '',
    active     INTEGER NOT NULL DEFAULT 1,
    created_at TEXT NOT NULL,
    updated_at TEXT NOT NULL
);

-- Symbol uniqueness applies to active tickers only; a deactivated ticker
-- frees its symbol for reuse.
CREATE UNIQUE INDEX IF NOT EXISTS idx_tickers_symbol_active
    ON tickers(symbol) WHERE active = 1;

CREATE TABLE IF NOT EXISTS investment_events (
    id             INTEGER PRIMARY KEY AUTOINCREMENT,
    ticker_id      INTEGER NOT NULL REFERENCES tickers(id),
    date           TEXT NOT NULL,
    amount         REAL NOT NULL,
    quantity       REAL NOT NULL,
    platform_id    INTEGER NOT NULL DEFAULT 0,
    exchange_id    INTEGER NOT NULL DEFAULT 0,
    operation      TEXT NOT NULL,
    capital_origin TEXT NOT NULL DEFAULT 'FRESH_CASH',
    created_at     TEXT NOT NULL,
    updated_at     TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_ticker_date
    ON investment_events(ticker_id, date);

CREATE TABLE IF NOT EXISTS historical_prices (
    ticker_id  INTEGER NOT NULL REFERENCES tickers(id),
    date       TEXT NOT NULL,
    price      REAL NOT NULL,
    source     TEXT NOT NULL DEFAULT '',
    updated_at TEXT NOT NULL,
    PRIMARY KEY (ticker_id, date)
);

CREATE TABLE IF NOT EXISTS fx_rates (
    date    TEXT PRIMARY KEY,
    usd_pen REAL NOT NULL,
    source  TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS dividends (
    id        INTEGER PRIMARY KEY AUTOINCREMENT,
    ticker_id INTEGER NOT NULL REFERENCES tickers(id),
    date      TEXT NOT NULL,
    amount    REAL NOT NULL,
    currency  TEXT NOT NULL,
    market    TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_dividends_ticker_date
    ON dividends(ticker_id, date);

CREATE TABLE IF NOT EXISTS benchmark_prices (
    series TEXT NOT NULL,
    date   TEXT NOT NULL,
    value  REAL NOT NULL,
    PRIMARY KEY (series, date)
);

CREATE TABLE IF NOT EXISTS refresh_log (
    id         INTEGER PRIMARY KEY AUTOINCREMENT,
    ticker_id  INTEGER NOT NULL,
    symbol     TEXT NOT NULL,
    started_at TEXT NOT NULL,
    outcome    TEXT NOT NULL,
    attempts   TEXT NOT NULL DEFAULT '[]'
);
`
