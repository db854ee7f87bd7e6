package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS obligations (
    id                   TEXT PRIMARY KEY,
    position             INTEGER NOT NULL,
    kind                 TEXT NOT NULL,
    custom_name          TEXT NOT NULL DEFAULT '',
    custom_symbol        TEXT NOT NULL DEFAULT '',
    amount               TEXT NOT NULL DEFAULT '0',
    due_day              INTEGER NOT NULL CHECK (due_day BETWEEN 1 AND 31),
    period_months        INTEGER NOT NULL CHECK (period_months IN (1, 2)),
    paid                 INTEGER NOT NULL DEFAULT 0,
    paid_date            TEXT,
    paid_amount          TEXT,
    created_at           TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS notifications (
    tag                  TEXT NOT NULL,
    day                  TEXT NOT NULL,
    sent_at              TEXT NOT NULL,
    PRIMARY KEY (tag, day)
);

CREATE TABLE IF NOT EXISTS meta (
    key                  TEXT PRIMARY KEY,
    value                TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_obligations_position ON obligations(position);
`
