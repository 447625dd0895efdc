package sqlite

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Custody store (SQLite).
var Migrations = migrate.NewGroup("custody")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_custody_fundings",
			Version: "20260301000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS custody_fundings (
    id                 TEXT PRIMARY KEY,
    kind               TEXT NOT NULL DEFAULT 'fund',
    funder             TEXT NOT NULL,
    amount             TEXT NOT NULL,
    currency           TEXT NOT NULL DEFAULT 'eth',
    decimals           INTEGER NOT NULL DEFAULT 18,
    reference_amount   TEXT NOT NULL DEFAULT '0',
    reference_currency TEXT NOT NULL DEFAULT '',
    reference_decimals INTEGER NOT NULL DEFAULT 0,
    round              INTEGER NOT NULL,
    sequence           INTEGER NOT NULL,
    price_source       TEXT NOT NULL DEFAULT '',
    metadata           TEXT NOT NULL DEFAULT '{}',
    created_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at         TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_custody_fundings_round_seq ON custody_fundings (round, sequence);
CREATE INDEX IF NOT EXISTS idx_custody_fundings_funder ON custody_fundings (funder);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS custody_fundings`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_custody_withdrawals",
			Version: "20260301000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS custody_withdrawals (
    id             TEXT PRIMARY KEY,
    owner          TEXT NOT NULL,
    round          INTEGER NOT NULL,
    amount         TEXT NOT NULL,
    currency       TEXT NOT NULL DEFAULT 'eth',
    decimals       INTEGER NOT NULL DEFAULT 18,
    contributions  TEXT NOT NULL DEFAULT '[]',
    funder_count   INTEGER NOT NULL DEFAULT 0,
    status         TEXT NOT NULL DEFAULT 'pending',
    tx_ref         TEXT NOT NULL DEFAULT '',
    gas_used       INTEGER NOT NULL DEFAULT 0,
    fee            TEXT NOT NULL DEFAULT '0',
    failure_reason TEXT NOT NULL DEFAULT '',
    completed_at   TIMESTAMP,
    created_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at     TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_custody_withdrawals_round ON custody_withdrawals (round DESC);
CREATE INDEX IF NOT EXISTS idx_custody_withdrawals_status ON custody_withdrawals (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS custody_withdrawals`)
				return err
			},
		},
	)
}
