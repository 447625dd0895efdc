package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Custody store.
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
    decimals           SMALLINT NOT NULL DEFAULT 18,
    reference_amount   TEXT NOT NULL DEFAULT '0',
    reference_currency TEXT NOT NULL DEFAULT '',
    reference_decimals SMALLINT NOT NULL DEFAULT 0,
    round              BIGINT NOT NULL,
    sequence           BIGINT NOT NULL,
    price_source       TEXT NOT NULL DEFAULT '',
    metadata           JSONB NOT NULL DEFAULT '{}',
    created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
    round          BIGINT NOT NULL,
    amount         TEXT NOT NULL,
    currency       TEXT NOT NULL DEFAULT 'eth',
    decimals       SMALLINT NOT NULL DEFAULT 18,
    contributions  JSONB NOT NULL DEFAULT '[]',
    funder_count   INT NOT NULL DEFAULT 0,
    status         TEXT NOT NULL DEFAULT 'pending',
    tx_ref         TEXT NOT NULL DEFAULT '',
    gas_used       BIGINT NOT NULL DEFAULT 0,
    fee            TEXT NOT NULL DEFAULT '0',
    failure_reason TEXT NOT NULL DEFAULT '',
    completed_at   TIMESTAMPTZ,
    created_at     TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at     TIMESTAMPTZ NOT NULL DEFAULT NOW()
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
