package postgres

import (
	"context"

	"github.com/xraph/grove/migrate"
)

// Migrations is the grove migration group for the Paygate store.
var Migrations = migrate.NewGroup("paygate")

func init() {
	Migrations.MustRegister(
		&migrate.Migration{
			Name:    "create_paygate_config",
			Version: "20240101000001",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paygate_config (
    id         INT PRIMARY KEY CHECK (id = 1),
    owner      TEXT NOT NULL,
    token      TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paygate_config`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paygate_merchants",
			Version: "20240101000002",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paygate_merchants (
    address    TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paygate_merchants`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paygate_counters",
			Version: "20240101000003",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paygate_counters (
    name  TEXT PRIMARY KEY,
    value BIGINT NOT NULL DEFAULT 0
);

INSERT INTO paygate_counters (name, value) VALUES
    ('link', 0),
    ('plan', 0),
    ('subscription', 0)
ON CONFLICT (name) DO NOTHING;
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paygate_counters`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paygate_links",
			Version: "20240101000004",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paygate_links (
    id          BIGINT PRIMARY KEY,
    merchant    TEXT NOT NULL,
    amount      TEXT NOT NULL,
    status      TEXT NOT NULL DEFAULT 'active',
    description TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_paygate_links_merchant ON paygate_links (merchant);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paygate_links`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paygate_plans",
			Version: "20240101000005",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paygate_plans (
    id            BIGINT PRIMARY KEY,
    merchant      TEXT NOT NULL,
    amount        TEXT NOT NULL,
    interval_secs BIGINT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'active',
    name          TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_paygate_plans_merchant ON paygate_plans (merchant);
CREATE INDEX IF NOT EXISTS idx_paygate_plans_status ON paygate_plans (status);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paygate_plans`)
				return err
			},
		},
		&migrate.Migration{
			Name:    "create_paygate_subscriptions",
			Version: "20240101000006",
			Up: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `
CREATE TABLE IF NOT EXISTS paygate_subscriptions (
    id           BIGINT PRIMARY KEY,
    subscriber   TEXT NOT NULL,
    plan_id      BIGINT NOT NULL,
    start_time   TIMESTAMPTZ NOT NULL,
    last_payment TIMESTAMPTZ NOT NULL,
    status       TEXT NOT NULL DEFAULT 'active',
    created_at   TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_paygate_subs_subscriber ON paygate_subscriptions (subscriber);
CREATE INDEX IF NOT EXISTS idx_paygate_subs_due ON paygate_subscriptions (plan_id, status, last_payment);
`)
				return err
			},
			Down: func(ctx context.Context, exec migrate.Executor) error {
				_, err := exec.Exec(ctx, `DROP TABLE IF EXISTS paygate_subscriptions`)
				return err
			},
		},
	)
}
