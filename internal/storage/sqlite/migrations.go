package sqlite

import "database/sql"

// migrations contains the SQL statements to set up the database schema.
// These run on startup to ensure tables exist.
// IMPORTANT: members must be created before balances and referral_nodes
// due to foreign key constraints.
const schema = `
CREATE TABLE IF NOT EXISTS members (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    email TEXT NOT NULL UNIQUE,
    member_type TEXT NOT NULL,
    status TEXT NOT NULL,
    referrer_id TEXT,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS balances (
    member_id TEXT PRIMARY KEY,
    capital INTEGER NOT NULL DEFAULT 0 CHECK (capital >= 0),
    savings INTEGER NOT NULL DEFAULT 0 CHECK (savings >= 0),
    dividend_earned INTEGER NOT NULL DEFAULT 0 CHECK (dividend_earned >= 0),
    bonus_earned INTEGER NOT NULL DEFAULT 0 CHECK (bonus_earned >= 0),
    months_contributed INTEGER NOT NULL DEFAULT 0,
    eligible_for_dividend INTEGER NOT NULL DEFAULT 0,
    updated_at INTEGER NOT NULL DEFAULT 0,
    FOREIGN KEY (member_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS contributions (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL,
    amount INTEGER NOT NULL,
    capital_amount INTEGER NOT NULL DEFAULT 0,
    savings_amount INTEGER NOT NULL DEFAULT 0,
    breakdown TEXT NOT NULL,
    month TEXT NOT NULL,
    receipt_ref TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    settled INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (member_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS referral_nodes (
    member_id TEXT PRIMARY KEY,
    parent_id TEXT,
    level INTEGER NOT NULL,
    position INTEGER NOT NULL DEFAULT 0,
    children_count INTEGER NOT NULL DEFAULT 0 CHECK (children_count <= 3),
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS support_fee_payments (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL,
    amount INTEGER NOT NULL,
    month TEXT NOT NULL,
    receipt_ref TEXT,
    approved INTEGER NOT NULL DEFAULT 0,
    created_at INTEGER NOT NULL,
    FOREIGN KEY (member_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS bonus_distributions (
    id TEXT PRIMARY KEY,
    source_payment_id TEXT NOT NULL UNIQUE,
    amount INTEGER NOT NULL,
    reserve INTEGER NOT NULL,
    pool INTEGER NOT NULL,
    participant_count INTEGER NOT NULL,
    month TEXT NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS bonus_shares (
    id TEXT PRIMARY KEY,
    distribution_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    amount INTEGER NOT NULL,
    level INTEGER NOT NULL DEFAULT 0,
    is_company_share INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    FOREIGN KEY (distribution_id) REFERENCES bonus_distributions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS dividend_distributions (
    id TEXT PRIMARY KEY,
    total_profit INTEGER NOT NULL,
    total_capital_pool INTEGER NOT NULL,
    eligible_count INTEGER NOT NULL,
    created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS dividends (
    id TEXT PRIMARY KEY,
    distribution_id TEXT NOT NULL,
    member_id TEXT NOT NULL,
    amount INTEGER NOT NULL,
    percentage_bps INTEGER NOT NULL,
    capital_snapshot INTEGER NOT NULL,
    FOREIGN KEY (distribution_id) REFERENCES dividend_distributions(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS withdrawal_requests (
    id TEXT PRIMARY KEY,
    member_id TEXT NOT NULL,
    bucket TEXT NOT NULL,
    amount INTEGER NOT NULL,
    bank_name TEXT,
    account_name TEXT,
    account_number TEXT,
    status TEXT NOT NULL DEFAULT 'pending',
    month TEXT NOT NULL,
    created_at INTEGER NOT NULL,
    updated_at INTEGER NOT NULL,
    FOREIGN KEY (member_id) REFERENCES members(id)
);

CREATE TABLE IF NOT EXISTS settlements (
    id TEXT PRIMARY KEY,
    month TEXT NOT NULL UNIQUE,
    total_contributions INTEGER NOT NULL DEFAULT 0,
    total_bonuses INTEGER NOT NULL DEFAULT 0,
    total_withdrawals INTEGER NOT NULL DEFAULT 0,
    status TEXT NOT NULL DEFAULT 'pending',
    settled_at INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_contributions_member_month ON contributions(member_id, month);
CREATE INDEX IF NOT EXISTS idx_contributions_month ON contributions(month);
CREATE INDEX IF NOT EXISTS idx_referral_nodes_parent ON referral_nodes(parent_id);
CREATE INDEX IF NOT EXISTS idx_bonus_shares_distribution ON bonus_shares(distribution_id);
CREATE INDEX IF NOT EXISTS idx_bonus_distributions_month ON bonus_distributions(month);
CREATE INDEX IF NOT EXISTS idx_dividends_distribution ON dividends(distribution_id);
CREATE INDEX IF NOT EXISTS idx_withdrawals_member_bucket ON withdrawal_requests(member_id, bucket, status);
CREATE INDEX IF NOT EXISTS idx_withdrawals_month ON withdrawal_requests(month, status);

INSERT OR IGNORE INTO referral_nodes (member_id, parent_id, level, position, children_count, created_at)
VALUES ('company', '', 0, 0, 0, strftime('%s', 'now'));
`

// runMigrations executes the schema setup. The company root node is
// seeded here so the referral tree always has an attachment point.
func runMigrations(db *sql.DB) error {
	_, err := db.Exec(schema)
	return err
}
