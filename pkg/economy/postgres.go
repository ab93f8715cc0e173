package economy

import (
	"context"
	"database/sql"
)

// Postgres is a funds provider backed by the user_funds table
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns a Postgres funds provider
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// AvailableFunds returns the user's spendable balance
func (p *Postgres) AvailableFunds(ctx context.Context, userID string) (int, error) {
	const query = `
SELECT funds
FROM user_funds
WHERE user_id = $1`

	var funds int
	if err := p.db.QueryRowContext(ctx, query, userID).Scan(&funds); err != nil {
		if err == sql.ErrNoRows {
			return 0, ErrUserNotFound
		}

		return 0, err
	}

	return funds, nil
}

// AdjustFunds credits (or debits, with a negative delta) a user's balance.
// Reward distribution at round end belongs to the surrounding collaborator;
// this is the hook it uses.
func (p *Postgres) AdjustFunds(ctx context.Context, userID string, delta int) error {
	const query = `
INSERT INTO user_funds (user_id, funds)
VALUES ($1, $2)
ON CONFLICT (user_id) DO UPDATE
SET funds = user_funds.funds + EXCLUDED.funds, updated = (NOW() AT TIME ZONE 'utc')`

	_, err := p.db.ExecContext(ctx, query, userID, delta)
	return err
}
