package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"vaultSwap/internal/model"
)

// Store mirrors pools and receipts into Postgres.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
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

const schema = `
CREATE TABLE IF NOT EXISTS pools (
	config_address TEXT PRIMARY KEY,
	seed NUMERIC(20) NOT NULL,
	asset_x TEXT NOT NULL,
	asset_y TEXT NOT NULL,
	fee_bps INTEGER NOT NULL,
	authority TEXT,
	locked BOOLEAN NOT NULL,
	price_precision SMALLINT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS receipts (
	id BIGSERIAL PRIMARY KEY,
	kind TEXT NOT NULL,
	config_address TEXT NOT NULL,
	user_address TEXT NOT NULL,
	direction TEXT,
	amount_in NUMERIC(20) NOT NULL,
	amount_out NUMERIC(20) NOT NULL,
	amount_x NUMERIC(20) NOT NULL,
	amount_y NUMERIC(20) NOT NULL,
	shares NUMERIC(20) NOT NULL,
	reserve_x_before NUMERIC(20) NOT NULL,
	reserve_y_before NUMERIC(20) NOT NULL,
	supply_before NUMERIC(20) NOT NULL,
	reserve_x_after NUMERIC(20) NOT NULL,
	reserve_y_after NUMERIC(20) NOT NULL,
	supply_after NUMERIC(20) NOT NULL,
	committed_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS receipts_pool_idx ON receipts (config_address, committed_at);
`

// EnsureSchema creates the tables if they do not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	return nil
}

// PoolRecord is a pool keyed by its config address.
type PoolRecord struct {
	Config string
	State  model.PoolState
}

// UpsertPools inserts or updates pool configuration.
func (s *Store) UpsertPools(ctx context.Context, pools []PoolRecord) error {
	if len(pools) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, p := range pools {
		var authority *string
		if p.State.Authority != nil {
			a := p.State.Authority.String()
			authority = &a
		}
		batch.Queue(`
			INSERT INTO pools (
				config_address, seed, asset_x, asset_y, fee_bps, authority, locked, price_precision, created_at, updated_at
			) VALUES ($1, $2::numeric, $3, $4, $5, $6, $7, $8, now(), now())
			ON CONFLICT (config_address)
			DO UPDATE SET
				locked = EXCLUDED.locked,
				updated_at = now()
		`,
			p.Config,
			numeric(p.State.Seed),
			p.State.AssetX.String(),
			p.State.AssetY.String(),
			int32(p.State.FeeBps),
			authority,
			p.State.Locked,
			int16(p.State.Precision),
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range pools {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// PutReceipts inserts receipts in one batch.
func (s *Store) PutReceipts(ctx context.Context, receipts []model.Receipt) error {
	if len(receipts) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, r := range receipts {
		var direction *string
		if r.Direction != "" {
			direction = &r.Direction
		}
		batch.Queue(`
			INSERT INTO receipts (
				kind, config_address, user_address, direction,
				amount_in, amount_out, amount_x, amount_y, shares,
				reserve_x_before, reserve_y_before, supply_before,
				reserve_x_after, reserve_y_after, supply_after, committed_at
			) VALUES ($1,$2,$3,$4,$5::numeric,$6::numeric,$7::numeric,$8::numeric,$9::numeric,
				$10::numeric,$11::numeric,$12::numeric,$13::numeric,$14::numeric,$15::numeric,$16::timestamptz)
		`,
			r.Kind,
			r.Pool,
			r.User,
			direction,
			numeric(r.AmountIn),
			numeric(r.AmountOut),
			numeric(r.AmountX),
			numeric(r.AmountY),
			numeric(r.Shares),
			numeric(r.Before.X),
			numeric(r.Before.Y),
			numeric(r.Before.Supply),
			numeric(r.After.X),
			numeric(r.After.Y),
			numeric(r.After.Supply),
			r.Timestamp,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range receipts {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}

// CountReceipts returns how many receipts a pool has journaled.
func (s *Store) CountReceipts(ctx context.Context, config string) (int64, error) {
	if config == "" {
		return 0, fmt.Errorf("config address required")
	}
	var n int64
	row := s.pool.QueryRow(ctx, `SELECT count(*) FROM receipts WHERE config_address=$1`, config)
	if err := row.Scan(&n); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return n, nil
}

// numeric renders a uint64 for a NUMERIC column; BIGINT cannot hold the top bit.
func numeric(v uint64) string {
	return strconv.FormatUint(v, 10)
}
