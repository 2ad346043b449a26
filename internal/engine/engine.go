// Package engine validates exchange operations, prices them with the curve
// against a fresh ledger read and settles the resulting legs. An Engine holds
// no pool state and no locks; callers serialize operations per pool.
package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultSwap/internal/custody"
	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
	"vaultSwap/internal/resolver"
)

type Engine struct {
	ledger   ledger.Ledger
	resolver resolver.Resolver
	custody  custody.Authority
	logger   *zap.Logger
	now      func() time.Time
}

func New(l ledger.Ledger, r resolver.Resolver, c custody.Authority, logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		ledger:   l,
		resolver: r,
		custody:  c,
		logger:   logger,
		now:      time.Now,
	}
}

// Reserves reads the current vault balances and share supply of pool.
func (e *Engine) Reserves(ctx context.Context, pool model.PoolState) (model.Reserves, error) {
	accts, err := e.resolver.Resolve(pool, solana.PublicKey{})
	if err != nil {
		return model.Reserves{}, fmt.Errorf("resolve accounts: %w", err)
	}
	return snapshot(ctx, e.ledger, accts)
}

func snapshot(ctx context.Context, view ledger.Ledger, accts resolver.Accounts) (model.Reserves, error) {
	x, err := view.Balance(ctx, accts.VaultX)
	if err != nil {
		return model.Reserves{}, fmt.Errorf("read vault x: %w", err)
	}
	y, err := view.Balance(ctx, accts.VaultY)
	if err != nil {
		return model.Reserves{}, fmt.Errorf("read vault y: %w", err)
	}
	supply, err := view.Supply(ctx, accts.LPMint)
	if err != nil {
		return model.Reserves{}, fmt.Errorf("read lp supply: %w", err)
	}
	return model.Reserves{X: x, Y: y, Supply: supply}, nil
}

// prepare resolves accounts and the vault capability. Both must succeed
// before any leg is planned.
func (e *Engine) prepare(pool model.PoolState, user solana.PublicKey) (resolver.Accounts, custody.Capability, error) {
	accts, err := e.resolver.Resolve(pool, user)
	if err != nil {
		return resolver.Accounts{}, custody.Capability{}, fmt.Errorf("resolve accounts: %w", err)
	}
	capability, err := e.custody.SignAsVault(pool)
	if err != nil {
		return resolver.Accounts{}, custody.Capability{}, err
	}
	return accts, capability, nil
}

func (e *Engine) receipt(kind string, accts resolver.Accounts, pool model.PoolState, user solana.PublicKey) model.Receipt {
	return model.Receipt{
		Kind:      kind,
		Pool:      accts.Config.String(),
		Seed:      pool.Seed,
		User:      user.String(),
		Timestamp: e.now().UTC().Format(time.RFC3339Nano),
	}
}

func (e *Engine) reject(op string, pool model.PoolState, err error, fields ...zap.Field) {
	fields = append(fields, zap.Uint64("seed", pool.Seed), zap.Error(err))
	e.logger.Debug(op+" rejected", fields...)
}

func (e *Engine) committed(r model.Receipt) {
	e.logger.Info(r.Kind+" committed",
		zap.String("pool", r.Pool),
		zap.String("user", r.User),
		zap.String("direction", r.Direction),
		zap.Uint64("amount_in", r.AmountIn),
		zap.Uint64("amount_out", r.AmountOut),
		zap.Uint64("amount_x", r.AmountX),
		zap.Uint64("amount_y", r.AmountY),
		zap.Uint64("shares", r.Shares),
	)
}
