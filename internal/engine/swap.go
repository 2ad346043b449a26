package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultSwap/internal/curve"
	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
	"vaultSwap/internal/resolver"
	"vaultSwap/internal/settle"
)

type swapSide struct {
	reserveIn, reserveOut uint64
	userIn, userOut       ledger.Account
	vaultIn, vaultOut     ledger.Account
}

func orient(accts resolver.Accounts, r model.Reserves, dir model.Direction) (swapSide, error) {
	switch dir {
	case model.XToY:
		return swapSide{r.X, r.Y, accts.UserX, accts.UserY, accts.VaultX, accts.VaultY}, nil
	case model.YToX:
		return swapSide{r.Y, r.X, accts.UserY, accts.UserX, accts.VaultY, accts.VaultX}, nil
	default:
		return swapSide{}, fmt.Errorf("%w: unknown direction %s", model.ErrInvalidAmount, dir)
	}
}

// QuoteSwap prices a swap against the current reserves without moving value.
func (e *Engine) QuoteSwap(ctx context.Context, pool model.PoolState, dir model.Direction, amountIn uint64) (curve.SwapQuote, error) {
	if amountIn == 0 {
		return curve.SwapQuote{}, fmt.Errorf("quote swap: %w", model.ErrInvalidAmount)
	}
	reserves, err := e.Reserves(ctx, pool)
	if err != nil {
		return curve.SwapQuote{}, err
	}
	side, err := orient(resolver.Accounts{}, reserves, dir)
	if err != nil {
		return curve.SwapQuote{}, err
	}
	return curve.QuoteSwap(side.reserveIn, side.reserveOut, reserves.Supply, pool.FeeBps, amountIn, 0, pool.Precision)
}

// Swap sells amountIn of one asset for at least minAmountOut of the other.
// Either both legs settle or neither does.
func (e *Engine) Swap(ctx context.Context, pool model.PoolState, user solana.PublicKey, dir model.Direction, amountIn, minAmountOut uint64) (model.Receipt, error) {
	fields := []zap.Field{zap.Stringer("direction", dir), zap.Uint64("amount_in", amountIn)}
	if pool.Locked {
		err := fmt.Errorf("swap: %w", model.ErrPoolLocked)
		e.reject("swap", pool, err, fields...)
		return model.Receipt{}, err
	}
	if amountIn == 0 {
		err := fmt.Errorf("swap: %w", model.ErrInvalidAmount)
		e.reject("swap", pool, err, fields...)
		return model.Receipt{}, err
	}

	accts, capability, err := e.prepare(pool, user)
	if err != nil {
		err = fmt.Errorf("swap: %w", err)
		e.reject("swap", pool, err, fields...)
		return model.Receipt{}, err
	}

	receipt := e.receipt(model.KindSwap, accts, pool, user)
	receipt.Direction = dir.String()
	receipt.AmountIn = amountIn

	plan := func(ctx context.Context, view ledger.Ledger) ([]settle.Leg, error) {
		before, err := snapshot(ctx, view, accts)
		if err != nil {
			return nil, err
		}
		side, err := orient(accts, before, dir)
		if err != nil {
			return nil, err
		}
		quote, err := curve.QuoteSwap(side.reserveIn, side.reserveOut, before.Supply, pool.FeeBps, amountIn, minAmountOut, pool.Precision)
		if err != nil {
			return nil, err
		}

		receipt.AmountOut = quote.AmountOut
		receipt.Before = before
		receipt.After = before
		if dir == model.XToY {
			receipt.After.X += amountIn
			receipt.After.Y -= quote.AmountOut
		} else {
			receipt.After.Y += amountIn
			receipt.After.X -= quote.AmountOut
		}

		return []settle.Leg{
			{
				Kind:   settle.Transfer,
				From:   side.userIn,
				To:     side.vaultIn,
				Amount: amountIn,
				Signer: ledger.UserSigner(user),
				Undo:   capability.Signer(),
			},
			{
				Kind:   settle.Transfer,
				From:   side.vaultOut,
				To:     side.userOut,
				Amount: quote.AmountOut,
				Signer: capability.Signer(),
				Undo:   ledger.UserSigner(user),
			},
		}, nil
	}

	if err := settle.Run(ctx, e.ledger, plan, e.logger); err != nil {
		err = fmt.Errorf("swap: %w", err)
		e.reject("swap", pool, err, fields...)
		return model.Receipt{}, err
	}
	e.committed(receipt)
	return receipt, nil
}
