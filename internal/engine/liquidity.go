package engine

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"
	"go.uber.org/zap"

	"vaultSwap/internal/curve"
	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
	"vaultSwap/internal/settle"
)

// QuoteWithdraw prices a redemption against the current reserves.
func (e *Engine) QuoteWithdraw(ctx context.Context, pool model.PoolState, sharesIn uint64) (curve.WithdrawQuote, error) {
	reserves, err := e.Reserves(ctx, pool)
	if err != nil {
		return curve.WithdrawQuote{}, err
	}
	return curve.QuoteWithdraw(reserves.X, reserves.Y, reserves.Supply, sharesIn, pool.Precision)
}

// QuoteDeposit prices a deposit against the current reserves.
func (e *Engine) QuoteDeposit(ctx context.Context, pool model.PoolState, maxX, maxY uint64) (curve.DepositQuote, error) {
	reserves, err := e.Reserves(ctx, pool)
	if err != nil {
		return curve.DepositQuote{}, err
	}
	return curve.QuoteDeposit(reserves.X, reserves.Y, reserves.Supply, maxX, maxY, 0, pool.Precision)
}

// Withdraw burns sharesIn of the user's shares for a proportional slice of
// both vaults. The lock flag does not gate withdrawals.
func (e *Engine) Withdraw(ctx context.Context, pool model.PoolState, user solana.PublicKey, sharesIn, minX, minY uint64) (model.Receipt, error) {
	fields := []zap.Field{zap.Uint64("shares", sharesIn)}
	if sharesIn == 0 {
		err := fmt.Errorf("withdraw: %w", model.ErrInvalidAmount)
		e.reject("withdraw", pool, err, fields...)
		return model.Receipt{}, err
	}

	accts, capability, err := e.prepare(pool, user)
	if err != nil {
		err = fmt.Errorf("withdraw: %w", err)
		e.reject("withdraw", pool, err, fields...)
		return model.Receipt{}, err
	}

	receipt := e.receipt(model.KindWithdraw, accts, pool, user)
	receipt.Shares = sharesIn

	plan := func(ctx context.Context, view ledger.Ledger) ([]settle.Leg, error) {
		held, err := view.Balance(ctx, accts.UserLP)
		if err != nil {
			return nil, fmt.Errorf("read user shares: %w", err)
		}
		if sharesIn > held {
			return nil, fmt.Errorf("%w: holds %d shares, redeeming %d", model.ErrInsufficientBalance, held, sharesIn)
		}

		before, err := snapshot(ctx, view, accts)
		if err != nil {
			return nil, err
		}
		quote, err := curve.QuoteWithdraw(before.X, before.Y, before.Supply, sharesIn, pool.Precision)
		if err != nil {
			return nil, err
		}
		if quote.AmountX < minX || quote.AmountY < minY {
			return nil, fmt.Errorf("%w: got %d/%d, want at least %d/%d",
				model.ErrSlippageExceeded, quote.AmountX, quote.AmountY, minX, minY)
		}

		receipt.AmountX = quote.AmountX
		receipt.AmountY = quote.AmountY
		receipt.Before = before
		receipt.After = model.Reserves{
			X:      before.X - quote.AmountX,
			Y:      before.Y - quote.AmountY,
			Supply: before.Supply - sharesIn,
		}

		return []settle.Leg{
			{
				Kind:   settle.Transfer,
				From:   accts.VaultX,
				To:     accts.UserX,
				Amount: quote.AmountX,
				Signer: capability.Signer(),
				Undo:   ledger.UserSigner(user),
			},
			{
				Kind:   settle.Transfer,
				From:   accts.VaultY,
				To:     accts.UserY,
				Amount: quote.AmountY,
				Signer: capability.Signer(),
				Undo:   ledger.UserSigner(user),
			},
			{
				Kind:   settle.Burn,
				From:   accts.UserLP,
				Amount: sharesIn,
				Signer: ledger.UserSigner(user),
				Undo:   capability.Signer(),
			},
		}, nil
	}

	if err := settle.Run(ctx, e.ledger, plan, e.logger); err != nil {
		err = fmt.Errorf("withdraw: %w", err)
		e.reject("withdraw", pool, err, fields...)
		return model.Receipt{}, err
	}
	e.committed(receipt)
	return receipt, nil
}

// Deposit adds liquidity up to maxX and maxY and mints at least minShares.
// The first deposit into an empty pool sets its price.
func (e *Engine) Deposit(ctx context.Context, pool model.PoolState, user solana.PublicKey, maxX, maxY, minShares uint64) (model.Receipt, error) {
	fields := []zap.Field{zap.Uint64("max_x", maxX), zap.Uint64("max_y", maxY)}
	if maxX == 0 || maxY == 0 {
		err := fmt.Errorf("deposit: %w", model.ErrInvalidAmount)
		e.reject("deposit", pool, err, fields...)
		return model.Receipt{}, err
	}

	accts, capability, err := e.prepare(pool, user)
	if err != nil {
		err = fmt.Errorf("deposit: %w", err)
		e.reject("deposit", pool, err, fields...)
		return model.Receipt{}, err
	}

	receipt := e.receipt(model.KindDeposit, accts, pool, user)

	plan := func(ctx context.Context, view ledger.Ledger) ([]settle.Leg, error) {
		before, err := snapshot(ctx, view, accts)
		if err != nil {
			return nil, err
		}
		quote, err := curve.QuoteDeposit(before.X, before.Y, before.Supply, maxX, maxY, minShares, pool.Precision)
		if err != nil {
			return nil, err
		}

		receipt.AmountX = quote.AmountX
		receipt.AmountY = quote.AmountY
		receipt.Shares = quote.Shares
		receipt.Before = before
		receipt.After = model.Reserves{
			X:      before.X + quote.AmountX,
			Y:      before.Y + quote.AmountY,
			Supply: before.Supply + quote.Shares,
		}

		return []settle.Leg{
			{
				Kind:   settle.Transfer,
				From:   accts.UserX,
				To:     accts.VaultX,
				Amount: quote.AmountX,
				Signer: ledger.UserSigner(user),
				Undo:   capability.Signer(),
			},
			{
				Kind:   settle.Transfer,
				From:   accts.UserY,
				To:     accts.VaultY,
				Amount: quote.AmountY,
				Signer: ledger.UserSigner(user),
				Undo:   capability.Signer(),
			},
			{
				Kind:   settle.Mint,
				To:     accts.UserLP,
				Amount: quote.Shares,
				Signer: capability.Signer(),
				Undo:   ledger.UserSigner(user),
			},
		}, nil
	}

	if err := settle.Run(ctx, e.ledger, plan, e.logger); err != nil {
		err = fmt.Errorf("deposit: %w", err)
		e.reject("deposit", pool, err, fields...)
		return model.Receipt{}, err
	}
	e.committed(receipt)
	return receipt, nil
}

// SpotPrice returns Y per X scaled by 10^precision.
func (e *Engine) SpotPrice(ctx context.Context, pool model.PoolState) (uint64, error) {
	reserves, err := e.Reserves(ctx, pool)
	if err != nil {
		return 0, err
	}
	return curve.SpotPrice(reserves.X, reserves.Y, pool.Precision)
}
