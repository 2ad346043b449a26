package main

import (
	"context"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"

	"vaultSwap/internal/model"
)

func newSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "swap",
		Short: "Sell one pool asset for the other",
		RunE:  runSwap,
	}
	cmd.Flags().Uint64("seed", 0, "pool seed")
	cmd.Flags().String("user", "", "trader identity (base58)")
	cmd.Flags().String("direction", "x", "asset sold: x or y")
	cmd.Flags().Uint64("amount", 0, "amount sold in base units")
	cmd.Flags().Uint64("min-out", 0, "minimum amount received")
	return cmd
}

func newDepositCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "deposit",
		Short: "Add liquidity for pool shares",
		RunE:  runDeposit,
	}
	cmd.Flags().Uint64("seed", 0, "pool seed")
	cmd.Flags().String("user", "", "depositor identity (base58)")
	cmd.Flags().Uint64("max-x", 0, "most asset X to deposit")
	cmd.Flags().Uint64("max-y", 0, "most asset Y to deposit")
	cmd.Flags().Uint64("min-shares", 0, "minimum shares minted")
	return cmd
}

func newWithdrawCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Redeem pool shares for both assets",
		RunE:  runWithdraw,
	}
	cmd.Flags().Uint64("seed", 0, "pool seed")
	cmd.Flags().String("user", "", "share holder identity (base58)")
	cmd.Flags().Uint64("shares", 0, "shares to redeem")
	cmd.Flags().Uint64("min-x", 0, "minimum asset X received")
	cmd.Flags().Uint64("min-y", 0, "minimum asset Y received")
	return cmd
}

// execute runs op for the pool at seed under its sequencer slot and
// journals the receipt.
func execute(cmd *cobra.Command, op func(ctx context.Context, a *app, pool model.PoolState, user solana.PublicKey) (model.Receipt, error)) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	user, err := parseKey(cmd, "user")
	if err != nil {
		return err
	}
	seed, _ := cmd.Flags().GetUint64("seed")

	var receipt model.Receipt
	err = a.serialize(cmd.Context(), seed, func(ctx context.Context, _ solana.PublicKey, pool model.PoolState) error {
		var err error
		receipt, err = op(ctx, a, pool, user)
		return err
	})
	if err != nil {
		return err
	}
	a.record(cmd.Context(), receipt)
	return writeJSON(cmd, receipt)
}

func runSwap(cmd *cobra.Command, _ []string) error {
	raw, _ := cmd.Flags().GetString("direction")
	dir, err := model.ParseDirection(raw)
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	minOut, _ := cmd.Flags().GetUint64("min-out")
	return execute(cmd, func(ctx context.Context, a *app, pool model.PoolState, user solana.PublicKey) (model.Receipt, error) {
		return a.engine.Swap(ctx, pool, user, dir, amount, minOut)
	})
}

func runDeposit(cmd *cobra.Command, _ []string) error {
	maxX, _ := cmd.Flags().GetUint64("max-x")
	maxY, _ := cmd.Flags().GetUint64("max-y")
	minShares, _ := cmd.Flags().GetUint64("min-shares")
	return execute(cmd, func(ctx context.Context, a *app, pool model.PoolState, user solana.PublicKey) (model.Receipt, error) {
		return a.engine.Deposit(ctx, pool, user, maxX, maxY, minShares)
	})
}

func runWithdraw(cmd *cobra.Command, _ []string) error {
	shares, _ := cmd.Flags().GetUint64("shares")
	minX, _ := cmd.Flags().GetUint64("min-x")
	minY, _ := cmd.Flags().GetUint64("min-y")
	return execute(cmd, func(ctx context.Context, a *app, pool model.PoolState, user solana.PublicKey) (model.Receipt, error) {
		return a.engine.Withdraw(ctx, pool, user, shares, minX, minY)
	})
}
