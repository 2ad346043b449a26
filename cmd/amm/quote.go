package main

import (
	"github.com/spf13/cobra"

	"vaultSwap/internal/model"
)

func newQuoteCmd() *cobra.Command {
	quoteCmd := &cobra.Command{
		Use:   "quote",
		Short: "Price an operation without executing it",
	}

	swapCmd := &cobra.Command{
		Use:   "swap",
		Short: "Quote a swap",
		RunE:  runQuoteSwap,
	}
	swapCmd.Flags().Uint64("seed", 0, "pool seed")
	swapCmd.Flags().String("direction", "x", "asset sold: x or y")
	swapCmd.Flags().Uint64("amount", 0, "amount sold in base units")
	quoteCmd.AddCommand(swapCmd)

	withdrawCmd := &cobra.Command{
		Use:   "withdraw",
		Short: "Quote a redemption",
		RunE:  runQuoteWithdraw,
	}
	withdrawCmd.Flags().Uint64("seed", 0, "pool seed")
	withdrawCmd.Flags().Uint64("shares", 0, "shares to redeem")
	quoteCmd.AddCommand(withdrawCmd)

	depositCmd := &cobra.Command{
		Use:   "deposit",
		Short: "Quote a deposit",
		RunE:  runQuoteDeposit,
	}
	depositCmd.Flags().Uint64("seed", 0, "pool seed")
	depositCmd.Flags().Uint64("max-x", 0, "most asset X to deposit")
	depositCmd.Flags().Uint64("max-y", 0, "most asset Y to deposit")
	quoteCmd.AddCommand(depositCmd)

	return quoteCmd
}

func runQuoteSwap(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	raw, _ := cmd.Flags().GetString("direction")
	dir, err := model.ParseDirection(raw)
	if err != nil {
		return err
	}
	seed, _ := cmd.Flags().GetUint64("seed")
	amount, _ := cmd.Flags().GetUint64("amount")

	_, pool, err := a.loadPool(cmd.Context(), seed)
	if err != nil {
		return err
	}
	quote, err := a.engine.QuoteSwap(cmd.Context(), pool, dir, amount)
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{
		"direction":           dir.String(),
		"amount_in":           a.amount(quote.AmountIn),
		"amount_in_after_fee": a.amount(quote.AmountInAfterFee),
		"fee":                 a.amount(quote.Fee),
		"amount_out":          a.amount(quote.AmountOut),
	})
}

func runQuoteWithdraw(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	seed, _ := cmd.Flags().GetUint64("seed")
	shares, _ := cmd.Flags().GetUint64("shares")
	_, pool, err := a.loadPool(cmd.Context(), seed)
	if err != nil {
		return err
	}
	quote, err := a.engine.QuoteWithdraw(cmd.Context(), pool, shares)
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{
		"shares":   a.amount(shares),
		"amount_x": a.amount(quote.AmountX),
		"amount_y": a.amount(quote.AmountY),
	})
}

func runQuoteDeposit(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	seed, _ := cmd.Flags().GetUint64("seed")
	maxX, _ := cmd.Flags().GetUint64("max-x")
	maxY, _ := cmd.Flags().GetUint64("max-y")
	_, pool, err := a.loadPool(cmd.Context(), seed)
	if err != nil {
		return err
	}
	quote, err := a.engine.QuoteDeposit(cmd.Context(), pool, maxX, maxY)
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{
		"amount_x": a.amount(quote.AmountX),
		"amount_y": a.amount(quote.AmountY),
		"shares":   a.amount(quote.Shares),
	})
}
