package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultSwap/internal/ledger"
)

func newFundCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fund",
		Short: "Issue units of an asset into an account",
		RunE:  runFund,
	}
	cmd.Flags().String("asset", "", "asset id (base58)")
	cmd.Flags().String("owner", "", "account owner (base58)")
	cmd.Flags().Uint64("amount", 0, "amount in base units")
	return cmd
}

func newBalanceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balance",
		Short: "Show an account balance",
		RunE:  runBalance,
	}
	cmd.Flags().String("asset", "", "asset id (base58)")
	cmd.Flags().String("owner", "", "account owner (base58)")
	return cmd
}

func accountFlags(cmd *cobra.Command) (ledger.Account, error) {
	asset, err := parseKey(cmd, "asset")
	if err != nil {
		return ledger.Account{}, err
	}
	owner, err := parseKey(cmd, "owner")
	if err != nil {
		return ledger.Account{}, err
	}
	return ledger.Account{Asset: asset, Owner: owner}, nil
}

func runFund(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	acct, err := accountFlags(cmd)
	if err != nil {
		return err
	}
	amount, _ := cmd.Flags().GetUint64("amount")
	if err := a.store.Fund(cmd.Context(), acct, amount); err != nil {
		return err
	}
	a.logger.Info("account funded", zap.Stringer("account", acct), zap.Uint64("amount", amount))
	return printBalance(cmd, a, acct)
}

func runBalance(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	acct, err := accountFlags(cmd)
	if err != nil {
		return err
	}
	return printBalance(cmd, a, acct)
}

func printBalance(cmd *cobra.Command, a *app, acct ledger.Account) error {
	bal, err := a.store.Balance(cmd.Context(), acct)
	if err != nil {
		return err
	}
	supply, err := a.store.Supply(cmd.Context(), acct.Asset)
	if err != nil {
		return err
	}
	return writeJSON(cmd, map[string]string{
		"asset":   acct.Asset.String(),
		"owner":   acct.Owner.String(),
		"balance": a.amount(bal),
		"supply":  a.amount(supply),
	})
}
