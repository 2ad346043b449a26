package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "amm",
		Short:        "Constant-product exchange over a local ledger",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "config file path")
	flags.String("program-id", "", "program id vault signers derive under")
	flags.String("data-dir", "./data/ledger", "ledger directory")
	flags.String("journal", "./data/receipts.jsonl", "receipt journal JSONL path (empty disables)")
	flags.String("pg-dsn", "", "Postgres DSN; mirrors pools and receipts when set")
	flags.Int("precision", 6, "fixed-point precision for new pools and spot prices")
	flags.Int("decimals", 0, "display decimals for amounts")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(newPoolCmd())
	root.AddCommand(newFundCmd())
	root.AddCommand(newBalanceCmd())
	root.AddCommand(newQuoteCmd())
	root.AddCommand(newSwapCmd())
	root.AddCommand(newDepositCmd())
	root.AddCommand(newWithdrawCmd())
	root.AddCommand(newJournalCmd())
	return root
}

func newLogger(level string) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Level = zap.NewAtomicLevel()
	if err := cfg.Level.UnmarshalText([]byte(level)); err != nil {
		return nil, err
	}

	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	return cfg.Build()
}
