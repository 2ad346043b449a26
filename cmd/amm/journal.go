package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"vaultSwap/internal/storage"
)

func newJournalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Print journaled receipts",
		Long:  "Print receipts from the JSONL journal, or the receipt count of a pool when Postgres is configured.",
		RunE:  runJournal,
	}
	cmd.Flags().Int64("seed", -1, "only receipts of this pool seed")
	return cmd
}

func runJournal(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	pool := ""
	if seed, _ := cmd.Flags().GetInt64("seed"); seed >= 0 {
		cfgAddr, _, err := a.deriver.ConfigAddress(uint64(seed))
		if err != nil {
			return err
		}
		pool = cfgAddr.String()
	}

	if a.pg != nil {
		if pool == "" {
			return fmt.Errorf("--seed is required with a Postgres journal")
		}
		n, err := a.pg.CountReceipts(cmd.Context(), pool)
		if err != nil {
			return err
		}
		return writeJSON(cmd, map[string]interface{}{"pool": pool, "receipts": n})
	}
	if a.cfg.Journal == "" {
		return fmt.Errorf("journal path is required")
	}

	receipts, err := storage.NewJsonlJournal(a.cfg.Journal).ReadReceipts(pool)
	if err != nil {
		return err
	}
	return writeJSON(cmd, receipts)
}
