package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/gagliardetto/solana-go"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultSwap/internal/config"
	"vaultSwap/internal/custody"
	"vaultSwap/internal/engine"
	"vaultSwap/internal/ledger/pebbleledger"
	"vaultSwap/internal/model"
	"vaultSwap/internal/resolver"
	"vaultSwap/internal/sequencer"
	"vaultSwap/internal/storage"
	"vaultSwap/internal/storage/postgres"
)

type app struct {
	cfg      config.Config
	logger   *zap.Logger
	store    *pebbleledger.Store
	deriver  custody.Deriver
	engine   *engine.Engine
	seq      *sequencer.Sequencer
	journal  storage.Journal
	pg       *postgres.Store
	decimals int32
}

func openApp(cmd *cobra.Command) (*app, error) {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	store, err := pebbleledger.Open(cfg.DataDir, cfg.ProgramID)
	if err != nil {
		return nil, err
	}

	deriver := custody.NewDeriver(cfg.ProgramID)
	res := resolver.NewDerived(deriver)
	a := &app{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		deriver:  deriver,
		engine:   engine.New(store, res, deriver, logger),
		seq:      sequencer.New(),
		journal:  storage.Nop{},
	}
	decimals, _ := cmd.Flags().GetInt("decimals")
	a.decimals = int32(decimals)

	switch {
	case cfg.PGDSN != "":
		pg, err := postgres.NewStore(cmd.Context(), cfg.PGDSN)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := pg.EnsureSchema(cmd.Context()); err != nil {
			pg.Close()
			a.close()
			return nil, err
		}
		a.pg = pg
		a.journal = pg
	case cfg.Journal != "":
		a.journal = storage.NewJsonlJournal(cfg.Journal)
	}
	a.journal = storage.Retrying{Journal: a.journal, MaxRetries: cfg.MaxRetries, BaseDelay: cfg.RetryBackoff}

	logger.Debug("ledger open",
		zap.String("data_dir", cfg.DataDir),
		zap.String("program_id", cfg.ProgramID.String()),
		zap.String("pg_dsn", redactDSN(cfg.PGDSN)),
	)
	return a, nil
}

func (a *app) close() {
	if a.pg != nil {
		a.pg.Close()
	}
	if err := a.store.Close(); err != nil {
		a.logger.Warn("close ledger", zap.Error(err))
	}
	_ = a.logger.Sync()
}

// loadPool resolves a pool by seed.
func (a *app) loadPool(ctx context.Context, seed uint64) (solana.PublicKey, model.PoolState, error) {
	cfgAddr, _, err := a.deriver.ConfigAddress(seed)
	if err != nil {
		return solana.PublicKey{}, model.PoolState{}, err
	}
	pool, err := a.store.LoadPool(ctx, cfgAddr)
	if err != nil {
		return solana.PublicKey{}, model.PoolState{}, err
	}
	return cfgAddr, pool, nil
}

// serialize runs fn for the pool at seed under the per-pool sequencer, with
// the pool record read after the slot is held. A CLI process runs a single
// operation, so the slot only excludes anything when one app serves several
// callers; separate processes are kept apart by pebble's directory lock.
func (a *app) serialize(ctx context.Context, seed uint64, fn func(ctx context.Context, cfgAddr solana.PublicKey, pool model.PoolState) error) error {
	cfgAddr, _, err := a.deriver.ConfigAddress(seed)
	if err != nil {
		return err
	}
	if a.cfg.LockTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.LockTimeout)
		defer cancel()
	}
	return a.seq.Do(ctx, cfgAddr.String(), func(ctx context.Context) error {
		pool, err := a.store.LoadPool(ctx, cfgAddr)
		if err != nil {
			return err
		}
		return fn(ctx, cfgAddr, pool)
	})
}

// record journals a committed receipt. The ledger already holds the result,
// so a journal failure is logged rather than returned.
func (a *app) record(ctx context.Context, receipt model.Receipt) {
	if err := a.journal.PutReceipts(ctx, []model.Receipt{receipt}); err != nil {
		a.logger.Warn("journal receipt failed", zap.String("pool", receipt.Pool), zap.Error(err))
	}
}

func (a *app) mirrorPool(ctx context.Context, cfgAddr solana.PublicKey, pool model.PoolState) {
	if a.pg == nil {
		return
	}
	if err := a.pg.UpsertPools(ctx, []postgres.PoolRecord{{Config: cfgAddr.String(), State: pool}}); err != nil {
		a.logger.Warn("mirror pool failed", zap.String("pool", cfgAddr.String()), zap.Error(err))
	}
}

func (a *app) amount(v uint64) string {
	return formatAmount(v, a.decimals)
}

func formatAmount(v uint64, decimals int32) string {
	return decimal.NewFromBigInt(new(big.Int).SetUint64(v), -decimals).String()
}

func writeJSON(cmd *cobra.Command, value interface{}) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(value)
}

func parseKey(cmd *cobra.Command, name string) (solana.PublicKey, error) {
	raw, _ := cmd.Flags().GetString(name)
	if raw == "" {
		return solana.PublicKey{}, fmt.Errorf("--%s is required", name)
	}
	key, err := solana.PublicKeyFromBase58(raw)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("parse --%s: %w", name, err)
	}
	return key, nil
}

func redactDSN(dsn string) string {
	if dsn == "" {
		return dsn
	}
	return "***"
}
