package main

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/gagliardetto/solana-go"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"vaultSwap/internal/model"
)

func newPoolCmd() *cobra.Command {
	poolCmd := &cobra.Command{
		Use:   "pool",
		Short: "Create and inspect pools",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Register a new pool",
		RunE:  runPoolInit,
	}
	initCmd.Flags().Uint64("seed", 0, "pool seed")
	initCmd.Flags().String("asset-x", "", "asset X id (base58)")
	initCmd.Flags().String("asset-y", "", "asset Y id (base58)")
	initCmd.Flags().Uint16("fee", 30, "swap fee in basis points")
	initCmd.Flags().String("authority", "", "identity allowed to lock the pool (empty means never)")
	poolCmd.AddCommand(initCmd)

	for _, locked := range []bool{true, false} {
		use, short := "unlock", "Re-enable swaps"
		if locked {
			use, short = "lock", "Disable swaps"
		}
		locked := locked
		cmd := &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runPoolSetLocked(cmd, locked)
			},
		}
		cmd.Flags().Uint64("seed", 0, "pool seed")
		cmd.Flags().String("caller", "", "pool authority (base58)")
		poolCmd.AddCommand(cmd)
	}

	showCmd := &cobra.Command{
		Use:   "show",
		Short: "Show a pool with its live reserves",
		RunE:  runPoolShow,
	}
	showCmd.Flags().Uint64("seed", 0, "pool seed")
	poolCmd.AddCommand(showCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List registered pools",
		RunE:  runPoolList,
	}
	poolCmd.AddCommand(listCmd)

	return poolCmd
}

func runPoolInit(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	assetX, err := parseKey(cmd, "asset-x")
	if err != nil {
		return err
	}
	assetY, err := parseKey(cmd, "asset-y")
	if err != nil {
		return err
	}
	seed, _ := cmd.Flags().GetUint64("seed")
	fee, _ := cmd.Flags().GetUint16("fee")

	pool := model.PoolState{
		Seed:      seed,
		AssetX:    assetX,
		AssetY:    assetY,
		FeeBps:    fee,
		Precision: a.cfg.Precision,
	}
	if raw, _ := cmd.Flags().GetString("authority"); raw != "" {
		authority, err := parseKey(cmd, "authority")
		if err != nil {
			return err
		}
		pool.Authority = &authority
	}

	cfgAddr, err := a.deriver.Bootstrap(&pool)
	if err != nil {
		return err
	}
	lpMint, err := a.deriver.LPMintAddress(pool, cfgAddr)
	if err != nil {
		return err
	}
	if err := a.store.CreatePool(cmd.Context(), cfgAddr, lpMint, pool); err != nil {
		return fmt.Errorf("create pool: %w", err)
	}
	a.mirrorPool(cmd.Context(), cfgAddr, pool)

	a.logger.Info("pool created",
		zap.Uint64("seed", seed),
		zap.String("pool", cfgAddr.String()),
		zap.String("lp_mint", lpMint.String()),
		zap.Uint16("fee_bps", fee),
	)
	return writeJSON(cmd, poolView{Config: cfgAddr.String(), LPMint: lpMint.String(), State: pool})
}

func runPoolSetLocked(cmd *cobra.Command, locked bool) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	caller, err := parseKey(cmd, "caller")
	if err != nil {
		return err
	}
	seed, _ := cmd.Flags().GetUint64("seed")

	var updated model.PoolState
	err = a.serialize(cmd.Context(), seed, func(ctx context.Context, cfgAddr solana.PublicKey, pool model.PoolState) error {
		if err := pool.SetLocked(caller, locked); err != nil {
			return err
		}
		if err := a.store.SavePool(ctx, cfgAddr, pool); err != nil {
			return err
		}
		a.mirrorPool(ctx, cfgAddr, pool)
		updated = pool
		return nil
	})
	if err != nil {
		return err
	}
	a.logger.Info("pool lock changed", zap.Uint64("seed", seed), zap.Bool("locked", locked))
	return writeJSON(cmd, updated)
}

type poolView struct {
	Config    string          `json:"config"`
	LPMint    string          `json:"lp_mint"`
	State     model.PoolState `json:"state"`
	ReserveX  string          `json:"reserve_x,omitempty"`
	ReserveY  string          `json:"reserve_y,omitempty"`
	Supply    string          `json:"lp_supply,omitempty"`
	SpotPrice string          `json:"spot_price,omitempty"`
}

func (a *app) describe(ctx context.Context, cfgAddr solana.PublicKey, pool model.PoolState) (poolView, error) {
	view := poolView{Config: cfgAddr.String(), State: pool}
	lpMint, err := a.deriver.LPMintAddress(pool, cfgAddr)
	if err != nil {
		return view, err
	}
	view.LPMint = lpMint.String()

	reserves, err := a.engine.Reserves(ctx, pool)
	if err != nil {
		return view, err
	}
	view.ReserveX = a.amount(reserves.X)
	view.ReserveY = a.amount(reserves.Y)
	view.Supply = a.amount(reserves.Supply)

	price, err := a.engine.SpotPrice(ctx, pool)
	switch {
	case err == nil:
		view.SpotPrice = formatAmount(price, int32(pool.Precision))
	case errors.Is(err, model.ErrInvalidAmount):
		// Empty pools have no price.
	default:
		return view, err
	}
	return view, nil
}

func runPoolShow(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	seed, _ := cmd.Flags().GetUint64("seed")
	cfgAddr, pool, err := a.loadPool(cmd.Context(), seed)
	if err != nil {
		return err
	}
	view, err := a.describe(cmd.Context(), cfgAddr, pool)
	if err != nil {
		return err
	}
	return writeJSON(cmd, view)
}

func runPoolList(cmd *cobra.Command, _ []string) error {
	a, err := openApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	pools, err := a.store.ListPools(cmd.Context())
	if err != nil {
		return err
	}
	views := make([]poolView, 0, len(pools))
	for cfgAddr, pool := range pools {
		view, err := a.describe(cmd.Context(), cfgAddr, pool)
		if err != nil {
			return err
		}
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool { return views[i].State.Seed < views[j].State.Seed })
	return writeJSON(cmd, views)
}
