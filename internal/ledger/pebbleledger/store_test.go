package pebbleledger

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
)

func openTestStore(t *testing.T, program solana.PublicKey) *Store {
	t.Helper()
	store, err := Open(t.TempDir(), program)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestAtomicRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, solana.NewWallet().PublicKey())
	asset := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	from := ledger.Account{Asset: asset, Owner: alice}
	to := ledger.Account{Asset: asset, Owner: bob}

	if err := store.Fund(ctx, from, 100); err != nil {
		t.Fatalf("fund: %v", err)
	}

	err := store.Atomic(ctx, func(tx ledger.Ledger) error {
		if err := tx.Transfer(ctx, from, to, 70, ledger.UserSigner(alice)); err != nil {
			return err
		}
		// The batch sees its own write, so the second leg overdraws.
		if bal, _ := tx.Balance(ctx, from); bal != 30 {
			t.Fatalf("batch read mismatch: %d", bal)
		}
		return tx.Transfer(ctx, from, to, 70, ledger.UserSigner(alice))
	})
	if !errors.Is(err, ledger.ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}

	if bal, _ := store.Balance(ctx, from); bal != 100 {
		t.Fatalf("rolled back balance mismatch: %d", bal)
	}
	if bal, _ := store.Balance(ctx, to); bal != 0 {
		t.Fatalf("rolled back credit leaked: %d", bal)
	}
}

func TestAtomicCommits(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t, solana.NewWallet().PublicKey())
	asset := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()
	from := ledger.Account{Asset: asset, Owner: alice}
	to := ledger.Account{Asset: asset, Owner: bob}

	if err := store.Fund(ctx, from, 100); err != nil {
		t.Fatalf("fund: %v", err)
	}
	err := store.Atomic(ctx, func(tx ledger.Ledger) error {
		if err := tx.Transfer(ctx, from, to, 30, ledger.UserSigner(alice)); err != nil {
			return err
		}
		return tx.Burn(ctx, to, 10, ledger.UserSigner(bob))
	})
	if err != nil {
		t.Fatalf("atomic: %v", err)
	}
	if bal, _ := store.Balance(ctx, to); bal != 20 {
		t.Fatalf("balance mismatch: %d", bal)
	}
	if supply, _ := store.Supply(ctx, asset); supply != 90 {
		t.Fatalf("supply mismatch: %d", supply)
	}
}

func TestStorePersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	program := solana.NewWallet().PublicKey()
	acct := ledger.Account{Asset: solana.NewWallet().PublicKey(), Owner: solana.NewWallet().PublicKey()}

	store, err := Open(dir, program)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if err := store.Fund(ctx, acct, 42); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if _, err := store.Balance(ctx, acct); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected closed error, got %v", err)
	}

	reopened, err := Open(dir, program)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	if bal, _ := reopened.Balance(ctx, acct); bal != 42 {
		t.Fatalf("balance after reopen mismatch: %d", bal)
	}
}

func TestPoolRegistry(t *testing.T) {
	ctx := context.Background()
	program := solana.NewWallet().PublicKey()
	store := openTestStore(t, program)

	config, bump, err := solana.FindProgramAddress([][]byte{[]byte("cfg")}, program)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	lpMint := solana.NewWallet().PublicKey()
	pool := model.PoolState{
		Seed:       7,
		AssetX:     solana.NewWallet().PublicKey(),
		AssetY:     solana.NewWallet().PublicKey(),
		FeeBps:     30,
		Precision:  model.DefaultPrecision,
		ConfigBump: bump,
	}

	if _, err := store.LoadPool(ctx, config); !errors.Is(err, ErrPoolNotFound) {
		t.Fatalf("expected pool not found, got %v", err)
	}
	if err := store.CreatePool(ctx, config, lpMint, pool); err != nil {
		t.Fatalf("create pool: %v", err)
	}
	if err := store.CreatePool(ctx, config, lpMint, pool); !errors.Is(err, model.ErrInvalidPool) {
		t.Fatalf("expected duplicate pool rejection, got %v", err)
	}

	got, err := store.LoadPool(ctx, config)
	if err != nil {
		t.Fatalf("load pool: %v", err)
	}
	if got.Seed != 7 || got.FeeBps != 30 || !got.AssetX.Equals(pool.AssetX) {
		t.Fatalf("pool mismatch: %+v", got)
	}

	got.Locked = true
	if err := store.SavePool(ctx, config, got); err != nil {
		t.Fatalf("save pool: %v", err)
	}
	pools, err := store.ListPools(ctx)
	if err != nil {
		t.Fatalf("list pools: %v", err)
	}
	if len(pools) != 1 || !pools[config].Locked {
		t.Fatalf("listed pools mismatch: %+v", pools)
	}

	// The config address became the LP mint authority.
	signer := ledger.Signer{Key: config, Seeds: [][]byte{[]byte("cfg"), {bump}}}
	user := ledger.Account{Asset: lpMint, Owner: solana.NewWallet().PublicKey()}
	if err := store.Mint(ctx, user, 5, signer); err != nil {
		t.Fatalf("mint: %v", err)
	}
	if supply, _ := store.Supply(ctx, lpMint); supply != 5 {
		t.Fatalf("lp supply mismatch: %d", supply)
	}
}

func TestFundRefusesMintedAssets(t *testing.T) {
	ctx := context.Background()
	program := solana.NewWallet().PublicKey()
	store := openTestStore(t, program)

	config, bump, err := solana.FindProgramAddress([][]byte{[]byte("cfg")}, program)
	if err != nil {
		t.Fatalf("derive: %v", err)
	}
	lpMint := solana.NewWallet().PublicKey()
	pool := model.PoolState{
		Seed:       3,
		AssetX:     solana.NewWallet().PublicKey(),
		AssetY:     solana.NewWallet().PublicKey(),
		FeeBps:     30,
		Precision:  model.DefaultPrecision,
		ConfigBump: bump,
	}
	if err := store.CreatePool(ctx, config, lpMint, pool); err != nil {
		t.Fatalf("create pool: %v", err)
	}

	holder := ledger.Account{Asset: lpMint, Owner: solana.NewWallet().PublicKey()}
	if err := store.Fund(ctx, holder, 1_000_000); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("expected unauthorized funding of a minted asset, got %v", err)
	}
	if supply, _ := store.Supply(ctx, lpMint); supply != 0 {
		t.Fatalf("rejected funding changed supply: %d", supply)
	}
	if bal, _ := store.Balance(ctx, holder); bal != 0 {
		t.Fatalf("rejected funding changed balance: %d", bal)
	}

	plain := ledger.Account{Asset: pool.AssetX, Owner: holder.Owner}
	if err := store.Fund(ctx, plain, 10); err != nil {
		t.Fatalf("fund unminted asset: %v", err)
	}
}

func TestPrefixEnd(t *testing.T) {
	if got := string(prefixEnd([]byte("pool/"))); got != "pool0" {
		t.Fatalf("prefix end mismatch: %q", got)
	}
	if got := prefixEnd([]byte{0xff, 0xff}); got != nil {
		t.Fatalf("expected nil upper bound, got %x", got)
	}
}
