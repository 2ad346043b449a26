package custody

import (
	"context"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"

	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
)

func testPool(t *testing.T, d Deriver, seed uint64) (model.PoolState, solana.PublicKey) {
	t.Helper()
	pool := model.PoolState{
		Seed:      seed,
		AssetX:    solana.NewWallet().PublicKey(),
		AssetY:    solana.NewWallet().PublicKey(),
		Precision: model.DefaultPrecision,
	}
	config, err := d.Bootstrap(&pool)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}
	return pool, config
}

func TestBootstrapIsReproducible(t *testing.T) {
	d := NewDeriver(solana.NewWallet().PublicKey())
	pool, config := testPool(t, d, 42)

	again, bump, err := d.ConfigAddress(42)
	if err != nil {
		t.Fatalf("config address: %v", err)
	}
	if !again.Equals(config) || bump != pool.ConfigBump {
		t.Fatalf("config derivation not reproducible: %s/%d vs %s/%d", again, bump, config, pool.ConfigBump)
	}
	if solana.IsOnCurve(config[:]) {
		t.Fatalf("config address must be off curve")
	}

	addr, err := d.Address(pool)
	if err != nil {
		t.Fatalf("address: %v", err)
	}
	if !addr.Equals(config) {
		t.Fatalf("address mismatch: %s vs %s", addr, config)
	}

	lp, _, err := d.LPMint(config)
	if err != nil {
		t.Fatalf("lp mint: %v", err)
	}
	lpAgain, err := d.LPMintAddress(pool, config)
	if err != nil {
		t.Fatalf("lp mint address: %v", err)
	}
	if !lp.Equals(lpAgain) {
		t.Fatalf("lp mint mismatch: %s vs %s", lp, lpAgain)
	}

	other, _ := testPool(t, d, 43)
	otherAddr, _ := d.Address(other)
	if otherAddr.Equals(config) {
		t.Fatalf("distinct seeds produced the same config")
	}
}

func TestVaultCapabilityHonouredOnlyByTrustedProgram(t *testing.T) {
	ctx := context.Background()
	program := solana.NewWallet().PublicKey()
	d := NewDeriver(program)
	pool, config := testPool(t, d, 1)

	capability, err := d.SignAsVault(pool)
	if err != nil {
		t.Fatalf("sign as vault: %v", err)
	}
	if !capability.Address.Equals(config) {
		t.Fatalf("capability address mismatch")
	}

	vault := ledger.Account{Asset: pool.AssetX, Owner: config}
	user := ledger.Account{Asset: pool.AssetX, Owner: solana.NewWallet().PublicKey()}

	trusted := ledger.NewMemory(program)
	if err := trusted.Fund(ctx, vault, 10); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := trusted.Transfer(ctx, vault, user, 10, capability.Signer()); err != nil {
		t.Fatalf("vault transfer: %v", err)
	}

	// A ledger trusting another program re-derives a different owner.
	foreign := ledger.NewMemory(solana.NewWallet().PublicKey())
	if err := foreign.Fund(ctx, vault, 10); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := foreign.Transfer(ctx, vault, user, 10, capability.Signer()); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("expected unauthorized under foreign program, got %v", err)
	}

	// Seeds of another pool do not sign for this vault.
	other, _ := testPool(t, d, 2)
	otherCap, err := d.SignAsVault(other)
	if err != nil {
		t.Fatalf("sign as vault: %v", err)
	}
	if err := trusted.Fund(ctx, vault, 10); err != nil {
		t.Fatalf("fund: %v", err)
	}
	forged := otherCap.Signer()
	forged.Key = config
	if err := trusted.Transfer(ctx, vault, user, 10, forged); !errors.Is(err, ledger.ErrUnauthorized) {
		t.Fatalf("expected unauthorized for foreign seeds, got %v", err)
	}
}
