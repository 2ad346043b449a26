package ledger

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func derivedSigner(t *testing.T, program solana.PublicKey, tag string) Signer {
	t.Helper()
	seeds := [][]byte{[]byte(tag)}
	addr, bump, err := solana.FindProgramAddress(seeds, program)
	if err != nil {
		t.Fatalf("find program address: %v", err)
	}
	return Signer{Key: addr, Seeds: append(seeds, []byte{bump})}
}

func TestMemoryTransfer(t *testing.T) {
	ctx := context.Background()
	program := solana.NewWallet().PublicKey()
	asset := solana.NewWallet().PublicKey()
	alice := solana.NewWallet().PublicKey()
	bob := solana.NewWallet().PublicKey()

	l := NewMemory(program)
	from := Account{Asset: asset, Owner: alice}
	to := Account{Asset: asset, Owner: bob}
	if err := l.Fund(ctx, from, 100); err != nil {
		t.Fatalf("fund: %v", err)
	}

	if err := l.Transfer(ctx, from, to, 40, UserSigner(alice)); err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if bal, _ := l.Balance(ctx, from); bal != 60 {
		t.Fatalf("alice balance mismatch: %d", bal)
	}
	if bal, _ := l.Balance(ctx, to); bal != 40 {
		t.Fatalf("bob balance mismatch: %d", bal)
	}
	if supply, _ := l.Supply(ctx, asset); supply != 100 {
		t.Fatalf("supply mismatch: %d", supply)
	}

	if err := l.Transfer(ctx, from, to, 61, UserSigner(alice)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := l.Transfer(ctx, from, to, 1, UserSigner(bob)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized, got %v", err)
	}
	if bal, _ := l.Balance(ctx, from); bal != 60 {
		t.Fatalf("rejected transfers must not move funds: %d", bal)
	}
}

func TestMemoryTransferSelfAndMismatch(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(solana.NewWallet().PublicKey())
	alice := solana.NewWallet().PublicKey()
	acct := Account{Asset: solana.NewWallet().PublicKey(), Owner: alice}
	other := Account{Asset: solana.NewWallet().PublicKey(), Owner: alice}
	if err := l.Fund(ctx, acct, 10); err != nil {
		t.Fatalf("fund: %v", err)
	}

	if err := l.Transfer(ctx, acct, acct, 10, UserSigner(alice)); err != nil {
		t.Fatalf("self transfer: %v", err)
	}
	if bal, _ := l.Balance(ctx, acct); bal != 10 {
		t.Fatalf("self transfer changed balance: %d", bal)
	}
	if err := l.Transfer(ctx, acct, other, 1, UserSigner(alice)); err == nil {
		t.Fatalf("expected asset mismatch error")
	}
}

func TestMemoryCreditOverflow(t *testing.T) {
	ctx := context.Background()
	l := NewMemory(solana.NewWallet().PublicKey())
	acct := Account{Asset: solana.NewWallet().PublicKey(), Owner: solana.NewWallet().PublicKey()}
	if err := l.Fund(ctx, acct, math.MaxUint64); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := l.Fund(ctx, acct, 1); !errors.Is(err, ErrOverflow) {
		t.Fatalf("expected overflow, got %v", err)
	}
}

func TestMemoryProgramDerivedSigner(t *testing.T) {
	ctx := context.Background()
	program := solana.NewWallet().PublicKey()
	asset := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	vault := derivedSigner(t, program, "vault")

	l := NewMemory(program)
	vaultAcct := Account{Asset: asset, Owner: vault.Key}
	userAcct := Account{Asset: asset, Owner: user}
	if err := l.Fund(ctx, vaultAcct, 50); err != nil {
		t.Fatalf("fund: %v", err)
	}

	// Claiming the vault key without seeds is rejected.
	if err := l.Transfer(ctx, vaultAcct, userAcct, 10, UserSigner(vault.Key)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for bare key, got %v", err)
	}

	// The same seeds under another program do not derive the vault.
	foreign := NewMemory(solana.NewWallet().PublicKey())
	if err := foreign.Fund(ctx, vaultAcct, 50); err != nil {
		t.Fatalf("fund: %v", err)
	}
	if err := foreign.Transfer(ctx, vaultAcct, userAcct, 10, vault); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized under foreign program, got %v", err)
	}

	if err := l.Transfer(ctx, vaultAcct, userAcct, 10, vault); err != nil {
		t.Fatalf("vault transfer: %v", err)
	}
	if bal, _ := l.Balance(ctx, userAcct); bal != 10 {
		t.Fatalf("user balance mismatch: %d", bal)
	}
}

func TestMemoryMintAndBurn(t *testing.T) {
	ctx := context.Background()
	program := solana.NewWallet().PublicKey()
	lp := solana.NewWallet().PublicKey()
	user := solana.NewWallet().PublicKey()
	minter := derivedSigner(t, program, "config")

	l := NewMemory(program)
	userLP := Account{Asset: lp, Owner: user}

	if err := l.Mint(ctx, userLP, 10, minter); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized without authority, got %v", err)
	}
	if err := l.SetMintAuthority(ctx, lp, minter.Key); err != nil {
		t.Fatalf("set authority: %v", err)
	}
	if err := l.Mint(ctx, userLP, 10, UserSigner(user)); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for user mint, got %v", err)
	}
	if err := l.Mint(ctx, userLP, 10, minter); err != nil {
		t.Fatalf("mint: %v", err)
	}

	if err := l.Burn(ctx, userLP, 11, UserSigner(user)); !errors.Is(err, ErrInsufficientBalance) {
		t.Fatalf("expected insufficient balance, got %v", err)
	}
	if err := l.Burn(ctx, userLP, 4, UserSigner(user)); err != nil {
		t.Fatalf("burn: %v", err)
	}
	if supply, _ := l.Supply(ctx, lp); supply != 6 {
		t.Fatalf("supply mismatch: %d", supply)
	}
	if bal, _ := l.Balance(ctx, userLP); bal != 6 {
		t.Fatalf("balance mismatch: %d", bal)
	}
}

func TestMemoryFundRefusesMintedAssets(t *testing.T) {
	ctx := context.Background()
	program := solana.NewWallet().PublicKey()
	lp := solana.NewWallet().PublicKey()
	minter := derivedSigner(t, program, "config")
	holder := Account{Asset: lp, Owner: solana.NewWallet().PublicKey()}

	l := NewMemory(program)
	if err := l.SetMintAuthority(ctx, lp, minter.Key); err != nil {
		t.Fatalf("set authority: %v", err)
	}
	if err := l.Fund(ctx, holder, 1_000_000); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized funding of a minted asset, got %v", err)
	}
	if supply, _ := l.Supply(ctx, lp); supply != 0 {
		t.Fatalf("rejected funding changed supply: %d", supply)
	}
	if err := l.Mint(ctx, holder, 5, minter); err != nil {
		t.Fatalf("mint through authority: %v", err)
	}
}
