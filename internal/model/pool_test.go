package model

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/gagliardetto/solana-go"
)

func testPool() PoolState {
	return PoolState{
		Seed:      42,
		AssetX:    solana.NewWallet().PublicKey(),
		AssetY:    solana.NewWallet().PublicKey(),
		FeeBps:    30,
		Precision: DefaultPrecision,
	}
}

func TestPoolStateValidate(t *testing.T) {
	pool := testPool()
	if err := pool.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	bad := pool
	bad.FeeBps = BasisPoints
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPool) {
		t.Fatalf("expected invalid pool for fee, got %v", err)
	}

	bad = pool
	bad.AssetY = bad.AssetX
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPool) {
		t.Fatalf("expected invalid pool for identical assets, got %v", err)
	}

	bad = pool
	bad.Precision = MaxPrecision + 1
	if err := bad.Validate(); !errors.Is(err, ErrInvalidPool) {
		t.Fatalf("expected invalid pool for precision, got %v", err)
	}
}

func TestSetLockedRequiresAuthority(t *testing.T) {
	pool := testPool()
	caller := solana.NewWallet().PublicKey()

	if err := pool.SetLocked(caller, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized without authority, got %v", err)
	}

	authority := solana.NewWallet().PublicKey()
	pool.Authority = &authority
	if err := pool.SetLocked(caller, true); !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected unauthorized for stranger, got %v", err)
	}
	if pool.Locked {
		t.Fatalf("pool should stay unlocked")
	}

	if err := pool.SetLocked(authority, true); err != nil {
		t.Fatalf("lock: %v", err)
	}
	if !pool.Locked {
		t.Fatalf("pool should be locked")
	}
}

func TestPoolStateJSONUsesBase58(t *testing.T) {
	pool := testPool()
	data, err := json.Marshal(pool)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if decoded["asset_x"] != pool.AssetX.String() {
		t.Fatalf("asset_x mismatch: %v", decoded["asset_x"])
	}
	if _, ok := decoded["authority"]; ok {
		t.Fatalf("authority should be omitted when absent")
	}
}

func TestParseDirection(t *testing.T) {
	if d, err := ParseDirection("x"); err != nil || d != XToY {
		t.Fatalf("x: %v %v", d, err)
	}
	if d, err := ParseDirection("y_to_x"); err != nil || d != YToX {
		t.Fatalf("y_to_x: %v %v", d, err)
	}
	if _, err := ParseDirection("z"); err == nil {
		t.Fatalf("expected error for unknown direction")
	}
}
