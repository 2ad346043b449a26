package model

import (
	"fmt"

	"github.com/gagliardetto/solana-go"
)

const (
	// BasisPoints is the fee denominator.
	BasisPoints = 10_000
	// DefaultPrecision is the fixed-point precision used by curve math.
	DefaultPrecision uint8 = 6
	// MaxPrecision bounds Precision so 10^Precision fits in a uint64.
	MaxPrecision uint8 = 18
)

// PoolState is the configuration record of a trading pair. Reserves and share
// supply are not stored here; they are read from the ledger on every call.
type PoolState struct {
	Seed       uint64            `json:"seed"`
	AssetX     solana.PublicKey  `json:"asset_x"`
	AssetY     solana.PublicKey  `json:"asset_y"`
	FeeBps     uint16            `json:"fee_bps"`
	Authority  *solana.PublicKey `json:"authority,omitempty"`
	Locked     bool              `json:"locked"`
	Precision  uint8             `json:"precision"`
	ConfigBump uint8             `json:"config_bump"`
	LPBump     uint8             `json:"lp_bump"`
}

// Validate checks the static configuration of the pool.
func (p PoolState) Validate() error {
	if p.FeeBps >= BasisPoints {
		return fmt.Errorf("%w: fee %d bps must be below %d", ErrInvalidPool, p.FeeBps, BasisPoints)
	}
	if p.AssetX.IsZero() || p.AssetY.IsZero() {
		return fmt.Errorf("%w: asset ids are required", ErrInvalidPool)
	}
	if p.AssetX.Equals(p.AssetY) {
		return fmt.Errorf("%w: assets must differ", ErrInvalidPool)
	}
	if p.Precision > MaxPrecision {
		return fmt.Errorf("%w: precision %d exceeds %d", ErrInvalidPool, p.Precision, MaxPrecision)
	}
	return nil
}

// SetLocked toggles the swap gate. Only the configured authority may do so;
// a pool without an authority is immutable.
func (p *PoolState) SetLocked(caller solana.PublicKey, locked bool) error {
	if p.Authority == nil {
		return fmt.Errorf("%w: pool %d has no authority", ErrUnauthorized, p.Seed)
	}
	if !p.Authority.Equals(caller) {
		return fmt.Errorf("%w: %s is not the pool authority", ErrUnauthorized, caller)
	}
	p.Locked = locked
	return nil
}

// Direction selects which asset a swap takes in.
type Direction int

const (
	// XToY trades asset X in for asset Y out.
	XToY Direction = iota
	// YToX trades asset Y in for asset X out.
	YToX
)

func (d Direction) String() string {
	switch d {
	case XToY:
		return "x_to_y"
	case YToX:
		return "y_to_x"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection accepts "x" / "x_to_y" or "y" / "y_to_x".
func ParseDirection(input string) (Direction, error) {
	switch input {
	case "x", "x_to_y", "X":
		return XToY, nil
	case "y", "y_to_x", "Y":
		return YToX, nil
	default:
		return 0, fmt.Errorf("invalid direction: %s", input)
	}
}
