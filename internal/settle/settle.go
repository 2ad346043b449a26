// Package settle applies the ledger legs of one operation all-or-nothing.
// Transactional ledgers commit every leg in one unit; other ledgers get the
// legs applied in order and, on failure, the applied legs reversed.
package settle

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"vaultSwap/internal/ledger"
)

// Kind is the ledger call a leg makes.
type Kind int

const (
	Transfer Kind = iota
	Mint
	Burn
)

func (k Kind) String() string {
	switch k {
	case Transfer:
		return "transfer"
	case Mint:
		return "mint"
	case Burn:
		return "burn"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Leg is one ledger call. Undo signs the reversal: the owner of To for a
// transfer or mint, the mint authority for a burn.
type Leg struct {
	Kind   Kind
	From   ledger.Account
	To     ledger.Account
	Amount uint64
	Signer ledger.Signer
	Undo   ledger.Signer
}

// Plan reads the state it needs from view and returns the legs to apply. It
// runs inside the transaction when the ledger supports one.
type Plan func(ctx context.Context, view ledger.Ledger) ([]Leg, error)

// Run plans and applies one operation.
func Run(ctx context.Context, l ledger.Ledger, plan Plan, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}

	if tx, ok := l.(ledger.Transactional); ok {
		return tx.Atomic(ctx, func(view ledger.Ledger) error {
			legs, err := plan(ctx, view)
			if err != nil {
				return err
			}
			for i, leg := range legs {
				if err := apply(ctx, view, leg); err != nil {
					return fmt.Errorf("leg %d %s: %w", i, leg.Kind, err)
				}
			}
			return nil
		})
	}

	legs, err := plan(ctx, l)
	if err != nil {
		return err
	}
	for i, leg := range legs {
		err := apply(ctx, l, leg)
		if err == nil {
			continue
		}
		err = fmt.Errorf("leg %d %s: %w", i, leg.Kind, err)
		if undoErr := compensate(context.WithoutCancel(ctx), l, legs[:i]); undoErr != nil {
			logger.Error("compensation failed",
				zap.Int("failed_leg", i),
				zap.Error(err),
				zap.NamedError("undo_error", undoErr),
			)
			return errors.Join(err, undoErr)
		}
		return err
	}
	return nil
}

func apply(ctx context.Context, l ledger.Ledger, leg Leg) error {
	switch leg.Kind {
	case Transfer:
		return l.Transfer(ctx, leg.From, leg.To, leg.Amount, leg.Signer)
	case Mint:
		return l.Mint(ctx, leg.To, leg.Amount, leg.Signer)
	case Burn:
		return l.Burn(ctx, leg.From, leg.Amount, leg.Signer)
	default:
		return fmt.Errorf("unknown leg kind %s", leg.Kind)
	}
}

// compensate reverses applied legs, last first, and keeps going past
// failures so as much as possible is restored.
func compensate(ctx context.Context, l ledger.Ledger, applied []Leg) error {
	var errs []error
	for i := len(applied) - 1; i >= 0; i-- {
		leg := applied[i]
		var err error
		switch leg.Kind {
		case Transfer:
			err = l.Transfer(ctx, leg.To, leg.From, leg.Amount, leg.Undo)
		case Mint:
			err = l.Burn(ctx, leg.To, leg.Amount, leg.Undo)
		case Burn:
			err = l.Mint(ctx, leg.From, leg.Amount, leg.Undo)
		}
		if err != nil {
			errs = append(errs, fmt.Errorf("undo leg %d %s: %w", i, leg.Kind, err))
		}
	}
	if len(errs) == 0 {
		return nil
	}
	return fmt.Errorf("compensate: %w", errors.Join(errs...))
}
