// Package ledger defines the balance ledger the exchange engine moves value
// through, plus the rules every implementation shares.
package ledger

import (
	"context"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"vaultSwap/internal/model"
)

// Aliases so callers can match ledger failures without importing model.
var (
	ErrInsufficientBalance = model.ErrInsufficientBalance
	ErrUnauthorized        = model.ErrUnauthorized
	ErrOverflow            = model.ErrOverflow
)

// Account is a balance of one asset held by one owner.
type Account struct {
	Asset solana.PublicKey `json:"asset"`
	Owner solana.PublicKey `json:"owner"`
}

func (a Account) String() string {
	return fmt.Sprintf("%s/%s", a.Owner, a.Asset)
}

// Signer authorizes a debit. A caller signs with its own key; a program-derived
// owner signs by presenting the seeds that derive it.
type Signer struct {
	Key   solana.PublicKey
	Seeds [][]byte
}

// UserSigner returns the signer for an externally owned identity. The ledger
// trusts the caller to have authenticated key; it only checks that key owns
// the account and is not a program-derived address.
func UserSigner(key solana.PublicKey) Signer {
	return Signer{Key: key}
}

// Ledger moves value between accounts. Each call is atomic on its own.
type Ledger interface {
	Balance(ctx context.Context, acct Account) (uint64, error)
	Supply(ctx context.Context, asset solana.PublicKey) (uint64, error)
	Transfer(ctx context.Context, from, to Account, amount uint64, signer Signer) error
	Mint(ctx context.Context, to Account, amount uint64, signer Signer) error
	Burn(ctx context.Context, from Account, amount uint64, signer Signer) error
}

// Transactional is a ledger that can commit several calls as one unit. If fn
// returns an error nothing it did is persisted.
type Transactional interface {
	Ledger
	Atomic(ctx context.Context, fn func(tx Ledger) error) error
}

// Authorizer checks signers against account owners for one program identity.
type Authorizer struct {
	Program solana.PublicKey
}

// Authorize reports whether signer may debit an account owned by owner.
func (a Authorizer) Authorize(owner solana.PublicKey, signer Signer) error {
	if len(signer.Seeds) > 0 {
		derived, err := solana.CreateProgramAddress(signer.Seeds, a.Program)
		if err != nil {
			return fmt.Errorf("%w: derive signer: %v", ErrUnauthorized, err)
		}
		if !derived.Equals(owner) || !signer.Key.Equals(owner) {
			return fmt.Errorf("%w: seeds do not derive %s under program %s", ErrUnauthorized, owner, a.Program)
		}
		return nil
	}

	if !signer.Key.Equals(owner) {
		return fmt.Errorf("%w: %s cannot sign for %s", ErrUnauthorized, signer.Key, owner)
	}
	// Off-curve owners have no private key; only their seeds can sign.
	if !solana.IsOnCurve(owner[:]) {
		return fmt.Errorf("%w: %s is program-derived", ErrUnauthorized, owner)
	}
	return nil
}
