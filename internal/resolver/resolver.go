// Package resolver maps a pool and a user to the ledger accounts an operation
// touches. The engine trusts its answer.
package resolver

import (
	"github.com/gagliardetto/solana-go"

	"vaultSwap/internal/custody"
	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
)

// Accounts are the resolved identities of one operation.
type Accounts struct {
	Config solana.PublicKey
	LPMint solana.PublicKey
	VaultX ledger.Account
	VaultY ledger.Account
	UserX  ledger.Account
	UserY  ledger.Account
	UserLP ledger.Account
}

// Resolver resolves accounts for a pool and user.
type Resolver interface {
	Resolve(pool model.PoolState, user solana.PublicKey) (Accounts, error)
}

// Derived resolves vaults as the pool config's holdings and user accounts as
// the user's holdings of each asset.
type Derived struct {
	deriver custody.Deriver
}

var _ Resolver = Derived{}

func NewDerived(deriver custody.Deriver) Derived {
	return Derived{deriver: deriver}
}

func (r Derived) Resolve(pool model.PoolState, user solana.PublicKey) (Accounts, error) {
	config, err := r.deriver.Address(pool)
	if err != nil {
		return Accounts{}, err
	}
	lpMint, err := r.deriver.LPMintAddress(pool, config)
	if err != nil {
		return Accounts{}, err
	}
	return Accounts{
		Config: config,
		LPMint: lpMint,
		VaultX: ledger.Account{Asset: pool.AssetX, Owner: config},
		VaultY: ledger.Account{Asset: pool.AssetY, Owner: config},
		UserX:  ledger.Account{Asset: pool.AssetX, Owner: user},
		UserY:  ledger.Account{Asset: pool.AssetY, Owner: user},
		UserLP: ledger.Account{Asset: lpMint, Owner: user},
	}, nil
}
