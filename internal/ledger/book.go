package ledger

import (
	"fmt"

	gethmath "github.com/ethereum/go-ethereum/common/math"
	"github.com/gagliardetto/solana-go"
)

// Book is the raw state a ledger implementation applies calls against.
// Implementations provide storage only; the rules live in the Apply functions.
type Book interface {
	GetBalance(acct Account) (uint64, error)
	PutBalance(acct Account, amount uint64) error
	GetSupply(asset solana.PublicKey) (uint64, error)
	PutSupply(asset solana.PublicKey, amount uint64) error
	GetMintAuthority(asset solana.PublicKey) (solana.PublicKey, bool, error)
}

// ApplyTransfer debits from and credits to after every check has passed, so a
// rejected call leaves the book untouched.
func ApplyTransfer(book Book, auth Authorizer, from, to Account, amount uint64, signer Signer) error {
	if !from.Asset.Equals(to.Asset) {
		return fmt.Errorf("transfer asset mismatch: %s != %s", from.Asset, to.Asset)
	}
	if err := auth.Authorize(from.Owner, signer); err != nil {
		return err
	}

	fromBal, err := book.GetBalance(from)
	if err != nil {
		return err
	}
	if fromBal < amount {
		return fmt.Errorf("%w: %s holds %d, needs %d", ErrInsufficientBalance, from, fromBal, amount)
	}
	if from == to || amount == 0 {
		return nil
	}

	toBal, err := book.GetBalance(to)
	if err != nil {
		return err
	}
	credited, overflow := gethmath.SafeAdd(toBal, amount)
	if overflow {
		return fmt.Errorf("%w: credit %s", ErrOverflow, to)
	}

	if err := book.PutBalance(from, fromBal-amount); err != nil {
		return err
	}
	return book.PutBalance(to, credited)
}

// ApplyMint creates amount of to.Asset. The signer must be the asset's
// registered mint authority.
func ApplyMint(book Book, auth Authorizer, to Account, amount uint64, signer Signer) error {
	authority, ok, err := book.GetMintAuthority(to.Asset)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: asset %s has no mint authority", ErrUnauthorized, to.Asset)
	}
	if err := auth.Authorize(authority, signer); err != nil {
		return err
	}
	return credit(book, to, amount)
}

// ApplyFund issues amount of to.Asset with no signer. It backs the faucet of
// local ledgers and refuses assets that have a mint authority, so pool shares
// can only be created by ApplyMint.
func ApplyFund(book Book, to Account, amount uint64) error {
	authority, ok, err := book.GetMintAuthority(to.Asset)
	if err != nil {
		return err
	}
	if ok {
		return fmt.Errorf("%w: asset %s is minted by %s", ErrUnauthorized, to.Asset, authority)
	}
	return credit(book, to, amount)
}

// ApplyBurn destroys amount from the account, signed by its owner.
func ApplyBurn(book Book, auth Authorizer, from Account, amount uint64, signer Signer) error {
	if err := auth.Authorize(from.Owner, signer); err != nil {
		return err
	}

	bal, err := book.GetBalance(from)
	if err != nil {
		return err
	}
	if bal < amount {
		return fmt.Errorf("%w: %s holds %d, burning %d", ErrInsufficientBalance, from, bal, amount)
	}
	supply, err := book.GetSupply(from.Asset)
	if err != nil {
		return err
	}
	if supply < amount {
		return fmt.Errorf("%w: supply of %s is %d, burning %d", ErrInsufficientBalance, from.Asset, supply, amount)
	}

	if err := book.PutBalance(from, bal-amount); err != nil {
		return err
	}
	return book.PutSupply(from.Asset, supply-amount)
}

// credit adds newly issued units to an account and its asset's supply.
func credit(book Book, to Account, amount uint64) error {
	bal, err := book.GetBalance(to)
	if err != nil {
		return err
	}
	supply, err := book.GetSupply(to.Asset)
	if err != nil {
		return err
	}
	newBal, overflow := gethmath.SafeAdd(bal, amount)
	if overflow {
		return fmt.Errorf("%w: credit %s", ErrOverflow, to)
	}
	newSupply, overflow := gethmath.SafeAdd(supply, amount)
	if overflow {
		return fmt.Errorf("%w: supply of %s", ErrOverflow, to.Asset)
	}

	if err := book.PutBalance(to, newBal); err != nil {
		return err
	}
	return book.PutSupply(to.Asset, newSupply)
}
