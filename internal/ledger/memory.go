package ledger

import (
	"context"
	"sync"

	"github.com/gagliardetto/solana-go"
)

// Memory is an in-process ledger. Every call is atomic on its own but it does
// not implement Transactional, so multi-leg operations against it rely on
// compensation.
type Memory struct {
	mu   sync.Mutex
	auth Authorizer
	book *memBook
}

// NewMemory returns an empty ledger that honours program-derived signers of program.
func NewMemory(program solana.PublicKey) *Memory {
	return &Memory{
		auth: Authorizer{Program: program},
		book: &memBook{
			balances:  make(map[Account]uint64),
			supply:    make(map[solana.PublicKey]uint64),
			authority: make(map[solana.PublicKey]solana.PublicKey),
		},
	}
}

func (m *Memory) Balance(_ context.Context, acct Account) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.GetBalance(acct)
}

func (m *Memory) Supply(_ context.Context, asset solana.PublicKey) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.book.GetSupply(asset)
}

func (m *Memory) Transfer(_ context.Context, from, to Account, amount uint64, signer Signer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ApplyTransfer(m.book, m.auth, from, to, amount, signer)
}

func (m *Memory) Mint(_ context.Context, to Account, amount uint64, signer Signer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ApplyMint(m.book, m.auth, to, amount, signer)
}

func (m *Memory) Burn(_ context.Context, from Account, amount uint64, signer Signer) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ApplyBurn(m.book, m.auth, from, amount, signer)
}

// Fund issues amount of acct.Asset straight into acct. Assets with a mint
// authority are rejected with ErrUnauthorized.
func (m *Memory) Fund(_ context.Context, acct Account, amount uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return ApplyFund(m.book, acct, amount)
}

// SetMintAuthority registers who may mint asset.
func (m *Memory) SetMintAuthority(_ context.Context, asset, authority solana.PublicKey) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.book.authority[asset] = authority
	return nil
}

type memBook struct {
	balances  map[Account]uint64
	supply    map[solana.PublicKey]uint64
	authority map[solana.PublicKey]solana.PublicKey
}

func (b *memBook) GetBalance(acct Account) (uint64, error) {
	return b.balances[acct], nil
}

func (b *memBook) PutBalance(acct Account, amount uint64) error {
	if amount == 0 {
		delete(b.balances, acct)
		return nil
	}
	b.balances[acct] = amount
	return nil
}

func (b *memBook) GetSupply(asset solana.PublicKey) (uint64, error) {
	return b.supply[asset], nil
}

func (b *memBook) PutSupply(asset solana.PublicKey, amount uint64) error {
	if amount == 0 {
		delete(b.supply, asset)
		return nil
	}
	b.supply[asset] = amount
	return nil
}

func (b *memBook) GetMintAuthority(asset solana.PublicKey) (solana.PublicKey, bool, error) {
	authority, ok := b.authority[asset]
	return authority, ok, nil
}
