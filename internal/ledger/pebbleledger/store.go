// Package pebbleledger is a persistent, transactional ledger on pebble. Every
// Atomic call is one indexed batch committed with a synced write.
package pebbleledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/cockroachdb/pebble"
	"github.com/gagliardetto/solana-go"

	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
)

var (
	ErrClosed       = errors.New("ledger is closed")
	ErrPoolNotFound = errors.New("pool not found")
)

var (
	prefixBalance   = []byte("bal/")
	prefixSupply    = []byte("sup/")
	prefixAuthority = []byte("mint/")
	prefixPool      = []byte("pool/")
)

// Store implements ledger.Transactional. Writers are serialized; readers see
// the last committed batch.
type Store struct {
	mu   sync.Mutex
	db   *pebble.DB
	auth ledger.Authorizer
}

var _ ledger.Transactional = (*Store)(nil)

// Open opens or creates the ledger under dir.
func Open(dir string, program solana.PublicKey) (*Store, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, fmt.Errorf("open pebble %s: %w", dir, err)
	}
	return &Store{db: db, auth: ledger.Authorizer{Program: program}}, nil
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Atomic runs fn against a batch. The batch is committed only if fn succeeds.
func (s *Store) Atomic(ctx context.Context, fn func(tx ledger.Ledger) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return ErrClosed
	}

	batch := s.db.NewIndexedBatch()
	defer batch.Close()

	if err := fn(&txLedger{book: &batchBook{batch: batch}, auth: s.auth}); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := batch.Commit(pebble.Sync); err != nil {
		return fmt.Errorf("commit ledger batch: %w", err)
	}
	return nil
}

func (s *Store) update(ctx context.Context, fn func(book ledger.Book) error) error {
	return s.Atomic(ctx, func(tx ledger.Ledger) error {
		return fn(tx.(*txLedger).book)
	})
}

func (s *Store) Balance(_ context.Context, acct ledger.Account) (uint64, error) {
	db, err := s.reader()
	if err != nil {
		return 0, err
	}
	return readUint(db, balanceKey(acct))
}

func (s *Store) Supply(_ context.Context, asset solana.PublicKey) (uint64, error) {
	db, err := s.reader()
	if err != nil {
		return 0, err
	}
	return readUint(db, supplyKey(asset))
}

func (s *Store) Transfer(ctx context.Context, from, to ledger.Account, amount uint64, signer ledger.Signer) error {
	return s.update(ctx, func(book ledger.Book) error {
		return ledger.ApplyTransfer(book, s.auth, from, to, amount, signer)
	})
}

func (s *Store) Mint(ctx context.Context, to ledger.Account, amount uint64, signer ledger.Signer) error {
	return s.update(ctx, func(book ledger.Book) error {
		return ledger.ApplyMint(book, s.auth, to, amount, signer)
	})
}

func (s *Store) Burn(ctx context.Context, from ledger.Account, amount uint64, signer ledger.Signer) error {
	return s.update(ctx, func(book ledger.Book) error {
		return ledger.ApplyBurn(book, s.auth, from, amount, signer)
	})
}

// Fund issues amount of acct.Asset straight into acct. Assets with a mint
// authority are rejected with ErrUnauthorized.
func (s *Store) Fund(ctx context.Context, acct ledger.Account, amount uint64) error {
	return s.update(ctx, func(book ledger.Book) error {
		return ledger.ApplyFund(book, acct, amount)
	})
}

// SetMintAuthority registers who may mint asset.
func (s *Store) SetMintAuthority(ctx context.Context, asset, authority solana.PublicKey) error {
	return s.update(ctx, func(book ledger.Book) error {
		return book.(*batchBook).batch.Set(authorityKey(asset), authority.Bytes(), nil)
	})
}

// CreatePool stores the pool record keyed by its config address and makes the
// config address the mint authority of lpMint, in one commit.
func (s *Store) CreatePool(ctx context.Context, config, lpMint solana.PublicKey, pool model.PoolState) error {
	if err := pool.Validate(); err != nil {
		return err
	}
	raw, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	return s.update(ctx, func(book ledger.Book) error {
		b := book.(*batchBook)
		if _, closer, err := b.batch.Get(poolKey(config)); err == nil {
			closer.Close()
			return fmt.Errorf("%w: pool %s already exists", model.ErrInvalidPool, config)
		} else if !errors.Is(err, pebble.ErrNotFound) {
			return err
		}
		if err := b.batch.Set(poolKey(config), raw, nil); err != nil {
			return err
		}
		return b.batch.Set(authorityKey(lpMint), config.Bytes(), nil)
	})
}

// SavePool overwrites a pool record.
func (s *Store) SavePool(ctx context.Context, config solana.PublicKey, pool model.PoolState) error {
	raw, err := json.Marshal(pool)
	if err != nil {
		return fmt.Errorf("marshal pool: %w", err)
	}
	return s.update(ctx, func(book ledger.Book) error {
		return book.(*batchBook).batch.Set(poolKey(config), raw, nil)
	})
}

func (s *Store) LoadPool(_ context.Context, config solana.PublicKey) (model.PoolState, error) {
	var pool model.PoolState
	db, err := s.reader()
	if err != nil {
		return pool, err
	}
	val, closer, err := db.Get(poolKey(config))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return pool, fmt.Errorf("%w: %s", ErrPoolNotFound, config)
		}
		return pool, err
	}
	defer closer.Close()
	if err := json.Unmarshal(val, &pool); err != nil {
		return pool, fmt.Errorf("decode pool %s: %w", config, err)
	}
	return pool, nil
}

// ListPools returns every stored pool keyed by config address.
func (s *Store) ListPools(_ context.Context) (map[solana.PublicKey]model.PoolState, error) {
	db, err := s.reader()
	if err != nil {
		return nil, err
	}
	iter, err := db.NewIter(&pebble.IterOptions{
		LowerBound: prefixPool,
		UpperBound: prefixEnd(prefixPool),
	})
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	out := make(map[solana.PublicKey]model.PoolState)
	for iter.First(); iter.Valid(); iter.Next() {
		key := iter.Key()[len(prefixPool):]
		if len(key) != solana.PublicKeyLength {
			continue
		}
		var pool model.PoolState
		if err := json.Unmarshal(iter.Value(), &pool); err != nil {
			return nil, fmt.Errorf("decode pool: %w", err)
		}
		out[solana.PublicKeyFromBytes(key)] = pool
	}
	return out, iter.Error()
}

func (s *Store) reader() (*pebble.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil, ErrClosed
	}
	return s.db, nil
}

type txLedger struct {
	book *batchBook
	auth ledger.Authorizer
}

func (t *txLedger) Balance(_ context.Context, acct ledger.Account) (uint64, error) {
	return t.book.GetBalance(acct)
}

func (t *txLedger) Supply(_ context.Context, asset solana.PublicKey) (uint64, error) {
	return t.book.GetSupply(asset)
}

func (t *txLedger) Transfer(_ context.Context, from, to ledger.Account, amount uint64, signer ledger.Signer) error {
	return ledger.ApplyTransfer(t.book, t.auth, from, to, amount, signer)
}

func (t *txLedger) Mint(_ context.Context, to ledger.Account, amount uint64, signer ledger.Signer) error {
	return ledger.ApplyMint(t.book, t.auth, to, amount, signer)
}

func (t *txLedger) Burn(_ context.Context, from ledger.Account, amount uint64, signer ledger.Signer) error {
	return ledger.ApplyBurn(t.book, t.auth, from, amount, signer)
}

type batchBook struct {
	batch *pebble.Batch
}

func (b *batchBook) GetBalance(acct ledger.Account) (uint64, error) {
	return readUint(b.batch, balanceKey(acct))
}

func (b *batchBook) PutBalance(acct ledger.Account, amount uint64) error {
	return writeUint(b.batch, balanceKey(acct), amount)
}

func (b *batchBook) GetSupply(asset solana.PublicKey) (uint64, error) {
	return readUint(b.batch, supplyKey(asset))
}

func (b *batchBook) PutSupply(asset solana.PublicKey, amount uint64) error {
	return writeUint(b.batch, supplyKey(asset), amount)
}

func (b *batchBook) GetMintAuthority(asset solana.PublicKey) (solana.PublicKey, bool, error) {
	val, closer, err := b.batch.Get(authorityKey(asset))
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return solana.PublicKey{}, false, nil
		}
		return solana.PublicKey{}, false, err
	}
	defer closer.Close()
	if len(val) != solana.PublicKeyLength {
		return solana.PublicKey{}, false, fmt.Errorf("corrupt mint authority for %s", asset)
	}
	return solana.PublicKeyFromBytes(val), true, nil
}
