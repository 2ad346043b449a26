package pebbleledger

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/gagliardetto/solana-go"

	"vaultSwap/internal/ledger"
)

func balanceKey(acct ledger.Account) []byte {
	key := make([]byte, 0, len(prefixBalance)+2*solana.PublicKeyLength)
	key = append(key, prefixBalance...)
	key = append(key, acct.Asset[:]...)
	return append(key, acct.Owner[:]...)
}

func supplyKey(asset solana.PublicKey) []byte {
	return append(append([]byte{}, prefixSupply...), asset[:]...)
}

func authorityKey(asset solana.PublicKey) []byte {
	return append(append([]byte{}, prefixAuthority...), asset[:]...)
}

func poolKey(config solana.PublicKey) []byte {
	return append(append([]byte{}, prefixPool...), config[:]...)
}

// prefixEnd returns the smallest key greater than every key with prefix.
func prefixEnd(prefix []byte) []byte {
	end := append([]byte{}, prefix...)
	for i := len(end) - 1; i >= 0; i-- {
		end[i]++
		if end[i] != 0 {
			return end[:i+1]
		}
	}
	return nil
}

func readUint(r pebble.Reader, key []byte) (uint64, error) {
	val, closer, err := r.Get(key)
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return 0, nil
		}
		return 0, err
	}
	defer closer.Close()
	if len(val) != 8 {
		return 0, fmt.Errorf("corrupt value at %x: %d bytes", key, len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}

// writeUint stores amount, deleting the key at zero so empty accounts leave
// nothing behind.
func writeUint(b *pebble.Batch, key []byte, amount uint64) error {
	if amount == 0 {
		return b.Delete(key, nil)
	}
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], amount)
	return b.Set(key, buf[:], nil)
}
