// Package custody derives the program-owned identity that holds a pool's
// vaults and signs for them. No secret is stored anywhere: the capability is
// the set of seeds, and the ledger accepts it only if the seeds re-derive the
// vault owner under the program id it trusts.
package custody

import (
	"encoding/binary"
	"fmt"

	"github.com/gagliardetto/solana-go"

	"vaultSwap/internal/ledger"
	"vaultSwap/internal/model"
)

const (
	ConfigSeed = "config"
	LPSeed     = "lp"
)

// Capability is a one-operation right to debit the vaults of a pool.
type Capability struct {
	Address solana.PublicKey
	Seeds   [][]byte
}

// Signer presents the capability to a ledger.
func (c Capability) Signer() ledger.Signer {
	return ledger.Signer{Key: c.Address, Seeds: c.Seeds}
}

// Authority produces vault signing capabilities.
type Authority interface {
	SignAsVault(pool model.PoolState) (Capability, error)
}

// Deriver derives pool identities under one program id.
type Deriver struct {
	program solana.PublicKey
}

var _ Authority = Deriver{}

func NewDeriver(program solana.PublicKey) Deriver {
	return Deriver{program: program}
}

func (d Deriver) Program() solana.PublicKey {
	return d.program
}

func seedBytes(seed uint64) []byte {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], seed)
	return buf[:]
}

func configSeeds(seed uint64) [][]byte {
	return [][]byte{[]byte(ConfigSeed), seedBytes(seed)}
}

// ConfigAddress finds the canonical config address and bump for seed.
func (d Deriver) ConfigAddress(seed uint64) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress(configSeeds(seed), d.program)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive config for seed %d: %w", seed, err)
	}
	return addr, bump, nil
}

// LPMint finds the share token id of the pool at config.
func (d Deriver) LPMint(config solana.PublicKey) (solana.PublicKey, uint8, error) {
	addr, bump, err := solana.FindProgramAddress([][]byte{[]byte(LPSeed), config.Bytes()}, d.program)
	if err != nil {
		return solana.PublicKey{}, 0, fmt.Errorf("derive lp mint for %s: %w", config, err)
	}
	return addr, bump, nil
}

// Bootstrap fills in the bumps of a new pool and returns its config address.
func (d Deriver) Bootstrap(pool *model.PoolState) (solana.PublicKey, error) {
	config, configBump, err := d.ConfigAddress(pool.Seed)
	if err != nil {
		return solana.PublicKey{}, err
	}
	_, lpBump, err := d.LPMint(config)
	if err != nil {
		return solana.PublicKey{}, err
	}
	pool.ConfigBump = configBump
	pool.LPBump = lpBump
	return config, nil
}

// Address re-derives the config address from the stored bump.
func (d Deriver) Address(pool model.PoolState) (solana.PublicKey, error) {
	seeds := append(configSeeds(pool.Seed), []byte{pool.ConfigBump})
	addr, err := solana.CreateProgramAddress(seeds, d.program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive config for seed %d bump %d: %w", pool.Seed, pool.ConfigBump, err)
	}
	return addr, nil
}

// LPMintAddress re-derives the share token id from the stored bump.
func (d Deriver) LPMintAddress(pool model.PoolState, config solana.PublicKey) (solana.PublicKey, error) {
	addr, err := solana.CreateProgramAddress([][]byte{[]byte(LPSeed), config.Bytes(), {pool.LPBump}}, d.program)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("derive lp mint for %s bump %d: %w", config, pool.LPBump, err)
	}
	return addr, nil
}

func (d Deriver) SignAsVault(pool model.PoolState) (Capability, error) {
	seeds := append(configSeeds(pool.Seed), []byte{pool.ConfigBump})
	addr, err := solana.CreateProgramAddress(seeds, d.program)
	if err != nil {
		return Capability{}, fmt.Errorf("sign as vault: %w", err)
	}
	return Capability{Address: addr, Seeds: seeds}, nil
}
