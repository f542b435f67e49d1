package types

import (
	"crypto/sha256"
	"fmt"

	"filippo.io/edwards25519"
)

const (
	pdaMarker   = "ProgramDerivedAddress"
	maxSeeds    = 16
	maxSeedSize = 32
)

var (
	// ProgramID identifies the table program in address derivations.
	ProgramID = Address(sha256.Sum256([]byte("onchainpoker/escrow/table/v1")))

	seedGame   = []byte("game")
	seedEscrow = []byte("escrow")
)

// CreateProgramAddress derives the address for seeds and nonce. The result is
// never a valid ed25519 point, so no private key can sign for it; only the
// program can, by presenting the same seeds and nonce.
func CreateProgramAddress(seeds [][]byte, nonce uint8) (Address, error) {
	if len(seeds) > maxSeeds {
		return Address{}, fmt.Errorf("pda: too many seeds: %d", len(seeds))
	}
	h := sha256.New()
	for _, s := range seeds {
		if len(s) > maxSeedSize {
			return Address{}, fmt.Errorf("pda: seed longer than %d bytes", maxSeedSize)
		}
		_, _ = h.Write(s)
	}
	_, _ = h.Write([]byte{nonce})
	_, _ = h.Write(ProgramID[:])
	_, _ = h.Write([]byte(pdaMarker))

	var out Address
	copy(out[:], h.Sum(nil))
	if onCurve(out[:]) {
		return Address{}, fmt.Errorf("pda: derived address is on curve (nonce %d)", nonce)
	}
	return out, nil
}

// FindProgramAddress returns the canonical address and nonce for seeds: the
// first off-curve derivation searching nonces from 255 down to 0.
func FindProgramAddress(seeds ...[]byte) (Address, uint8, error) {
	for n := 255; n >= 0; n-- {
		addr, err := CreateProgramAddress(seeds, uint8(n))
		if err == nil {
			return addr, uint8(n), nil
		}
	}
	return Address{}, 0, fmt.Errorf("pda: no off-curve nonce found")
}

func onCurve(b []byte) bool {
	_, err := new(edwards25519.Point).SetBytes(b)
	return err == nil
}

func TableSeeds(authority Address) [][]byte {
	return [][]byte{seedGame, authority.Bytes()}
}

func EscrowSeeds(table Address) [][]byte {
	return [][]byte{seedEscrow, table.Bytes()}
}

func FindTableAddress(authority Address) (Address, uint8, error) {
	return FindProgramAddress(TableSeeds(authority)...)
}

func FindEscrowAddress(table Address) (Address, uint8, error) {
	return FindProgramAddress(EscrowSeeds(table)...)
}
