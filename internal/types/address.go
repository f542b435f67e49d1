package types

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

const AddressBytes = 32

// Address is a 32-byte identity. Signers are addressed by their ed25519 public
// key; token accounts and program-derived addresses share the same space.
type Address [AddressBytes]byte

func (a Address) String() string {
	return hex.EncodeToString(a[:])
}

func (a Address) IsZero() bool {
	return a == Address{}
}

func (a Address) Bytes() []byte {
	out := make([]byte, AddressBytes)
	copy(out, a[:])
	return out
}

func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *Address) UnmarshalText(b []byte) error {
	parsed, err := ParseAddress(string(b))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

func ParseAddress(s string) (Address, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Address{}, fmt.Errorf("address: invalid hex: %w", err)
	}
	return AddressFromBytes(b)
}

func AddressFromBytes(b []byte) (Address, error) {
	if len(b) != AddressBytes {
		return Address{}, fmt.Errorf("address: expected %d bytes, got %d", AddressBytes, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// AssociatedTokenAddress is the default token account of an owner.
func AssociatedTokenAddress(owner Address) Address {
	h := sha256.New()
	_, _ = h.Write([]byte("token"))
	_, _ = h.Write(owner[:])
	var out Address
	copy(out[:], h.Sum(nil))
	return out
}

// Seed is a 32-byte random value delivered by the randomness oracle.
type Seed [32]byte

func (s Seed) MarshalText() ([]byte, error) {
	return []byte(hex.EncodeToString(s[:])), nil
}

func (s *Seed) UnmarshalText(b []byte) error {
	raw, err := hex.DecodeString(string(b))
	if err != nil {
		return fmt.Errorf("seed: invalid hex: %w", err)
	}
	if len(raw) != len(s) {
		return fmt.Errorf("seed: expected %d bytes, got %d", len(s), len(raw))
	}
	copy(s[:], raw)
	return nil
}
