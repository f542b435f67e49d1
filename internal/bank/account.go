package bank

import (
	"encoding/binary"
	"fmt"

	"onchainpoker/escrow/internal/types"
)

const accountSize = types.AddressBytes + 8 + 1

// Account is a token account. Only its owner (a signer, or the program for a
// derived address) can move funds out of it.
type Account struct {
	Owner   types.Address `json:"owner"`
	Balance uint64        `json:"balance"`
	Frozen  bool          `json:"frozen"`
}

// Layout: owner(32) || balance(8 le) || frozen(1)
func (a Account) MarshalBinary() ([]byte, error) {
	out := make([]byte, accountSize)
	copy(out[:32], a.Owner[:])
	binary.LittleEndian.PutUint64(out[32:40], a.Balance)
	if a.Frozen {
		out[40] = 1
	}
	return out, nil
}

func (a *Account) UnmarshalBinary(b []byte) error {
	if len(b) != accountSize {
		return fmt.Errorf("token account: expected %d bytes, got %d", accountSize, len(b))
	}
	copy(a.Owner[:], b[:32])
	a.Balance = binary.LittleEndian.Uint64(b[32:40])
	switch b[40] {
	case 0:
		a.Frozen = false
	case 1:
		a.Frozen = true
	default:
		return fmt.Errorf("token account: invalid frozen flag %d", b[40])
	}
	return nil
}

var accountKeyPrefix = []byte{0x01}

func accountKey(addr types.Address) []byte {
	return append(append([]byte(nil), accountKeyPrefix...), addr[:]...)
}
