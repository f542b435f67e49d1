package types

import (
	"context"

	"github.com/google/uuid"
)

// Ledger moves fungible token balances between accounts under an authority.
type Ledger interface {
	// Transfer fails on insufficient balance, a frozen account, or an
	// authority that does not own src.
	Transfer(ctx context.Context, src, dst Address, amount uint64, authority Authority) error
	// OpenAccount creates an empty token account controlled by owner.
	OpenAccount(ctx context.Context, account, owner Address) error
	Balance(ctx context.Context, account Address) (uint64, error)
}

// Randomness requests and later delivers a verifiable random seed.
type Randomness interface {
	Request(ctx context.Context, tag []byte) (uuid.UUID, error)
	// Deliver returns the seed for handle once the oracle has fulfilled it.
	Deliver(ctx context.Context, handle uuid.UUID) (Seed, error)
	// Cancel withdraws a pending request so it can no longer be fulfilled.
	Cancel(ctx context.Context, handle uuid.UUID) error
}
