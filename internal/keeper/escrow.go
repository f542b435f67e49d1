package keeper

import (
	"context"

	"onchainpoker/escrow/internal/types"
)

// deposit moves amount from a player's token account into the table escrow
// under the player's own signature.
func (k Keeper) deposit(ctx context.Context, rec *types.TableRecord, src, player types.Address, amount uint64) error {
	escrow, err := rec.EscrowAddress()
	if err != nil {
		return err
	}
	if err := k.ledger.Transfer(ctx, src, escrow, amount, types.SignerAuthority(player)); err != nil {
		return types.LedgerFailure(err)
	}
	return nil
}

// withdraw pays amount out of the escrow, signed by the program with the
// table's derivation nonce.
func (k Keeper) withdraw(ctx context.Context, rec *types.TableRecord, dst types.Address, amount uint64) error {
	if amount == 0 {
		return nil
	}
	escrow, err := rec.EscrowAddress()
	if err != nil {
		return err
	}
	if err := k.ledger.Transfer(ctx, escrow, dst, amount, rec.SignerAuthority()); err != nil {
		return types.LedgerFailure(err)
	}
	return nil
}

// EscrowBalance reports the ledger balance of the table's escrow account.
func (k Keeper) EscrowBalance(ctx context.Context, rec *types.TableRecord) (uint64, error) {
	escrow, err := rec.EscrowAddress()
	if err != nil {
		return 0, err
	}
	bal, err := k.ledger.Balance(ctx, escrow)
	if err != nil {
		return 0, types.LedgerFailure(err)
	}
	return bal, nil
}
