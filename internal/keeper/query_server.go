package keeper

import (
	"context"

	"onchainpoker/escrow/internal/types"
)

// TableView is a table record together with its derived addresses.
type TableView struct {
	Address       types.Address      `json:"address"`
	Escrow        types.Address      `json:"escrow"`
	EscrowBalance uint64             `json:"escrowBalance"`
	Record        *types.TableRecord `json:"record"`
}

type QueryServer struct {
	Keeper
}

func NewQueryServerImpl(k Keeper) *QueryServer {
	return &QueryServer{Keeper: k}
}

func (q QueryServer) Table(ctx context.Context, addr types.Address) (*TableView, error) {
	rec, err := q.loadTable(ctx, addr)
	if err != nil {
		return nil, err
	}
	return q.view(ctx, addr, rec)
}

// TableByAuthority derives the table address of authority and loads it.
func (q QueryServer) TableByAuthority(ctx context.Context, authority types.Address) (*TableView, error) {
	addr, _, err := types.FindTableAddress(authority)
	if err != nil {
		return nil, err
	}
	return q.Table(ctx, addr)
}

func (q QueryServer) Tables(ctx context.Context) ([]types.Address, error) {
	addrs := make([]types.Address, 0)
	err := q.IterateTables(ctx, func(addr types.Address, _ *types.TableRecord) bool {
		addrs = append(addrs, addr)
		return false
	})
	if err != nil {
		return nil, err
	}
	return addrs, nil
}

func (q QueryServer) view(ctx context.Context, addr types.Address, rec *types.TableRecord) (*TableView, error) {
	escrow, err := rec.EscrowAddress()
	if err != nil {
		return nil, err
	}
	bal, err := q.EscrowBalance(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &TableView{Address: addr, Escrow: escrow, EscrowBalance: bal, Record: rec}, nil
}

// CheckInvariants verifies every table's record invariants and that its
// escrow holds exactly its pot.
func (k Keeper) CheckInvariants(ctx context.Context) error {
	var firstErr error
	err := k.IterateTables(ctx, func(addr types.Address, rec *types.TableRecord) bool {
		if err := rec.Validate(); err != nil {
			firstErr = err
			return true
		}
		bal, err := k.EscrowBalance(ctx, rec)
		if err != nil {
			firstErr = err
			return true
		}
		if bal != rec.Pot {
			firstErr = types.ErrInvalidParameters.Wrapf("table %s: escrow balance %d != pot %d", addr, bal, rec.Pot)
			return true
		}
		return false
	})
	if err != nil {
		return err
	}
	return firstErr
}
