package keeper

import (
	"context"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"

	"onchainpoker/escrow/internal/store"
	"onchainpoker/escrow/internal/types"
)

type Keeper struct {
	storeService store.Service
	ledger       types.Ledger
	randomness   types.Randomness
	logger       log.Logger
}

func NewKeeper(storeService store.Service, ledger types.Ledger, randomness types.Randomness, logger log.Logger) Keeper {
	if ledger == nil {
		panic("table keeper: ledger is nil")
	}
	if randomness == nil {
		panic("table keeper: randomness is nil")
	}
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Keeper{
		storeService: storeService,
		ledger:       ledger,
		randomness:   randomness,
		logger:       logger.With("module", "x/"+types.ModuleName),
	}
}

func (k Keeper) Logger() log.Logger {
	return k.logger
}

func (k Keeper) GetTable(ctx context.Context, addr types.Address) (*types.TableRecord, error) {
	bz := k.storeService.OpenKVStore(ctx).Get(types.TableKey(addr))
	if bz == nil {
		return nil, nil
	}
	var rec types.TableRecord
	if err := rec.UnmarshalBinary(bz); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (k Keeper) SetTable(ctx context.Context, addr types.Address, rec *types.TableRecord) error {
	if err := rec.Validate(); err != nil {
		return err
	}
	bz, err := rec.MarshalBinary()
	if err != nil {
		return err
	}
	k.storeService.OpenKVStore(ctx).Set(types.TableKey(addr), bz)
	return nil
}

// loadTable runs the shared preamble: the record must exist and its stored
// derivation must reproduce addr.
func (k Keeper) loadTable(ctx context.Context, addr types.Address) (*types.TableRecord, error) {
	if addr.IsZero() {
		return nil, types.ErrInvalidRequest.Wrap("missing table address")
	}
	rec, err := k.GetTable(ctx, addr)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, types.ErrTableNotFound.Wrapf("table %s", addr)
	}
	derived, err := rec.Address()
	if err != nil || derived != addr {
		return nil, types.ErrInvalidRequest.Wrapf("table %s does not match its derivation", addr)
	}
	return rec, nil
}

// IterateTables calls cb for every table in address order until cb returns
// true.
func (k Keeper) IterateTables(ctx context.Context, cb func(addr types.Address, rec *types.TableRecord) bool) error {
	kv := k.storeService.OpenKVStore(ctx)
	it := kv.Iterator(types.TableKeyPrefix, storetypes.PrefixEndBytes(types.TableKeyPrefix))
	defer it.Close()

	for ; it.Valid(); it.Next() {
		addr, err := types.AddressFromBytes(it.Key()[len(types.TableKeyPrefix):])
		if err != nil {
			return err
		}
		var rec types.TableRecord
		if err := rec.UnmarshalBinary(it.Value()); err != nil {
			return err
		}
		if cb(addr, &rec) {
			return nil
		}
	}
	return nil
}
