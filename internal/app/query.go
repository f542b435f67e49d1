package app

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"strings"

	errorsmod "cosmossdk.io/errors"
	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/google/uuid"

	"onchainpoker/escrow/internal/bank"
	"onchainpoker/escrow/internal/types"
)

type accountView struct {
	Address types.Address `json:"address"`
	bank.Account
}

// Query serves committed state. Paths:
//   - /tables
//   - /table/<addr>
//   - /table/by-authority/<principal>
//   - /account/<addr>
//   - /randomness/pending
//   - /randomness/<handle>
//   - /nonce/<principal>
func (a *EscrowApp) Query(_ context.Context, req *abci.QueryRequest) (*abci.QueryResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	v, err := a.query(a.committedContext(), strings.TrimSpace(req.Path))
	if err != nil {
		space, code, logMsg := errorsmod.ABCIInfo(err, false)
		return &abci.QueryResponse{Codespace: space, Code: code, Log: logMsg, Height: a.height}, nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return &abci.QueryResponse{Code: abci.CodeTypeOK, Value: b, Height: a.height}, nil
}

func (a *EscrowApp) query(ctx context.Context, path string) (any, error) {
	switch {
	case path == "/tables":
		return a.queries.Tables(ctx)

	case strings.HasPrefix(path, "/table/by-authority/"):
		authority, err := types.ParseAddress(strings.TrimPrefix(path, "/table/by-authority/"))
		if err != nil {
			return nil, types.ErrInvalidRequest.Wrap(err.Error())
		}
		return a.queries.TableByAuthority(ctx, authority)

	case strings.HasPrefix(path, "/table/"):
		addr, err := types.ParseAddress(strings.TrimPrefix(path, "/table/"))
		if err != nil {
			return nil, types.ErrInvalidRequest.Wrap(err.Error())
		}
		return a.queries.Table(ctx, addr)

	case strings.HasPrefix(path, "/account/"):
		addr, err := types.ParseAddress(strings.TrimPrefix(path, "/account/"))
		if err != nil {
			return nil, types.ErrInvalidRequest.Wrap(err.Error())
		}
		acc, err := a.bank.GetAccount(ctx, addr)
		if err != nil {
			return nil, err
		}
		if acc == nil {
			return nil, bank.ErrAccountNotFound.Wrapf("account %s", addr)
		}
		return accountView{Address: addr, Account: *acc}, nil

	case path == "/randomness/pending":
		return a.randomness.PendingRequests(ctx)

	case strings.HasPrefix(path, "/randomness/"):
		handle, err := uuid.Parse(strings.TrimPrefix(path, "/randomness/"))
		if err != nil {
			return nil, types.ErrInvalidRequest.Wrapf("invalid handle: %v", err)
		}
		return a.randomness.GetRequest(ctx, handle)

	case strings.HasPrefix(path, "/nonce/"):
		signer, err := types.ParseAddress(strings.TrimPrefix(path, "/nonce/"))
		if err != nil {
			return nil, types.ErrInvalidRequest.Wrap(err.Error())
		}
		var last uint64
		if bz := a.appStore.OpenKVStore(ctx).Get(nonceKey(signer)); len(bz) == 8 {
			last = binary.BigEndian.Uint64(bz)
		}
		return map[string]uint64{"nonce": last}, nil

	default:
		return nil, types.ErrInvalidRequest.Wrapf("unknown query path %q", path)
	}
}
