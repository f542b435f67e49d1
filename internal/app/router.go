package app

import (
	"context"
	"encoding/json"
	"strconv"

	"onchainpoker/escrow/internal/bank"
	"onchainpoker/escrow/internal/codec"
	"onchainpoker/escrow/internal/types"
)

var txTypes = map[string]bool{
	codec.TypeTableInitialize:     true,
	codec.TypeTableJoin:           true,
	codec.TypeTableRequestShuffle: true,
	codec.TypeTableFulfillShuffle: true,
	codec.TypeTableAdvanceStage:   true,
	codec.TypeTableDistribute:     true,
	codec.TypeRandomnessFulfill:   true,
	codec.TypeBankMint:            true,
	codec.TypeBankSetFrozen:       true,
}

func knownTxType(typ string) bool {
	return txTypes[typ]
}

func decodeValue(env codec.TxEnvelope, v any) error {
	if err := json.Unmarshal(env.Value, v); err != nil {
		return ErrTxDecode.Wrapf("bad %s value: %v", env.Type, err)
	}
	return nil
}

func marshalResponse(v any) ([]byte, error) {
	return json.Marshal(v)
}

// route executes an authenticated tx and returns its JSON response data.
func (a *EscrowApp) route(ctx context.Context, env codec.TxEnvelope, signer types.Address) ([]byte, error) {
	switch env.Type {
	case codec.TypeTableInitialize:
		var tx codec.TableInitializeTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		if err := requireSigner(signer, tx.Authority, "authority"); err != nil {
			return nil, err
		}
		resp, err := a.msgServer.Initialize(ctx, &types.MsgInitialize{
			Authority:  tx.Authority,
			BigBlind:   tx.BigBlind,
			MaxPlayers: tx.MaxPlayers,
		})
		if err != nil {
			return nil, err
		}
		return marshalResponse(resp)

	case codec.TypeTableJoin:
		var tx codec.TableJoinTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		if err := requireSigner(signer, tx.Player, "player"); err != nil {
			return nil, err
		}
		resp, err := a.msgServer.Join(ctx, &types.MsgJoin{
			Table:        tx.Table,
			Player:       tx.Player,
			TokenAccount: tx.TokenAccount,
			BuyIn:        tx.BuyIn,
		})
		if err != nil {
			return nil, err
		}
		return marshalResponse(resp)

	case codec.TypeTableRequestShuffle:
		var tx codec.TableRequestShuffleTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		if err := requireSigner(signer, tx.Authority, "authority"); err != nil {
			return nil, err
		}
		resp, err := a.msgServer.RequestShuffle(ctx, &types.MsgRequestShuffle{Table: tx.Table, Authority: tx.Authority})
		if err != nil {
			return nil, err
		}
		return marshalResponse(resp)

	case codec.TypeTableFulfillShuffle:
		var tx codec.TableFulfillShuffleTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		resp, err := a.msgServer.FulfillShuffle(ctx, &types.MsgFulfillShuffle{Table: tx.Table, Submitter: signer, Handle: tx.Handle})
		if err != nil {
			return nil, err
		}
		return marshalResponse(resp)

	case codec.TypeTableAdvanceStage:
		var tx codec.TableAdvanceStageTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		if err := requireSigner(signer, tx.Authority, "authority"); err != nil {
			return nil, err
		}
		resp, err := a.msgServer.AdvanceStage(ctx, &types.MsgAdvanceStage{Table: tx.Table, Authority: tx.Authority})
		if err != nil {
			return nil, err
		}
		return marshalResponse(resp)

	case codec.TypeTableDistribute:
		var tx codec.TableDistributeTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		if err := requireSigner(signer, tx.Authority, "authority"); err != nil {
			return nil, err
		}
		resp, err := a.msgServer.Distribute(ctx, &types.MsgDistribute{Table: tx.Table, Authority: tx.Authority, Winners: tx.Winners})
		if err != nil {
			return nil, err
		}
		return marshalResponse(resp)

	case codec.TypeRandomnessFulfill:
		var tx codec.RandomnessFulfillTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		seed, err := a.randomness.Fulfill(ctx, tx.Handle, tx.Gamma, tx.Proof)
		if err != nil {
			return nil, err
		}
		return marshalResponse(map[string]any{"handle": tx.Handle, "seed": seed})

	case codec.TypeBankMint:
		var tx codec.BankMintTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		acct, err := a.bank.Mint(ctx, signer, tx.To, tx.Amount)
		if err != nil {
			return nil, err
		}
		types.EmitEvent(ctx, types.NewEvent(bank.EventTypeMinted,
			types.NewAttribute(bank.AttributeKeyOwner, tx.To.String()),
			types.NewAttribute(types.AttributeKeyAccount, acct.String()),
			types.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(tx.Amount, 10)),
		))
		return marshalResponse(map[string]any{"account": acct})

	case codec.TypeBankSetFrozen:
		var tx codec.BankSetFrozenTx
		if err := decodeValue(env, &tx); err != nil {
			return nil, err
		}
		if err := a.bank.SetFrozen(ctx, signer, tx.Account, tx.Frozen); err != nil {
			return nil, err
		}
		return nil, nil

	default:
		return nil, ErrUnknownTxType.Wrapf("%q", env.Type)
	}
}
