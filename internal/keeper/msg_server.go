package keeper

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"onchainpoker/escrow/internal/store"
	"onchainpoker/escrow/internal/types"
)

type MsgServer struct {
	Keeper
}

func NewMsgServerImpl(k Keeper) *MsgServer {
	return &MsgServer{Keeper: k}
}

// atomic runs fn on a branch of the store with its own event buffer. State
// and events reach the caller only when fn succeeds.
func (k Keeper) atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	em := types.NewEventManager()
	if err := store.Atomic(types.WithEventManager(ctx, em), fn); err != nil {
		return err
	}
	for _, ev := range em.Events() {
		types.EmitEvent(ctx, ev)
	}
	return nil
}

func requireAuthority(rec *types.TableRecord, signer types.Address) error {
	if signer != rec.Authority {
		return types.ErrUnauthorized.Wrapf("signer %s is not authority %s", signer, rec.Authority)
	}
	return nil
}

func (m MsgServer) Initialize(ctx context.Context, req *types.MsgInitialize) (*types.MsgInitializeResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if req.Authority.IsZero() {
		return nil, types.ErrInvalidRequest.Wrap("missing authority")
	}
	if err := types.ValidateTableParams(req.BigBlind, req.MaxPlayers); err != nil {
		return nil, err
	}

	tableAddr, nonce, err := types.FindTableAddress(req.Authority)
	if err != nil {
		return nil, err
	}
	escrowAddr, escrowNonce, err := types.FindEscrowAddress(tableAddr)
	if err != nil {
		return nil, err
	}

	err = m.atomic(ctx, func(ctx context.Context) error {
		existing, err := m.GetTable(ctx, tableAddr)
		if err != nil {
			return err
		}
		if existing != nil {
			return types.ErrAlreadyInitialized.Wrapf("table %s", tableAddr)
		}

		rec, err := types.NewTableRecord(req.Authority, req.BigBlind, req.MaxPlayers, nonce, escrowNonce)
		if err != nil {
			return err
		}
		if err := m.ledger.OpenAccount(ctx, escrowAddr, tableAddr); err != nil {
			return types.LedgerFailure(err)
		}
		if err := m.SetTable(ctx, tableAddr, rec); err != nil {
			return err
		}

		types.EmitEvent(ctx, types.NewEvent(types.EventTypeTableInitialized,
			types.NewAttribute(types.AttributeKeyTable, tableAddr.String()),
			types.NewAttribute(types.AttributeKeyAuthority, req.Authority.String()),
			types.NewAttribute(types.AttributeKeyEscrow, escrowAddr.String()),
			types.NewAttribute(types.AttributeKeyBigBlind, strconv.FormatUint(rec.BigBlind, 10)),
			types.NewAttribute(types.AttributeKeySmallBlind, strconv.FormatUint(rec.SmallBlind, 10)),
			types.NewAttribute(types.AttributeKeyMaxPlayers, strconv.FormatUint(uint64(rec.MaxPlayers), 10)),
		))
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("table initialized", "table", tableAddr.String(), "authority", req.Authority.String(), "bigBlind", req.BigBlind, "maxPlayers", req.MaxPlayers)
	return &types.MsgInitializeResponse{Table: tableAddr, Escrow: escrowAddr}, nil
}

func (m MsgServer) Join(ctx context.Context, req *types.MsgJoin) (*types.MsgJoinResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}
	if req.Player.IsZero() {
		return nil, types.ErrInvalidRequest.Wrap("missing player")
	}
	if req.TokenAccount.IsZero() {
		return nil, types.ErrInvalidRequest.Wrap("missing token account")
	}

	var resp types.MsgJoinResponse
	err := m.atomic(ctx, func(ctx context.Context) error {
		rec, err := m.loadTable(ctx, req.Table)
		if err != nil {
			return err
		}
		next, err := rec.Stage.Transition(types.OpJoin)
		if err != nil {
			return err
		}
		if rec.CurrentPlayers >= rec.MaxPlayers {
			return types.ErrGameFull.Wrapf("%d/%d seats taken", rec.CurrentPlayers, rec.MaxPlayers)
		}
		if req.BuyIn < rec.BigBlind {
			return types.ErrInvalidRequest.Wrapf("buy-in %d below big blind %d", req.BuyIn, rec.BigBlind)
		}
		if i := rec.SeatOfPlayer(req.Player); i >= 0 {
			return types.ErrAlreadySeated.Wrapf("player %s holds seat %d", req.Player, i)
		}
		if i := rec.SeatOfAccount(req.TokenAccount); i >= 0 {
			return types.ErrAlreadySeated.Wrapf("token account %s backs seat %d", req.TokenAccount, i)
		}
		pot, err := addUint64Checked(rec.Pot, req.BuyIn, "pot")
		if err != nil {
			return err
		}

		if err := m.deposit(ctx, rec, req.TokenAccount, req.Player, req.BuyIn); err != nil {
			return err
		}

		seat := rec.CurrentPlayers
		rec.Seats = append(rec.Seats, types.Seat{
			Player:       req.Player,
			TokenAccount: req.TokenAccount,
			Contributed:  req.BuyIn,
		})
		rec.CurrentPlayers++
		rec.Pot = pot
		rec.Stage = next
		if err := m.SetTable(ctx, req.Table, rec); err != nil {
			return err
		}

		types.EmitEvent(ctx, types.NewEvent(types.EventTypePlayerJoined,
			types.NewAttribute(types.AttributeKeyTable, req.Table.String()),
			types.NewAttribute(types.AttributeKeyPlayer, req.Player.String()),
			types.NewAttribute(types.AttributeKeyAccount, req.TokenAccount.String()),
			types.NewAttribute(types.AttributeKeySeat, strconv.FormatUint(uint64(seat), 10)),
			types.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(req.BuyIn, 10)),
			types.NewAttribute(types.AttributeKeyPot, strconv.FormatUint(rec.Pot, 10)),
			types.NewAttribute(types.AttributeKeyPlayers, strconv.FormatUint(uint64(rec.CurrentPlayers), 10)),
		))
		resp = types.MsgJoinResponse{Seat: seat, Pot: rec.Pot}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("player joined", "table", req.Table.String(), "player", req.Player.String(), "seat", resp.Seat, "buyIn", req.BuyIn, "pot", resp.Pot)
	return &resp, nil
}

// shuffleTag binds a randomness request to the table and the hand it seeds.
func shuffleTag(table types.Address, handID uint64) []byte {
	tag := make([]byte, 0, types.AddressBytes+8)
	tag = append(tag, table[:]...)
	return binary.LittleEndian.AppendUint64(tag, handID)
}

// RequestShuffle asks the randomness oracle for the next hand's seed. A call
// while a request is pending cancels it in the registry and replaces it; the
// older handle becomes stale.
func (m MsgServer) RequestShuffle(ctx context.Context, req *types.MsgRequestShuffle) (*types.MsgRequestShuffleResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}

	var resp types.MsgRequestShuffleResponse
	var replaced string
	err := m.atomic(ctx, func(ctx context.Context) error {
		rec, err := m.loadTable(ctx, req.Table)
		if err != nil {
			return err
		}
		if err := requireAuthority(rec, req.Authority); err != nil {
			return err
		}
		next, err := rec.Stage.Transition(types.OpRequestShuffle)
		if err != nil {
			return err
		}
		if rec.CurrentPlayers < types.MinMaxPlayers {
			return types.ErrInvalidRequest.Wrapf("need at least %d players, have %d", types.MinMaxPlayers, rec.CurrentPlayers)
		}

		if rec.Pending != nil {
			if err := m.randomness.Cancel(ctx, rec.Pending.Handle); err != nil {
				return types.RandomnessFailure(err)
			}
			replaced = rec.Pending.Handle.String()
		}
		handle, err := m.randomness.Request(ctx, shuffleTag(req.Table, rec.HandID+1))
		if err != nil {
			return types.RandomnessFailure(err)
		}
		rec.Pending = &types.PendingRandomness{
			Handle:          handle,
			RequestedHeight: types.BlockInfoFrom(ctx).Height,
		}
		rec.Stage = next
		if err := m.SetTable(ctx, req.Table, rec); err != nil {
			return err
		}

		attrs := []types.Attribute{
			types.NewAttribute(types.AttributeKeyTable, req.Table.String()),
			types.NewAttribute(types.AttributeKeyHandle, handle.String()),
			types.NewAttribute(types.AttributeKeyHandID, strconv.FormatUint(rec.HandID+1, 10)),
		}
		if replaced != "" {
			attrs = append(attrs, types.NewAttribute(types.AttributeKeyReplaced, replaced))
		}
		types.EmitEvent(ctx, types.NewEvent(types.EventTypeShuffleRequested, attrs...))
		resp.Handle = handle
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("shuffle requested", "table", req.Table.String(), "handle", resp.Handle.String(), "replaced", replaced)
	return &resp, nil
}

// FulfillShuffle consumes the delivered seed of the pending request and
// starts the hand.
func (m MsgServer) FulfillShuffle(ctx context.Context, req *types.MsgFulfillShuffle) (*types.MsgFulfillShuffleResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}

	var resp types.MsgFulfillShuffleResponse
	err := m.atomic(ctx, func(ctx context.Context) error {
		rec, err := m.loadTable(ctx, req.Table)
		if err != nil {
			return err
		}
		next, err := rec.Stage.Transition(types.OpFulfillShuffle)
		if err != nil {
			return err
		}
		if rec.Pending == nil {
			return types.ErrNoPendingRandomness.Wrapf("table %s", req.Table)
		}
		if rec.Pending.Handle != req.Handle {
			return types.ErrStaleRandomness.Wrapf("pending %s, got %s", rec.Pending.Handle, req.Handle)
		}
		if rec.CurrentPlayers < types.MinMaxPlayers {
			return types.ErrInvalidRequest.Wrapf("need at least %d players, have %d", types.MinMaxPlayers, rec.CurrentPlayers)
		}

		seed, err := m.randomness.Deliver(ctx, req.Handle)
		if err != nil {
			return types.RandomnessFailure(err)
		}

		rec.HandID++
		rec.LastSeed = &seed
		rec.Pending = nil
		rec.Stage = next
		if err := m.SetTable(ctx, req.Table, rec); err != nil {
			return err
		}

		types.EmitEvent(ctx, types.NewEvent(types.EventTypeShuffleFulfilled,
			types.NewAttribute(types.AttributeKeyTable, req.Table.String()),
			types.NewAttribute(types.AttributeKeyHandle, req.Handle.String()),
			types.NewAttribute(types.AttributeKeyHandID, strconv.FormatUint(rec.HandID, 10)),
			types.NewAttribute(types.AttributeKeySeed, hex.EncodeToString(seed[:])),
		))
		types.EmitEvent(ctx, stageEvent(req.Table, types.StageWaiting, next))
		resp = types.MsgFulfillShuffleResponse{HandID: rec.HandID, Seed: seed}
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("shuffle fulfilled", "table", req.Table.String(), "handId", resp.HandID)
	return &resp, nil
}

func stageEvent(table types.Address, from, to types.Stage) types.Event {
	return types.NewEvent(types.EventTypeStageAdvanced,
		types.NewAttribute(types.AttributeKeyTable, table.String()),
		types.NewAttribute(types.AttributeKeyFrom, from.String()),
		types.NewAttribute(types.AttributeKeyStage, to.String()),
	)
}

func (m MsgServer) AdvanceStage(ctx context.Context, req *types.MsgAdvanceStage) (*types.MsgAdvanceStageResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}

	var from, to types.Stage
	err := m.atomic(ctx, func(ctx context.Context) error {
		rec, err := m.loadTable(ctx, req.Table)
		if err != nil {
			return err
		}
		if err := requireAuthority(rec, req.Authority); err != nil {
			return err
		}
		next, err := rec.Stage.Transition(types.OpAdvanceStage)
		if err != nil {
			return err
		}
		from, to = rec.Stage, next
		rec.Stage = next
		if err := m.SetTable(ctx, req.Table, rec); err != nil {
			return err
		}
		types.EmitEvent(ctx, stageEvent(req.Table, from, to))
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("stage advanced", "table", req.Table.String(), "from", from.String(), "to", to.String())
	return &types.MsgAdvanceStageResponse{Stage: to}, nil
}

// Distribute splits the pot across the winning seats and resets the table
// for the next hand.
func (m MsgServer) Distribute(ctx context.Context, req *types.MsgDistribute) (*types.MsgDistributeResponse, error) {
	if req == nil {
		return nil, types.ErrInvalidRequest.Wrap("nil request")
	}

	var resp types.MsgDistributeResponse
	var total uint64
	err := m.atomic(ctx, func(ctx context.Context) error {
		rec, err := m.loadTable(ctx, req.Table)
		if err != nil {
			return err
		}
		if err := requireAuthority(rec, req.Authority); err != nil {
			return err
		}
		next, err := rec.Stage.Transition(types.OpDistribute)
		if err != nil {
			return err
		}
		if len(req.Winners) == 0 {
			return types.ErrEmptyWinners
		}
		seen := make(map[uint32]bool, len(req.Winners))
		for _, w := range req.Winners {
			if w >= uint32(rec.CurrentPlayers) {
				return types.ErrInvalidWinnerIndex.Wrapf("winner %d, current_players %d", w, rec.CurrentPlayers)
			}
			if seen[w] {
				return types.ErrInvalidWinnerIndex.Wrapf("winner %d listed twice", w)
			}
			seen[w] = true
		}

		shares, err := splitPot(rec.Pot, len(req.Winners))
		if err != nil {
			return err
		}
		remaining := rec.Pot
		payouts := make([]types.Payout, 0, len(req.Winners))
		for i, w := range req.Winners {
			seat := rec.Seats[w]
			if err := m.withdraw(ctx, rec, seat.TokenAccount, shares[i]); err != nil {
				return err
			}
			if remaining, err = subUint64Checked(remaining, shares[i], "pot"); err != nil {
				return err
			}
			payouts = append(payouts, types.Payout{Seat: uint8(w), TokenAccount: seat.TokenAccount, Amount: shares[i]})

			types.EmitEvent(ctx, types.NewEvent(types.EventTypePotAwarded,
				types.NewAttribute(types.AttributeKeyTable, req.Table.String()),
				types.NewAttribute(types.AttributeKeySeat, strconv.FormatUint(uint64(w), 10)),
				types.NewAttribute(types.AttributeKeyPlayer, seat.Player.String()),
				types.NewAttribute(types.AttributeKeyAccount, seat.TokenAccount.String()),
				types.NewAttribute(types.AttributeKeyAmount, strconv.FormatUint(shares[i], 10)),
			))
		}
		if remaining != 0 {
			return types.ErrOverflow.Wrapf("%d left undistributed", remaining)
		}

		if rec.Pending != nil {
			if err := m.randomness.Cancel(ctx, rec.Pending.Handle); err != nil {
				return types.RandomnessFailure(err)
			}
		}
		total = rec.Pot
		rec.Pot = 0
		rec.Seats = []types.Seat{}
		rec.CurrentPlayers = 0
		rec.Pending = nil
		from := rec.Stage
		rec.Stage = next
		if err := m.SetTable(ctx, req.Table, rec); err != nil {
			return err
		}

		types.EmitEvent(ctx, types.NewEvent(types.EventTypePotDistributed,
			types.NewAttribute(types.AttributeKeyTable, req.Table.String()),
			types.NewAttribute(types.AttributeKeyPot, strconv.FormatUint(total, 10)),
			types.NewAttribute(types.AttributeKeyWinners, formatWinners(req.Winners)),
			types.NewAttribute(types.AttributeKeyHandID, strconv.FormatUint(rec.HandID, 10)),
		))
		types.EmitEvent(ctx, stageEvent(req.Table, from, next))
		resp.Payouts = payouts
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("pot distributed", "table", req.Table.String(), "pot", total, "winners", formatWinners(req.Winners))
	return &resp, nil
}

func formatWinners(ws []uint32) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = fmt.Sprintf("%d", w)
	}
	return strings.Join(parts, ",")
}
