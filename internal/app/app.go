package app

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"sync"

	errorsmod "cosmossdk.io/errors"
	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	abci "github.com/cometbft/cometbft/abci/types"
	dbm "github.com/cosmos/cosmos-db"

	"onchainpoker/escrow/internal/bank"
	"onchainpoker/escrow/internal/codec"
	"onchainpoker/escrow/internal/keeper"
	"onchainpoker/escrow/internal/ocpcrypto"
	"onchainpoker/escrow/internal/randomness"
	"onchainpoker/escrow/internal/relay"
	"onchainpoker/escrow/internal/store"
	"onchainpoker/escrow/internal/types"
)

const (
	AppVersion uint64 = 1
)

var (
	heightKey  = []byte("height")
	appHashKey = []byte("apphash")
)

type Options struct {
	DB     dbm.DB
	Logger log.Logger

	// OracleKey verifies randomness/fulfill proofs. Nil rejects them all.
	OracleKey *ocpcrypto.Point
	// MintAuthority gates bank/mint and bank/set_frozen. Zero leaves minting
	// open.
	MintAuthority types.Address
	// Relay, when set, receives every committed block's events.
	Relay *relay.Relay
}

type EscrowApp struct {
	*abci.BaseApplication

	logger log.Logger
	opts   Options

	appStore store.Service

	bank       bank.Keeper
	randomness randomness.Keeper
	tables     keeper.Keeper
	msgServer  *keeper.MsgServer
	queries    *keeper.QueryServer

	mu          sync.Mutex
	root        storetypes.KVStore
	block       storetypes.CacheKVStore
	blockEvents []relay.BlockEvent
	height      int64
	lastHash    []byte
}

func New(opts Options) (*EscrowApp, error) {
	if opts.DB == nil {
		opts.DB = dbm.NewMemDB()
	}
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}

	bk := bank.NewKeeper(store.NewService(store.PrefixBank), opts.MintAuthority, opts.Logger)
	rk := randomness.NewKeeper(store.NewService(store.PrefixRandomness), opts.OracleKey, opts.Logger)
	tk := keeper.NewKeeper(store.NewService(store.PrefixTable), bk, rk, opts.Logger)

	a := &EscrowApp{
		BaseApplication: abci.NewBaseApplication(),
		logger:          opts.Logger.With("module", "app"),
		opts:            opts,
		appStore:        store.NewService(store.PrefixApp),
		bank:            bk,
		randomness:      rk,
		tables:          tk,
		msgServer:       keeper.NewMsgServerImpl(tk),
		queries:         keeper.NewQueryServerImpl(tk),
		root:            store.NewRoot(opts.DB),
	}

	meta := a.appStore.OpenKVStore(a.committedContext())
	if bz := meta.Get(heightKey); len(bz) == 8 {
		a.height = int64(binary.BigEndian.Uint64(bz))
	}
	a.lastHash = meta.Get(appHashKey)
	return a, nil
}

// committedContext reads the last committed state.
func (a *EscrowApp) committedContext() context.Context {
	ctx := store.WithKVStore(context.Background(), a.root)
	return types.WithBlockInfo(ctx, types.BlockInfo{Height: a.height})
}

// pendingBlock returns the branch collecting the current block's writes.
func (a *EscrowApp) pendingBlock() storetypes.CacheKVStore {
	if a.block == nil {
		a.block = store.NewBranch(a.root)
	}
	return a.block
}

func (a *EscrowApp) Info(_ context.Context, _ *abci.InfoRequest) (*abci.InfoResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	return &abci.InfoResponse{
		Data:             "escrow",
		Version:          "v1",
		AppVersion:       AppVersion,
		LastBlockHeight:  a.height,
		LastBlockAppHash: a.lastHash,
	}, nil
}

// GenesisState prefunds token accounts.
type GenesisState struct {
	Accounts []GenesisAccount `json:"accounts"`
}

type GenesisAccount struct {
	Owner  types.Address `json:"owner"`
	Amount uint64        `json:"amount"`
}

func (a *EscrowApp) InitChain(_ context.Context, req *abci.InitChainRequest) (*abci.InitChainResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(req.AppStateBytes) == 0 {
		return &abci.InitChainResponse{}, nil
	}
	var gen GenesisState
	if err := json.Unmarshal(req.AppStateBytes, &gen); err != nil {
		return nil, errorsmod.Wrap(err, "decode genesis app state")
	}
	if len(gen.Accounts) == 0 {
		return &abci.InitChainResponse{}, nil
	}

	ctx := store.WithKVStore(context.Background(), a.pendingBlock())
	for _, acc := range gen.Accounts {
		if _, err := a.bank.Mint(ctx, a.opts.MintAuthority, acc.Owner, acc.Amount); err != nil {
			return nil, errorsmod.Wrapf(err, "genesis account %s", acc.Owner)
		}
	}
	a.logger.Info("genesis loaded", "accounts", len(gen.Accounts))
	return &abci.InitChainResponse{AppHash: store.Hash(a.block)}, nil
}

func (a *EscrowApp) CheckTx(_ context.Context, req *abci.CheckTxRequest) (*abci.CheckTxResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.checkTx(req.Tx); err != nil {
		space, code, logMsg := errorsmod.ABCIInfo(err, false)
		a.logger.Debug("tx rejected", "err", logMsg)
		return &abci.CheckTxResponse{Codespace: space, Code: code, Log: logMsg}, nil
	}
	return &abci.CheckTxResponse{Code: abci.CodeTypeOK}, nil
}

// checkTx validates the envelope and the nonce against committed state.
func (a *EscrowApp) checkTx(txBytes []byte) error {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return ErrTxDecode.Wrap(err.Error())
	}
	if !knownTxType(env.Type) {
		return ErrUnknownTxType.Wrapf("%q", env.Type)
	}
	signer, nonce, err := authenticate(env)
	if err != nil {
		return err
	}
	bz := a.appStore.OpenKVStore(a.committedContext()).Get(nonceKey(signer))
	if len(bz) == 8 {
		if last := binary.BigEndian.Uint64(bz); nonce <= last {
			return ErrReplayedNonce.Wrapf("nonce %d, last %d", nonce, last)
		}
	}
	return nil
}

func (a *EscrowApp) FinalizeBlock(_ context.Context, req *abci.FinalizeBlockRequest) (*abci.FinalizeBlockResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	block := a.pendingBlock()
	ctx := store.WithKVStore(context.Background(), block)
	ctx = types.WithBlockInfo(ctx, types.BlockInfo{Height: req.Height, Time: req.Time})

	a.blockEvents = a.blockEvents[:0]
	txResults := make([]*abci.ExecTxResult, 0, len(req.Txs))
	for i, txBytes := range req.Txs {
		txResults = append(txResults, a.deliverTx(ctx, txBytes, i))
	}

	hash := store.Hash(block)
	meta := a.appStore.OpenKVStore(ctx)
	hb := make([]byte, 8)
	binary.BigEndian.PutUint64(hb, uint64(req.Height))
	meta.Set(heightKey, hb)
	meta.Set(appHashKey, hash)

	a.height = req.Height
	a.lastHash = hash

	return &abci.FinalizeBlockResponse{
		TxResults: txResults,
		AppHash:   hash,
	}, nil
}

func (a *EscrowApp) Commit(_ context.Context, _ *abci.CommitRequest) (*abci.CommitResponse, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.block != nil {
		a.block.Write()
		a.block = nil
	}
	a.logger.Info("committed block", "height", a.height, "appHash", hex.EncodeToString(a.lastHash), "events", len(a.blockEvents))

	if a.opts.Relay != nil && len(a.blockEvents) > 0 {
		a.opts.Relay.PublishBlock(a.height, a.blockEvents)
	}
	a.blockEvents = nil
	return &abci.CommitResponse{}, nil
}

func (a *EscrowApp) deliverTx(ctx context.Context, txBytes []byte, txIndex int) *abci.ExecTxResult {
	env, err := codec.DecodeTxEnvelope(txBytes)
	if err != nil {
		return a.errResult(ErrTxDecode.Wrap(err.Error()))
	}
	if !knownTxType(env.Type) {
		return a.errResult(ErrUnknownTxType.Wrapf("%q", env.Type))
	}
	signer, nonce, err := authenticate(env)
	if err != nil {
		return a.errResult(err)
	}
	// The nonce is spent even when execution fails, so a failed tx cannot be
	// replayed later either.
	if err := consumeNonce(ctx, a.appStore, signer, nonce); err != nil {
		return a.errResult(err)
	}

	em := types.NewEventManager()
	var data []byte
	err = store.Atomic(types.WithEventManager(ctx, em), func(ctx context.Context) error {
		var err error
		data, err = a.route(ctx, env, signer)
		return err
	})
	if err != nil {
		return a.errResult(err)
	}

	events := em.Events()
	for _, ev := range events {
		a.blockEvents = append(a.blockEvents, relay.BlockEvent{TxIndex: txIndex, Event: ev})
	}
	return &abci.ExecTxResult{
		Code:   abci.CodeTypeOK,
		Data:   data,
		Events: toABCIEvents(events),
	}
}

func (a *EscrowApp) errResult(err error) *abci.ExecTxResult {
	space, code, logMsg := errorsmod.ABCIInfo(err, false)
	a.logger.Debug("tx failed", "codespace", space, "code", code, "err", logMsg)
	return &abci.ExecTxResult{Codespace: space, Code: code, Log: logMsg}
}

func toABCIEvents(events []types.Event) []abci.Event {
	out := make([]abci.Event, 0, len(events))
	for _, ev := range events {
		e := abci.Event{Type: ev.Type}
		for _, attr := range ev.Attributes {
			e.Attributes = append(e.Attributes, abci.EventAttribute{Key: attr.Key, Value: attr.Value, Index: true})
		}
		out = append(out, e)
	}
	return out
}
