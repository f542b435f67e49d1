package randomness

import (
	"context"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"strconv"

	"cosmossdk.io/log"
	storetypes "cosmossdk.io/store/types"
	"github.com/google/uuid"

	"onchainpoker/escrow/internal/ocpcrypto"
	"onchainpoker/escrow/internal/store"
	"onchainpoker/escrow/internal/types"
)

// handleNamespace scopes request handles to this chain's randomness registry.
var handleNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("onchainpoker/escrow/randomness"))

var _ types.Randomness = Keeper{}

// Keeper is the on-chain request registry of the randomness oracle.
type Keeper struct {
	storeService store.Service
	oracleKey    *ocpcrypto.Point
	logger       log.Logger
}

// NewKeeper returns a registry verifying fulfilments against oracleKey. A nil
// key accepts requests but rejects every fulfilment.
func NewKeeper(storeService store.Service, oracleKey *ocpcrypto.Point, logger log.Logger) Keeper {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return Keeper{
		storeService: storeService,
		oracleKey:    oracleKey,
		logger:       logger.With("module", "x/"+ModuleName),
	}
}

// ParseOracleKey decodes a hex-encoded oracle public key.
func ParseOracleKey(s string) (*ocpcrypto.Point, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, ErrOracleUnavailable.Wrapf("oracle key is not hex: %v", err)
	}
	p, err := ocpcrypto.PointFromBytesCanonical(b)
	if err != nil {
		return nil, ErrOracleUnavailable.Wrapf("oracle key: %v", err)
	}
	return &p, nil
}

func (k Keeper) GetRequest(ctx context.Context, handle uuid.UUID) (*Request, error) {
	bz := k.storeService.OpenKVStore(ctx).Get(requestKey(handle))
	if bz == nil {
		return nil, ErrRequestNotFound.Wrapf("handle %s", handle)
	}
	var req Request
	if err := json.Unmarshal(bz, &req); err != nil {
		return nil, err
	}
	return &req, nil
}

func (k Keeper) setRequest(ctx context.Context, req *Request) error {
	bz, err := json.Marshal(req)
	if err != nil {
		return err
	}
	k.storeService.OpenKVStore(ctx).Set(requestKey(req.Handle), bz)
	return nil
}

func (k Keeper) nextSeq(ctx context.Context) uint64 {
	kv := k.storeService.OpenKVStore(ctx)
	var seq uint64
	if bz := kv.Get(seqKey); len(bz) == 8 {
		seq = binary.BigEndian.Uint64(bz)
	}
	next := make([]byte, 8)
	binary.BigEndian.PutUint64(next, seq+1)
	kv.Set(seqKey, next)
	return seq
}

// Request registers a new request for tag and returns its handle.
func (k Keeper) Request(ctx context.Context, tag []byte) (uuid.UUID, error) {
	seq := k.nextSeq(ctx)
	var seqBytes [8]byte
	binary.BigEndian.PutUint64(seqBytes[:], seq)
	handle := uuid.NewSHA1(handleNamespace, append(append([]byte(nil), tag...), seqBytes[:]...))

	height := types.BlockInfoFrom(ctx).Height
	req := &Request{
		Handle:          handle,
		Tag:             append([]byte{}, tag...),
		RequestedHeight: height,
		Status:          StatusPending,
	}
	if err := k.setRequest(ctx, req); err != nil {
		return uuid.UUID{}, err
	}

	types.EmitEvent(ctx, types.NewEvent(EventTypeRandomnessRequested,
		types.NewAttribute(AttributeKeyHandle, handle.String()),
		types.NewAttribute(AttributeKeyTag, hex.EncodeToString(req.Tag)),
		types.NewAttribute(AttributeKeyHeight, strconv.FormatInt(height, 10)),
	))
	k.logger.Debug("randomness requested", "handle", handle.String(), "height", height)
	return handle, nil
}

// Fulfill accepts the oracle's VRF output for handle.
func (k Keeper) Fulfill(ctx context.Context, handle uuid.UUID, gamma, proof []byte) (types.Seed, error) {
	if k.oracleKey == nil {
		return types.Seed{}, ErrOracleUnavailable
	}
	req, err := k.GetRequest(ctx, handle)
	if err != nil {
		return types.Seed{}, err
	}
	switch req.Status {
	case StatusFulfilled:
		return types.Seed{}, ErrAlreadyFulfilled.Wrapf("handle %s", handle)
	case StatusCancelled:
		return types.Seed{}, ErrRequestCancelled.Wrapf("handle %s", handle)
	}
	seed, err := Verify(*k.oracleKey, handle, req.Tag, gamma, proof)
	if err != nil {
		return types.Seed{}, err
	}

	req.Status = StatusFulfilled
	req.Gamma = append([]byte(nil), gamma...)
	req.Seed = &seed
	req.FulfilledHeight = types.BlockInfoFrom(ctx).Height
	if err := k.setRequest(ctx, req); err != nil {
		return types.Seed{}, err
	}

	types.EmitEvent(ctx, types.NewEvent(EventTypeRandomnessFulfilled,
		types.NewAttribute(AttributeKeyHandle, handle.String()),
		types.NewAttribute(AttributeKeyGamma, hex.EncodeToString(gamma)),
		types.NewAttribute(AttributeKeySeed, hex.EncodeToString(seed[:])),
	))
	k.logger.Info("randomness fulfilled", "handle", handle.String())
	return seed, nil
}

// Deliver returns the verified seed for handle.
func (k Keeper) Deliver(ctx context.Context, handle uuid.UUID) (types.Seed, error) {
	req, err := k.GetRequest(ctx, handle)
	if err != nil {
		return types.Seed{}, err
	}
	if req.Status == StatusCancelled {
		return types.Seed{}, ErrRequestCancelled.Wrapf("handle %s", handle)
	}
	if req.Status != StatusFulfilled || req.Seed == nil {
		return types.Seed{}, ErrNotFulfilled.Wrapf("handle %s", handle)
	}
	return *req.Seed, nil
}

// Cancel withdraws handle from the pending queue. A request the oracle has
// already answered keeps its seed but can no longer be delivered. Cancelling
// twice is a no-op.
func (k Keeper) Cancel(ctx context.Context, handle uuid.UUID) error {
	req, err := k.GetRequest(ctx, handle)
	if err != nil {
		return err
	}
	if req.Status == StatusCancelled {
		return nil
	}
	req.Status = StatusCancelled
	if err := k.setRequest(ctx, req); err != nil {
		return err
	}

	types.EmitEvent(ctx, types.NewEvent(EventTypeRandomnessCancelled,
		types.NewAttribute(AttributeKeyHandle, handle.String()),
	))
	k.logger.Debug("randomness cancelled", "handle", handle.String())
	return nil
}

// PendingRequests lists unfulfilled requests in handle order.
func (k Keeper) PendingRequests(ctx context.Context) ([]Request, error) {
	kv := k.storeService.OpenKVStore(ctx)
	it := kv.Iterator(requestKeyPrefix, storetypes.PrefixEndBytes(requestKeyPrefix))
	defer it.Close()

	var out []Request
	for ; it.Valid(); it.Next() {
		var req Request
		if err := json.Unmarshal(it.Value(), &req); err != nil {
			return nil, err
		}
		if req.Status == StatusPending {
			out = append(out, req)
		}
	}
	return out, nil
}
