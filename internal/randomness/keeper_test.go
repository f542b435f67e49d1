package randomness

import (
	"bytes"
	"context"
	"testing"

	"cosmossdk.io/log"
	dbm "github.com/cosmos/cosmos-db"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"onchainpoker/escrow/internal/ocpcrypto"
	"onchainpoker/escrow/internal/store"
	"onchainpoker/escrow/internal/types"
)

func newTestOracle(t *testing.T, fill byte) *Oracle {
	t.Helper()
	o, err := GenerateOracle(bytes.NewReader(bytes.Repeat([]byte{fill}, 64)))
	require.NoError(t, err)
	return o
}

func newTestKeeper(t *testing.T, oracle *Oracle) (Keeper, context.Context, *types.EventManager) {
	t.Helper()
	var key *ocpcrypto.Point
	if oracle != nil {
		pk := oracle.PublicKey()
		key = &pk
	}
	em := types.NewEventManager()
	ctx := store.WithKVStore(context.Background(), store.NewRoot(dbm.NewMemDB()))
	ctx = types.WithEventManager(ctx, em)
	ctx = types.WithBlockInfo(ctx, types.BlockInfo{Height: 7})
	return NewKeeper(store.NewService(store.PrefixRandomness), key, log.NewTestLogger(t)), ctx, em
}

func TestRequestFulfillDeliver(t *testing.T) {
	oracle := newTestOracle(t, 0x11)
	k, ctx, em := newTestKeeper(t, oracle)

	handle, err := k.Request(ctx, []byte("table-1"))
	require.NoError(t, err)

	_, err = k.Deliver(ctx, handle)
	require.ErrorIs(t, err, ErrNotFulfilled)

	pending, err := k.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, handle, pending[0].Handle)
	require.Equal(t, int64(7), pending[0].RequestedHeight)

	proof, err := oracle.Prove(handle, pending[0].Tag)
	require.NoError(t, err)
	seed, err := k.Fulfill(ctx, handle, proof.GammaBytes(), proof.ProofBytes())
	require.NoError(t, err)
	require.Equal(t, proof.Seed(), seed)

	got, err := k.Deliver(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, seed, got)

	_, err = k.Fulfill(ctx, handle, proof.GammaBytes(), proof.ProofBytes())
	require.ErrorIs(t, err, ErrAlreadyFulfilled)

	pending, err = k.PendingRequests(ctx)
	require.NoError(t, err)
	require.Empty(t, pending)

	evs := em.Events()
	require.Len(t, evs, 2)
	require.Equal(t, EventTypeRandomnessRequested, evs[0].Type)
	require.Equal(t, EventTypeRandomnessFulfilled, evs[1].Type)
}

func TestRequest_HandlesAreUnique(t *testing.T) {
	k, ctx, _ := newTestKeeper(t, nil)

	a, err := k.Request(ctx, []byte("same"))
	require.NoError(t, err)
	b, err := k.Request(ctx, []byte("same"))
	require.NoError(t, err)
	require.NotEqual(t, a, b)
}

func TestCancel(t *testing.T) {
	oracle := newTestOracle(t, 0x11)
	k, ctx, em := newTestKeeper(t, oracle)

	handle, err := k.Request(ctx, []byte("table-1"))
	require.NoError(t, err)
	kept, err := k.Request(ctx, []byte("table-2"))
	require.NoError(t, err)

	require.NoError(t, k.Cancel(ctx, handle))
	require.NoError(t, k.Cancel(ctx, handle))

	pending, err := k.PendingRequests(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	require.Equal(t, kept, pending[0].Handle)

	proof, err := oracle.Prove(handle, []byte("table-1"))
	require.NoError(t, err)
	_, err = k.Fulfill(ctx, handle, proof.GammaBytes(), proof.ProofBytes())
	require.ErrorIs(t, err, ErrRequestCancelled)
	_, err = k.Deliver(ctx, handle)
	require.ErrorIs(t, err, ErrRequestCancelled)

	req, err := k.GetRequest(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, StatusCancelled, req.Status)

	var cancelled int
	for _, ev := range em.Events() {
		if ev.Type == EventTypeRandomnessCancelled {
			cancelled++
		}
	}
	require.Equal(t, 1, cancelled)

	// An answered request that is cancelled can no longer be delivered.
	proof, err = oracle.Prove(kept, []byte("table-2"))
	require.NoError(t, err)
	_, err = k.Fulfill(ctx, kept, proof.GammaBytes(), proof.ProofBytes())
	require.NoError(t, err)
	require.NoError(t, k.Cancel(ctx, kept))
	_, err = k.Deliver(ctx, kept)
	require.ErrorIs(t, err, ErrRequestCancelled)

	err = k.Cancel(ctx, uuid.New())
	require.ErrorIs(t, err, ErrRequestNotFound)
}

func TestFulfill_RejectsForgedProofs(t *testing.T) {
	oracle := newTestOracle(t, 0x11)
	k, ctx, _ := newTestKeeper(t, oracle)

	handle, err := k.Request(ctx, []byte("t"))
	require.NoError(t, err)
	other, err := k.Request(ctx, []byte("t"))
	require.NoError(t, err)

	// Proof from a different oracle key.
	impostor := newTestOracle(t, 0x22)
	bad, err := impostor.Prove(handle, []byte("t"))
	require.NoError(t, err)
	_, err = k.Fulfill(ctx, handle, bad.GammaBytes(), bad.ProofBytes())
	require.ErrorIs(t, err, ErrInvalidProof)

	// Valid proof, but for another handle.
	wrong, err := oracle.Prove(other, []byte("t"))
	require.NoError(t, err)
	_, err = k.Fulfill(ctx, handle, wrong.GammaBytes(), wrong.ProofBytes())
	require.ErrorIs(t, err, ErrInvalidProof)

	// Malformed encodings.
	good, err := oracle.Prove(handle, []byte("t"))
	require.NoError(t, err)
	_, err = k.Fulfill(ctx, handle, good.GammaBytes()[:31], good.ProofBytes())
	require.ErrorIs(t, err, ErrInvalidProof)
	_, err = k.Fulfill(ctx, handle, good.GammaBytes(), good.ProofBytes()[:95])
	require.ErrorIs(t, err, ErrInvalidProof)

	req, err := k.GetRequest(ctx, handle)
	require.NoError(t, err)
	require.Equal(t, StatusPending, req.Status)
}

func TestFulfill_UnknownHandleAndNoOracle(t *testing.T) {
	oracle := newTestOracle(t, 0x11)
	k, ctx, _ := newTestKeeper(t, oracle)

	_, err := k.Fulfill(ctx, uuid.New(), nil, nil)
	require.ErrorIs(t, err, ErrRequestNotFound)
	_, err = k.Deliver(ctx, uuid.New())
	require.ErrorIs(t, err, ErrRequestNotFound)

	noOracle, ctx2, _ := newTestKeeper(t, nil)
	handle, err := noOracle.Request(ctx2, []byte("t"))
	require.NoError(t, err)
	proof, err := oracle.Prove(handle, []byte("t"))
	require.NoError(t, err)
	_, err = noOracle.Fulfill(ctx2, handle, proof.GammaBytes(), proof.ProofBytes())
	require.ErrorIs(t, err, ErrOracleUnavailable)
}

func TestOracle_DeterministicAndHexRoundTrip(t *testing.T) {
	oracle := newTestOracle(t, 0x33)
	handle := uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

	p1, err := oracle.Prove(handle, []byte("x"))
	require.NoError(t, err)
	p2, err := oracle.Prove(handle, []byte("x"))
	require.NoError(t, err)
	require.Equal(t, p1.ProofBytes(), p2.ProofBytes())
	require.Equal(t, p1.Seed(), p2.Seed())

	loaded, err := OracleFromHex(oracle.SecretHex())
	require.NoError(t, err)
	require.True(t, ocpcrypto.PointEq(oracle.PublicKey(), loaded.PublicKey()))

	key, err := ParseOracleKey(oracle.PublicKeyHex())
	require.NoError(t, err)
	seed, err := Verify(*key, handle, []byte("x"), p1.GammaBytes(), p1.ProofBytes())
	require.NoError(t, err)
	require.Equal(t, p1.Seed(), seed)

	_, err = OracleFromHex("zz")
	require.Error(t, err)
	_, err = ParseOracleKey("00")
	require.ErrorIs(t, err, ErrOracleUnavailable)
}
