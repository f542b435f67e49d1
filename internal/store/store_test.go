package store

import (
	"context"
	"errors"
	"testing"

	dbm "github.com/cosmos/cosmos-db"
	"github.com/stretchr/testify/require"
)

func newTestContext(t *testing.T) context.Context {
	t.Helper()
	return WithKVStore(context.Background(), NewRoot(dbm.NewMemDB()))
}

func TestAtomic_WritesOnSuccess(t *testing.T) {
	ctx := newTestContext(t)
	svc := NewService(PrefixBank)

	err := Atomic(ctx, func(ctx context.Context) error {
		svc.OpenKVStore(ctx).Set([]byte("k"), []byte("v"))
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []byte("v"), svc.OpenKVStore(ctx).Get([]byte("k")))
}

func TestAtomic_DiscardsOnError(t *testing.T) {
	ctx := newTestContext(t)
	svc := NewService(PrefixBank)
	boom := errors.New("boom")

	err := Atomic(ctx, func(ctx context.Context) error {
		svc.OpenKVStore(ctx).Set([]byte("k"), []byte("v"))
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.Nil(t, svc.OpenKVStore(ctx).Get([]byte("k")))
}

func TestService_PrefixIsolation(t *testing.T) {
	ctx := newTestContext(t)
	NewService(PrefixBank).OpenKVStore(ctx).Set([]byte("k"), []byte("bank"))
	NewService(PrefixTable).OpenKVStore(ctx).Set([]byte("k"), []byte("table"))

	require.Equal(t, []byte("bank"), NewService(PrefixBank).OpenKVStore(ctx).Get([]byte("k")))
	require.Equal(t, []byte("table"), NewService(PrefixTable).OpenKVStore(ctx).Get([]byte("k")))
}

func TestService_PanicsWithoutStore(t *testing.T) {
	require.Panics(t, func() {
		NewService(PrefixApp).OpenKVStore(context.Background())
	})
	require.Error(t, Atomic(context.Background(), func(context.Context) error { return nil }))
}

func TestHash_StableAndSensitive(t *testing.T) {
	a := NewRoot(dbm.NewMemDB())
	b := NewRoot(dbm.NewMemDB())

	a.Set([]byte("bob"), []byte{2})
	a.Set([]byte("alice"), []byte{1})
	b.Set([]byte("alice"), []byte{1})
	b.Set([]byte("bob"), []byte{2})
	require.Equal(t, Hash(a), Hash(b))

	b.Set([]byte("alice"), []byte{9})
	require.NotEqual(t, Hash(a), Hash(b))
}
