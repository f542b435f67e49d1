// Package store carries the chain's KV state through a context and gives each
// operation an all-or-nothing branch of it.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"fmt"

	"cosmossdk.io/store/cachekv"
	"cosmossdk.io/store/dbadapter"
	"cosmossdk.io/store/prefix"
	storetypes "cosmossdk.io/store/types"
	dbm "github.com/cosmos/cosmos-db"
)

// Module store prefixes.
var (
	PrefixApp        = []byte("app/")
	PrefixTable      = []byte("table/")
	PrefixBank       = []byte("bank/")
	PrefixRandomness = []byte("randomness/")
)

// OpenDB opens the backing database under dir. backend is a cosmos-db backend
// name such as "goleveldb" or "memdb".
func OpenDB(backend, dir string) (dbm.DB, error) {
	db, err := dbm.NewDB("escrow", dbm.BackendType(backend), dir)
	if err != nil {
		return nil, fmt.Errorf("open %s db: %w", backend, err)
	}
	return db, nil
}

// NewRoot wraps db as the root KV store.
func NewRoot(db dbm.DB) storetypes.KVStore {
	return dbadapter.Store{DB: db}
}

// NewBranch returns a cache over parent; nothing reaches parent until Write.
func NewBranch(parent storetypes.KVStore) storetypes.CacheKVStore {
	return cachekv.NewStore(parent)
}

type kvStoreKey struct{}

func WithKVStore(ctx context.Context, kv storetypes.KVStore) context.Context {
	return context.WithValue(ctx, kvStoreKey{}, kv)
}

func KVStoreFrom(ctx context.Context) (storetypes.KVStore, bool) {
	kv, ok := ctx.Value(kvStoreKey{}).(storetypes.KVStore)
	return kv, ok && kv != nil
}

// Service opens one module's prefixed view of the context store.
type Service struct {
	prefix []byte
}

func NewService(p []byte) Service {
	return Service{prefix: append([]byte(nil), p...)}
}

// OpenKVStore panics when ctx carries no store: every entry point installs one.
func (s Service) OpenKVStore(ctx context.Context) storetypes.KVStore {
	kv, ok := KVStoreFrom(ctx)
	if !ok {
		panic("store: context carries no KV store")
	}
	return prefix.NewStore(kv, s.prefix)
}

// Atomic runs fn against a branch of the context store and writes the branch
// back only when fn returns nil.
func Atomic(ctx context.Context, fn func(ctx context.Context) error) error {
	parent, ok := KVStoreFrom(ctx)
	if !ok {
		return fmt.Errorf("store: context carries no KV store")
	}
	branch := NewBranch(parent)
	if err := fn(WithKVStore(ctx, branch)); err != nil {
		return err
	}
	branch.Write()
	return nil
}

// Hash digests every key/value pair in iteration order. Keys iterate sorted,
// so equal contents give equal hashes.
func Hash(kv storetypes.KVStore) []byte {
	it := kv.Iterator(nil, nil)
	defer it.Close()

	h := sha256.New()
	var lenBuf [4]byte
	for ; it.Valid(); it.Next() {
		for _, part := range [][]byte{it.Key(), it.Value()} {
			binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(part)))
			_, _ = h.Write(lenBuf[:])
			_, _ = h.Write(part)
		}
	}
	return h.Sum(nil)
}
