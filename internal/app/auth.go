package app

import (
	"context"
	"crypto/ed25519"
	"encoding/binary"
	"encoding/hex"
	"strconv"

	"onchainpoker/escrow/internal/codec"
	"onchainpoker/escrow/internal/store"
	"onchainpoker/escrow/internal/types"
)

var nonceKeyPrefix = []byte("nonce/")

func nonceKey(signer types.Address) []byte {
	return append(append([]byte(nil), nonceKeyPrefix...), signer[:]...)
}

// authenticate checks the envelope signature and returns the signer principal
// with the parsed nonce. It reads no state.
func authenticate(env codec.TxEnvelope) (types.Address, uint64, error) {
	if env.Nonce == "" {
		return types.Address{}, 0, ErrInvalidNonce.Wrap("missing tx.nonce")
	}
	nonce, err := strconv.ParseUint(env.Nonce, 10, 64)
	if err != nil {
		return types.Address{}, 0, ErrInvalidNonce.Wrapf("%q", env.Nonce)
	}
	if env.Signer == "" {
		return types.Address{}, 0, ErrUnauthorized.Wrap("missing tx.signer")
	}
	pub, err := hex.DecodeString(env.Signer)
	if err != nil || len(pub) != ed25519.PublicKeySize {
		return types.Address{}, 0, ErrUnauthorized.Wrap("tx.signer must be a hex ed25519 public key")
	}
	if len(env.Sig) != ed25519.SignatureSize {
		return types.Address{}, 0, ErrUnauthorized.Wrapf("invalid tx.sig length: got %d want %d", len(env.Sig), ed25519.SignatureSize)
	}
	msg := codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer)
	if !ed25519.Verify(ed25519.PublicKey(pub), msg, env.Sig) {
		return types.Address{}, 0, ErrUnauthorized.Wrap("invalid signature")
	}
	return codec.SignerAddress(pub), nonce, nil
}

// consumeNonce enforces strictly increasing nonces per signer.
func consumeNonce(ctx context.Context, svc store.Service, signer types.Address, nonce uint64) error {
	kv := svc.OpenKVStore(ctx)
	key := nonceKey(signer)
	if bz := kv.Get(key); len(bz) == 8 {
		if last := binary.BigEndian.Uint64(bz); nonce <= last {
			return ErrReplayedNonce.Wrapf("nonce %d, last %d", nonce, last)
		}
	}
	bz := make([]byte, 8)
	binary.BigEndian.PutUint64(bz, nonce)
	kv.Set(key, bz)
	return nil
}

// requireSigner checks that the message names the principal that signed it.
func requireSigner(signer, want types.Address, field string) error {
	if signer != want {
		return types.ErrUnauthorized.Wrapf("tx signer %s does not match %s %s", signer, field, want)
	}
	return nil
}
