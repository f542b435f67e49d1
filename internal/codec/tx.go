package codec

import (
	"crypto/ed25519"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"onchainpoker/escrow/internal/types"
)

// TxEnvelope is the transaction container. CometBFT transactions are opaque
// bytes; ours are JSON.
type TxEnvelope struct {
	Type  string          `json:"type"`
	Value json.RawMessage `json:"value"`

	// Nonce must strictly increase per signer. Signer is the hex ed25519
	// public key of the principal. Sig covers SignBytes.
	Nonce  string `json:"nonce,omitempty"`
	Signer string `json:"signer,omitempty"`
	Sig    []byte `json:"sig,omitempty"`
}

const (
	TypeTableInitialize     = "table/initialize"
	TypeTableJoin           = "table/join"
	TypeTableRequestShuffle = "table/request_shuffle"
	TypeTableFulfillShuffle = "table/fulfill_shuffle"
	TypeTableAdvanceStage   = "table/advance_stage"
	TypeTableDistribute     = "table/distribute"
	TypeRandomnessFulfill   = "randomness/fulfill"
	TypeBankMint            = "bank/mint"
	TypeBankSetFrozen       = "bank/set_frozen"
)

func DecodeTxEnvelope(txBytes []byte) (TxEnvelope, error) {
	var env TxEnvelope
	if err := json.Unmarshal(txBytes, &env); err != nil {
		return TxEnvelope{}, fmt.Errorf("invalid tx json: %w", err)
	}
	if env.Type == "" {
		return TxEnvelope{}, fmt.Errorf("missing tx.type")
	}
	return env, nil
}

const txAuthDomain = "escrow/tx/v1"

// SignBytes = DOMAIN || 0x00 || type || 0x00 || nonce || 0x00 || signer || 0x00 || sha256(value)
func SignBytes(typ string, value []byte, nonce string, signer string) []byte {
	sum := sha256.Sum256(value)
	out := make([]byte, 0, len(txAuthDomain)+1+len(typ)+1+len(nonce)+1+len(signer)+1+sha256.Size)
	out = append(out, []byte(txAuthDomain)...)
	out = append(out, 0)
	out = append(out, []byte(typ)...)
	out = append(out, 0)
	out = append(out, []byte(nonce)...)
	out = append(out, 0)
	out = append(out, []byte(signer)...)
	out = append(out, 0)
	out = append(out, sum[:]...)
	return out
}

// SignerAddress is the principal a key signs as.
func SignerAddress(pub ed25519.PublicKey) types.Address {
	var a types.Address
	copy(a[:], pub)
	return a
}

// EncodeSignedTx marshals value, signs it with priv and returns the tx bytes.
func EncodeSignedTx(typ string, value any, nonce uint64, priv ed25519.PrivateKey) ([]byte, error) {
	valueBytes, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("marshal %s value: %w", typ, err)
	}
	signer := hex.EncodeToString(priv.Public().(ed25519.PublicKey))
	n := strconv.FormatUint(nonce, 10)
	env := TxEnvelope{
		Type:   typ,
		Value:  valueBytes,
		Nonce:  n,
		Signer: signer,
		Sig:    ed25519.Sign(priv, SignBytes(typ, valueBytes, n, signer)),
	}
	return json.Marshal(env)
}

// ---- Table ----

type TableInitializeTx struct {
	Authority  types.Address `json:"authority"`
	BigBlind   uint64        `json:"bigBlind"`
	MaxPlayers uint8         `json:"maxPlayers"`
}

type TableJoinTx struct {
	Table        types.Address `json:"table"`
	Player       types.Address `json:"player"`
	TokenAccount types.Address `json:"tokenAccount"`
	BuyIn        uint64        `json:"buyIn"`
}

type TableRequestShuffleTx struct {
	Table     types.Address `json:"table"`
	Authority types.Address `json:"authority"`
}

// TableFulfillShuffleTx needs no particular signer; any funded relayer may
// submit it.
type TableFulfillShuffleTx struct {
	Table  types.Address `json:"table"`
	Handle uuid.UUID     `json:"handle"`
}

type TableAdvanceStageTx struct {
	Table     types.Address `json:"table"`
	Authority types.Address `json:"authority"`
}

type TableDistributeTx struct {
	Table     types.Address `json:"table"`
	Authority types.Address `json:"authority"`
	Winners   []uint32      `json:"winners"`
}

// ---- Randomness ----

type RandomnessFulfillTx struct {
	Handle uuid.UUID `json:"handle"`
	Gamma  []byte    `json:"gamma"` // base64 point (32 bytes)
	Proof  []byte    `json:"proof"` // base64 DLEQ proof (96 bytes)
}

// ---- Bank ----

type BankMintTx struct {
	To     types.Address `json:"to"`
	Amount uint64        `json:"amount"`
}

type BankSetFrozenTx struct {
	Account types.Address `json:"account"`
	Frozen  bool          `json:"frozen"`
}
