package cmd

import (
	"bytes"
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/pelletier/go-toml/v2"
	"github.com/stretchr/testify/require"

	"onchainpoker/escrow/internal/codec"
	"onchainpoker/escrow/internal/randomness"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestOracleKeygenAndProve(t *testing.T) {
	out, err := execute(t, "oracle", "keygen")
	require.NoError(t, err)

	var secret, pubkey string
	for _, line := range strings.Split(strings.TrimSpace(out), "\n") {
		k, v, ok := strings.Cut(line, ": ")
		require.True(t, ok, line)
		switch k {
		case "secret":
			secret = v
		case "pubkey":
			pubkey = v
		}
	}
	require.NotEmpty(t, secret)
	require.NotEmpty(t, pubkey)

	handle := uuid.New()
	out, err = execute(t, "oracle", "prove", "--secret", secret, "--handle", handle.String(), "--tag", "0a0b0c")
	require.NoError(t, err)

	var res proveOutput
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	require.Equal(t, handle, res.Tx.Handle)

	pk, err := randomness.ParseOracleKey(pubkey)
	require.NoError(t, err)
	seed, err := randomness.Verify(*pk, handle, []byte{0x0a, 0x0b, 0x0c}, res.Tx.Gamma, res.Tx.Proof)
	require.NoError(t, err)
	require.Equal(t, hex.EncodeToString(seed[:]), res.Seed)

	// A proof for a different tag must not verify.
	_, err = randomness.Verify(*pk, handle, []byte{0x0a}, res.Tx.Gamma, res.Tx.Proof)
	require.ErrorIs(t, err, randomness.ErrInvalidProof)
}

func TestOracleProveRejectsBadInput(t *testing.T) {
	_, err := execute(t, "oracle", "prove", "--secret", "zz", "--handle", uuid.NewString())
	require.Error(t, err)

	_, err = execute(t, "oracle", "prove", "--secret", strings.Repeat("00", 32), "--handle", "not-a-uuid")
	require.Error(t, err)
}

func TestTxSign(t *testing.T) {
	seed := bytes.Repeat([]byte{7}, ed25519.SeedSize)
	priv := ed25519.NewKeyFromSeed(seed)

	out, err := execute(t, "tx", "sign",
		"--key", hex.EncodeToString(seed),
		"--nonce", "5",
		"--type", codec.TypeBankMint,
		"--value", `{ "to": "`+strings.Repeat("11", 32)+`", "amount": 100 }`,
	)
	require.NoError(t, err)

	env, err := codec.DecodeTxEnvelope([]byte(strings.TrimSpace(out)))
	require.NoError(t, err)
	require.Equal(t, codec.TypeBankMint, env.Type)
	require.Equal(t, "5", env.Nonce)

	pub := priv.Public().(ed25519.PublicKey)
	require.Equal(t, hex.EncodeToString(pub), env.Signer)
	require.True(t, ed25519.Verify(pub, codec.SignBytes(env.Type, env.Value, env.Nonce, env.Signer), env.Sig))

	var mint codec.BankMintTx
	require.NoError(t, json.Unmarshal(env.Value, &mint))
	require.Equal(t, uint64(100), mint.Amount)
}

func TestTxSignRejectsBadInput(t *testing.T) {
	_, err := execute(t, "tx", "sign", "--key", "abcd", "--type", codec.TypeBankMint)
	require.ErrorContains(t, err, "--key must be")

	_, err = execute(t, "tx", "sign", "--key", strings.Repeat("01", 32), "--type", codec.TypeBankMint, "--value", "{")
	require.ErrorContains(t, err, "not valid JSON")
}

func TestConfigShowAppliesFlags(t *testing.T) {
	home := t.TempDir()
	out, err := execute(t, "--home", home, "--log.format", "json", "config", "show")
	require.NoError(t, err)

	var settings map[string]any
	require.NoError(t, toml.Unmarshal([]byte(out), &settings))
	require.Equal(t, home, settings["home"])
	logSettings, ok := settings["log"].(map[string]any)
	require.True(t, ok)
	require.Equal(t, "json", logSettings["format"])
	require.Equal(t, "info", logSettings["level"])
}

func TestConfigShowRejectsInvalid(t *testing.T) {
	_, err := execute(t, "--home", t.TempDir(), "--abci.transport", "udp", "config", "show")
	require.ErrorContains(t, err, "abci.transport")
}
