package cmd

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"onchainpoker/escrow/internal/codec"
)

func newTxCmd() *cobra.Command {
	txCmd := &cobra.Command{
		Use:   "tx",
		Short: "Build transactions for broadcast",
	}
	txCmd.AddCommand(newTxSignCmd())
	return txCmd
}

func newTxSignCmd() *cobra.Command {
	var (
		key   string
		nonce uint64
		typ   string
		value string
	)
	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a transaction and print the envelope",
		Long: `Sign a transaction and print the JSON envelope. --key is a hex ed25519 seed
(32 bytes) or private key (64 bytes); the signer principal is its public key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			priv, err := parsePrivateKey(key)
			if err != nil {
				return err
			}
			if !json.Valid([]byte(value)) {
				return fmt.Errorf("--value is not valid JSON")
			}
			txBytes, err := codec.EncodeSignedTx(typ, json.RawMessage(value), nonce, priv)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(txBytes))
			return nil
		},
	}
	cmd.Flags().StringVar(&key, "key", "", "hex ed25519 key")
	cmd.Flags().Uint64Var(&nonce, "nonce", 0, "signer nonce (must exceed the last committed one)")
	cmd.Flags().StringVar(&typ, "type", "", "tx type, e.g. table/join")
	cmd.Flags().StringVar(&value, "value", "{}", "tx payload JSON")
	_ = cmd.MarkFlagRequired("key")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func parsePrivateKey(s string) (ed25519.PrivateKey, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("--key is not hex: %w", err)
	}
	switch len(b) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(b), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(b), nil
	default:
		return nil, fmt.Errorf("--key must be %d or %d bytes, got %d", ed25519.SeedSize, ed25519.PrivateKeySize, len(b))
	}
}
