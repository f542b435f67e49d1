package cmd

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"onchainpoker/escrow/internal/codec"
	"onchainpoker/escrow/internal/randomness"
)

func newOracleCmd() *cobra.Command {
	oracleCmd := &cobra.Command{
		Use:   "oracle",
		Short: "Randomness oracle key management and proofs",
	}
	oracleCmd.AddCommand(newOracleKeygenCmd(), newOracleProveCmd())
	return oracleCmd
}

func newOracleKeygenCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "keygen",
		Short: "Generate a new oracle keypair",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := randomness.GenerateOracle(rand.Reader)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "secret: %s\npubkey: %s\n", o.SecretHex(), o.PublicKeyHex())
			return nil
		},
	}
}

type proveOutput struct {
	Tx   codec.RandomnessFulfillTx `json:"tx"`
	Seed string                    `json:"seed"`
}

func newOracleProveCmd() *cobra.Command {
	var secret, handle, tag string
	cmd := &cobra.Command{
		Use:   "prove",
		Short: "Answer a randomness request, printing the randomness/fulfill payload",
		Long: `Answer a randomness request. --handle and --tag are the handle and hex tag
attributes of the RandomnessRequested event.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			o, err := randomness.OracleFromHex(secret)
			if err != nil {
				return err
			}
			h, err := uuid.Parse(handle)
			if err != nil {
				return fmt.Errorf("--handle: %w", err)
			}
			tagBytes, err := hex.DecodeString(tag)
			if err != nil {
				return fmt.Errorf("--tag: %w", err)
			}
			proof, err := o.Prove(h, tagBytes)
			if err != nil {
				return err
			}
			seed := proof.Seed()
			out := proveOutput{
				Tx: codec.RandomnessFulfillTx{
					Handle: h,
					Gamma:  proof.GammaBytes(),
					Proof:  proof.ProofBytes(),
				},
				Seed: hex.EncodeToString(seed[:]),
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVar(&secret, "secret", "", "hex oracle secret")
	cmd.Flags().StringVar(&handle, "handle", "", "request handle")
	cmd.Flags().StringVar(&tag, "tag", "", "hex request tag")
	_ = cmd.MarkFlagRequired("secret")
	_ = cmd.MarkFlagRequired("handle")
	return cmd
}
