package cmd

import (
	"github.com/spf13/cobra"

	"onchainpoker/escrow/internal/config"
)

// NewRootCmd creates the escrowd root command.
func NewRootCmd() *cobra.Command {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "escrowd",
		Short:         "Poker table escrow chain daemon",
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return v.BindPFlags(cmd.Root().PersistentFlags())
		},
	}
	config.RegisterFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(
		newStartCmd(v),
		newOracleCmd(),
		newTxCmd(),
		newConfigCmd(v),
	)
	return rootCmd
}
