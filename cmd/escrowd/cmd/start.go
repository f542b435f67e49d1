package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/cometbft/cometbft/abci/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"onchainpoker/escrow/internal/app"
	"onchainpoker/escrow/internal/config"
	"onchainpoker/escrow/internal/logging"
	"onchainpoker/escrow/internal/relay"
	"onchainpoker/escrow/internal/store"
)

func newStartCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Run the ABCI application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}

			if err := os.MkdirAll(cfg.DataDir(), 0o755); err != nil {
				return fmt.Errorf("create data dir: %w", err)
			}
			db, err := store.OpenDB(cfg.DB.Backend, cfg.DataDir())
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			oracleKey, err := cfg.OracleKey()
			if err != nil {
				return err
			}
			if oracleKey == nil {
				logger.Warn("no oracle.pubkey configured; randomness fulfilments will be rejected")
			}
			mintAuthority, err := cfg.MintAuthority()
			if err != nil {
				return err
			}
			if mintAuthority.IsZero() {
				logger.Warn("no bank.mint_authority configured; minting is open to any signer")
			}

			opts := app.Options{
				DB:            db,
				Logger:        logger,
				OracleKey:     oracleKey,
				MintAuthority: mintAuthority,
			}
			if cfg.Relay.NATSURL != "" {
				conn, err := relay.Connect(cfg.Relay.NATSURL, cfg.Relay.SubjectPrefix, logger)
				if err != nil {
					return err
				}
				defer func() { _ = conn.Close() }()
				opts.Relay = conn.Relay
				logger.Info("relaying events", "nats", cfg.Relay.NATSURL, "prefix", cfg.Relay.SubjectPrefix)
			}

			a, err := app.New(opts)
			if err != nil {
				return fmt.Errorf("init app: %w", err)
			}

			srv, err := server.NewServer(cfg.ABCI.Addr, cfg.ABCI.Transport, a)
			if err != nil {
				return fmt.Errorf("create abci server: %w", err)
			}
			if err := srv.Start(); err != nil {
				return fmt.Errorf("abci server start: %w", err)
			}
			defer func() { _ = srv.Stop() }()
			logger.Info("abci server listening", "addr", cfg.ABCI.Addr, "transport", cfg.ABCI.Transport, "home", cfg.Home)

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
			logger.Info("shutting down")
			return nil
		},
	}
}
