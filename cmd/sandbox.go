package cmd

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"inventario-app/idgen"
	"inventario-app/sandbox"
	"inventario-app/sandbox/store"
)

var (
	sandboxPort string
	sandboxNode int64
	tokenTTL    time.Duration
)

var sandboxCmd = &cobra.Command{
	Use:   "sandbox",
	Short: "Local inventory API backed by its own database",
}

var sandboxServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the inventory API",
	Long: `Serves the inventory API on APP_PORT using the DB_* settings. With
SANDBOX_SEED the database starts with a small working set. It shuts down
gracefully on SIGINT or SIGTERM.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		sc := cfg.Sandbox
		if sandboxPort != "" {
			sc.Port = sandboxPort
		}
		if err := idgen.Init(sandboxNode); err != nil {
			return errors.Wrap(err, "snowflake node")
		}

		db, err := sc.OpenDB()
		if err != nil {
			return err
		}
		if err := store.Migrate(db); err != nil {
			return errors.Wrap(err, "migrate")
		}
		if sc.Seed {
			if err := store.Seed(db); err != nil {
				return errors.Wrap(err, "seed")
			}
		}

		srv := sandbox.New(sc, db, sandbox.NewNotifier(sc, log.Logger), log.Logger)
		errCh := make(chan error, 1)
		go func() { errCh <- srv.Listen() }()

		select {
		case err := <-errCh:
			return err
		case <-cmd.Context().Done():
			log.Info().Msg("shutting down sandbox")
			return srv.Shutdown()
		}
	},
}

var sandboxTokenCmd = &cobra.Command{
	Use:   "token <usuario>",
	Short: "Sign a session token for JWT_SECRET",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.Sandbox.JWTSecret == "" {
			return errors.New("JWT_SECRET is not set")
		}
		token, err := sandbox.IssueToken(cfg.Sandbox.JWTSecret, args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	sandboxServeCmd.Flags().StringVar(&sandboxPort, "port", "", "port to listen on (overrides APP_PORT)")
	sandboxServeCmd.Flags().Int64Var(&sandboxNode, "node", 1, "snowflake node of this instance")
	sandboxTokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 8*time.Hour, "token lifetime")

	sandboxCmd.AddCommand(sandboxServeCmd, sandboxTokenCmd)
	rootCmd.AddCommand(sandboxCmd)
}
