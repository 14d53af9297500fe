package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"inventario-app/config"
)

var (
	baseURL  string
	logLevel string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "inventario",
	Short: "Inventory screens on the terminal",
	Long: `Terminal client for the inventory back office: intakes and their line
items, device and spare part creation, outbound batches, packages and their
review. The sandbox subcommand serves a local API to work against.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded := config.LoadConfig()
		if baseURL != "" {
			loaded.BaseURL = baseURL
		}
		if logLevel != "" {
			loaded.LogLevel = strings.ToLower(logLevel)
		}
		if err := loaded.Validate(); err != nil {
			return err
		}
		cfg = loaded
		setupLogging(cfg.LogLevel)
		return nil
	},
}

// Execute runs the command line until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", "", "inventory API base URL (overrides INVENTARIO_BASE_URL)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error)")
}

func setupLogging(level string) {
	zerolog.SetGlobalLevel(parseLevel(level))
	log.Debug().Str("base_url", cfg.BaseURL).Msg("configuration loaded")
}

// parseLevel falls back to info for an unknown or empty level.
func parseLevel(level string) zerolog.Level {
	l, err := zerolog.ParseLevel(level)
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
