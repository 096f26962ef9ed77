package cmd

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/loomworks/loomplan/internal/observability"
	"github.com/loomworks/loomplan/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve the planning API over HTTP. All /v1 routes require the X-Token
header to match the configured server token; until a token is configured
the routes answer 500.

Configuration comes from the config file and LOOMPLAN_ environment
variables (LOOMPLAN_SERVER_TOKEN, LOOMPLAN_SERVER_PORT, ...).`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := openStore(ctx)
	if err != nil {
		return err
	}
	defer store.Close()

	if appConfig.Server.Token == "" {
		observability.CLILogger.Warn("server token is not configured; /v1 routes will answer 500")
	}

	srv := server.New(server.Config{
		Host:      appConfig.Server.Host,
		Port:      appConfig.Server.Port,
		Token:     appConfig.Server.Token,
		RateLimit: appConfig.Server.RateLimit,
		Store:     store,
	})

	observability.CLILogger.Info("starting server",
		zap.String("host", appConfig.Server.Host),
		zap.Int("port", srv.Port()))
	return srv.ListenAndServe(ctx)
}
