// Package cmd wires the loomplan command tree: planning runs, candidate
// inspection, persisted settings, restriction lists, exports, and the HTTP
// server.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/loomworks/loomplan/internal/config"
	"github.com/loomworks/loomplan/internal/observability"
	"github.com/loomworks/loomplan/pkg/planstore"
)

var rootCmd = &cobra.Command{
	Use:   "loomplan",
	Short: "Loom allocation planner for the weaving floor",
	Long: `loomplan matches a backlog of weaving jobs to the looms that can take
them, honoring machine-number eligibility, selvedge and weave tooling
compatibility, and the remaining-yardage threshold.

Inputs are a planning manifest naming the job and machine tables. Results
go to stdout, a file, or the local plan store as a run snapshot.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initApp()
	},
}

var versionInfo = struct {
	Version   string
	Commit    string
	BuildDate string
}{
	Version:   "dev",
	Commit:    "HEAD",
	BuildDate: "unknown",
}

// SetVersionInfo records build metadata injected by the linker.
func SetVersionInfo(version, commit, buildDate string) {
	versionInfo.Version = version
	versionInfo.Commit = commit
	versionInfo.BuildDate = buildDate
}

var (
	cfgFile   string
	logLevel  string
	appConfig *config.Config
)

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug|info|warn|error)")
}

func initApp() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if err := observability.Init(cfg.Logging.Level); err != nil {
		return err
	}
	appConfig = cfg
	return nil
}

// openStore opens the configured plan store. Callers close it.
func openStore(ctx context.Context) (*planstore.Store, error) {
	if appConfig == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}
	return planstore.Open(ctx, planstore.Config{Path: appConfig.Store.Path})
}

// Execute runs the command tree.
func Execute() error {
	defer observability.Sync()
	return rootCmd.Execute()
}
