package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/mountbook/mountbook/internal/app"
	"github.com/mountbook/mountbook/internal/config"
)

var rootCmdPersistentFlags struct {
	ConfigFile string
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootCmdPersistentFlags.ConfigFile, "config", "c", "config.yaml", "Path to config file")
	rootCmd.AddCommand(migrateCmd)
}

var rootCmd = &cobra.Command{
	Use:   "mountbook",
	Short: "Mountbook is a REST backend for tracking mount breeding",
	Long: `Mountbook tracks user-owned mounts, their breeding couplings and
per-account settings behind a JWT-protected REST API.`,
	Run: runServe,
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if errRun := app.RunServer(ctx, cfg); errRun != nil {
		log.Fatalf("server error: %v", errRun)
	}
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database schema and exit",
	Run: func(cmd *cobra.Command, _ []string) {
		cfg, err := config.Load(rootCmdPersistentFlags.ConfigFile)
		if err != nil {
			log.Fatalf("failed to load config: %v", err)
		}
		if errMigrate := app.Migrate(context.Background(), cfg); errMigrate != nil {
			log.Fatalf("migration failed: %v", errMigrate)
		}
		log.Info("database migrated")
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
