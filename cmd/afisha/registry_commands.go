package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"afisha/internal/logging"
	"afisha/internal/registry"
	"afisha/internal/registrysync"
	"afisha/internal/storage"
)

func newRegistryCommand(ctx *commandContext) *cobra.Command {
	registryCmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the local film register replica",
	}

	registryCmd.AddCommand(newRegistrySyncCommand(ctx))
	registryCmd.AddCommand(newRegistryImportCommand(ctx))

	return registryCmd
}

func newRegistrySyncCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Pull new register records from the open data API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return fmt.Errorf("init logger: %w", err)
			}

			db, err := storage.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			syncer := registrysync.NewSyncer(
				registrysync.NewClient(cfg),
				registry.NewStore(db),
				logger,
			)
			added, err := syncer.Sync(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Synced %d new register record(s)\n", added)
			return nil
		},
	}
}

func newRegistryImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <csv-file>",
		Short: "Load a register CSV export into the local replica",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			file, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open csv: %w", err)
			}
			defer file.Close()

			movies, err := registry.ReadCSV(file)
			if err != nil {
				return err
			}

			db, err := storage.Open(cfg)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := registry.NewStore(db).Upsert(cmd.Context(), movies); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d register record(s) from %s\n", len(movies), args[0])
			return nil
		},
	}
}
