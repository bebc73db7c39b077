package main

import (
	"context"
	"os"

	"github.com/navid-fn/carrier-sales/configs"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cfg := &configs.AppConfig{}

	rootCmd := &cobra.Command{
		Use:          "carrier-sales",
		Short:        "Carrier sales API and dashboard",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := configs.AppLoad()
			if err != nil {
				return err
			}
			*cfg = *loaded
			return nil
		},
	}

	rootCmd.AddCommand(newServeCmd(cfg))
	rootCmd.AddCommand(newMigrateCmd(cfg))
	rootCmd.AddCommand(newSeedLoadsCmd(cfg))

	return rootCmd
}
