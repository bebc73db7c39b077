package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/navid-fn/carrier-sales/configs"
	"github.com/navid-fn/carrier-sales/internal/seed"
	"github.com/navid-fn/carrier-sales/utils"
	"github.com/spf13/cobra"
)

func newSeedLoadsCmd(cfg *configs.AppConfig) *cobra.Command {
	var (
		path  string
		force bool
	)

	cmd := &cobra.Command{
		Use:   "seed-loads",
		Short: "Write the sample load catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := utils.NewLogger(cfg.LogLevel)
			if path == "" {
				path = cfg.LoadsCSVPath
			}

			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists, use --force to overwrite", path)
			} else if err != nil && !errors.Is(err, os.ErrNotExist) {
				return err
			}

			n, err := seed.WriteCatalog(path)
			if err != nil {
				return err
			}
			logger.WithField("file", path).Infof("Catalog initialized with %d sample loads", n)
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "path", "", "Catalog file to write (defaults to LOADS_CSV_PATH)")
	cmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing catalog")

	return cmd
}
