package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Cria as tabelas do backend configurado",
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStorage(cfg, log)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.migrate(cmd.Context(), cfg.Database.Driver); err != nil {
			return err
		}
		log.Info("migração concluída", zap.String("driver", cfg.Database.Driver))
		return nil
	},
}
