package main

import (
	"fmt"
	"os"
	_ "time/tzdata"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/xavierca1/nexus-concierge/internal/config"
	"github.com/xavierca1/nexus-concierge/internal/logger"
)

var version = "dev"

var (
	cfg      config.Config
	log      *zap.Logger
	logLevel string
)

var rootCmd = &cobra.Command{
	Use:           "concierge",
	Short:         "Nexus Concierge - assistente de CRM, notas, lembretes e posts",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if logLevel == "" {
			logLevel = os.Getenv("LOG_LEVEL")
		}
		log, err = logger.New(logLevel)
		if err != nil {
			return err
		}

		// parse-date não precisa de configuração nem banco
		if cmd == parseDateCmd {
			return nil
		}
		cfg, err = config.Load()
		if err != nil {
			return err
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if log != nil {
			_ = log.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "nível de log (debug, info, warn, error)")
	rootCmd.AddCommand(serveCmd, migrateCmd, toolCmd, parseDateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "erro:", err)
		os.Exit(1)
	}
}
