package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/xavierca1/nexus-concierge/internal/config"
	"github.com/xavierca1/nexus-concierge/internal/nldate"
)

var (
	parseNow      string
	parseTimezone string
	parseForPost  bool
)

var parseDateCmd = &cobra.Command{
	Use:   "parse-date <texto>",
	Short: "Mostra como uma data em linguagem natural é interpretada",
	Example: `  concierge parse-date "sexta às 15h"
  concierge parse-date --post "amanhã"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runParseDate,
}

func init() {
	parseDateCmd.Flags().StringVar(&parseNow, "now", "", "instante de referência (RFC3339); padrão é agora")
	parseDateCmd.Flags().StringVar(&parseTimezone, "tz", config.DefaultTimezone, "fuso horário")
	parseDateCmd.Flags().BoolVar(&parseForPost, "post", false, "usa o horário padrão de posts (10h) em vez do de lembretes (9h)")
}

func runParseDate(cmd *cobra.Command, args []string) error {
	loc, err := time.LoadLocation(parseTimezone)
	if err != nil {
		return fmt.Errorf("fuso inválido %q: %w", parseTimezone, err)
	}

	now := time.Now()
	if parseNow != "" {
		now, err = time.Parse(time.RFC3339, parseNow)
		if err != nil {
			return fmt.Errorf("--now inválido: %w", err)
		}
	}

	def := nldate.ReminderDefault
	if parseForPost {
		def = nldate.PostDefault
	}

	text := strings.Join(args, " ")
	when, err := nldate.ParseRelativeDate(text, now.In(loc), def)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s\n%s\n", when.Format(time.RFC3339), when.Format("Monday, 02/01/2006 15:04"))
	return nil
}
