package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xavierca1/nexus-concierge/internal/infra/integration/ayrshare"
	"github.com/xavierca1/nexus-concierge/internal/usecase"
)

var (
	toolUserID string
	toolArgs   string
)

var toolCmd = &cobra.Command{
	Use:   "tool <nome>",
	Short: "Executa uma ferramenta do concierge direto no banco",
	Long: `Executa uma ferramenta como o POST /concierge com execute_tool=true.

Ferramentas: ` + toolNames() + `

Exemplo:
  concierge tool set_reminder --user u1 --args '{"task":"ligar","due_date":"amanhã às 10h"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runTool,
}

func init() {
	toolCmd.Flags().StringVar(&toolUserID, "user", "", "id do usuário dono dos registros")
	toolCmd.Flags().StringVar(&toolArgs, "args", "{}", "argumentos da ferramenta em JSON")
	_ = toolCmd.MarkFlagRequired("user")
}

func runTool(cmd *cobra.Command, args []string) error {
	store, err := openStorage(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	publishUC := usecase.NewPublishPostUseCase(store.Posts, ayrshare.NewClient(cfg.Ayrshare, log), log)
	dispatcher := usecase.NewDispatcher(store.Leads, store.Notes, store.Posts, store.Projects, publishUC, cfg.Location(), log)

	result := dispatcher.Execute(cmd.Context(), usecase.ExecuteToolInput{
		UserID:   toolUserID,
		ToolName: args[0],
		ToolArgs: json.RawMessage(toolArgs),
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !result.Success {
		return fmt.Errorf("ferramenta %s falhou", args[0])
	}
	return nil
}

func toolNames() string {
	names := make([]string, 0, len(usecase.AllTools))
	for _, t := range usecase.AllTools {
		names = append(names, string(t))
	}
	return strings.Join(names, ", ")
}
