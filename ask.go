package main

import (
	"encoding/json"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pokedex-genai/server/internal/agent/model"
)

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask <query...>",
		Short: "Run one turn and print the response document as JSON",
		Args:  cobra.MinimumNArgs(1),
		RunE:  runAsk,
	}
	cmd.Flags().String("conversation-id", "", "record the turn under this conversation")
	return cmd
}

func runAsk(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, shutdown, err := setup(ctx, cmd)
	if err != nil {
		return err
	}
	defer shutdown()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	conversationID, _ := cmd.Flags().GetString("conversation-id")
	doc, err := a.runner.Invoke(ctx, model.QueryInput{
		Query:          strings.Join(args, " "),
		ConversationID: conversationID,
	})
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
