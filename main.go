package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	root := &cobra.Command{
		Use:          "pokedex",
		Short:        "Conversational Pokedex backed by PokeAPI, pgvector and Gemini",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("env-file", ".env", "dotenv file loaded before reading the environment")
	root.Version = version
	root.SetVersionTemplate("{{.Version}}\n")
	root.AddCommand(serveCmd())
	root.AddCommand(askCmd())
	root.AddCommand(indexCmd())
	root.AddCommand(mcpCmd())
	root.AddCommand(versionCmd())
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
