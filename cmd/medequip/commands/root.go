// Package commands implements the medequip command-line interface.
package commands

import (
	"fmt"
	"os"

	"github.com/kiranshivaraju/medequip/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Execute runs the CLI and exits non-zero on error.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// NewRootCmd builds the full command tree. Each call has its own viper
// instance, so flags never leak between invocations.
func NewRootCmd() *cobra.Command {
	v := viper.New()

	root := &cobra.Command{
		Use:           "medequip",
		Short:         "Medical equipment condition analyzer",
		Long:          `Grades used medical equipment from a photo and estimates its resale value.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "YAML config file (overrides MEDEQUIP_CONFIG)")
	flags.String("provider", "", "Vision provider: gemini, openai, vllm, anthropic, ollama or none (overrides VISION_PROVIDER)")
	flags.String("database-url", "", "Postgres URL for API key storage (overrides DATABASE_URL)")

	v.BindPFlag("MEDEQUIP_CONFIG", flags.Lookup("config"))
	v.BindPFlag("VISION_PROVIDER", flags.Lookup("provider"))
	v.BindPFlag("DATABASE_URL", flags.Lookup("database-url"))

	load := func() (*config.Config, error) {
		cfg, err := config.LoadFrom(v)
		if err != nil {
			return nil, fmt.Errorf("load config: %w", err)
		}
		return cfg, nil
	}

	root.AddCommand(
		newAnalyzeCmd(load),
		newKeysCmd(load),
		newKnowledgeCmd(),
		newVersionCmd(),
	)
	return root
}

type configLoader func() (*config.Config, error)
