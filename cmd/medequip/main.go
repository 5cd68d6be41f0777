package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/kiranshivaraju/medequip/cmd/medequip/commands"
)

func main() {
	// Logs go to stderr so command output on stdout stays machine-readable.
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	}))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	commands.Execute()
}
