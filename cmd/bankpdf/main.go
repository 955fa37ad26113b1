package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/cleared-dev/bankpdf/internal/commands"
)

func main() {
	// A missing .env is normal.
	_ = godotenv.Load()

	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
