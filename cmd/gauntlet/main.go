package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/dshills/gauntlet/internal/cli"
)

func main() {
	// A missing .env file is not an error; provider keys may come from the
	// real environment.
	_ = godotenv.Load()

	os.Exit(cli.Run())
}
