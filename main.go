package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/mrlokans/librarian/internal/cli"
)

// Version information - set at build time via ldflags
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	// A missing .env is fine, the environment may already be set.
	_ = godotenv.Load()

	if err := cli.Execute(context.Background(), cli.BuildInfo{Version: Version, Commit: Commit}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
