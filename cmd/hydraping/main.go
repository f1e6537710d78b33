package main

import (
	"context"
	"os"
)

// Version is set at build time.
var Version = "dev"

func main() {
	cmd := SetupCmd(Version)
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}
