// Command mcpforge serves the MCP forge over stdio.
// file: cmd/mcpforge/main.go
package main

import (
	"os"
)

// Version information, set during build via ldflags.
var (
	Version    = "0.1.0-dev"
	commitHash = "unknown"
	buildDate  = "unknown"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
