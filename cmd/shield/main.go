package main

import (
	"os"

	"github.com/HydraXdev/HydraX-v2-sub003/cmd/shield/commands"
)

// main is the entry point for the shield CLI
// ⭐ 통합 CLI 진입점: go run ./cmd/shield [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
