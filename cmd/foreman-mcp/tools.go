package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/theforeman/foreman-mcp/internal/bridge"
)

func cmdTools(args []string) {
	asJSON := false
	for _, arg := range args {
		switch arg {
		case "--json":
			asJSON = true
		case "--help", "-h":
			fmt.Print(`foreman-mcp tools - List the exposed tools

Usage:
  foreman-mcp tools [--json]
`)
			return
		}
	}

	registry, err := bridge.NewToolRegistry()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	if asJSON {
		type toolInfo struct {
			Name        string          `json:"name"`
			Description string          `json:"description"`
			InputSchema json.RawMessage `json:"input_schema"`
		}
		infos := make([]toolInfo, 0, registry.Len())
		for _, spec := range registry.List() {
			infos = append(infos, toolInfo{
				Name:        spec.Name,
				Description: spec.Description,
				InputSchema: spec.InputSchema,
			})
		}
		data, err := json.MarshalIndent(infos, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(string(data))
		return
	}

	for _, spec := range registry.List() {
		fmt.Printf("%-20s %s\n", spec.Name, spec.Description)
	}
}
