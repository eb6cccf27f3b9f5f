package main

import (
	"fmt"
	"os"
)

const version = "0.1.0"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve":
		cmdServe(os.Args[2:])
	case "tools":
		cmdTools(os.Args[2:])
	case "version", "-v", "--version":
		fmt.Printf("foreman-mcp version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Print(`foreman-mcp - MCP server for the Foreman API

Usage:
  foreman-mcp <command> [options]

Commands:
  serve      Start the MCP server
  tools      List the exposed tools
  version    Show version
  help       Show this help

Run 'foreman-mcp <command> --help' for more information on a command.
`)
}
