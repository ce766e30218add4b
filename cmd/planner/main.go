// Package main is the entry point for the planner CLI.
package main

import "github.com/plannerhq/planner/internal/cli"

func main() {
	cli.Execute()
}
