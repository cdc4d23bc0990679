// Package main is the entry point for the mettle-junit CLI.
package main

import "github.com/mettle-junit/mettle-junit/cmd"

func main() {
	cmd.Execute()
}
