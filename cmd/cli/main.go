// Package main is the entry point for the beantrace CLI binary.
package main

import (
	"os"

	_ "github.com/duckdb/duckdb-go/v2"
	_ "github.com/mattn/go-sqlite3"

	cli "beantrace/pkg/cli"
)

func main() {
	os.Exit(cli.Execute())
}
