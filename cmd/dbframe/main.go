// Package main is the entry point for the dbframe CLI binary.
package main

import (
	"os"

	"github.com/koustreak/dbframe/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
