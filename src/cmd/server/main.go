package main

import (
	"fmt"
	"os"

	"github.com/api-sage/ledger-engine/src/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
