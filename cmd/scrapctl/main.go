// Command scrapctl computes dashboard snapshots, reports, and contributor
// rankings from a scrap ledger CSV without a database.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
