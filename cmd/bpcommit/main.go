// Command bpcommit is a thin CLI exercising the bp-core library: embedding
// and verifying LNPBP-2 lock-script commitments, deriving Taproot output
// keys, and constructing/concealing blinded single-use-seals.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
