package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/arthur-debert/dotsync/internal/cli"
)

func main() {
	if err := Execute(); err != nil {
		// Issue outcomes are already printed in the summary; anything
		// else gets one clear line on stderr.
		if !errors.Is(err, cli.ErrIssuesFound) {
			fmt.Fprintf(os.Stderr, "dotsync: %v\n", err)
		}
		os.Exit(1)
	}
}
