// Command wizard runs YAML-declared wizards in the terminal.
//
//	wizard run form.yaml --ui cli --format yaml
//	wizard graph form.yaml > form.md
//	wizard check form.yaml
package main

import (
	"errors"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		if errors.Is(err, errCancelled) {
			os.Exit(exitCancelled)
		}

		os.Exit(1)
	}
}
