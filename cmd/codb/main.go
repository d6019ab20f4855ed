package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/oshokin/codb/kv"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

// run executes the CLI and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	app := newApp(stdout, stderr)

	if err := app.Run(args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		} else {
			fmt.Fprintf(stderr, "error: %v\n", kv.ClassifyError(err))
		}

		return 1
	}

	return 0
}
