package main

import (
	"context"
	"fmt"
	"os"

	"github.com/tiwariParth/go-task-cli/internal/cli"
)

func main() {
	app := cli.NewCLI(os.Stdout, os.Stderr)

	// Only fatal errors reach here: corrupt store, write failure, unknown command.
	if err := app.Run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
