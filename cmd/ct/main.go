package main

import (
	"context"
	"fmt"
	"os"

	"chronotrakr/internal/cli"
)

func main() {
	root := cli.NewRootCommand(openStorage)

	if err := root.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
