package main

import (
	"context"
	"os"

	"github.com/srerickson/drive/cmd/drive/run"
)

func main() {
	ctx := context.Background()
	if err := run.CLI(ctx, os.Args, os.Stdin, os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}
