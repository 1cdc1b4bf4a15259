package main

import (
	"context"
	"os"

	"github.com/roach88/arpp/internal/cli"
)

func main() {
	if err := cli.Execute(context.Background(), cli.NewRootCommand()); err != nil {
		os.Exit(cli.GetExitCode(err))
	}
}
