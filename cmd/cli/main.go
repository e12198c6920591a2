package main

import (
	"context"
	"fmt"
	"os"

	"github.com/gabrielslopes/labelcheck/internal/cli"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app := cli.NewApp(cfg)

	if err := app.Run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}

}
