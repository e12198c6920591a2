package main

import (
	"context"
	"log"

	"github.com/gabrielslopes/labelcheck/internal/server"
	"github.com/gabrielslopes/labelcheck/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := server.NewApp(cfg)

	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
