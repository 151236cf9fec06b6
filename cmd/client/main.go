package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hynorvixx/backend/internal/client/cli"
	"github.com/hynorvixx/backend/internal/client/config"
	"github.com/hynorvixx/backend/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	app, err := cli.NewApp(ctx, cfg, logging.NewWithWriter(os.Stderr, "warn"))
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Fatalf("%v", err)
	}

}
