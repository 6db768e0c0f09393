package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/vehicletrack/internal/client/cli"
	"github.com/dmitrijs2005/vehicletrack/internal/client/config"
	"github.com/dmitrijs2005/vehicletrack/internal/flagx"
	"github.com/dmitrijs2005/vehicletrack/internal/logging"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	logger := logging.NewConsoleLogger(os.Stderr, cfg.LogLevel)

	app, err := cli.NewApp(cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	var path string
	if args := flagx.Positionals(os.Args[1:], config.ValueFlags); len(args) > 0 {
		path = args[0]
	}

	app.Run(ctx, path)

}
