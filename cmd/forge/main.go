package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"fileforge/internal/client/cli"
	"fileforge/internal/client/config"
)

// Set via -ldflags at build time.
var (
	buildVersion = "N/A"
	buildDate    = "N/A"
)

func main() {
	fmt.Printf("forge %s (built %s)\n", buildVersion, buildDate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)
}
