package main

import (
	"flag"
	"log"

	"github.com/pbtrad/balancing-market/internal/di"
	"github.com/pbtrad/balancing-market/pkg/config"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.LoadWithEnv(*configPath)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, cleanup, err := di.InitializeApp(cfg)
	if err != nil {
		log.Fatalf("init: %v", err)
	}
	defer cleanup()

	if err := app.Run(); err != nil {
		log.Fatalf("run: %v", err)
	}
}
