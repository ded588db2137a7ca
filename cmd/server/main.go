package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/agenthands/dupscan/internal/config"
	"github.com/agenthands/dupscan/internal/logging"
	"github.com/agenthands/dupscan/internal/server"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using defaults")
	}

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/dupscan.toml"
	}
	cfg, found, err := config.LoadOrDefault(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if !found {
		log.Printf("No configuration at %s, using defaults", cfgPath)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.ListenAddr = ":" + port
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatal(err)
	}

	srv, err := server.NewServer(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}
	r := srv.SetupRouter()

	logger.Info("starting server", "addr", cfg.Server.ListenAddr, "mode", cfg.Scan.Mode, "threshold", cfg.Scan.Threshold)
	if err := r.Run(cfg.Server.ListenAddr); err != nil {
		log.Fatal(err)
	}
}
