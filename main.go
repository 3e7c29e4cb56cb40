package main

import (
	"log"
	"os"

	"trust-bot/bot"
	"trust-bot/config"
	"trust-bot/handlers"
	"trust-bot/server"
	infractions_db "trust-bot/utils/database/infractions"
	trust_db "trust-bot/utils/database/trust"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}

	if err := os.MkdirAll("./data", os.ModePerm); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}

	trustDB, err := trust_db.Init(cfg.TrustDBPath)
	if err != nil {
		log.Fatalf("Error initializing trust database: %v", err)
	}
	defer trustDB.Close()

	ledgerDB, err := infractions_db.Init(cfg.TrustDBPath)
	if err != nil {
		log.Fatalf("Error initializing infraction database: %v", err)
	}
	defer ledgerDB.Close()

	b, err := bot.New(cfg, trustDB, ledgerDB)
	if err != nil {
		log.Fatalf("Error creating bot: %v", err)
	}
	defer b.Close()

	handlers.Register(b)

	dashboard := server.New(cfg.DashboardAddr, b.Coordinator, cfg.DashboardToken, cfg.TrustDBPath)
	dashboard.Start()
	defer dashboard.Close()

	b.Run()
}
