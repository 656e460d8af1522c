package main

import (
	"context"
	"fmt"
	"os"

	"auction-engine/config"
	auction "auction-engine/internal/auctionService"
	"auction-engine/internal/deposit"
	"auction-engine/internal/events"
	"auction-engine/internal/repository"
	"auction-engine/internal/server"
	"auction-engine/internal/settlement"
	"auction-engine/utils"
)

func main() {
	cfg := config.Load()
	utils.SetLevel(cfg.LogLevel)

	repo := repository.NewMemoryRepo()
	ledger := deposit.NewLedger(repo)
	settler := settlement.NewEngine(repo, ledger)

	var publisher events.Publisher = events.NoopPublisher{}
	if cfg.RedisAddr != "" {
		publisher = events.NewRedisPublisher(cfg.RedisAddr)
	}

	svc := auction.NewAuctionService(repo, ledger, settler, publisher, auction.Options{
		AntiSnipeWindow:    cfg.AntiSnipeWindow,
		AntiSnipeExtension: cfg.AntiSnipeExtend,
		MaxBidRetries:      cfg.MaxBidRetries,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	svc.StartSweeper(ctx, cfg.SweepInterval)

	router := server.SetupRouter(svc)

	addr := fmt.Sprintf(":%s", cfg.Port)
	fmt.Printf("Starting auction engine on %s...\n", addr)
	if err := router.Run(addr); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to start server: %v\n", err)
		os.Exit(1)
	}
}
