package main

import (
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/permlabs/dexgate/params"
	"github.com/permlabs/dexgate/pkg/api"
	"github.com/permlabs/dexgate/pkg/proxy"
	"github.com/permlabs/dexgate/pkg/solana"
	"github.com/permlabs/dexgate/pkg/storage"
	"github.com/permlabs/dexgate/pkg/util"
	"github.com/permlabs/dexgate/pkg/venue"
)

func main() {
	cfg := params.LoadFromEnv("") // "" means load .env from current directory

	logger, err := util.NewLoggerWithFile(cfg.Gateway.LogFile)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer logger.Sync()
	sugar := logger.Sugar()
	sugar.Infow("logger_initialized", "log_file", cfg.Gateway.LogFile)

	programID, err := solana.AddressFromBase58(cfg.Proxy.ProgramID)
	if err != nil {
		sugar.Fatalw("invalid_proxy_program_id", "err", err)
	}
	dexPID, err := solana.AddressFromBase58(cfg.Venue.DexProgramID)
	if err != nil {
		sugar.Fatalw("invalid_dex_program_id", "err", err)
	}

	journal, err := storage.OpenJournal(cfg.Gateway.JournalPath)
	if err != nil {
		sugar.Fatalw("journal_open_failed", "err", err)
	}
	defer journal.Close()

	client := venue.NewRPCClient(cfg.Venue.RPCURL, sugar)

	// Chain order is fixed at startup: observe, enforce policy, substitute.
	p := proxy.NewMarketProxy(programID, dexPID, client, sugar).
		Use(proxy.NewLogger(sugar))

	if cfg.Proxy.ReferralAddress != "" {
		referral, err := solana.AddressFromBase58(cfg.Proxy.ReferralAddress)
		if err != nil {
			sugar.Fatalw("invalid_referral_address", "err", err)
		}
		p.Use(proxy.NewReferralFees(referral, cfg.Proxy.ReferralEnforce))
	}

	p.Use(proxy.NewOpenOrdersPda(client))

	if cfg.Proxy.StrictFallback {
		p.Use(proxy.RejectUnknown{})
	}

	server := api.NewServer(p, programID, journal, sugar)
	go func() {
		if err := server.Start(cfg.Gateway.Listen); err != nil {
			sugar.Fatalw("api_server_failed", "err", err)
		}
	}()

	sugar.Infow("gateway_started",
		"listen", cfg.Gateway.Listen,
		"venue_rpc", cfg.Venue.RPCURL,
		"dex_program", dexPID.String(),
		"referral_enforce", cfg.Proxy.ReferralEnforce,
	)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh
	sugar.Infow("gateway_shutting_down")
}
