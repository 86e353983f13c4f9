package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"nft-auction-feed/internal/archive"
	"nft-auction-feed/internal/broker"
	"nft-auction-feed/internal/config"
	"nft-auction-feed/internal/gateway"
	"nft-auction-feed/internal/ingestion"
	"nft-auction-feed/internal/observability"
	"nft-auction-feed/internal/persister"
	"nft-auction-feed/internal/solana"
	"nft-auction-feed/internal/storage"
	chstore "nft-auction-feed/internal/storage/clickhouse"
	"nft-auction-feed/internal/storage/memory"
	"nft-auction-feed/internal/storage/migrations"
	pgstore "nft-auction-feed/internal/storage/postgres"
	"nft-auction-feed/internal/supervisor"
)

func main() {
	useMemory := flag.Bool("use-memory", false, "Use in-memory broker and storage instead of NATS and PostgreSQL")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		select {
		case sig := <-sigCh:
			logger.Printf("Received second signal %v, forcing immediate shutdown", sig)
			os.Exit(1)
		case <-time.After(30 * time.Second):
			logger.Println("Graceful shutdown timed out after 30s, forcing exit")
			os.Exit(1)
		case <-done:
		}
	}()

	err := run(ctx, cfg, *useMemory, logger)

	done <- err
	cancel()

	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("Error: %v", err)
	}

	logger.Println("Shutdown complete")
}

func run(ctx context.Context, cfg config.Config, useMemory bool, logger *log.Logger) error {
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := observability.NewMetrics(registry, "")

	// Broker
	var bus broker.Broker
	if useMemory {
		bus = broker.NewMemory(logger, metrics)
	} else {
		nats, err := broker.NewNATS(cfg.NATSURL, logger, metrics)
		if err != nil {
			return fmt.Errorf("connect to nats: %w", err)
		}
		defer nats.Close()
		bus = nats
	}

	// Stores (use interfaces)
	var libraryStore storage.LibraryStore = memory.NewLibraryStore()
	var nftStore storage.NFTStore = memory.NewNFTStore()
	var bidStore storage.BidStore = memory.NewBidStore()
	var winnerStore storage.WinnerStore = memory.NewWinnerStore()

	if !useMemory {
		pool, err := pgstore.NewPool(ctx, cfg.PostgresDSN())
		if err != nil {
			return fmt.Errorf("connect to postgres: %w", err)
		}
		defer pool.Close()

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			return fmt.Errorf("run postgres migrations: %w", err)
		}

		libraryStore = pgstore.NewLibraryStore(pool)
		nftStore = pgstore.NewNFTStore(pool)
		bidStore = pgstore.NewBidStore(pool)
		winnerStore = pgstore.NewWinnerStore(pool)
	}

	// Stream client
	wsConfig := solana.DefaultWSConfig()
	wsConfig.XToken = cfg.StreamToken
	ws, err := solana.NewWSClient(ctx, cfg.StreamWSURL, &wsConfig, logger)
	if err != nil {
		return fmt.Errorf("create websocket client: %w", err)
	}
	defer ws.Close()

	subscriber := ingestion.NewSubscriber(ws, bus, cfg.ProgramAddress, logger, metrics)

	handlers := []persister.Handler{
		persister.NewLibraryHandler(libraryStore),
		persister.NewNFTHandler(nftStore),
		persister.NewBidHandler(bidStore, logger),
		persister.NewTransferHandler(winnerStore),
	}

	sup := supervisor.New(supervisor.DefaultConfig(), logger, metrics)

	sup.Add("stream", func(ctx context.Context) error {
		err := subscriber.Run(ctx)
		if ctx.Err() == nil {
			metrics.StreamRestarts.Inc()
		}
		return err
	})

	for _, h := range handlers {
		p := persister.New(bus, h, logger, metrics)
		sup.Add("persist_"+h.EventType(), p.Run)
	}

	// Optional analytical archive
	if cfg.ClickhouseDSN != "" && !useMemory {
		conn, err := migrations.RunClickhouseMigrations(ctx, cfg.ClickhouseDSN)
		if err != nil {
			return fmt.Errorf("run clickhouse migrations: %w", err)
		}
		defer conn.Close()

		archiver := archive.New(bus, chstore.NewEventArchiveStore(conn), archive.DefaultConfig(), logger, metrics)
		sup.Add("archive", archiver.Run)
	}

	router := gateway.NewRouter(gateway.Deps{
		Libraries: libraryStore,
		NFTs:      nftStore,
		Bids:      bidStore,
		Winners:   winnerStore,
		Broker:    bus,
		Logger:    logger,
		Metrics:   metrics,
		Healthy:   sup.Healthy,
	})

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: router,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Printf("Starting HTTP server on %s", cfg.HTTPAddr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	logger.Printf("Watching program %s on %s", cfg.ProgramAddress, cfg.StreamWSURL)

	supDone := make(chan struct{})
	go func() {
		sup.Run(ctx)
		close(supDone)
	}()

	select {
	case err := <-serverErr:
		return fmt.Errorf("http server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Printf("HTTP shutdown: %v", err)
	}

	<-supDone
	return ctx.Err()
}
