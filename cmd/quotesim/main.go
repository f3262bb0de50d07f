package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/moatwatch/moatwatch/internal/quotesim"
	"github.com/moatwatch/moatwatch/pkg/logger"
)

// Default simulator configuration.
const (
	defaultAddr       = ":9090"
	defaultNumSymbols = 200
	defaultSeed       = 1
)

func main() {
	var (
		addr       = flag.String("addr", defaultAddr, "Listen address")
		numSymbols = flag.Int("symbols", defaultNumSymbols, "Number of simulated symbols")
		seed       = flag.Int64("seed", defaultSeed, "Generation seed")
		latency    = flag.Duration("latency", 0, "Artificial response delay")
		failEvery  = flag.Int("fail-every", 0, "Return 500 on every Nth quote request (0 disables)")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := quotesim.NewServer(quotesim.Config{
		Addr:       *addr,
		NumSymbols: *numSymbols,
		Seed:       *seed,
		Latency:    *latency,
		FailEvery:  *failEvery,
	})

	if err := srv.ListenAndServe(ctx); err != nil {
		os.Stderr.WriteString("simulator failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}
