package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mcclellann/welfare/pkg/advisor"
	"github.com/mcclellann/welfare/pkg/config"
	"github.com/mcclellann/welfare/pkg/events"
	"github.com/mcclellann/welfare/pkg/ledger"
	"github.com/mcclellann/welfare/pkg/logger"
	"github.com/mcclellann/welfare/pkg/metrics"
	"github.com/mcclellann/welfare/pkg/store"
	"golang.org/x/sync/errgroup"
)

// First id handed out by the sequence strategy; clear of the seed records.
const sequenceStart = 100

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	envFile := ""
	if _, err := os.Stat(".env"); err == nil {
		envFile = ".env"
	}
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, _ := logger.ParseLevel(cfg.LogLevel)
	log := logger.New(logger.Config{Level: level, Format: cfg.LogFormat, Output: os.Stdout})
	logger.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	st, m, publisher, err := buildStore(cfg, log)
	if err != nil {
		return err
	}
	defer publisher.Close()

	var adv advisor.Advisor = advisor.Unavailable{}
	if cfg.GeminiAPIKey != "" {
		gemini, err := advisor.NewGeminiAdvisor(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return err
		}
		adv = gemini
		log.WithComponent(logger.ComponentAdvisor).Info("Gemini advisor enabled", "model", cfg.GeminiModel)
	}

	server := NewServer(st, adv, log)
	server.metrics = m
	server.exportPath = cfg.ExportPath
	server.insightsTimeout = cfg.InsightsTimeout

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      cfg.InsightsTimeout + 10*time.Second,
		IdleTimeout:       60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("Server starting", logger.FieldAddr, cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("Server stopped with error", logger.FieldError, err.Error())
		return err
	}

	if cfg.ExportPath != "" {
		exportLog := log.WithComponent(logger.ComponentExport)
		counts, err := exportSnapshot(context.Background(), st, cfg.ExportPath)
		if err != nil {
			exportLog.Error("Final export failed", logger.FieldError, err.Error())
		} else {
			exportLog.Info("Final export written", logger.FieldPath, cfg.ExportPath, "transactions", counts["transactions"])
		}
	}
	log.Info("Server stopped gracefully")
	return nil
}

func buildStore(cfg *config.Config, log *logger.Logger) (*store.Store, *metrics.Metrics, events.Publisher, error) {
	var ids ledger.IDGenerator = ledger.UUIDGenerator{}
	if cfg.IDStrategy == config.IDStrategySequence {
		ids = ledger.NewSequence(sequenceStart)
	}
	l := ledger.NewLedger(ledger.WithIDGenerator(ids))

	initial := ledger.State{}
	if cfg.SeedFixtures {
		initial = ledger.Fixtures()
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPRoutingKey)
		if err != nil {
			return nil, nil, nil, err
		}
		publisher = p
		log.WithComponent(logger.ComponentEvents).Info("Publishing ledger events",
			"exchange", cfg.AMQPExchange, "routing_key", cfg.AMQPRoutingKey)
	}

	opts := []store.Option{store.WithLogger(log), store.WithPublisher(publisher)}
	var m *metrics.Metrics
	if cfg.MetricsEnabled {
		var err error
		if m, err = metrics.New(); err != nil {
			publisher.Close()
			return nil, nil, nil, err
		}
		opts = append(opts, store.WithObserver(m))
	}

	st := store.New(l, initial, opts...)
	log.Info("Ledger ready",
		"seeded", cfg.SeedFixtures,
		"id_strategy", cfg.IDStrategy,
		"members", len(initial.Members),
		"transactions", len(initial.Transactions))
	return st, m, publisher, nil
}
