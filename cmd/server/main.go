// The server command hosts the ledger core: it wires the PostgreSQL-backed
// account store, the transaction index, the loan scheduler, and the account
// directory, hydrates the in-memory structures from durable storage, and
// serves Prometheus metrics. The request-handling transport is expected to
// be mounted on top of these services.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ledgerline/bankcore/internal/config"
	"github.com/ledgerline/bankcore/internal/db"
	"github.com/ledgerline/bankcore/internal/domain"
	"github.com/ledgerline/bankcore/internal/events"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	pool, err := db.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to create database pool: %v", err)
	}
	defer pool.Close()
	log.Println("database connection pool initialized")

	if err := pool.Migrate(ctx); err != nil {
		log.Fatalf("failed to apply migrations: %v", err)
	}

	accountRepo := db.NewAccountRepository(pool.Pool)
	transferRepo := db.NewTransferRepository(pool.Pool)
	loanRepo := db.NewLoanRepository(pool.Pool)
	txManager := db.NewTransactionManager(pool.Pool)

	var publisher domain.EventPublisher
	if cfg.RabbitMQ.URL != "" {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange)
		if err != nil {
			log.Fatalf("failed to create event publisher: %v", err)
		}
		defer p.Close()
		publisher = p
		log.Printf("event publisher initialized: exchange=%s", cfg.RabbitMQ.Exchange)
	} else {
		log.Println("RABBITMQ_URL not set, event publishing disabled")
	}

	directory := domain.NewDirectory(accountRepo)
	index := domain.NewTransactionIndex()
	ledger := domain.NewLedger(accountRepo, transferRepo, txManager, index, directory, publisher)
	scheduler := domain.NewScheduler(accountRepo, loanRepo, txManager, ledger, directory, publisher)

	// Durable storage is the source of truth: rebuild the in-memory index
	// and loan heap from it before taking traffic.
	transfers, err := transferRepo.ListAll(ctx)
	if err != nil {
		log.Fatalf("failed to load transfer history: %v", err)
	}
	index.Hydrate(transfers)

	loans, err := loanRepo.ListPending(ctx)
	if err != nil {
		log.Fatalf("failed to load pending loan requests: %v", err)
	}
	scheduler.Hydrate(loans)

	if err := directory.Refresh(ctx); err != nil {
		log.Fatalf("failed to load account directory: %v", err)
	}
	log.Printf("hydrated: %d transfer edges, %d pending loans", index.Len(), scheduler.Len())

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	metricsSrv := &http.Server{Addr: ":" + cfg.MetricsPort, Handler: mux}
	go func() {
		log.Printf("metrics listening on :%s", cfg.MetricsPort)
		if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("metrics server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("metrics server shutdown: %v", err)
	}
	log.Println("server stopped")
}
