package main

import (
	"context"
	"database/sql"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "modernc.org/sqlite"

	"gritgym/internal/adapters/auth"
	emailPkg "gritgym/internal/adapters/email"
	web "gritgym/internal/adapters/http"
	"gritgym/internal/adapters/http/perf"
	"gritgym/internal/adapters/storage"
	accountStore "gritgym/internal/adapters/storage/account"
	"gritgym/internal/adapters/storage/docstore"
	outboxStore "gritgym/internal/adapters/storage/outbox"
	"gritgym/internal/application/orchestrators"
	"gritgym/internal/config"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	if !cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug})))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := sql.Open("sqlite", cfg.DBPath)
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	// Connection pool settings for WAL mode
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)

	if err := db.Ping(); err != nil {
		log.Fatalf("database unreachable: %v", err)
	}
	if err := storage.InitDB(db, cfg.DBPath); err != nil {
		log.Fatalf("failed to configure database: %v", err)
	}
	if err := storage.MigrateDB(db, cfg.DBPath); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}
	log.Println("Database initialized successfully!")

	// Performance instrumentation: wrap DB with timing, create collector
	collector := perf.NewCollector(perf.DefaultRingSize)
	timedDB := storage.NewTimedDB(db, collector, cfg.SlowQuery)

	acctStore := accountStore.NewSQLiteStore(timedDB)
	queue := outboxStore.NewSQLiteStore(timedDB)

	var documents docstore.Store = docstore.NewSQLiteStore(timedDB)
	if cfg.DatabaseURL != "" {
		pool, err := docstore.NewPool(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		pg := docstore.NewPostgresStore(pool)
		if err := pg.Migrate(ctx); err != nil {
			log.Fatalf("failed to migrate postgres documents: %v", err)
		}
		documents = pg
		log.Println("Document store: postgres")
	} else {
		log.Println("Document store: sqlite")
	}
	documents = docstore.NewTimed(documents, collector, cfg.SlowQuery)

	// Seed default admin account if no accounts exist
	if err := orchestrators.ExecuteSeedAdmin(ctx, orchestrators.SeedAdminDeps{AccountStore: acctStore}, cfg.AdminEmail, cfg.AdminPassword); err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}

	// Seed sample payments for development only
	if !cfg.IsProduction() {
		if err := orchestrators.ExecuteSeedPayments(ctx, orchestrators.SeedPaymentsDeps{Payments: documents, Now: time.Now()}); err != nil {
			log.Fatalf("failed to seed payments: %v", err)
		}
	}

	// Configure email sender
	var sender emailPkg.Sender
	if cfg.ResendKey != "" {
		sender = emailPkg.NewResendSender(cfg.ResendKey, cfg.ResendFrom)
		log.Println("Email sender configured (Resend)")
	} else {
		sender = emailPkg.NewNoopSender()
		if cfg.IsProduction() {
			log.Println("WARNING: GRIT_RESEND_KEY is not set, member notifications are DISABLED in production")
		} else {
			log.Println("Email sender configured (noop; set GRIT_RESEND_KEY for real delivery)")
		}
	}

	provider := auth.NewProvider(web.LoginVerifier(acctStore), cfg.SessionTTL)
	go provider.RunSweeper(ctx, time.Minute)

	handler, err := web.NewMux(web.Deps{
		Stores:    &web.Stores{AccountStore: acctStore, Documents: documents, Outbox: queue},
		Auth:      provider,
		Collector: collector,
		Sender:    sender,
		Config:    cfg,
		Done:      ctx.Done(),
	})
	if err != nil {
		log.Fatalf("failed to build handler: %v", err)
	}

	server := &http.Server{
		Addr:        cfg.Addr,
		Handler:     handler,
		ReadTimeout: 30 * time.Second,
		// WriteTimeout stays 0 for the long-lived session websocket
		IdleTimeout: 120 * time.Second,
	}

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	log.Printf("Grit Gym admin %s starting on %s (env=%s, schema=%d, tz=%s)", version, cfg.Addr, cfg.Env, storage.LatestSchemaVersion(), cfg.Location)
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("Server failed: %v", err)
	}
}
