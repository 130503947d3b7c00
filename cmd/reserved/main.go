package main

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/urfave/cli/v2"

	"github.com/oureum/reserve/internal/account"
	"github.com/oureum/reserve/internal/api"
	"github.com/oureum/reserve/internal/chain"
	"github.com/oureum/reserve/internal/config"
	"github.com/oureum/reserve/internal/database"
	"github.com/oureum/reserve/internal/domain"
	"github.com/oureum/reserve/internal/engine"
	"github.com/oureum/reserve/internal/export"
	"github.com/oureum/reserve/internal/goldledger"
	"github.com/oureum/reserve/internal/pricing"
	"github.com/oureum/reserve/internal/reconcile"
	"github.com/oureum/reserve/internal/tokenops"
	"github.com/oureum/reserve/internal/worker"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded .env file")
	}

	app := &cli.App{
		Name:           "reserved",
		Usage:          "gold-backed token reserve service",
		DefaultCommand: "serve",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "run the HTTP API and background workers",
				Action: runServe,
			},
			{
				Name:  "export",
				Usage: "write the audit workbook to a local .xlsx file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "out",
						Usage: "output file path",
						Value: "reserve_report.xlsx",
					},
				},
				Action: runExport,
			},
			{
				Name:  "intake",
				Usage: "register a physical gold intake entry",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "grams", Usage: "intake weight in grams", Required: true},
					&cli.IntFlag{Name: "purity", Usage: "purity in basis points (9999 = 99.99%)", Required: true},
					&cli.StringFlag{Name: "date", Usage: "entry date (YYYY-MM-DD), defaults to today"},
					&cli.StringFlag{Name: "source", Usage: "supplier or origin"},
					&cli.StringFlag{Name: "serial", Usage: "bar serial number"},
					&cli.StringFlag{Name: "batch", Usage: "batch reference"},
					&cli.StringFlag{Name: "note", Usage: "free-form note"},
				},
				Action: runIntake,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func connect(ctx context.Context, cfg config.Config) (*pgxpool.Pool, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}

	migrationsSub, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating migrations sub-fs: %w", err)
	}
	if err := database.RunMigrations(ctx, pool, migrationsSub); err != nil {
		pool.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return pool, nil
}

func runServe(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.Load()

	pool, err := connect(ctx, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	// Repositories
	accountRepo := account.NewPgRepository(pool)
	ledgerRepo := goldledger.NewPgRepository(pool)
	opsRepo := tokenops.NewPgRepository(pool)
	priceRepo := pricing.NewPgRepository(pool)
	txRepo := engine.NewPgRepository(pool)
	snapshotRepo := reconcile.NewPgSnapshotRepository(pool)

	// Services
	accountSvc := account.NewService(accountRepo)
	ledgerSvc := goldledger.NewService(ledgerRepo)
	feed := pricing.NewFeedClient(cfg.GoldFeedURL, cfg.GoldFeedRetryMax, 2*time.Second)
	pricingSvc := pricing.NewService(priceRepo, feed, cfg.PriceCacheTTL)
	reconSvc := reconcile.NewService(ledgerSvc, opsRepo, snapshotRepo)

	gateway := chain.NewClient(cfg.ChainGatewayURL, cfg.ChainRetryMax, cfg.ChainRetryBaseDelay)
	eng := engine.New(accountSvc, pricingSvc, gateway, opsRepo, txRepo)

	// Optional Google Sheets export hook for the report worker
	var hook worker.AfterReportHook
	if cfg.SheetsSpreadsheetID != "" && cfg.GoogleCredentials != "" {
		writer, err := export.NewSheetsWriter(ctx, cfg.SheetsSpreadsheetID, cfg.GoogleCredentials)
		if err != nil {
			return fmt.Errorf("creating sheets writer: %w", err)
		}
		hook = export.NewService(reconSvc, opsRepo, writer)
		slog.Info("sheets export enabled", "spreadsheet", cfg.SheetsSpreadsheetID)
	}

	// Workers
	quoteWorker := worker.NewQuoteWorker(pricingSvc, cfg.FeedWorkerInterval)
	go quoteWorker.Run(ctx)

	reportWorker := worker.NewReportWorker(reconSvc, cfg.ReportWorkerInterval, hook)
	go reportWorker.Run(ctx)

	if cfg.AdminAPIKey == "" {
		slog.Warn("ADMIN_API_KEY not set, admin endpoints are disabled")
	}

	handler := api.NewHandler(pricingSvc, accountSvc, opsRepo, ledgerSvc, reconSvc, eng)
	srv := api.NewServer(cfg.HTTPPort, handler, cfg.AdminAPIKey)

	go func() {
		log.Printf("HTTP server listening on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("HTTP server error: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	log.Println("Shutdown complete")
	return nil
}

func runExport(c *cli.Context) error {
	cfg := config.Load()

	pool, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	ledgerSvc := goldledger.NewService(goldledger.NewPgRepository(pool))
	opsRepo := tokenops.NewPgRepository(pool)
	reconSvc := reconcile.NewService(ledgerSvc, opsRepo, nil)

	out := c.String("out")
	svc := export.NewService(reconSvc, opsRepo, export.NewExcelWriter(out))
	if err := svc.Export(c.Context); err != nil {
		return err
	}

	fmt.Printf("workbook written to %s\n", out)
	return nil
}

func runIntake(c *cli.Context) error {
	cfg := config.Load()

	pool, err := connect(c.Context, cfg)
	if err != nil {
		return err
	}
	defer pool.Close()

	svc := goldledger.NewService(goldledger.NewPgRepository(pool))

	entry, err := svc.Register(c.Context, goldledger.RegisterRequest{
		IntakeG:   c.String("grams"),
		PurityBP:  c.Int("purity"),
		EntryDate: c.String("date"),
		Source:    c.String("source"),
		Serial:    c.String("serial"),
		Batch:     c.String("batch"),
		Note:      c.String("note"),
	})
	if err != nil {
		return err
	}

	purity := domain.PurityPct(decimal.NewFromInt(int64(entry.PurityBP)))
	fmt.Printf("registered entry %d: %s g at %s%% purity on %s\n",
		entry.ID, domain.FormatGrams(entry.IntakeG),
		purity, entry.EntryDate.Format("2006-01-02"))
	return nil
}
