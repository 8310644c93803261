package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"text/tabwriter"
	"time"

	"github.com/pocketbase/pocketbase"
	"github.com/pocketbase/pocketbase/core"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"proposalgen/collections"
	"proposalgen/config"
	"proposalgen/handlers"
	"proposalgen/services"
)

func main() {
	app := pocketbase.New()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	catalog, err := cfg.Catalog()
	if err != nil {
		log.Fatalf("catalog: %v", err)
	}

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	var directory services.ClientDirectory = services.NewRecordDirectory(app)
	if cfg.DatabaseURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		sqlDir, err := services.OpenSQLDirectory(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			log.Fatalf("client directory: %v", err)
		}
		directory = sqlDir
		app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
			sqlDir.Close()
			return e.Next()
		})
	}

	var cache services.LookupCache
	if cfg.RedisAddr != "" {
		redisCache := services.NewRedisLookupCache(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		if err := redisCache.Ping(ctx); err != nil {
			log.Printf("Warning: lookup cache disabled: %v", err)
			redisCache.Close()
		} else {
			cache = redisCache
			app.OnTerminate().BindFunc(func(e *core.TerminateEvent) error {
				redisCache.Close()
				return e.Next()
			})
		}
		cancel()
	}

	env := &handlers.Env{
		Catalog: catalog,
		Options: cfg.Options(),
		Lookup:  services.NewClientLookup(directory, cache, cfg.LookupCacheTTL),
		Logger:  logger,
	}

	app.RootCmd.AddCommand(catalogCommand(catalog))

	// Create collections and seed data on startup
	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		collections.Setup(app)
		if err := collections.Seed(app); err != nil {
			log.Printf("Warning: seed data failed: %v", err)
		}
		if err := collections.MigrateProposalIndexColumns(app); err != nil {
			log.Printf("Warning: proposal migration failed: %v", err)
		}
		return se.Next()
	})

	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
		se.Router.BindFunc(handlers.RequestLoggerMiddleware(logger))

		// ── Proposals ────────────────────────────────────────────
		se.Router.POST("/api/proposals", handlers.HandleProposalSave(app, env))
		se.Router.POST("/api/proposals/{id}", handlers.HandleProposalSave(app, env))
		se.Router.GET("/api/proposals/{id}", handlers.HandleProposalGet(app, env))

		// ── Documents ────────────────────────────────────────────
		se.Router.GET("/proposals/{id}/preview", handlers.HandleProposalPreview(app, env))
		se.Router.GET("/proposals/{id}/export/pdf", handlers.HandleProposalExportPDF(app, env))
		se.Router.GET("/proposals/{id}/export/excel", handlers.HandleProposalExportExcel(app, env))

		// ── Clients ──────────────────────────────────────────────
		se.Router.GET("/api/clients/lookup", handlers.HandleClientLookup(env))
		se.Router.POST("/api/clients/import", handlers.HandleClientImport(app))
		se.Router.POST("/api/clients/import/errors", handlers.HandleClientImportErrors())
		se.Router.GET("/api/clients/import/template", handlers.HandleClientImportTemplate())

		se.Router.GET("/metrics", handlers.HandleMetrics())

		return se.Next()
	})

	if err := app.Start(); err != nil {
		log.Fatal(err)
	}
}

// catalogCommand lists the service catalog with default net prices.
func catalogCommand(catalog *services.Catalog) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List the service catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tLEISTUNG\tPREIS")
			for _, entry := range catalog.SortedEntries() {
				price := services.FormatEUR(entry.DefaultPrice)
				if services.IsPricedOnRequest(entry.ID) {
					price = "auf Anfrage"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", entry.ID, entry.Name, price)
			}
			return w.Flush()
		},
	}
}
