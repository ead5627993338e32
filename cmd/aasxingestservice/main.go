package main

import (
	"context"
	"embed"
	"flag"
	"fmt"
	"io/fs"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"

	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest"
	aasxingestapi "github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/api"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/blobstore"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/journal"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/aasxingest/worker"
	"github.com/eclipse-basyx/basyx-aasx-ingest/internal/common"
)

//go:embed openapi.yaml
var specFS embed.FS

func runServer(ctx context.Context, configPath string) error {
	log.Default().Println("Loading AASX Ingest Service...")
	log.Default().Println("Config Path:", configPath)

	config, err := common.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
		return err
	}

	common.PrintSplash()
	common.PrintConfiguration(config)

	// Create Chi router
	r := chi.NewRouter()

	// Enable CORS
	common.AddCors(r, config)

	// Add health endpoint
	common.AddHealthEndpoint(r, config)

	// ==== Parse worker pool ====
	pool := worker.NewPool(config.Server.Workers, aasxingest.Options{
		Strict:                config.Parser.Strict,
		MaxVerificationErrors: config.Parser.MaxVerificationCount,
		MaxElementDepth:       config.Parser.MaxElementDepth,
	})
	defer func() {
		if err := pool.Shutdown(); err != nil {
			log.Printf("Worker pool shutdown error: %v", err)
		}
	}()

	// ==== Optional ingest journal ====
	var ingestJournal *journal.Journal
	if config.Postgres.Host != "" {
		dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
			config.Postgres.User, config.Postgres.Password,
			config.Postgres.Host, config.Postgres.Port, config.Postgres.DBName)
		ingestJournal, err = journal.NewPostgreSQLJournal(dsn,
			config.Postgres.MaxOpenConnections, config.Postgres.MaxIdleConnections)
		if err != nil {
			log.Fatalf("Failed to initialize ingest journal: %v", err)
			return err
		}
		defer ingestJournal.Close()
	}

	// ==== Optional supplementary blob store ====
	var store *blobstore.S3Store
	if config.S3.Bucket != "" {
		store, err = blobstore.NewS3Store(ctx, config.S3)
		if err != nil {
			log.Fatalf("Failed to initialize blob store: %v", err)
			return err
		}
	}

	// ==== Ingest Service ====
	svc := aasxingestapi.NewService(pool, ingestJournal, store)
	svc.Routes(r, config.Server.ContextPath)

	// ==== Swagger UI ====
	specContent, err := fs.ReadFile(specFS, "openapi.yaml")
	if err != nil {
		return err
	}
	common.AddSwaggerUI(r, common.SwaggerUIConfig{
		Title:       "AASX Ingest Service",
		SpecURL:     config.Server.ContextPath + "/api-docs/openapi.yaml",
		UIPath:      config.Server.ContextPath + "/swagger",
		SpecPath:    config.Server.ContextPath + "/api-docs/openapi.yaml",
		SpecContent: specContent,
		ServerURL:   fmt.Sprintf("http://localhost:%d%s", config.Server.Port, config.Server.ContextPath),
	})

	// Start the server
	addr := "0.0.0.0:" + fmt.Sprintf("%d", config.Server.Port)
	log.Printf("▶️  AASX Ingest Service listening on %s\n", addr)
	go func() {
		if err := http.ListenAndServe(addr, r); err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server...")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	configPath := ""
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	if err := runServer(ctx, configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
