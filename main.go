package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"statflow/internal/config"
	"statflow/internal/container"
	"statflow/internal/errors"
	"statflow/internal/metrics"
	"statflow/internal/migration"
	"statflow/ui"
)

// initDatabase connects to PostgreSQL and applies the schema. It returns a
// nil handle when no database is configured.
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	if !appConfig.Database.Enabled() {
		log.Println("DATABASE_URL not set, keeping run history in memory")
		return nil, nil
	}

	db, err := sqlx.ConnectContext(ctx, "postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	log.Printf("Database schema %s ready", migrator.Version())
	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	startCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	db, err := initDatabase(startCtx, appConfig)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	appContainer, err := container.New(appConfig, db)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}

	server := ui.NewServer(ui.Deps{
		Screens:        appContainer.Screens,
		Exports:        appContainer.Exports,
		Runs:           appContainer.RunRepo,
		Reader:         appContainer.Reader,
		Hub:            appContainer.SSEHub,
		Logger:         appContainer.Logger,
		UploadMaxBytes: appConfig.Upload.MaxBytes,
	})

	var ops *metrics.Server
	if appConfig.Metrics.Enabled {
		ops = metrics.NewServer(":"+appConfig.Metrics.Port, metrics.Router(appContainer.Metrics, appContainer.Health))
		ops.Start()
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(":" + appConfig.Server.Port)
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-stop:
		log.Printf("Received %s, shutting down", sig)
	case err := <-errCh:
		if err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	// event streams only end with the hub
	appContainer.SSEHub.Stop()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP shutdown: %v", err)
	}
	if ops != nil {
		if err := ops.Shutdown(shutdownCtx); err != nil {
			log.Printf("Ops shutdown: %v", err)
		}
	}
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Container shutdown: %v", err)
	}
	log.Println("statflow stopped")
}
