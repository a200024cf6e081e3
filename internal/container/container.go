package container

import (
	"context"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"

	"statflow/adapters/compute"
	"statflow/adapters/excel"
	"statflow/adapters/memory"
	"statflow/adapters/postgres"
	"statflow/adapters/render"
	"statflow/internal"
	"statflow/internal/analysis"
	"statflow/internal/api"
	"statflow/internal/config"
	"statflow/internal/export"
	"statflow/internal/metrics"
	"statflow/ports"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Repositories (data access layer)
	RunRepo ports.RunRepository

	// Remote services
	Compute  ports.ComputeClient
	Renderer ports.DocumentRenderer

	// Screen components
	SSEHub  *api.SSEHub
	Metrics *metrics.Recorder
	Screens *analysis.Manager
	Exports *export.Service
	Reader  *excel.Reader
}

// New creates a new dependency injection container. db may be nil, in
// which case run history is kept in memory.
func New(cfg *config.Config, db *sqlx.DB) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewLogger(cfg.LogLevel),
		DB:     db,
	}

	if err := c.initRepositories(); err != nil {
		return nil, fmt.Errorf("failed to initialize repositories: %w", err)
	}
	if err := c.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize remote services: %w", err)
	}
	c.initScreens()

	log.Printf("Container initialized (run history: %s, export formats: %v)", c.historyBackend(), c.Exports.Formats())
	return c, nil
}

// initRepositories initializes data access repositories
func (c *Container) initRepositories() error {
	if c.DB == nil {
		c.RunRepo = memory.NewRunRepository(c.Config.Database.MemoryRunLimit)
		return nil
	}
	if err := c.DB.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}
	c.RunRepo = postgres.NewRunRepository(c.DB)
	return nil
}

// initServices creates the clients of the compute and document services
func (c *Container) initServices() error {
	client, err := compute.NewClient(compute.Config{
		BaseURL: c.Config.Compute.URL,
		Timeout: c.Config.Compute.Timeout,
	})
	if err != nil {
		return err
	}
	c.Compute = client

	if c.Config.Export.ServiceURL != "" {
		renderer, err := render.NewClient(render.Config{
			BaseURL: c.Config.Export.ServiceURL,
			Timeout: c.Config.Export.Timeout,
		})
		if err != nil {
			return err
		}
		c.Renderer = renderer
	}
	return nil
}

// initScreens wires the screen manager, its event fan-out and the exporters
func (c *Container) initScreens() {
	c.SSEHub = api.NewSSEHub()
	c.Metrics = metrics.NewRecorder()

	c.Screens = analysis.NewManager(analysis.Deps{
		Compute: c.Compute,
		Runs:    c.RunRepo,
		Events:  api.Publishers{c.SSEHub, api.LogPublisher{Logger: c.Logger}},
		Metrics: c.Metrics,
		Logger:  c.Logger,
	})

	opts := export.Options{
		Renderer: c.Renderer,
		Metrics:  c.Metrics,
		Logger:   c.Logger,
		Parallel: c.Config.Export.Parallel,
	}
	if c.Config.Export.CaptureEnabled {
		capture := export.NewBrowserCapture(c.Config.Export.CaptureTimeout)
		capture.ExecPath = c.Config.Export.ChromePath
		opts.Capturer = capture
	}
	c.Exports = export.NewService(opts)

	readerConfig := excel.DefaultConfig()
	if c.Config.Upload.MaxRows > 0 {
		readerConfig.MaxRows = c.Config.Upload.MaxRows
	}
	c.Reader = excel.NewReader(readerConfig)
}

// Health reports the fields served on /healthz
func (c *Container) Health() map[string]interface{} {
	return map[string]interface{}{
		"screens":     c.Screens.Len(),
		"run_history": c.historyBackend(),
		"formats":     c.Exports.Formats(),
	}
}

func (c *Container) historyBackend() string {
	if c.DB != nil {
		return "postgres"
	}
	return "memory"
}

// Shutdown closes every live screen, stops the event hub and closes the
// database connection
func (c *Container) Shutdown(ctx context.Context) error {
	if c.Screens != nil {
		for _, view := range c.Screens.List() {
			_ = c.Screens.Close(view.ID)
		}
	}
	if c.SSEHub != nil {
		c.SSEHub.Stop()
	}
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
