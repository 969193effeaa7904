package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/config"
	"github.com/feelsunbreeze/spps_tui/internal/dashboard"
	"github.com/feelsunbreeze/spps_tui/internal/factors"
	"github.com/feelsunbreeze/spps_tui/internal/logging"
	"github.com/feelsunbreeze/spps_tui/internal/predictions"
	"github.com/feelsunbreeze/spps_tui/internal/results"
	"github.com/feelsunbreeze/spps_tui/internal/session"
	"github.com/feelsunbreeze/spps_tui/internal/students"
)

// services is everything the screens talk to. Built once in main.
type services struct {
	cfg         *config.Config
	logger      *zap.Logger
	guard       *session.Guard
	directory   *students.Directory
	factors     *factors.Editor
	uploader    *results.Uploader
	predictions *predictions.Service
	dashboard   *dashboard.Aggregator
}

func newServices(cfg *config.Config, logger *zap.Logger) (*services, error) {
	client, err := api.NewClient(cfg, logger)
	if err != nil {
		return nil, err
	}

	var store *session.Store
	if cfg.Session.Remember {
		store = session.NewStore(cfg.Session.CacheDir)
	}
	guard := session.NewGuard(client, store, logger)
	client.OnUnauthorized(guard.Clear)

	directory := students.NewDirectory(client, logger)
	return &services{
		cfg:         cfg,
		logger:      logger.Named("tui"),
		guard:       guard,
		directory:   directory,
		factors:     factors.NewEditor(client, directory, logger),
		uploader:    results.NewUploader(client, logger),
		predictions: predictions.NewService(client, directory, logger),
		dashboard:   dashboard.NewAggregator(client, logger),
	}, nil
}

func StartTUI(svc *services) error {
	p := tea.NewProgram(NewModel(svc), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the YAML config file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spps_tui: %v\n", err)
		os.Exit(1)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "spps_tui: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting", zap.String("api", cfg.API.BaseURL), zap.String("config", *configPath))

	svc, err := newServices(cfg, logger)
	if err != nil {
		logger.Error("Failed to build services", zap.Error(err))
		fmt.Fprintf(os.Stderr, "spps_tui: %v\n", err)
		os.Exit(1)
	}

	if err := StartTUI(svc); err != nil {
		logger.Error("TUI exited with error", zap.Error(err))
		fmt.Fprintf(os.Stderr, "spps_tui: %v\n", err)
		os.Exit(1)
	}
}
