package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/feelsunbreeze/spps_tui/internal/config"
)

func TestNewWritesToFile(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "logs", "spps.log")
	cfg.Log.Level = "debug"

	logger, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	logger.Info("prediction list loaded")
	_ = logger.Sync()

	data, err := os.ReadFile(cfg.Log.File)
	if err != nil {
		t.Fatalf("log file not written: %v", err)
	}
	if !strings.Contains(string(data), "prediction list loaded") {
		t.Errorf("log file missing entry: %s", data)
	}
}

func TestNewRejectsBadLevel(t *testing.T) {
	cfg := config.Default()
	cfg.Log.File = filepath.Join(t.TempDir(), "spps.log")
	cfg.Log.Level = "loud"

	if _, err := New(cfg); err == nil {
		t.Error("New() should reject an unknown level")
	}
}

func TestOrNop(t *testing.T) {
	if OrNop(nil) == nil {
		t.Error("OrNop(nil) returned nil")
	}
}
