package results

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/logging"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/validation"
)

type Semester string

const (
	SemesterFirst  Semester = "First"
	SemesterSecond Semester = "Second"
	SemesterThird  Semester = "Third"
	SemesterFourth Semester = "Fourth"
)

var Semesters = []Semester{SemesterFirst, SemesterSecond, SemesterThird, SemesterFourth}

func (s Semester) Label() string {
	return string(s) + " Semester"
}

func (s Semester) valid() bool {
	for _, known := range Semesters {
		if s == known {
			return true
		}
	}
	return false
}

const uploadFallback = "Upload failed"

type Backend interface {
	UploadResults(ctx context.Context, filename string, file io.Reader, semester string) (models.UploadResult, error)
}

type Uploader struct {
	backend Backend
	logger  *zap.Logger
}

func NewUploader(backend Backend, logger *zap.Logger) *Uploader {
	return &Uploader{backend: backend, logger: logging.OrNop(logger).Named("results")}
}

// Upload sends a results CSV for the given semester. Only the presence of
// the file is checked here; its contents are validated by the backend.
// On backend failure the returned report carries the error message and
// the error is returned alongside it.
func (u *Uploader) Upload(ctx context.Context, path string, semester Semester) (models.UploadResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return models.UploadResult{}, validation.Invalid("File", "is required")
	}
	if semester == "" {
		semester = SemesterFirst
	}
	if !semester.valid() {
		return models.UploadResult{}, validation.Invalid("Semester", fmt.Sprintf("%q is not a known semester", semester))
	}

	f, err := os.Open(path)
	if err != nil {
		u.logger.Warn("Cannot open results file", zap.String("path", path), zap.Error(err))
		return models.UploadResult{}, validation.Invalid("File", "cannot be opened: "+err.Error())
	}
	defer f.Close()

	info, err := f.Stat()
	if err == nil && info.IsDir() {
		return models.UploadResult{}, validation.Invalid("File", "is a directory")
	}

	result, err := u.backend.UploadResults(ctx, filepath.Base(path), f, string(semester))
	if err != nil {
		u.logger.Error("Results upload failed", zap.String("path", path), zap.String("semester", string(semester)), zap.Error(err))
		return models.UploadResult{Success: false, Error: api.Message(err, uploadFallback)}, fmt.Errorf("failed to upload results: %w", err)
	}

	u.logger.Info("Uploaded results",
		zap.String("semester", string(semester)),
		zap.Int("created", result.ResultsCreated),
		zap.Int("processed", result.TotalProcessed),
		zap.Int("warnings", len(result.Errors)),
	)
	return result, nil
}
