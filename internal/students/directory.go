package students

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/logging"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/validation"
)

type Backend interface {
	ListStudents(ctx context.Context) ([]models.Student, error)
	GetStudent(ctx context.Context, id int64) (models.Student, error)
	CreateStudent(ctx context.Context, in models.StudentInput) (models.Student, error)
	UpdateStudent(ctx context.Context, id int64, in models.StudentInput) (models.Student, error)
	StudentGPA(ctx context.Context, id int64) (models.GPA, error)
}

// ErrRefreshFailed means a write went through but the listing read back
// after it did not. Any Index the caller holds is stale and must not drive
// another write.
var ErrRefreshFailed = errors.New("saved, but the student list could not be reloaded")

// Directory is the student lookup table the other screens join against.
type Directory struct {
	backend Backend
	logger  *zap.Logger
}

func NewDirectory(backend Backend, logger *zap.Logger) *Directory {
	return &Directory{backend: backend, logger: logging.OrNop(logger).Named("students")}
}

func (d *Directory) List(ctx context.Context) (Index, error) {
	students, err := d.backend.ListStudents(ctx)
	if err != nil {
		d.logger.Error("Failed to load students", zap.Error(err))
		return Index{}, fmt.Errorf("failed to load students: %w", err)
	}
	d.logger.Debug("Loaded students", zap.Int("count", len(students)))
	return NewIndex(students), nil
}

// Relist re-reads the listing after a successful write. A failure wraps
// ErrRefreshFailed.
func (d *Directory) Relist(ctx context.Context) (Index, error) {
	index, err := d.List(ctx)
	if err != nil {
		return Index{}, fmt.Errorf("%w: %w", ErrRefreshFailed, err)
	}
	return index, nil
}

func (d *Directory) Get(ctx context.Context, id int64) (models.Student, error) {
	student, err := d.backend.GetStudent(ctx, id)
	if err != nil {
		return models.Student{}, fmt.Errorf("failed to load student %d: %w", id, err)
	}
	return student, nil
}

// Create validates the form before anything goes over the wire.
func (d *Directory) Create(ctx context.Context, in models.StudentInput) (models.Student, error) {
	if err := validation.Struct(in); err != nil {
		return models.Student{}, err
	}

	student, err := d.backend.CreateStudent(ctx, in)
	if err != nil {
		d.logger.Error("Failed to create student", zap.String("student_id", in.StudentID), zap.Error(err))
		return models.Student{}, fmt.Errorf("failed to create student: %w", err)
	}
	d.logger.Info("Created student", zap.String("student_id", in.StudentID))
	return student, nil
}

// Update rewrites a record. The external code cannot change after creation.
func (d *Directory) Update(ctx context.Context, current models.Student, in models.StudentInput) (models.Student, error) {
	if in.StudentID != current.StudentID {
		return models.Student{}, validation.Invalid("StudentID", "cannot change after creation")
	}
	if err := validation.Struct(in); err != nil {
		return models.Student{}, err
	}

	student, err := d.backend.UpdateStudent(ctx, current.ID, in)
	if err != nil {
		d.logger.Error("Failed to update student", zap.Int64("id", current.ID), zap.Error(err))
		return models.Student{}, fmt.Errorf("failed to update student: %w", err)
	}
	return student, nil
}

func (d *Directory) GPA(ctx context.Context, id int64) (models.GPA, error) {
	gpa, err := d.backend.StudentGPA(ctx, id)
	if err != nil {
		return models.GPA{}, fmt.Errorf("failed to load gpa for student %d: %w", id, err)
	}
	return gpa, nil
}

// NewStudentInput is a blank form with the admission year set to now.
func NewStudentInput(now time.Time) models.StudentInput {
	return models.StudentInput{AdmissionYear: now.Year()}
}

// InputFromFields parses the text form into a create payload. Numeric
// fields that do not parse are reported the same way as tag failures.
func InputFromFields(code, first, last, email, department, year, score string) (models.StudentInput, error) {
	in := models.StudentInput{
		StudentID:  strings.TrimSpace(code),
		FirstName:  strings.TrimSpace(first),
		LastName:   strings.TrimSpace(last),
		Email:      strings.TrimSpace(email),
		Department: strings.TrimSpace(department),
	}

	var bad []string
	if y, err := strconv.Atoi(strings.TrimSpace(year)); err == nil {
		in.AdmissionYear = y
	} else {
		bad = append(bad, "AdmissionYear must be a number")
	}
	if s, err := strconv.ParseFloat(strings.TrimSpace(score), 64); err == nil {
		in.AdmissionScore = s
	} else {
		bad = append(bad, "AdmissionScore must be a number")
	}
	if len(bad) > 0 {
		return in, &validation.Error{Fields: bad}
	}
	return in, nil
}
