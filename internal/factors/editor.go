package factors

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/feelsunbreeze/spps_tui/internal/logging"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/students"
	"github.com/feelsunbreeze/spps_tui/internal/validation"
)

// Form holds the editable factor values for one student.
type Form struct {
	AttendancePercentage         float64
	AssignmentAverage            float64
	StudyHoursPerWeek            float64
	SocioeconomicStatus          models.SocioeconomicStatus
	ExtracurricularParticipation bool
}

func DefaultForm() Form {
	return Form{
		AttendancePercentage: 80,
		AssignmentAverage:    70,
		StudyHoursPerWeek:    15,
		SocioeconomicStatus:  models.SocioeconomicMedium,
	}
}

// FormFor starts from the student's saved factors, or the defaults if none.
func FormFor(s models.Student) Form {
	if s.Factors == nil {
		return DefaultForm()
	}
	f := s.Factors
	return Form{
		AttendancePercentage:         f.AttendancePercentage,
		AssignmentAverage:            f.AssignmentAverage,
		StudyHoursPerWeek:            f.StudyHoursPerWeek,
		SocioeconomicStatus:          f.SocioeconomicStatus,
		ExtracurricularParticipation: f.ExtracurricularParticipation,
	}
}

func (f Form) Input(studentID int64) models.FactorInput {
	return models.FactorInput{
		Student:                      studentID,
		AttendancePercentage:         f.AttendancePercentage,
		AssignmentAverage:            f.AssignmentAverage,
		StudyHoursPerWeek:            f.StudyHoursPerWeek,
		SocioeconomicStatus:          f.SocioeconomicStatus,
		ExtracurricularParticipation: f.ExtracurricularParticipation,
	}
}

// ParseForm reads the three numeric text inputs of the factor screen.
func ParseForm(attendance, assignment, studyHours string, status models.SocioeconomicStatus, extracurricular bool) (Form, error) {
	form := Form{SocioeconomicStatus: status, ExtracurricularParticipation: extracurricular}

	var bad []string
	parse := func(name, raw string, dst *float64) {
		v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			bad = append(bad, name+" must be a number")
			return
		}
		*dst = v
	}
	parse("AttendancePercentage", attendance, &form.AttendancePercentage)
	parse("AssignmentAverage", assignment, &form.AssignmentAverage)
	parse("StudyHoursPerWeek", studyHours, &form.StudyHoursPerWeek)

	if len(bad) > 0 {
		return form, &validation.Error{Fields: bad}
	}
	return form, nil
}

type Backend interface {
	ListFactors(ctx context.Context) ([]models.Factor, error)
	CreateFactor(ctx context.Context, in models.FactorInput) (models.Factor, error)
	UpdateFactor(ctx context.Context, factorID int64, in models.FactorInput) (models.Factor, error)
}

type Editor struct {
	backend   Backend
	directory *students.Directory
	logger    *zap.Logger
}

func NewEditor(backend Backend, directory *students.Directory, logger *zap.Logger) *Editor {
	return &Editor{backend: backend, directory: directory, logger: logging.OrNop(logger).Named("factors")}
}

func (e *Editor) List(ctx context.Context) ([]models.Factor, error) {
	factors, err := e.backend.ListFactors(ctx)
	if err != nil {
		e.logger.Error("Failed to load factors", zap.Error(err))
		return nil, fmt.Errorf("failed to load factors: %w", err)
	}
	return factors, nil
}

// Save creates the student's factors when they have none and otherwise
// updates the existing record by its own id. The fresh student listing is
// returned so the caller never patches its copy locally. When the write
// succeeds but the listing cannot be read back the error wraps
// students.ErrRefreshFailed and the passed index must be discarded.
func (e *Editor) Save(ctx context.Context, index students.Index, studentID int64, form Form) (students.Index, error) {
	if _, ok := index.ByID(studentID); !ok {
		return index, validation.Invalid("Student", "is required")
	}

	in := form.Input(studentID)
	if err := validation.Struct(in); err != nil {
		return index, err
	}

	ref := index.FactorRef(studentID)
	if factorID, ok := ref.ID(); ok {
		if _, err := e.backend.UpdateFactor(ctx, factorID, in); err != nil {
			e.logger.Error("Failed to update factors", zap.Int64("factor_id", factorID), zap.Error(err))
			return index, fmt.Errorf("failed to update factors: %w", err)
		}
		e.logger.Info("Updated factors", zap.Int64("student", studentID), zap.Int64("factor_id", factorID))
	} else {
		if _, err := e.backend.CreateFactor(ctx, in); err != nil {
			e.logger.Error("Failed to create factors", zap.Int64("student", studentID), zap.Error(err))
			return index, fmt.Errorf("failed to create factors: %w", err)
		}
		e.logger.Info("Created factors", zap.Int64("student", studentID))
	}

	return e.directory.Relist(ctx)
}
