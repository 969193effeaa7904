package predictions

import (
	"errors"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/students"
)

var (
	ErrNoStudentSelected  = errors.New("please select a student")
	ErrGenerationInFlight = errors.New("a prediction is already being generated")
)

const (
	SemesterCurrent = "Current"
	SemesterNext    = "Next"
)

var Semesters = []string{SemesterCurrent, SemesterNext}

const (
	generateFallback = "Failed to generate prediction"
	loadFallback     = "Failed to load predictions"
	generatedNotice  = "Prediction generated successfully!"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseList
)

// View is the state of one predictions screen. It performs no I/O: the
// caller runs the queries and requests it hands out and feeds the outcomes
// back in.
type View struct {
	phase       Phase
	query       ListQuery
	predictions []models.Prediction
	students    students.Index
	loadErr     string

	formOpen   bool
	selected   string
	semester   string
	generating bool
	formErr    string

	notice string
}

func NewView() *View {
	return &View{semester: SemesterCurrent}
}

// Enter starts the screen and returns the first list query.
func (v *View) Enter() ListQuery {
	v.phase = PhaseLoading
	return v.query
}

// SetFilter changes the risk level filter and returns the query to run.
// An open form is left untouched.
func (v *View) SetFilter(level models.RiskLevel) ListQuery {
	v.query = ListQuery{Risk: level}
	v.phase = PhaseLoading
	return v.query
}

// ShowAtRiskOnly switches to the dedicated at-risk listing.
func (v *View) ShowAtRiskOnly() ListQuery {
	v.query = ListQuery{AtRiskOnly: true}
	v.phase = PhaseLoading
	return v.query
}

// CycleFilter moves through all, then each risk level in order.
func (v *View) CycleFilter() ListQuery {
	if v.query.AtRiskOnly {
		return v.SetFilter("")
	}
	options := append([]models.RiskLevel{""}, models.RiskLevels...)
	for i, level := range options {
		if level == v.query.Risk {
			return v.SetFilter(options[(i+1)%len(options)])
		}
	}
	return v.SetFilter("")
}

// ListLoaded applies a list outcome. On failure the previous rows are kept
// but LoadError is set, and callers show the error in their place.
func (v *View) ListLoaded(res ListResult, err error) {
	v.phase = PhaseList
	if err != nil {
		v.loadErr = api.Message(err, loadFallback)
		return
	}
	v.loadErr = ""
	v.predictions = res.Predictions
	v.students = res.Students
}

func (v *View) OpenForm() {
	v.formOpen = true
	v.formErr = ""
	if v.semester == "" {
		v.semester = SemesterCurrent
	}
}

// CloseForm discards the pending selections.
func (v *View) CloseForm() {
	v.formOpen = false
	v.selected = ""
	v.semester = SemesterCurrent
	v.formErr = ""
}

func (v *View) ToggleForm() {
	if v.formOpen {
		v.CloseForm()
		return
	}
	v.OpenForm()
}

// SelectStudent records the external student code, not the numeric key.
func (v *View) SelectStudent(code string) {
	v.selected = code
	v.formErr = ""
}

// CycleStudent steps through the loaded directory with an empty slot
// before the first student.
func (v *View) CycleStudent(step int) {
	all := v.students.All()
	slots := len(all) + 1
	pos := 0
	for i, s := range all {
		if s.StudentID == v.selected {
			pos = i + 1
			break
		}
	}
	pos = ((pos+step)%slots + slots) % slots
	if pos == 0 {
		v.SelectStudent("")
		return
	}
	v.SelectStudent(all[pos-1].StudentID)
}

func (v *View) SelectSemester(label string) {
	v.semester = label
}

func (v *View) CycleSemester() {
	if v.semester == SemesterCurrent {
		v.semester = SemesterNext
		return
	}
	v.semester = SemesterCurrent
}

// Submit validates the form and, when it passes, marks generation as in
// flight and returns the request to send.
func (v *View) Submit() (GenerateRequest, error) {
	if v.generating {
		return GenerateRequest{}, ErrGenerationInFlight
	}
	if v.selected == "" {
		v.formErr = ErrNoStudentSelected.Error()
		return GenerateRequest{}, ErrNoStudentSelected
	}
	v.generating = true
	v.formErr = ""
	return GenerateRequest{StudentCode: v.selected, Semester: v.semester}, nil
}

// GenerateFinished records the outcome of a generation request. It returns
// true when the list must be fetched again with Query.
func (v *View) GenerateFinished(err error) bool {
	v.generating = false
	if err != nil {
		v.formErr = api.Message(err, generateFallback)
		return false
	}
	v.CloseForm()
	v.notice = generatedNotice
	v.phase = PhaseLoading
	return true
}

func (v *View) DismissNotice() { v.notice = "" }

func (v *View) Phase() Phase                     { return v.phase }
func (v *View) Query() ListQuery                 { return v.query }
func (v *View) Predictions() []models.Prediction { return v.predictions }
func (v *View) Students() students.Index         { return v.students }
func (v *View) LoadError() string                { return v.loadErr }
func (v *View) FormOpen() bool                   { return v.formOpen }
func (v *View) Selected() string                 { return v.selected }
func (v *View) Semester() string                 { return v.semester }
func (v *View) Generating() bool                 { return v.generating }
func (v *View) FormError() string                { return v.formErr }
func (v *View) Notice() string                   { return v.notice }

// Empty reports whether the last load succeeded with nothing to show. A
// failed load is never empty: nothing is known about the filtered list.
func (v *View) Empty() bool {
	return v.phase == PhaseList && v.loadErr == "" && len(v.predictions) == 0
}

// EmptyMessage is shown in place of the table when the list is empty.
func (v *View) EmptyMessage() string {
	switch {
	case v.query.AtRiskOnly:
		return "No at-risk predictions found."
	case v.query.Risk != "":
		return "No predictions found with risk level " + v.query.Risk.Label() + "."
	default:
		return "No predictions found. Generate your first prediction to get started."
	}
}

// StudentName resolves an external code against the loaded directory.
func (v *View) StudentName(code string) string {
	s, ok := v.students.ByCode(code)
	if !ok {
		return code
	}
	return s.FullName()
}

// FilterLabel names the active filter for the screen header.
func (v *View) FilterLabel() string {
	switch {
	case v.query.AtRiskOnly:
		return "At Risk (dedicated list)"
	case v.query.Risk == "":
		return "All Levels"
	default:
		return v.query.Risk.Label()
	}
}
