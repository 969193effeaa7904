package predictions

import (
	"errors"
	"net/http"
	"testing"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/students"
)

func loadedView(t *testing.T, preds []models.Prediction) *View {
	t.Helper()
	v := NewView()
	v.Enter()
	v.ListLoaded(ListResult{
		Predictions: preds,
		Students: students.NewIndex([]models.Student{
			{ID: 1, StudentID: "STU001", FirstName: "Ada", LastName: "Obi"},
			{ID: 2, StudentID: "STU002", FirstName: "Bola", LastName: "Ade"},
		}),
	}, nil)
	return v
}

func TestSubmitWithoutStudent(t *testing.T) {
	v := loadedView(t, nil)
	v.OpenForm()

	req, err := v.Submit()
	if !errors.Is(err, ErrNoStudentSelected) {
		t.Fatalf("Submit() error = %v, want ErrNoStudentSelected", err)
	}
	if req != (GenerateRequest{}) {
		t.Errorf("Submit() built a request %+v", req)
	}
	if v.Generating() {
		t.Error("Generating() = true after rejected submit")
	}
	if !v.FormOpen() || v.FormError() == "" {
		t.Errorf("form open=%v err=%q, want open with error", v.FormOpen(), v.FormError())
	}
}

func TestSubmitBuildsRequestAndBlocksResubmit(t *testing.T) {
	v := loadedView(t, nil)
	v.OpenForm()
	v.SelectStudent("STU002")
	v.SelectSemester(SemesterNext)

	req, err := v.Submit()
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if req.StudentCode != "STU002" || req.Semester != "Next" {
		t.Errorf("Submit() = %+v", req)
	}
	if !v.Generating() {
		t.Error("Generating() = false while request outstanding")
	}
	if _, err := v.Submit(); !errors.Is(err, ErrGenerationInFlight) {
		t.Errorf("second Submit() error = %v, want ErrGenerationInFlight", err)
	}
}

func TestGenerateFinished(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantRefetch bool
		wantOpen    bool
		wantFormErr string
	}{
		{"success", nil, true, false, ""},
		{"backend message kept verbatim", &api.APIError{Status: http.StatusBadRequest, Message: "Student has no results for this semester"}, false, true, "Student has no results for this semester"},
		{"no message", &api.APIError{Status: http.StatusInternalServerError}, false, true, "Failed to generate prediction"},
		{"transport failure", errors.New("dial tcp: connection refused"), false, true, "Failed to generate prediction"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := loadedView(t, nil)
			v.OpenForm()
			v.SelectStudent("STU001")
			if _, err := v.Submit(); err != nil {
				t.Fatal(err)
			}

			if got := v.GenerateFinished(tt.err); got != tt.wantRefetch {
				t.Errorf("GenerateFinished() = %v, want %v", got, tt.wantRefetch)
			}
			if v.Generating() {
				t.Error("submit not re-enabled")
			}
			if v.FormOpen() != tt.wantOpen {
				t.Errorf("FormOpen() = %v, want %v", v.FormOpen(), tt.wantOpen)
			}
			if v.FormError() != tt.wantFormErr {
				t.Errorf("FormError() = %q, want %q", v.FormError(), tt.wantFormErr)
			}
			if tt.wantOpen && v.Selected() != "STU001" {
				t.Errorf("selection lost after failure: %q", v.Selected())
			}
			if !tt.wantOpen {
				if v.Selected() != "" || v.Semester() != SemesterCurrent {
					t.Errorf("form not cleared: %q %q", v.Selected(), v.Semester())
				}
				if v.Notice() == "" || v.Phase() != PhaseLoading {
					t.Errorf("notice=%q phase=%v after success", v.Notice(), v.Phase())
				}
			}
		})
	}
}

func TestFilterDoesNotTouchForm(t *testing.T) {
	v := loadedView(t, nil)
	v.OpenForm()
	v.SelectStudent("STU001")

	q := v.SetFilter(models.RiskAtRisk)
	if q.Risk != models.RiskAtRisk || v.Phase() != PhaseLoading {
		t.Errorf("SetFilter() = %+v phase %v", q, v.Phase())
	}
	if !v.FormOpen() || v.Selected() != "STU001" {
		t.Error("filter change disturbed the open form")
	}

	if q := v.SetFilter(""); q.Risk != "" {
		t.Errorf("SetFilter(\"\") = %+v", q)
	}
}

func TestCycleFilter(t *testing.T) {
	v := NewView()
	want := []models.RiskLevel{models.RiskAtRisk, models.RiskAverage, models.RiskHighAchiever, ""}
	for _, w := range want {
		if q := v.CycleFilter(); q.Risk != w {
			t.Fatalf("CycleFilter() = %q, want %q", q.Risk, w)
		}
	}

	v.ShowAtRiskOnly()
	if q := v.CycleFilter(); q.AtRiskOnly || q.Risk != "" {
		t.Errorf("CycleFilter() from at-risk list = %+v", q)
	}
}

func TestEmptyState(t *testing.T) {
	v := NewView()
	v.SetFilter(models.RiskHighAchiever)
	if v.Empty() {
		t.Error("Empty() = true while loading")
	}
	v.ListLoaded(ListResult{}, nil)

	if !v.Empty() {
		t.Fatal("Empty() = false for zero predictions")
	}
	if got := v.EmptyMessage(); got != "No predictions found with risk level High Achiever." {
		t.Errorf("EmptyMessage() = %q", got)
	}
}

func TestListLoadFailure(t *testing.T) {
	tests := []struct {
		name    string
		initial []models.Prediction
		err     error
	}{
		{"first load", nil, errors.New("connection refused")},
		{"filter change", []models.Prediction{{ID: 1}}, &api.APIError{Status: http.StatusBadGateway}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := NewView()
			v.Enter()
			if tt.initial != nil {
				v = loadedView(t, tt.initial)
			}
			v.SetFilter(models.RiskHighAchiever)
			v.ListLoaded(ListResult{}, tt.err)

			if v.LoadError() != "Failed to load predictions" {
				t.Errorf("LoadError() = %q", v.LoadError())
			}
			if v.Empty() {
				t.Errorf("Empty() = true after a failed load; would show %q", v.EmptyMessage())
			}
			if len(v.Predictions()) != len(tt.initial) {
				t.Errorf("failed load replaced the list: %+v", v.Predictions())
			}

			v.ListLoaded(ListResult{}, nil)
			if v.LoadError() != "" || !v.Empty() {
				t.Errorf("successful empty reload: LoadError() = %q, Empty() = %v", v.LoadError(), v.Empty())
			}
		})
	}
}

func TestStudentNameAndCycle(t *testing.T) {
	v := loadedView(t, nil)

	if got := v.StudentName("STU002"); got != "Bola Ade" {
		t.Errorf("StudentName() = %q", got)
	}
	if got := v.StudentName("STU404"); got != "STU404" {
		t.Errorf("StudentName(unknown) = %q", got)
	}

	v.CycleStudent(1)
	if v.Selected() != "STU001" {
		t.Errorf("Selected() = %q, want STU001", v.Selected())
	}
	v.CycleStudent(-2)
	if v.Selected() != "STU002" {
		t.Errorf("Selected() = %q, want STU002 after wrapping", v.Selected())
	}
	v.CycleStudent(1)
	if v.Selected() != "" {
		t.Errorf("Selected() = %q, want empty slot", v.Selected())
	}

	v.CycleSemester()
	if v.Semester() != SemesterNext {
		t.Errorf("Semester() = %q", v.Semester())
	}
}
