package students

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/validation"
)

type fakeBackend struct {
	students    []models.Student
	listErr     error
	created     []models.StudentInput
	updatedID   int64
	createCalls int
}

func (f *fakeBackend) ListStudents(ctx context.Context) ([]models.Student, error) {
	return f.students, f.listErr
}

func (f *fakeBackend) GetStudent(ctx context.Context, id int64) (models.Student, error) {
	for _, s := range f.students {
		if s.ID == id {
			return s, nil
		}
	}
	return models.Student{}, errors.New("not found")
}

func (f *fakeBackend) CreateStudent(ctx context.Context, in models.StudentInput) (models.Student, error) {
	f.createCalls++
	f.created = append(f.created, in)
	return models.Student{ID: 99, StudentID: in.StudentID}, nil
}

func (f *fakeBackend) UpdateStudent(ctx context.Context, id int64, in models.StudentInput) (models.Student, error) {
	f.updatedID = id
	return models.Student{ID: id, StudentID: in.StudentID}, nil
}

func (f *fakeBackend) StudentGPA(ctx context.Context, id int64) (models.GPA, error) {
	gpa := 3.1
	return models.GPA{GPA: &gpa}, nil
}

func sampleStudents() []models.Student {
	return []models.Student{
		{ID: 1, StudentID: "STU001", FirstName: "Ada", LastName: "Obi"},
		{ID: 2, StudentID: "STU002", FirstName: "Bola", LastName: "Ade", Factors: &models.Factor{ID: 41, Student: 2}},
	}
}

func validInput() models.StudentInput {
	return models.StudentInput{
		StudentID:      "STU010",
		FirstName:      "Chidi",
		LastName:       "Eze",
		Email:          "chidi@example.com",
		Department:     "Computer Science",
		AdmissionYear:  2024,
		AdmissionScore: 250,
	}
}

func TestIndexLookups(t *testing.T) {
	idx := NewIndex(sampleStudents())

	if idx.Len() != 2 {
		t.Fatalf("Len() = %d", idx.Len())
	}
	if s, ok := idx.ByCode("STU002"); !ok || s.ID != 2 {
		t.Errorf("ByCode(STU002) = %+v, %v", s, ok)
	}
	if _, ok := idx.ByCode("STU404"); ok {
		t.Error("ByCode found an unknown code")
	}
	if s, ok := idx.ByID(1); !ok || s.StudentID != "STU001" {
		t.Errorf("ByID(1) = %+v, %v", s, ok)
	}
}

func TestFactorRef(t *testing.T) {
	idx := NewIndex(sampleStudents())

	tests := []struct {
		name      string
		studentID int64
		present   bool
		factorID  int64
	}{
		{"no factors yet", 1, false, 0},
		{"existing factors keyed by factor id", 2, true, 41},
		{"unknown student", 7, false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref := idx.FactorRef(tt.studentID)
			id, ok := ref.ID()
			if ok != tt.present || ref.Present() != tt.present {
				t.Fatalf("FactorRef(%d) present = %v, want %v", tt.studentID, ok, tt.present)
			}
			if id != tt.factorID {
				t.Errorf("FactorRef(%d) id = %d, want %d", tt.studentID, id, tt.factorID)
			}
		})
	}
}

func TestCreateValidatesBeforeRequest(t *testing.T) {
	fb := &fakeBackend{}
	d := NewDirectory(fb, nil)

	bad := validInput()
	bad.Email = "not-an-email"
	bad.AdmissionScore = 50

	_, err := d.Create(context.Background(), bad)
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Fatalf("Create() error = %v, want validation error", err)
	}
	if len(verr.Fields) != 2 {
		t.Errorf("fields = %v", verr.Fields)
	}
	if fb.createCalls != 0 {
		t.Errorf("create calls = %d, want 0", fb.createCalls)
	}

	if _, err := d.Create(context.Background(), validInput()); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if fb.createCalls != 1 {
		t.Errorf("create calls = %d, want 1", fb.createCalls)
	}
}

func TestUpdateKeepsStudentCode(t *testing.T) {
	fb := &fakeBackend{}
	d := NewDirectory(fb, nil)
	current := models.Student{ID: 5, StudentID: "STU010"}

	in := validInput()
	in.StudentID = "STU999"
	if _, err := d.Update(context.Background(), current, in); err == nil {
		t.Error("Update() accepted a changed student code")
	}

	if _, err := d.Update(context.Background(), current, validInput()); err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if fb.updatedID != 5 {
		t.Errorf("updated id = %d, want 5", fb.updatedID)
	}
}

func TestListWrapsFailure(t *testing.T) {
	cause := errors.New("boom")
	d := NewDirectory(&fakeBackend{listErr: cause}, nil)

	if _, err := d.List(context.Background()); !errors.Is(err, cause) {
		t.Errorf("List() error = %v, want wrapped %v", err, cause)
	}
}

func TestRelist(t *testing.T) {
	cause := errors.New("boom")
	d := NewDirectory(&fakeBackend{listErr: cause}, nil)

	_, err := d.Relist(context.Background())
	if !errors.Is(err, ErrRefreshFailed) || !errors.Is(err, cause) {
		t.Errorf("Relist() error = %v, want ErrRefreshFailed wrapping %v", err, cause)
	}

	d = NewDirectory(&fakeBackend{students: sampleStudents()}, nil)
	index, err := d.Relist(context.Background())
	if err != nil || index.Len() != 2 {
		t.Errorf("Relist() = %d students, %v", index.Len(), err)
	}
}

func TestInputFromFields(t *testing.T) {
	in, err := InputFromFields(" STU001 ", "Ada", "Obi", "ada@example.com", "Maths", "2023", "310.5")
	if err != nil {
		t.Fatalf("InputFromFields() error = %v", err)
	}
	if in.StudentID != "STU001" || in.AdmissionYear != 2023 || in.AdmissionScore != 310.5 {
		t.Errorf("InputFromFields() = %+v", in)
	}

	if _, err := InputFromFields("STU001", "Ada", "Obi", "ada@example.com", "Maths", "soon", ""); err == nil {
		t.Error("InputFromFields() accepted non-numeric year and score")
	}
}

func TestNewStudentInputDefaultsYear(t *testing.T) {
	now := time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC)
	if got := NewStudentInput(now).AdmissionYear; got != 2025 {
		t.Errorf("AdmissionYear = %d, want 2025", got)
	}
}
