package factors

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/feelsunbreeze/spps_tui/internal/api"
	"github.com/feelsunbreeze/spps_tui/internal/config"
	"github.com/feelsunbreeze/spps_tui/internal/models"
	"github.com/feelsunbreeze/spps_tui/internal/students"
	"github.com/feelsunbreeze/spps_tui/internal/validation"
)

type backend struct {
	mu          sync.Mutex
	students    []models.Student
	listCalls   int
	failLists   bool
	createdWith []models.FactorInput
	updatedPath []string
}

type counts struct {
	lists   int
	created []models.FactorInput
	updated []string
}

func (b *backend) setFailLists(fail bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failLists = fail
}

func (b *backend) snapshot() counts {
	b.mu.Lock()
	defer b.mu.Unlock()
	return counts{lists: b.listCalls, created: b.createdWith, updated: b.updatedPath}
}

func newBackend(t *testing.T, initial []models.Student) (*backend, *api.Client) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	b := &backend{students: initial}

	r := gin.New()
	r.GET("/api/students/students/", func(c *gin.Context) {
		b.mu.Lock()
		defer b.mu.Unlock()
		b.listCalls++
		if b.failLists {
			c.JSON(http.StatusServiceUnavailable, gin.H{"detail": "Service unavailable."})
			return
		}
		c.JSON(http.StatusOK, b.students)
	})
	r.POST("/api/students/factors/", func(c *gin.Context) {
		var in models.FactorInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.createdWith = append(b.createdWith, in)
		for i := range b.students {
			if b.students[i].ID == in.Student {
				b.students[i].Factors = &models.Factor{ID: 500, Student: in.Student}
			}
		}
		c.JSON(http.StatusCreated, gin.H{"id": 500, "student": in.Student})
	})
	r.PUT("/api/students/factors/:id/", func(c *gin.Context) {
		id, err := strconv.ParseInt(c.Param("id"), 10, 64)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"detail": "Not found."})
			return
		}
		var in models.FactorInput
		if err := c.ShouldBindJSON(&in); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		b.updatedPath = append(b.updatedPath, c.Request.URL.Path)
		c.JSON(http.StatusOK, models.Factor{ID: id, Student: in.Student})
	})
	r.GET("/api/students/factors/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"results": []gin.H{{"id": 41, "student": 2}}})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	cfg := config.Default()
	cfg.API.BaseURL = srv.URL + "/api"
	client, err := api.NewClient(cfg, nil)
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return b, client
}

func TestSaveCreatesForStudentWithoutFactors(t *testing.T) {
	b, client := newBackend(t, []models.Student{
		{ID: 17, StudentID: "STU001", FirstName: "Ada", LastName: "Obi"},
	})
	dir := students.NewDirectory(client, nil)
	editor := NewEditor(client, dir, nil)
	ctx := context.Background()

	index, err := dir.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	stu, _ := index.ByCode("STU001")

	form := FormFor(stu)
	if form != DefaultForm() {
		t.Fatalf("FormFor() = %+v, want defaults", form)
	}

	refreshed, err := editor.Save(ctx, index, stu.ID, form)
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got := b.snapshot()
	if len(got.created) != 1 {
		t.Fatalf("create calls = %d, want 1", len(got.created))
	}
	want := models.FactorInput{
		Student:              17,
		AttendancePercentage: 80,
		AssignmentAverage:    70,
		StudyHoursPerWeek:    15,
		SocioeconomicStatus:  models.SocioeconomicMedium,
	}
	if got.created[0] != want {
		t.Errorf("create payload = %+v, want %+v", got.created[0], want)
	}
	if len(got.updated) != 0 {
		t.Errorf("unexpected update calls %v", got.updated)
	}
	if got.lists != 2 {
		t.Errorf("student list calls = %d, want 2 (initial + re-fetch)", got.lists)
	}
	if !refreshed.FactorRef(17).Present() {
		t.Error("re-fetched index does not show the new factors")
	}
}

func TestSaveUpdatesByFactorID(t *testing.T) {
	b, client := newBackend(t, []models.Student{
		{ID: 2, StudentID: "STU002", Factors: &models.Factor{
			ID: 41, Student: 2, AttendancePercentage: 60, AssignmentAverage: 55,
			StudyHoursPerWeek: 8, SocioeconomicStatus: models.SocioeconomicLow, ExtracurricularParticipation: true,
		}},
	})
	dir := students.NewDirectory(client, nil)
	editor := NewEditor(client, dir, nil)
	ctx := context.Background()

	index, err := dir.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	stu, _ := index.ByID(2)
	form := FormFor(stu)
	if form.AttendancePercentage != 60 || !form.ExtracurricularParticipation {
		t.Fatalf("FormFor() did not load saved values: %+v", form)
	}
	form.StudyHoursPerWeek = 12

	if _, err := editor.Save(ctx, index, 2, form); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	got := b.snapshot()
	if len(got.created) != 0 {
		t.Errorf("unexpected create calls %+v", got.created)
	}
	if len(got.updated) != 1 || got.updated[0] != "/api/students/factors/41/" {
		t.Errorf("update paths = %v, want factor id 41 not student id 2", got.updated)
	}
}

func TestSaveReportsStaleIndexWhenRelistFails(t *testing.T) {
	b, client := newBackend(t, []models.Student{{ID: 17, StudentID: "STU001"}})
	dir := students.NewDirectory(client, nil)
	editor := NewEditor(client, dir, nil)
	ctx := context.Background()

	index, err := dir.List(ctx)
	if err != nil {
		t.Fatal(err)
	}

	b.setFailLists(true)
	_, err = editor.Save(ctx, index, 17, DefaultForm())
	if !errors.Is(err, students.ErrRefreshFailed) {
		t.Fatalf("Save() error = %v, want ErrRefreshFailed", err)
	}
	var verr *validation.Error
	if errors.As(err, &verr) {
		t.Fatalf("Save() error = %v reported as a validation failure", err)
	}
	if got := b.snapshot(); len(got.created) != 1 {
		t.Fatalf("create calls = %d, want 1", len(got.created))
	}

	// The caller reloads before the next write; the new index routes to update.
	b.setFailLists(false)
	index, err = dir.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := editor.Save(ctx, index, 17, DefaultForm()); err != nil {
		t.Fatalf("second Save() error = %v", err)
	}
	got := b.snapshot()
	if len(got.created) != 1 {
		t.Errorf("create calls = %d, want still 1", len(got.created))
	}
	if len(got.updated) != 1 || got.updated[0] != "/api/students/factors/500/" {
		t.Errorf("update paths = %v, want factor id 500", got.updated)
	}
}

func TestSaveRejectsOutOfRangeValues(t *testing.T) {
	b, client := newBackend(t, []models.Student{{ID: 1, StudentID: "STU001"}})
	dir := students.NewDirectory(client, nil)
	editor := NewEditor(client, dir, nil)
	index := students.NewIndex([]models.Student{{ID: 1, StudentID: "STU001"}})

	tests := []struct {
		name string
		form Form
	}{
		{"attendance above 100", Form{AttendancePercentage: 120, SocioeconomicStatus: models.SocioeconomicLow}},
		{"study hours above 40", Form{StudyHoursPerWeek: 41, SocioeconomicStatus: models.SocioeconomicLow}},
		{"unknown status", Form{SocioeconomicStatus: "rich"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := editor.Save(context.Background(), index, 1, tt.form)
			var verr *validation.Error
			if !errors.As(err, &verr) {
				t.Fatalf("Save() error = %v, want validation error", err)
			}
		})
	}

	if got := b.snapshot(); len(got.created) != 0 || got.lists != 0 {
		t.Errorf("requests made for invalid forms: creates=%d lists=%d", len(got.created), got.lists)
	}
}

func TestSaveRequiresKnownStudent(t *testing.T) {
	_, client := newBackend(t, nil)
	editor := NewEditor(client, students.NewDirectory(client, nil), nil)

	_, err := editor.Save(context.Background(), students.NewIndex(nil), 3, DefaultForm())
	var verr *validation.Error
	if !errors.As(err, &verr) {
		t.Errorf("Save() error = %v, want validation error", err)
	}
}

func TestList(t *testing.T) {
	_, client := newBackend(t, nil)
	editor := NewEditor(client, students.NewDirectory(client, nil), nil)

	factors, err := editor.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(factors) != 1 || factors[0].ID != 41 {
		t.Errorf("List() = %+v", factors)
	}
}

func TestParseForm(t *testing.T) {
	form, err := ParseForm("90", "75.5", "10", models.SocioeconomicHigh, true)
	if err != nil {
		t.Fatalf("ParseForm() error = %v", err)
	}
	in := form.Input(4)
	if in.AssignmentAverage != 75.5 || in.Student != 4 || !in.ExtracurricularParticipation {
		t.Errorf("Input() = %+v", in)
	}

	if _, err := ParseForm("lots", "70", "", models.SocioeconomicLow, false); err == nil {
		t.Error("ParseForm() accepted non-numeric input")
	}
}
