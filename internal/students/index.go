package students

import "github.com/feelsunbreeze/spps_tui/internal/models"

// FactorRef says whether a student already has a factor record, and which.
type FactorRef struct {
	id      int64
	present bool
}

func Absent() FactorRef { return FactorRef{} }

func Present(factorID int64) FactorRef { return FactorRef{id: factorID, present: true} }

// ID returns the factor's own id when present.
func (r FactorRef) ID() (int64, bool) { return r.id, r.present }

func (r FactorRef) Present() bool { return r.present }

func RefOf(s models.Student) FactorRef {
	if s.Factors == nil {
		return Absent()
	}
	return Present(s.Factors.ID)
}

// Index is one listing of the directory, addressable by numeric key and by
// external student code.
type Index struct {
	students []models.Student
	byID     map[int64]int
	byCode   map[string]int
}

func NewIndex(students []models.Student) Index {
	idx := Index{
		students: students,
		byID:     make(map[int64]int, len(students)),
		byCode:   make(map[string]int, len(students)),
	}
	for i, s := range students {
		idx.byID[s.ID] = i
		idx.byCode[s.StudentID] = i
	}
	return idx
}

func (i Index) All() []models.Student { return i.students }

func (i Index) Len() int { return len(i.students) }

func (i Index) ByID(id int64) (models.Student, bool) {
	pos, ok := i.byID[id]
	if !ok {
		return models.Student{}, false
	}
	return i.students[pos], true
}

func (i Index) ByCode(code string) (models.Student, bool) {
	pos, ok := i.byCode[code]
	if !ok {
		return models.Student{}, false
	}
	return i.students[pos], true
}

// FactorRef looks the student up by numeric key; unknown students are Absent.
func (i Index) FactorRef(id int64) FactorRef {
	s, ok := i.ByID(id)
	if !ok {
		return Absent()
	}
	return RefOf(s)
}

// EmptyMessage is shown instead of an empty table.
const EmptyMessage = "No students found. Add your first student to get started."
