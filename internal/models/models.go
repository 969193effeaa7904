package models

import "time"

type RiskLevel string

const (
	RiskAtRisk       RiskLevel = "at_risk"
	RiskAverage      RiskLevel = "average"
	RiskHighAchiever RiskLevel = "high_achiever"
)

// RiskLevels lists the classifications the backend currently assigns, in
// the order the filter cycles through them.
var RiskLevels = []RiskLevel{RiskAtRisk, RiskAverage, RiskHighAchiever}

type SocioeconomicStatus string

const (
	SocioeconomicLow    SocioeconomicStatus = "low"
	SocioeconomicMedium SocioeconomicStatus = "medium"
	SocioeconomicHigh   SocioeconomicStatus = "high"
)

var SocioeconomicStatuses = []SocioeconomicStatus{SocioeconomicLow, SocioeconomicMedium, SocioeconomicHigh}

// User is the profile returned by /auth/me/.
type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Role      string `json:"role"`
}

func (u User) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	return u.Username
}

type Student struct {
	ID             int64    `json:"id"`
	StudentID      string   `json:"student_id"`
	FirstName      string   `json:"first_name"`
	LastName       string   `json:"last_name"`
	Email          string   `json:"email"`
	Department     string   `json:"department"`
	AdmissionYear  int      `json:"admission_year"`
	AdmissionScore float64  `json:"admission_score"`
	CurrentGPA     *float64 `json:"current_gpa"`
	Factors        *Factor  `json:"factors,omitempty"`
}

func (s Student) FullName() string {
	return s.FirstName + " " + s.LastName
}

// Label is the "<code> - <first> <last>" form used in student pickers.
func (s Student) Label() string {
	return s.StudentID + " - " + s.FullName()
}

type Factor struct {
	ID                           int64               `json:"id,omitempty"`
	Student                      int64               `json:"student"`
	AttendancePercentage         float64             `json:"attendance_percentage"`
	AssignmentAverage            float64             `json:"assignment_average"`
	StudyHoursPerWeek            float64             `json:"study_hours_per_week"`
	SocioeconomicStatus          SocioeconomicStatus `json:"socioeconomic_status"`
	ExtracurricularParticipation bool                `json:"extracurricular_participation"`
}

// StudentSnapshot is the denormalized copy of the student stored with a
// prediction at generation time.
type StudentSnapshot struct {
	StudentID string `json:"student_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Prediction struct {
	ID               int64           `json:"id"`
	StudentDetails   StudentSnapshot `json:"student_details"`
	PredictedCGPA    float64         `json:"predicted_cgpa"`
	RiskLevel        RiskLevel       `json:"risk_level"`
	RiskLevelDisplay string          `json:"risk_level_display"`
	ConfidenceScore  float64         `json:"confidence_score"`
	Semester         string          `json:"semester"`
	PredictedAt      time.Time       `json:"predicted_at"`
}

type UploadResult struct {
	Success        bool     `json:"success"`
	ResultsCreated int      `json:"results_created"`
	TotalProcessed int      `json:"total_processed"`
	Errors         []string `json:"errors"`
	Error          string   `json:"error,omitempty"`
}

type RecentPrediction struct {
	ID            int64     `json:"id"`
	StudentID     string    `json:"student_id"`
	StudentName   string    `json:"student_name"`
	PredictedCGPA float64   `json:"predicted_cgpa"`
	RiskLevel     RiskLevel `json:"risk_level"`
	PredictedAt   time.Time `json:"predicted_at"`
}

type DashboardStats struct {
	TotalStudents     int                `json:"total_students"`
	TotalPredictions  int                `json:"total_predictions"`
	AtRiskStudents    int                `json:"at_risk_students"`
	HighAchievers     int                `json:"high_achievers"`
	RecentPredictions []RecentPrediction `json:"recent_predictions"`
}

type PredictionStatistics struct {
	RiskPercentages map[RiskLevel]float64 `json:"risk_percentages"`
}

// Percentage returns 0 for levels the backend did not report.
func (p PredictionStatistics) Percentage(level RiskLevel) float64 {
	return p.RiskPercentages[level]
}

// GPA is the payload of /students/students/{id}/gpa/.
type GPA struct {
	StudentID string   `json:"student_id"`
	GPA       *float64 `json:"gpa"`
}

// StudentInput is the create/update payload for a student record.
type StudentInput struct {
	StudentID      string  `json:"student_id" validate:"required,max=20"`
	FirstName      string  `json:"first_name" validate:"required"`
	LastName       string  `json:"last_name" validate:"required"`
	Email          string  `json:"email" validate:"required,email"`
	Department     string  `json:"department" validate:"required"`
	AdmissionYear  int     `json:"admission_year" validate:"required,gte=1900,lte=2100"`
	AdmissionScore float64 `json:"admission_score" validate:"gte=100,lte=400"`
}

// FactorInput is the create/update payload for a student's factors.
type FactorInput struct {
	Student                      int64               `json:"student" validate:"required,gt=0"`
	AttendancePercentage         float64             `json:"attendance_percentage" validate:"gte=0,lte=100"`
	AssignmentAverage            float64             `json:"assignment_average" validate:"gte=0,lte=100"`
	StudyHoursPerWeek            float64             `json:"study_hours_per_week" validate:"gte=0,lte=40"`
	SocioeconomicStatus          SocioeconomicStatus `json:"socioeconomic_status" validate:"required,oneof=low medium high"`
	ExtracurricularParticipation bool                `json:"extracurricular_participation"`
}

// PredictionReport is whatever the backend returns for a report request.
type PredictionReport map[string]any
