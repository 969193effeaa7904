package models

import (
	"strings"
	"testing"
)

func TestBadgeClass(t *testing.T) {
	tests := []struct {
		level RiskLevel
		want  string
	}{
		{RiskAtRisk, "risk-badge risk-at-risk"},
		{RiskAverage, "risk-badge risk-average"},
		{RiskHighAchiever, "risk-badge risk-high-achiever"},
		{RiskLevel("very_low_risk"), "risk-badge risk-very-low-risk"},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			got := BadgeClass(tt.level)
			if got != tt.want {
				t.Errorf("BadgeClass(%q) = %q, want %q", tt.level, got, tt.want)
			}
			if got != BadgeClass(tt.level) {
				t.Errorf("BadgeClass(%q) is not stable", tt.level)
			}
			back, ok := RiskLevelFromBadge(got)
			if !ok || back != tt.level {
				t.Errorf("RiskLevelFromBadge(%q) = %q, %v, want %q", got, back, ok, tt.level)
			}
		})
	}
}

func TestBadgeClassIsSyntactic(t *testing.T) {
	for _, level := range RiskLevels {
		want := "risk-badge risk-" + strings.ReplaceAll(string(level), "_", "-")
		if got := BadgeClass(level); got != want {
			t.Errorf("BadgeClass(%q) = %q, want %q", level, got, want)
		}
	}
}

func TestRiskLevelFromBadgeRejectsForeignClass(t *testing.T) {
	for _, class := range []string{"", "risk-badge risk-", "badge at-risk"} {
		if _, ok := RiskLevelFromBadge(class); ok {
			t.Errorf("RiskLevelFromBadge(%q) should fail", class)
		}
	}
}

func TestNumericDisplay(t *testing.T) {
	p := Prediction{PredictedCGPA: 3.14159, ConfidenceScore: 87.25}

	if got := FormatCGPA(p.PredictedCGPA); got != "3.14" {
		t.Errorf("FormatCGPA = %q, want 3.14", got)
	}
	if got := FormatConfidence(p.ConfidenceScore); got != "87.2%" && got != "87.3%" {
		t.Errorf("FormatConfidence = %q", got)
	}
	if got := FormatConfidence(92); got != "92.0%" {
		t.Errorf("FormatConfidence(92) = %q, want 92.0%%", got)
	}
	if p.PredictedCGPA != 3.14159 || p.ConfidenceScore != 87.25 {
		t.Error("formatting must not change stored values")
	}
}

func TestFormatGPA(t *testing.T) {
	gpa := 2.5
	if got := FormatGPA(&gpa); got != "2.50" {
		t.Errorf("FormatGPA = %q, want 2.50", got)
	}
	if got := FormatGPA(nil); got != "N/A" {
		t.Errorf("FormatGPA(nil) = %q, want N/A", got)
	}
}

func TestRiskLevelLabel(t *testing.T) {
	if got := RiskHighAchiever.Label(); got != "High Achiever" {
		t.Errorf("Label = %q", got)
	}
}

func TestUserDisplayName(t *testing.T) {
	if got := (User{Username: "admin"}).DisplayName(); got != "admin" {
		t.Errorf("DisplayName = %q", got)
	}
	if got := (User{Username: "admin", FirstName: "Ada"}).DisplayName(); got != "Ada" {
		t.Errorf("DisplayName = %q", got)
	}
}
