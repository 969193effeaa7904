package models

import (
	"fmt"
	"strings"
	"time"
)

const badgePrefix = "risk-badge risk-"

// BadgeClass derives the presentation class of a risk level by swapping the
// internal "_" separator for "-". No lookup table: unknown levels map too.
func BadgeClass(level RiskLevel) string {
	return badgePrefix + strings.ReplaceAll(string(level), "_", "-")
}

// RiskLevelFromBadge inverts BadgeClass.
func RiskLevelFromBadge(class string) (RiskLevel, bool) {
	rest, ok := strings.CutPrefix(class, badgePrefix)
	if !ok || rest == "" {
		return "", false
	}
	return RiskLevel(strings.ReplaceAll(rest, "-", "_")), true
}

// Label is used when the backend did not send a display string.
func (r RiskLevel) Label() string {
	words := strings.Split(string(r), "_")
	for i, w := range words {
		if w != "" {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}

func FormatCGPA(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func FormatConfidence(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// FormatGPA renders a nullable GPA, "N/A" when the backend has none yet.
func FormatGPA(v *float64) string {
	if v == nil {
		return "N/A"
	}
	return FormatCGPA(*v)
}

func FormatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02")
}
