package results

import (
	"fmt"
	"os"
	"path/filepath"
)

const TemplateName = "student_results_template.csv"

const template = "student_id,course_code,course_title,score,credit_units\n" +
	"STU001,CSC101,Introduction to Computing,75,3\n" +
	"STU001,MTH101,Calculus I,82,3\n" +
	"STU002,CSC101,Introduction to Computing,68,3"

// Template returns the example results CSV offered to users.
func Template() string {
	return template
}

// WriteTemplate writes the template into dir and returns the file path.
func WriteTemplate(dir string) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", dir, err)
	}

	path := filepath.Join(dir, TemplateName)
	if err := os.WriteFile(path, []byte(template), 0o644); err != nil {
		return "", fmt.Errorf("failed to write template: %w", err)
	}
	return path, nil
}
