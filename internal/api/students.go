package api

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"

	"github.com/feelsunbreeze/spps_tui/internal/models"
)

func (c *Client) ListStudents(ctx context.Context) ([]models.Student, error) {
	var students listOf[models.Student]
	if err := c.get(ctx, "/students/students/", nil, &students); err != nil {
		return nil, err
	}
	return students, nil
}

func (c *Client) GetStudent(ctx context.Context, id int64) (models.Student, error) {
	var student models.Student
	err := c.get(ctx, fmt.Sprintf("/students/students/%d/", id), nil, &student)
	return student, err
}

func (c *Client) CreateStudent(ctx context.Context, in models.StudentInput) (models.Student, error) {
	var student models.Student
	err := c.send(ctx, http.MethodPost, "/students/students/", in, &student)
	return student, err
}

func (c *Client) UpdateStudent(ctx context.Context, id int64, in models.StudentInput) (models.Student, error) {
	var student models.Student
	err := c.send(ctx, http.MethodPut, fmt.Sprintf("/students/students/%d/", id), in, &student)
	return student, err
}

func (c *Client) StudentGPA(ctx context.Context, id int64) (models.GPA, error) {
	var gpa models.GPA
	err := c.get(ctx, fmt.Sprintf("/students/students/%d/gpa/", id), nil, &gpa)
	return gpa, err
}

// UploadResults posts a results CSV as multipart form data (fields "file"
// and "semester"). Parsing and validation happen on the backend.
func (c *Client) UploadResults(ctx context.Context, filename string, file io.Reader, semester string) (models.UploadResult, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to read upload: %w", err)
	}
	if err := w.WriteField("semester", semester); err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to write semester field: %w", err)
	}
	if err := w.Close(); err != nil {
		return models.UploadResult{}, fmt.Errorf("failed to finish multipart body: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/students/students/upload_csv/", nil, &buf, w.FormDataContentType())
	if err != nil {
		return models.UploadResult{}, err
	}

	var result models.UploadResult
	err = c.do(req, &result)
	return result, err
}
