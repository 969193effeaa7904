package validation

import (
	"errors"
	"testing"
)

type form struct {
	Name  string  `validate:"required"`
	Score float64 `validate:"gte=0,lte=100"`
	Level string  `validate:"required,oneof=low medium high"`
}

func TestStruct(t *testing.T) {
	tests := []struct {
		name       string
		in         form
		wantFields int
	}{
		{"valid", form{Name: "a", Score: 50, Level: "low"}, 0},
		{"score too high", form{Name: "a", Score: 101, Level: "low"}, 1},
		{"everything wrong", form{Score: -1, Level: "extreme"}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if tt.wantFields == 0 {
				if err != nil {
					t.Fatalf("Struct() error = %v", err)
				}
				return
			}
			var verr *Error
			if !errors.As(err, &verr) {
				t.Fatalf("Struct() error = %v, want *Error", err)
			}
			if len(verr.Fields) != tt.wantFields {
				t.Errorf("fields = %v, want %d entries", verr.Fields, tt.wantFields)
			}
		})
	}
}

type bounds struct {
	ID    int64   `validate:"gt=0"`
	Ratio float64 `validate:"lt=1"`
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"lte", form{Name: "a", Score: 101, Level: "low"}, "Score must be at most 100"},
		{"gte", form{Name: "a", Score: -1, Level: "low"}, "Score must be at least 0"},
		{"gt", bounds{ID: 0, Ratio: 0.5}, "ID must be greater than 0"},
		{"lt", bounds{ID: 1, Ratio: 1}, "Ratio must be less than 1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Struct(tt.in)
			if err == nil {
				t.Fatal("Struct() error = nil")
			}
			if got := err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}
