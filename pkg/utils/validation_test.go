package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Text  string  `validate:"required,max=5"`
	Note  *string `validate:"omitempty,max=3"`
	Other string
}

func TestValidateStruct(t *testing.T) {
	long := "toolong"

	tests := []struct {
		name    string
		input   sample
		wantErr string
	}{
		{"valid", sample{Text: "ok"}, ""},
		{"missing", sample{}, "text is required"},
		{"too long", sample{Text: strings.Repeat("a", 6)}, "text must be at most 5 characters"},
		{"pointer too long", sample{Text: "ok", Note: &long}, "note must be at most 3 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.EqualError(t, err, tt.wantErr)
		})
	}
}

func TestValidateStruct_NotAStruct(t *testing.T) {
	assert.Error(t, ValidateStruct("plain"))
}
