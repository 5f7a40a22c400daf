package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateString(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		required bool
		wantErr  bool
	}{
		{"required empty", "", true, true},
		{"optional empty", "", false, false},
		{"too short", "a", true, true},
		{"too long", strings.Repeat("x", 11), true, true},
		{"null byte", "ab\x00c", true, true},
		{"ok", "hello", true, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateString(tt.value, "field", 2, 10, tt.required)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, ValidateID("bp_01HZX3V6Q9W1J9M8S0F2B7K4TN", "id", true))
	assert.Error(t, ValidateID("../etc/passwd", "id", true))
	assert.Error(t, ValidateID("", "id", true))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("user@example.com", true))
	assert.Error(t, ValidateEmail("not-an-email", true))
	assert.NoError(t, ValidateEmail("", false))
}

func TestValidatePrompt(t *testing.T) {
	assert.Error(t, ValidatePrompt(""))
	assert.Error(t, ValidatePrompt("   \n\t"))
	assert.Error(t, ValidatePrompt(strings.Repeat("a", MaxPromptSize+1)))
	assert.NoError(t, ValidatePrompt("a portfolio for a photographer"))
}

func TestValidateTitle(t *testing.T) {
	assert.NoError(t, ValidateTitle(""))
	assert.NoError(t, ValidateTitle("My Awesome Site"))
	assert.Error(t, ValidateTitle(strings.Repeat("t", MaxTitleLength+1)))
}
