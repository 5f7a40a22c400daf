package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Size limits (in bytes)
const (
	MaxJSONSize      = 1 * 1024 * 1024 // 1MB - maximum request body
	MaxBlueprintSize = 512 * 1024      // 512KB - blueprint JSON text
	MaxPromptSize    = 16 * 1024       // 16KB - generation prompt
)

// String length limits
const (
	MaxDisplayNameLength = 128
	MaxPasswordLength    = 128
	MinPasswordLength    = 8
	MaxEmailLength       = 255
	MaxIDLength          = 128
	MaxTitleLength       = 256
	MaxTokenLength       = 128
)

var (
	// SafeIDPattern allows alphanumeric, hyphens, underscores
	SafeIDPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	// EmailPattern is a basic email validation
	EmailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
)

// ValidateSize checks that data fits within max bytes
func ValidateSize(data []byte, fieldName string, max int) error {
	if len(data) > max {
		return fmt.Errorf("%s size %d bytes exceeds maximum %d bytes", fieldName, len(data), max)
	}
	return nil
}

// ValidateString validates a string field with length and content checks
func ValidateString(value, fieldName string, minLen, maxLen int, required bool) error {
	if required && value == "" {
		return fmt.Errorf("%s is required", fieldName)
	}

	if value == "" && !required {
		return nil
	}

	length := utf8.RuneCountInString(value)
	if length < minLen {
		return fmt.Errorf("%s must be at least %d characters", fieldName, minLen)
	}
	if length > maxLen {
		return fmt.Errorf("%s must not exceed %d characters", fieldName, maxLen)
	}

	// Null bytes break log lines and some storage drivers
	if strings.Contains(value, "\x00") {
		return fmt.Errorf("%s contains invalid characters", fieldName)
	}

	return nil
}

// ValidateID validates an ID path or body field
func ValidateID(id, fieldName string, required bool) error {
	if err := ValidateString(id, fieldName, 1, MaxIDLength, required); err != nil {
		return err
	}

	if id != "" && !SafeIDPattern.MatchString(id) {
		return fmt.Errorf("%s contains invalid characters (only alphanumeric, hyphens, and underscores allowed)", fieldName)
	}

	return nil
}

// ValidateDisplayName validates a user's display name
func ValidateDisplayName(name string) error {
	if err := ValidateString(strings.TrimSpace(name), "name", 1, MaxDisplayNameLength, true); err != nil {
		return err
	}
	return nil
}

// ValidatePassword validates a password
func ValidatePassword(password string) error {
	return ValidateString(password, "password", MinPasswordLength, MaxPasswordLength, true)
}

// ValidateEmail validates an email address
func ValidateEmail(email string, required bool) error {
	if err := ValidateString(email, "email", 0, MaxEmailLength, required); err != nil {
		return err
	}

	if email != "" && !EmailPattern.MatchString(email) {
		return fmt.Errorf("invalid email format")
	}

	return nil
}

// ValidateTitle validates a blueprint title; empty is allowed and defaulted by the caller
func ValidateTitle(title string) error {
	return ValidateString(title, "title", 0, MaxTitleLength, false)
}

// ValidateToken validates the format of a session token
func ValidateToken(token string) error {
	return ValidateString(token, "token", 1, MaxTokenLength, true)
}

// ValidatePrompt validates a generation prompt.
// Whitespace-only prompts count as empty.
func ValidatePrompt(prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt is required")
	}
	if err := ValidateSize([]byte(prompt), "prompt", MaxPromptSize); err != nil {
		return err
	}
	if strings.Contains(prompt, "\x00") {
		return fmt.Errorf("prompt contains invalid characters")
	}
	return nil
}
