package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"simple", "John Doe", true},
		{"single_char", "J", true},
		{"padded", "   Jane   ", true},
		{"empty", "", false},
		{"whitespace_only", "   \t ", false},
		{"max_length", strings.Repeat("a", 100), true},
		{"too_long", strings.Repeat("a", 101), false},
		{"multibyte_max_length", strings.Repeat("ж", 100), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Name(tt.input))
		})
	}
}

func TestEmail(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected bool
	}{
		{"simple", "john@example.com", true},
		{"plus_and_dots", "first.last+tag@mail.example.co", true},
		{"uppercase", "JOHN@EXAMPLE.COM", true},
		{"empty", "", false},
		{"no_at", "john.example.com", false},
		{"no_tld", "john@example", false},
		{"short_tld", "john@example.c", false},
		{"space", "john doe@example.com", false},
		{"too_long", strings.Repeat("a", 250) + "@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Email(tt.input))
		})
	}
}

func TestPassword(t *testing.T) {
	assert.True(t, Password("secret"))
	assert.True(t, Password("password123"))
	assert.False(t, Password("12345"))
	assert.False(t, Password(""))
}

func TestUserID(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"1", true},
		{"42", true},
		{"0", false},
		{"-3", false},
		{"abc", false},
		{"", false},
		{"1.5", false},
		{"99999999999999999999", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, UserID(tt.input))
		})
	}
}

func TestURL(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"https://example.com/page", true},
		{"http://example.com", true},
		{"https://sub.example.co.uk/a/b?c=d", true},
		{"http://localhost:5000/x", true},
		{"http://127.0.0.1:8080", true},
		{"HTTPS://EXAMPLE.COM", true},
		{"https://example.com/", true},
		{"https://example.com/a%zz", true},
		{"https://example.com/search?q=100%", true},
		{"ftp://example.com", false},
		{"example.com", false},
		{"https://", false},
		{"https://example", false},
		{"https://exa mple.com", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, URL(tt.input))
		})
	}
}

func TestShortCode(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"abc123", true},
		{"ABCdef", true},
		{"abc12", false},
		{"abc1234", false},
		{"abc-12", false},
		{"abcdé1", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ShortCode(tt.input))
		})
	}
}
