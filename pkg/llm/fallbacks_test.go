package llm

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestUnparseableOptimizationTips(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected string
	}{
		{"short reply kept whole", "Led the migration", "Suggestion 1: Led the migration..."},
		{"long reply truncated", strings.Repeat("a", 150), "Suggestion 1: " + strings.Repeat("a", 100) + "..."},
		{"multibyte rune at the cut", strings.Repeat("a", 99) + "éé", "Suggestion 1: " + strings.Repeat("a", 99) + "é..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tips := unparseableOptimizationTips(tt.raw)
			if len(tips) != 3 {
				t.Fatalf("Expected 3 tips, got %d", len(tips))
			}
			if tips[0] != tt.expected {
				t.Errorf("Expected '%s', got '%s'", tt.expected, tips[0])
			}
			if !utf8.ValidString(tips[0]) {
				t.Error("Expected valid UTF-8")
			}
		})
	}
}
