package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple name", "Glass Ornaments", "glass-ornaments"},
		{"inches and quotes", `Sun Catcher 15"`, "sun-catcher-15"},
		{"extra whitespace", "  Paper   Cut  ", "paper-cut"},
		{"punctuation", "Hello, World!", "hello-world"},
		{"leading symbols", "--Wooden--", "wooden"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}
