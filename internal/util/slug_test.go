package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"simple", "The Lord of the Rings", "the-lord-of-the-rings"},
		{"punctuation", "The Hobbit: There & Back!", "the-hobbit-there-back"},
		{"accents", "Café Crónicas", "cafe-cronicas"},
		{"numbers", "1984", "1984"},
		{"mixed case", "A Tale Of TWO Cities", "a-tale-of-two-cities"},
		{"leading/trailing junk", "  --Dune--  ", "dune"},
		{"consecutive separators", "War  &  Peace", "war-peace"},
		{"apostrophe", "Ender's Game", "ender-s-game"},
		{"empty", "", ""},
		{"only symbols", "!!!", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
