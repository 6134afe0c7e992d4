package handler

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Design Sync", "design-sync"},
		{"  sprint  review  ", "sprint-review"},
		{"Q3 / Planning!", "q3-planning"},
		{"ALLCAPS", "allcaps"},
		{"---", ""},
	}

	for _, tc := range tests {
		got := slugify(tc.name)
		if tc.want == "" {
			assert.True(t, strings.HasPrefix(got, "room-"), "empty slugs fall back to a random one, got %q", got)
			continue
		}
		assert.Equal(t, tc.want, got, "input %q", tc.name)
	}
}
