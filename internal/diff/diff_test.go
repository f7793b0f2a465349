package diff

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChangedIndices(t *testing.T) {
	tests := []struct {
		name     string
		previous string
		current  string
		expected []int
	}{
		{"single digit change", "49.282700", "49.282800", []int{6}},
		{"identical", "49.282700", "49.282700", []int{}},
		{"both empty", "", "", []int{}},
		{"longer current", "9.5", "10.5", []int{0, 1, 2, 3}},
		{"shorter current", "123", "12", []int{2}},
		{"empty previous", "", "ab", []int{0, 1}},
		{"empty current", "ab", "", []int{0, 1}},
		{"multi byte runes", "  49.5", "  48.5", []int{3}},
		{"dms seconds", " 49°16'57.7200\" N", " 49°16'57.7300\" N", []int{11}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, ChangedIndices(tt.previous, tt.current))
		})
	}
}

func TestChangedIndices_SameStringIsEmpty(t *testing.T) {
	for _, s := range []string{"a", "  49.282700", "123°07'14.6964\" W"} {
		got := ChangedIndices(s, s)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	}
}

func TestChangedIndices_Ascending(t *testing.T) {
	got := ChangedIndices("abcdef", "xbcxex")
	assert.Equal(t, []int{0, 3, 5}, got)
	assert.IsIncreasing(t, got)
}
