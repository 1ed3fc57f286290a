package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateIDLength(t *testing.T) {
	for _, n := range []int{12, 14, 16} {
		assert.Len(t, GenerateID(n), n)
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" Tech ", "GO", "", "  "})
	assert.Equal(t, []string{"tech", "go"}, got)
}
