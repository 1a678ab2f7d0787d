package compare

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseUncertainty(t *testing.T) {
	for _, raw := range []string{"0", "101", "abc", "", "-5", ".5", "+", "101.5"} {
		_, err := ParseUncertainty(raw)
		assert.ErrorIs(t, err, ErrUncertaintyOutOfRange, raw)
	}

	for raw, want := range map[string]int{
		"1":     1,
		"100":   100,
		" 42 ":  42,
		"50.5":  50,
		"12abc": 12,
		"+7":    7,
		"0099":  99,
		"100.9": 100,
	} {
		got, err := ParseUncertainty(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}
}
