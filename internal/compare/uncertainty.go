package compare

import (
	"errors"
	"strconv"
	"strings"
)

const (
	MinUncertainty = 1
	MaxUncertainty = 100
)

// ErrUncertaintyOutOfRange carries the message shown beside the input.
var ErrUncertaintyOutOfRange = errors.New("請輸入1到100之間的數字")

// ParseUncertainty reads the leading integer of raw, so "50.5" is 50 and
// "12abc" is 12, and requires it to be within 1..100.
func ParseUncertainty(raw string) (int, error) {
	v, err := strconv.Atoi(leadingInteger(strings.TrimSpace(raw)))
	if err != nil || v < MinUncertainty || v > MaxUncertainty {
		return 0, ErrUncertaintyOutOfRange
	}
	return v, nil
}

func leadingInteger(s string) string {
	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	return s[:end]
}
