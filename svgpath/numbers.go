package svgpath

import (
	"errors"
	"fmt"

	"github.com/tdewolff/parse/v2/strconv"
)

var errParamMismatch = errors.New("svg: param mismatch")

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f'
}

// skipCommaWhitespace returns the number of bytes to skip
// to reach the next token, accepting at most one comma.
func skipCommaWhitespace(b []byte) int {
	i := 0
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	if i < len(b) && b[i] == ',' {
		i++
	}
	for i < len(b) && isSpace(b[i]) {
		i++
	}
	return i
}

// ParseNumbers reads a list of numbers, separated by whitespaces
// and/or commas, as found in `points`, `viewBox` or transform arguments.
func ParseNumbers(s string) ([]float64, error) {
	b := []byte(s)
	var out []float64
	i := skipCommaWhitespace(b)
	for i < len(b) {
		f, n := strconv.ParseFloat(b[i:])
		if n == 0 {
			return out, fmt.Errorf("invalid number at position %d in %q", i+1, s)
		}
		out = append(out, f)
		i += n
		i += skipCommaWhitespace(b[i:])
	}
	return out, nil
}

// ParseNumber reads a single number, which must span the whole (trimmed) string.
func ParseNumber(s string) (float64, error) {
	fs, err := ParseNumbers(s)
	if err != nil {
		return 0, err
	}
	if len(fs) != 1 {
		return 0, fmt.Errorf("expected one number, got %q", s)
	}
	return fs[0], nil
}
