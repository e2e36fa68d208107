package command

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Unquote returns the text between the first and last double quote in arg.
func Unquote(arg string) (string, error) {
	first := strings.IndexByte(arg, '"')
	last := strings.LastIndexByte(arg, '"')
	if first < 0 || first == last {
		return "", fmt.Errorf("%w: %s", ErrUnterminatedQuote, arg)
	}
	return arg[first+1 : last], nil
}

// ParseColor reads "r,g,b" or "r,g,b,a" with components in 0-255. Three
// components mean full opacity.
func ParseColor(s string) (color.RGBA, error) {
	parts := splitTuple(s)
	if len(parts) != 3 && len(parts) != 4 {
		return color.RGBA{}, fmt.Errorf("%w: color needs 3 or 4 components, got %d", ErrTupleLength, len(parts))
	}

	c := [4]uint8{0, 0, 0, 255}
	for i, p := range parts {
		n, err := strconv.ParseUint(p, 10, 8)
		if err != nil {
			return color.RGBA{}, fmt.Errorf("%w: color component %q", ErrBadNumber, p)
		}
		c[i] = uint8(n)
	}
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: c[3]}, nil
}

// ParseVec3 reads exactly three comma-separated floats.
func ParseVec3(s string) (Vec3, error) {
	parts := splitTuple(s)
	if len(parts) != 3 {
		return Vec3{}, fmt.Errorf("%w: expected 3 components, got %d", ErrTupleLength, len(parts))
	}

	var f [3]float64
	for i, p := range parts {
		n, err := strconv.ParseFloat(p, 64)
		if err != nil {
			return Vec3{}, fmt.Errorf("%w: %q", ErrBadNumber, p)
		}
		f[i] = n
	}
	return Vec3{X: f[0], Y: f[1], Z: f[2]}, nil
}

// ParseBool is lenient: only a case-insensitive "true" is true.
func ParseBool(s string) bool {
	return strings.EqualFold(strings.TrimSpace(s), "true")
}

func splitTuple(s string) []string {
	s = strings.ReplaceAll(s, " ", "")
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
