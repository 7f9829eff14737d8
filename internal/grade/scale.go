// Package grade converts bouldering difficulty grades between the V-scale and the Font scale.
package grade

import "math"

var (
	gradesV = []string{"VB", "V0", "V1", "V2", "V3", "V4", "V5", "V6", "V7", "V8", "V9", "V10", "V11", "V12"}

	gradesFont = []string{"3", "4", "4+", "5", "5+", "6A", "6A+", "6B", "6B+", "6C", "6C+", "7A", "7A+", "7B", "7B+", "7C", "7C+", "8A"}
)

// Pair is one row of the conversion table.
type Pair struct {
	V    string `json:"v" yaml:"v"`
	Font string `json:"font" yaml:"font"`
}

// V returns the V-scale grades ordered from easiest to hardest.
func V() []string {
	out := make([]string, len(gradesV))
	copy(out, gradesV)
	return out
}

// Font returns the Font-scale grades ordered from easiest to hardest.
func Font() []string {
	out := make([]string, len(gradesFont))
	copy(out, gradesFont)
	return out
}

// VIndex returns the zero-based rank of v on the V-scale, or -1.
func VIndex(v string) int {
	return indexOf(gradesV, v)
}

// FontIndex returns the zero-based rank of f on the Font scale, or -1.
func FontIndex(f string) int {
	return indexOf(gradesFont, f)
}

// IsV reports whether v is a V-scale grade.
func IsV(v string) bool { return VIndex(v) >= 0 }

// IsFont reports whether f is a Font-scale grade.
func IsFont(f string) bool { return FontIndex(f) >= 0 }

// FontRank maps a V-scale rank onto the Font scale proportionally.
// Ties round half away from zero; the result is clamped to the Font range.
func FontRank(vIdx int) int {
	scaled := float64(vIdx) * float64(len(gradesFont)) / float64(len(gradesV))
	idx := int(math.Round(scaled))
	if idx < 0 {
		return 0
	}
	if idx > len(gradesFont)-1 {
		return len(gradesFont) - 1
	}
	return idx
}

// VToFont returns the Font grade at the rank corresponding to v.
// Anything that is not a V-scale grade, including "", yields "".
func VToFont(v string) string {
	idx := VIndex(v)
	if idx < 0 {
		return ""
	}
	return gradesFont[FontRank(idx)]
}

// Table returns every V grade alongside its Font counterpart.
func Table() []Pair {
	pairs := make([]Pair, len(gradesV))
	for i, v := range gradesV {
		pairs[i] = Pair{V: v, Font: gradesFont[FontRank(i)]}
	}
	return pairs
}

// StepV moves delta places along the V-scale from v, clamping at both ends.
// An empty v steps from just below the easiest grade.
func StepV(v string, delta int) string {
	return step(gradesV, v, delta)
}

// StepFont moves delta places along the Font scale from f, clamping at both ends.
func StepFont(f string, delta int) string {
	return step(gradesFont, f, delta)
}

func step(scale []string, cur string, delta int) string {
	idx := indexOf(scale, cur)
	if idx < 0 {
		if delta <= 0 {
			return ""
		}
		idx = -1
	}
	next := idx + delta
	if next < 0 {
		return ""
	}
	if next >= len(scale) {
		next = len(scale) - 1
	}
	return scale[next]
}

func indexOf(scale []string, s string) int {
	for i, g := range scale {
		if g == s {
			return i
		}
	}
	return -1
}
