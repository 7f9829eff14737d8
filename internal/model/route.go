// Package model holds the core data types shared across climbr.
package model

import "strings"

// Confidence is the detection-quality label attached to a route guess.
type Confidence string

const (
	// ConfidenceHigh marks a clearly visible colour group.
	ConfidenceHigh Confidence = "high"
	// ConfidenceMedium marks a plausible colour group.
	ConfidenceMedium Confidence = "medium"
	// ConfidenceLow marks a best-effort guess.
	ConfidenceLow Confidence = "low"
)

// ParseConfidence normalizes s to a Confidence. Unknown values become low.
func ParseConfidence(s string) Confidence {
	switch Confidence(strings.ToLower(strings.TrimSpace(s))) {
	case ConfidenceHigh:
		return ConfidenceHigh
	case ConfidenceMedium:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Valid reports whether c is one of the three known levels.
func (c Confidence) Valid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// RouteDetection is one colour group reported by the vision service.
type RouteDetection struct {
	ColorName  string     `json:"color_name" yaml:"color_name"`
	Hex        string     `json:"hex" yaml:"hex"`
	Confidence Confidence `json:"confidence" yaml:"confidence"`
	Notes      string     `json:"notes" yaml:"notes"`
	HoldCount  int        `json:"hold_count" yaml:"hold_count"`
}

// RouteRecord is an editable route: the detection plus setter-entered fields.
// Detection fields are never changed after the record is created.
type RouteRecord struct {
	ColorName   string     `json:"color_name" yaml:"color_name"`
	Hex         string     `json:"hex" yaml:"hex"`
	Confidence  Confidence `json:"confidence" yaml:"confidence"`
	Notes       string     `json:"notes" yaml:"notes"`
	GradeV      string     `json:"gradeV" yaml:"gradeV"`
	GradeFont   string     `json:"gradeFont" yaml:"gradeFont"`
	SetterNotes string     `json:"setterNotes" yaml:"setterNotes"`
	HoldCount   int        `json:"hold_count" yaml:"hold_count"`
}

// NewRouteRecord wraps d with empty editable fields.
func NewRouteRecord(d RouteDetection) RouteRecord {
	return RouteRecord{
		ColorName:  d.ColorName,
		Hex:        d.Hex,
		HoldCount:  d.HoldCount,
		Confidence: d.Confidence,
		Notes:      d.Notes,
	}
}

// Detection returns the read-only detection part of the record.
func (r RouteRecord) Detection() RouteDetection {
	return RouteDetection{
		ColorName:  r.ColorName,
		Hex:        r.Hex,
		HoldCount:  r.HoldCount,
		Confidence: r.Confidence,
		Notes:      r.Notes,
	}
}

// Graded reports whether either grade field is set.
func (r RouteRecord) Graded() bool {
	return r.GradeV != "" || r.GradeFont != ""
}

// Patch is a partial update to a RouteRecord. Nil fields are left untouched.
type Patch struct {
	GradeV      *string `json:"gradeV,omitempty"`
	GradeFont   *string `json:"gradeFont,omitempty"`
	SetterNotes *string `json:"setterNotes,omitempty"`
}

// SetGradeV returns a patch that sets the V grade.
func SetGradeV(v string) Patch { return Patch{GradeV: &v} }

// SetGradeFont returns a patch that sets the Font grade.
func SetGradeFont(f string) Patch { return Patch{GradeFont: &f} }

// SetNotes returns a patch that sets the setter notes.
func SetNotes(notes string) Patch { return Patch{SetterNotes: &notes} }

// ClearGrades returns a patch that clears both grade fields.
func ClearGrades() Patch {
	empty := ""
	return Patch{GradeV: &empty, GradeFont: &empty}
}

// Empty reports whether the patch changes nothing.
func (p Patch) Empty() bool {
	return p.GradeV == nil && p.GradeFont == nil && p.SetterNotes == nil
}
