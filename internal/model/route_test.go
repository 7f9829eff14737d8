package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfidence(t *testing.T) {
	tests := []struct {
		in   string
		want Confidence
	}{
		{"high", ConfidenceHigh},
		{" HIGH ", ConfidenceHigh},
		{"Medium", ConfidenceMedium},
		{"low", ConfidenceLow},
		{"certain", ConfidenceLow},
		{"", ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseConfidence(tt.in))
		})
	}
}

func TestRouteRecord_Detection(t *testing.T) {
	d := RouteDetection{ColorName: "Red", Hex: "#e63946", HoldCount: 9, Confidence: ConfidenceHigh, Notes: "Overhang"}
	rec := NewRouteRecord(d)

	assert.Equal(t, d, rec.Detection())
	assert.Empty(t, rec.GradeV)
	assert.Empty(t, rec.GradeFont)
	assert.Empty(t, rec.SetterNotes)
	assert.False(t, rec.Graded())
}

func TestRouteRecord_JSONFieldNames(t *testing.T) {
	rec := NewRouteRecord(RouteDetection{ColorName: "Blue", Hex: "#2563eb", HoldCount: 7, Confidence: ConfidenceHigh})
	rec.GradeV = "V3"

	raw, err := json.Marshal(rec)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	for _, key := range []string{"color_name", "hex", "hold_count", "confidence", "notes", "gradeV", "gradeFont", "setterNotes"} {
		assert.Contains(t, fields, key)
	}
}

func TestPatchHelpers(t *testing.T) {
	assert.True(t, Patch{}.Empty())

	p := SetGradeV("V4")
	require.NotNil(t, p.GradeV)
	assert.Equal(t, "V4", *p.GradeV)
	assert.Nil(t, p.GradeFont)

	c := ClearGrades()
	require.NotNil(t, c.GradeV)
	require.NotNil(t, c.GradeFont)
	assert.Empty(t, *c.GradeV)
	assert.Empty(t, *c.GradeFont)
}
