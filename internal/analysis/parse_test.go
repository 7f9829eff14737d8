package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/climbr/internal/model"
)

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"json fence", "```json\n[1]\n```", "[1]"},
		{"upper case fence", "```JSON\n[1]\n```", "[1]"},
		{"bare fence", "```\n[1]\n```", "[1]"},
		{"js fence", "```js\n[1]\n```", "[1]"},
		{"no fence", "  [1]  ", "[1]"},
		{"trailing only", "[1]\n```  ", "[1]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripCodeFences(tt.in))
		})
	}
}

func TestParseDetections_FencedArray(t *testing.T) {
	body := "[{\"color_name\":\"Red\",\"hex\":\"#e63946\",\"hold_count\":9,\"confidence\":\"high\",\"notes\":\"x\"}]"

	for _, fence := range []string{"```json", "```js", "```"} {
		t.Run(fence, func(t *testing.T) {
			got, err := ParseDetections(fence + "\n" + body + "\n```")
			require.NoError(t, err)
			assert.Equal(t, []model.RouteDetection{
				{ColorName: "Red", Hex: "#e63946", HoldCount: 9, Confidence: model.ConfidenceHigh, Notes: "x"},
			}, got)
		})
	}
}

func TestParseDetections_Repairs(t *testing.T) {
	text := `[
		{"color_name":"Blue","hex":"2563EB","hold_count":"7","confidence":"HIGH"},
		{"color_name":"Pink","hex":"#f0c","hold_count":-3,"confidence":"sure"},
		{"color_name":"","hex":"#ffffff"},
		{"hex":"#000000"},
		{"color_name":"Grey","hex":"grey"},
		{"color_name":"Teal","hex":"#14b8a6","hold_count":4.6,"notes":"one two three four five six seven eight nine ten eleven"},
		"not an object",
		42
	]`

	got, err := ParseDetections(text)
	require.NoError(t, err)
	require.Len(t, got, 3)

	assert.Equal(t, model.RouteDetection{ColorName: "Blue", Hex: "#2563eb", HoldCount: 7, Confidence: model.ConfidenceHigh}, got[0])
	assert.Equal(t, model.RouteDetection{ColorName: "Pink", Hex: "#ff00cc", HoldCount: 0, Confidence: model.ConfidenceLow}, got[1])
	assert.Equal(t, "Teal", got[2].ColorName)
	assert.Equal(t, 5, got[2].HoldCount)
	assert.Equal(t, "one two three four five six seven eight nine ten", got[2].Notes)
}

func TestParseDetections_Failures(t *testing.T) {
	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"prose", "I can see three routes on this wall.", ErrUnparseableResponse},
		{"truncated json", `[{"color_name":"Red"`, ErrUnparseableResponse},
		{"empty", "", ErrUnparseableResponse},
		{"object not array", `{"color_name":"Red","hex":"#ff0000"}`, ErrNoRoutes},
		{"empty array", "[]", ErrNoRoutes},
		{"nothing usable", `[{"notes":"blurry"}]`, ErrNoRoutes},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDetections(tt.text)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, got)
		})
	}
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindNone, KindOf(nil))
	assert.Equal(t, KindMissingCredential, KindOf(ErrMissingCredential))
	assert.Equal(t, KindUnparseable, KindOf(unparseable(assert.AnError)))
	assert.Equal(t, KindNoRoutes, KindOf(ErrNoRoutes))
	assert.Equal(t, KindTransport, KindOf(&TransportError{Message: "down"}))
	assert.Equal(t, KindUnknown, KindOf(assert.AnError))
}
