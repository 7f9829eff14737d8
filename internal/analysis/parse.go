package analysis

import (
	"bytes"
	"encoding/json"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/Veraticus/climbr/internal/model"
)

// notesWordLimit caps the advisory notes field.
const notesWordLimit = 10

var (
	leadingFence  = regexp.MustCompile("(?i)^```(?:json|js)?\\s*")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
	hexPattern    = regexp.MustCompile(`^#?([0-9a-fA-F]{6}|[0-9a-fA-F]{3})$`)
)

// StripCodeFences removes a leading ```json, ```js or bare ``` fence and a
// trailing ``` fence, then trims whitespace.
func StripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

// ParseDetections turns a vision reply into route detections.
//
// Elements without a colour name or a usable hex are dropped, hold counts are
// coerced to non-negative integers and unknown confidence values become low.
// A reply that is not JSON fails with ErrUnparseableResponse; one that is not
// an array, or has no usable elements, fails with ErrNoRoutes.
func ParseDetections(text string) ([]model.RouteDetection, error) {
	cleaned := StripCodeFences(text)

	var raw json.RawMessage
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, unparseable(err)
	}
	if !bytes.HasPrefix(bytes.TrimSpace(raw), []byte("[")) {
		return nil, ErrNoRoutes
	}

	var elements []json.RawMessage
	if err := json.Unmarshal(raw, &elements); err != nil {
		return nil, unparseable(err)
	}

	detections := make([]model.RouteDetection, 0, len(elements))
	for _, element := range elements {
		d, ok := repairDetection(element)
		if !ok {
			continue
		}
		detections = append(detections, d)
	}

	if len(detections) == 0 {
		return nil, ErrNoRoutes
	}
	return detections, nil
}

func repairDetection(element json.RawMessage) (model.RouteDetection, bool) {
	var fields map[string]any
	if err := json.Unmarshal(element, &fields); err != nil || fields == nil {
		return model.RouteDetection{}, false
	}

	name := strings.TrimSpace(stringField(fields, "color_name"))
	hex, ok := normalizeHex(stringField(fields, "hex"))
	if name == "" || !ok {
		return model.RouteDetection{}, false
	}

	return model.RouteDetection{
		ColorName:  name,
		Hex:        hex,
		HoldCount:  holdCount(fields["hold_count"]),
		Confidence: model.ParseConfidence(stringField(fields, "confidence")),
		Notes:      limitWords(strings.TrimSpace(stringField(fields, "notes")), notesWordLimit),
	}, true
}

func stringField(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// normalizeHex returns s as #rrggbb, expanding the three-digit form.
func normalizeHex(s string) (string, bool) {
	s = strings.TrimSpace(s)
	m := hexPattern.FindStringSubmatch(s)
	if m == nil {
		return "", false
	}
	digits := strings.ToLower(m[1])
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}
	return "#" + digits, true
}

func holdCount(v any) int {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || f <= 0 {
		return 0
	}
	if f > math.MaxInt32 {
		return math.MaxInt32
	}
	return int(math.Round(f))
}

func limitWords(s string, limit int) string {
	words := strings.Fields(s)
	if len(words) <= limit {
		return s
	}
	return strings.Join(words[:limit], " ")
}
