package analysis

import "github.com/Veraticus/climbr/internal/model"

var demoRoutes = []model.RouteDetection{
	{ColorName: "Red", Hex: "#e63946", HoldCount: 9, Confidence: model.ConfidenceHigh, Notes: "Overhang section, top-right cluster"},
	{ColorName: "Blue", Hex: "#2563eb", HoldCount: 7, Confidence: model.ConfidenceHigh, Notes: "Slab left side, low start"},
	{ColorName: "Yellow", Hex: "#f59e0b", HoldCount: 11, Confidence: model.ConfidenceHigh, Notes: "Centre wall, dynamic moves"},
	{ColorName: "Green", Hex: "#16a34a", HoldCount: 6, Confidence: model.ConfidenceMedium, Notes: "Corner feature, crimpy finish"},
	{ColorName: "Purple", Hex: "#7c3aed", HoldCount: 8, Confidence: model.ConfidenceMedium, Notes: "Roof section, full body"},
	{ColorName: "Orange", Hex: "#ea580c", HoldCount: 5, Confidence: model.ConfidenceLow, Notes: "Some holds obscured by others"},
}

// Demo returns the fixed demo detections. Callers own the returned slice.
func Demo() []model.RouteDetection {
	out := make([]model.RouteDetection, len(demoRoutes))
	copy(out, demoRoutes)
	return out
}
