package model

import "time"

// ExportDocument is the exportable snapshot of a working session.
// Created reflects export time, not detection time.
type ExportDocument struct {
	Created time.Time     `json:"created" yaml:"created"`
	WallSet []RouteRecord `json:"wallSet" yaml:"wallSet"`
}

// WallSet summarizes an export document saved to storage.
type WallSet struct {
	Created     time.Time `json:"created" yaml:"created"`
	SavedAt     time.Time `json:"savedAt" yaml:"savedAt"`
	ID          string    `json:"id" yaml:"id"`
	Provider    string    `json:"provider" yaml:"provider"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`
	RouteCount  int       `json:"routeCount" yaml:"routeCount"`
	GradedCount int       `json:"gradedCount" yaml:"gradedCount"`
}
