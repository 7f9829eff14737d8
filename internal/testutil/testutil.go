// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/Veraticus/climbr/internal/model"
	"github.com/Veraticus/climbr/internal/storage"
)

// PNG is the smallest payload that sniffs as image/png.
var PNG = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

// PNGImage returns PNG wrapped as an image.
func PNGImage() model.Image {
	return model.Image{Data: append([]byte(nil), PNG...), MediaType: "image/png"}
}

// SetupStorage creates a migrated in-memory database closed at test cleanup.
func SetupStorage(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}
	return store
}

// Document builds an export document with two routes, the first graded.
func Document(created time.Time) model.ExportDocument {
	graded := model.NewRouteRecord(model.RouteDetection{
		ColorName: "Red", Hex: "#e63946", HoldCount: 9, Confidence: model.ConfidenceHigh, Notes: "Overhang start",
	})
	graded.GradeV = "V4"
	graded.GradeFont = "6A+"

	return model.ExportDocument{
		Created: created,
		WallSet: []model.RouteRecord{
			graded,
			model.NewRouteRecord(model.RouteDetection{
				ColorName: "Blue", Hex: "#2563eb", HoldCount: 7, Confidence: model.ConfidenceMedium,
			}),
		},
	}
}
