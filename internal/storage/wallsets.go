package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/climbr/internal/common"
	"github.com/Veraticus/climbr/internal/model"
)

// DefaultListLimit caps ListWallSets when no limit is given.
const DefaultListLimit = 50

// timeLayout has fixed width so stored timestamps sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SaveWallSet stores an export document and returns its new ID.
func (s *SQLiteStorage) SaveWallSet(ctx context.Context, doc model.ExportDocument, provider, source string) (string, error) {
	if err := validateContext(ctx); err != nil {
		return "", err
	}
	if err := validateExportDocument(doc); err != nil {
		return "", err
	}

	document, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("failed to marshal wall set: %w", err)
	}

	graded := 0
	for _, r := range doc.WallSet {
		if r.Graded() {
			graded++
		}
	}

	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO wall_sets (id, created, saved_at, provider, source, route_count, graded_count, document)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		id,
		doc.Created.UTC().Format(timeLayout),
		time.Now().UTC().Format(timeLayout),
		provider,
		source,
		len(doc.WallSet),
		graded,
		string(document),
	)
	if err != nil {
		return "", fmt.Errorf("failed to save wall set: %w", err)
	}

	return id, nil
}

// GetWallSet loads a saved wall set by ID. It returns common.ErrNotFound
// when no such set exists.
func (s *SQLiteStorage) GetWallSet(ctx context.Context, id string) (model.WallSet, model.ExportDocument, error) {
	if err := validateContext(ctx); err != nil {
		return model.WallSet{}, model.ExportDocument{}, err
	}
	if err := validateString(id, "id"); err != nil {
		return model.WallSet{}, model.ExportDocument{}, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, created, saved_at, provider, source, route_count, graded_count, document
		FROM wall_sets WHERE id = ?
	`, id)

	var document string
	summary, err := scanWallSet(row, &document)
	if errors.Is(err, sql.ErrNoRows) {
		return model.WallSet{}, model.ExportDocument{}, common.ErrNotFound
	}
	if err != nil {
		return model.WallSet{}, model.ExportDocument{}, fmt.Errorf("failed to get wall set %s: %w", id, err)
	}

	var doc model.ExportDocument
	if err := json.Unmarshal([]byte(document), &doc); err != nil {
		return model.WallSet{}, model.ExportDocument{}, fmt.Errorf("%w: wall set %s: %v", common.ErrDatabaseCorrupted, id, err)
	}

	return summary, doc, nil
}

// ListWallSets returns saved wall sets, most recently saved first.
func (s *SQLiteStorage) ListWallSets(ctx context.Context, limit int) ([]model.WallSet, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultListLimit
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, created, saved_at, provider, source, route_count, graded_count, ''
		FROM wall_sets
		ORDER BY saved_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list wall sets: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var sets []model.WallSet
	for rows.Next() {
		var ignored string
		ws, err := scanWallSet(rows, &ignored)
		if err != nil {
			return nil, fmt.Errorf("failed to scan wall set: %w", err)
		}
		sets = append(sets, ws)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating wall sets: %w", err)
	}

	return sets, nil
}

// DeleteWallSet removes a saved wall set.
func (s *SQLiteStorage) DeleteWallSet(ctx context.Context, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `DELETE FROM wall_sets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete wall set %s: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if affected == 0 {
		return common.ErrNotFound
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanWallSet(row scanner, document *string) (model.WallSet, error) {
	var (
		ws               model.WallSet
		created, savedAt string
	)
	if err := row.Scan(&ws.ID, &created, &savedAt, &ws.Provider, &ws.Source, &ws.RouteCount, &ws.GradedCount, document); err != nil {
		return model.WallSet{}, err
	}

	var err error
	if ws.Created, err = time.Parse(timeLayout, created); err != nil {
		return model.WallSet{}, fmt.Errorf("invalid created timestamp %q: %w", created, err)
	}
	if ws.SavedAt, err = time.Parse(timeLayout, savedAt); err != nil {
		return model.WallSet{}, fmt.Errorf("invalid saved_at timestamp %q: %w", savedAt, err)
	}
	return ws, nil
}
