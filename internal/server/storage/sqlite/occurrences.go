package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/internal/server/storage"
)

// UpsertOccurrence creates or updates an occurrence keyed by its client ID
func (s *Storage) UpsertOccurrence(ctx context.Context, occ *models.Occurrence) error {
	query := `
		INSERT INTO occurrences (id, round_id, severity, description, status, created_at, latitude, longitude)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			severity = excluded.severity,
			description = excluded.description,
			status = excluded.status
	`

	var roundID *string
	if occ.RoundID != "" {
		roundID = &occ.RoundID
	}

	var lat, lon *float64
	if occ.Location != nil {
		lat = &occ.Location.Latitude
		lon = &occ.Location.Longitude
	}

	_, err := s.db.ExecContext(ctx, query,
		occ.ID,
		roundID,
		occ.Severity,
		occ.Description,
		occ.Status,
		occ.CreatedAt,
		lat,
		lon,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert occurrence: %w", err)
	}

	return nil
}

// GetOccurrence retrieves an occurrence by ID
func (s *Storage) GetOccurrence(ctx context.Context, id string) (*models.Occurrence, error) {
	query := `
		SELECT id, round_id, severity, description, status, created_at, latitude, longitude
		FROM occurrences
		WHERE id = ?
	`

	occ := &models.Occurrence{}
	var roundID sql.NullString
	var lat, lon sql.NullFloat64

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&occ.ID,
		&roundID,
		&occ.Severity,
		&occ.Description,
		&occ.Status,
		&occ.CreatedAt,
		&lat,
		&lon,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrOccurrenceNotFound
		}
		return nil, fmt.Errorf("failed to get occurrence: %w", err)
	}

	if roundID.Valid {
		occ.RoundID = roundID.String
	}
	if lat.Valid && lon.Valid {
		occ.Location = &models.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}

	return occ, nil
}
