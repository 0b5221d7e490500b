package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/iudanet/patrolkeeper/internal/models"
)

// UpsertVerification stores a verification keyed by (roundID, checkpointID).
// Повторная отметка той же точки — успешный no-op: возвращается уже
// сохраненная запись, created=false, второй строки не появляется.
func (s *Storage) UpsertVerification(ctx context.Context, v *models.CheckpointVerification) (*models.CheckpointVerification, bool, error) {
	query := `
		INSERT INTO checkpoint_verifications
			(round_id, checkpoint_id, method, verified_at, evidence, latitude, longitude, distance_meters)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(round_id, checkpoint_id) DO NOTHING
	`

	var lat, lon *float64
	if v.Location != nil {
		lat = &v.Location.Latitude
		lon = &v.Location.Longitude
	}

	result, err := s.db.ExecContext(ctx, query,
		v.RoundID,
		v.CheckpointID,
		v.Method,
		v.VerifiedAt,
		v.Evidence,
		lat,
		lon,
		v.DistanceMeters,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert verification: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	stored, err := s.getVerification(ctx, v.RoundID, v.CheckpointID)
	if err != nil {
		return nil, false, err
	}

	return stored, affected == 1, nil
}

// getVerification читает одну отметку по ключу
func (s *Storage) getVerification(ctx context.Context, roundID, checkpointID string) (*models.CheckpointVerification, error) {
	query := `
		SELECT round_id, checkpoint_id, method, verified_at, evidence, latitude, longitude, distance_meters
		FROM checkpoint_verifications
		WHERE round_id = ? AND checkpoint_id = ?
	`

	row := s.db.QueryRowContext(ctx, query, roundID, checkpointID)

	v, err := scanVerification(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("verification vanished after upsert: %w", err)
		}
		return nil, fmt.Errorf("failed to get verification: %w", err)
	}

	return v, nil
}

// ListVerifications returns all verifications of the round
func (s *Storage) ListVerifications(ctx context.Context, roundID string) ([]*models.CheckpointVerification, error) {
	query := `
		SELECT round_id, checkpoint_id, method, verified_at, evidence, latitude, longitude, distance_meters
		FROM checkpoint_verifications
		WHERE round_id = ?
		ORDER BY verified_at
	`

	rows, err := s.db.QueryContext(ctx, query, roundID)
	if err != nil {
		return nil, fmt.Errorf("failed to list verifications: %w", err)
	}
	defer rows.Close()

	var verifications []*models.CheckpointVerification
	for rows.Next() {
		v, err := scanVerification(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan verification: %w", err)
		}
		verifications = append(verifications, v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate verifications: %w", err)
	}

	return verifications, nil
}

// scanVerification собирает запись из строки результата
func scanVerification(scan func(dest ...any) error) (*models.CheckpointVerification, error) {
	v := &models.CheckpointVerification{}
	var lat, lon, distance sql.NullFloat64

	err := scan(
		&v.RoundID,
		&v.CheckpointID,
		&v.Method,
		&v.VerifiedAt,
		&v.Evidence,
		&lat,
		&lon,
		&distance,
	)
	if err != nil {
		return nil, err
	}

	if lat.Valid && lon.Valid {
		v.Location = &models.Coordinates{Latitude: lat.Float64, Longitude: lon.Float64}
	}
	if distance.Valid {
		v.DistanceMeters = &distance.Float64
	}

	return v, nil
}
