package boltdb

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/models"
)

// SaveRoute stores a route snapshot taken at round start
func (s *Storage) SaveRoute(ctx context.Context, route *models.Route) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRoutes)
		if bucket == nil {
			return fmt.Errorf("routes bucket not found")
		}

		data, err := json.Marshal(route)
		if err != nil {
			return fmt.Errorf("failed to marshal route: %w", err)
		}

		if err := bucket.Put([]byte(route.ID), data); err != nil {
			return fmt.Errorf("failed to save route: %w", err)
		}

		return nil
	})
}

// GetRoute retrieves a route snapshot by ID
func (s *Storage) GetRoute(ctx context.Context, id string) (*models.Route, error) {
	var route *models.Route

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRoutes)
		if bucket == nil {
			return fmt.Errorf("routes bucket not found")
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRouteNotFound
		}

		route = &models.Route{}
		if err := json.Unmarshal(data, route); err != nil {
			return fmt.Errorf("failed to unmarshal route: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return route, nil
}

// SaveRound stores or updates a round
func (s *Storage) SaveRound(ctx context.Context, round *models.Round) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRounds)
		if bucket == nil {
			return fmt.Errorf("rounds bucket not found")
		}

		data, err := json.Marshal(round)
		if err != nil {
			return fmt.Errorf("failed to marshal round: %w", err)
		}

		if err := bucket.Put([]byte(round.ID), data); err != nil {
			return fmt.Errorf("failed to save round: %w", err)
		}

		return nil
	})
}

// GetRound retrieves a round by ID
func (s *Storage) GetRound(ctx context.Context, id string) (*models.Round, error) {
	var round *models.Round

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRounds)
		if bucket == nil {
			return fmt.Errorf("rounds bucket not found")
		}

		data := bucket.Get([]byte(id))
		if data == nil {
			return storage.ErrRoundNotFound
		}

		round = &models.Round{}
		if err := json.Unmarshal(data, round); err != nil {
			return fmt.Errorf("failed to unmarshal round: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return round, nil
}

// GetActiveRound returns the guard's round with status InProgress
// Локальная проверка рекомендательная: авторитетный инвариант на сервере
func (s *Storage) GetActiveRound(ctx context.Context, guardID string) (*models.Round, error) {
	var active *models.Round

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketRounds)
		if bucket == nil {
			return fmt.Errorf("rounds bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			round := &models.Round{}
			if err := json.Unmarshal(v, round); err != nil {
				return fmt.Errorf("failed to unmarshal round: %w", err)
			}

			if round.GuardID == guardID && round.Status == models.RoundInProgress {
				active = round
			}

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	if active == nil {
		return nil, storage.ErrNoActiveRound
	}

	return active, nil
}

// verificationKey строит ключ по паре (roundID, checkpointID)
func verificationKey(roundID, checkpointID string) []byte {
	return []byte(roundID + "/" + checkpointID)
}

// SaveVerification stores a checkpoint verification
func (s *Storage) SaveVerification(ctx context.Context, v *models.CheckpointVerification) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketVerifications)
		if bucket == nil {
			return fmt.Errorf("verifications bucket not found")
		}

		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to marshal verification: %w", err)
		}

		key := verificationKey(v.RoundID, v.CheckpointID)
		if err := bucket.Put(key, data); err != nil {
			return fmt.Errorf("failed to save verification: %w", err)
		}

		return nil
	})
}

// GetVerification retrieves a verification by (roundID, checkpointID)
func (s *Storage) GetVerification(ctx context.Context, roundID, checkpointID string) (*models.CheckpointVerification, error) {
	var v *models.CheckpointVerification

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketVerifications)
		if bucket == nil {
			return fmt.Errorf("verifications bucket not found")
		}

		data := bucket.Get(verificationKey(roundID, checkpointID))
		if data == nil {
			return storage.ErrVerificationNotFound
		}

		v = &models.CheckpointVerification{}
		if err := json.Unmarshal(data, v); err != nil {
			return fmt.Errorf("failed to unmarshal verification: %w", err)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return v, nil
}

// ListVerifications returns all verifications of the round
func (s *Storage) ListVerifications(ctx context.Context, roundID string) ([]*models.CheckpointVerification, error) {
	var verifications []*models.CheckpointVerification
	prefix := []byte(roundID + "/")

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketVerifications)
		if bucket == nil {
			return fmt.Errorf("verifications bucket not found")
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = cursor.Next() {
			verification := &models.CheckpointVerification{}
			if err := json.Unmarshal(v, verification); err != nil {
				return fmt.Errorf("failed to unmarshal verification: %w", err)
			}
			verifications = append(verifications, verification)
		}

		return nil
	})

	if err != nil {
		return nil, err
	}

	return verifications, nil
}
