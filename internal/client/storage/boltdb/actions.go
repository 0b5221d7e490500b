package boltdb

import (
	"context"
	"encoding/binary"
	"encoding/json"
	"fmt"

	"go.etcd.io/bbolt"

	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/models"
)

// actionKey кодирует sequence number в big-endian для порядка по ключам
func actionKey(seq uint64) []byte {
	key := make([]byte, 8)
	binary.BigEndian.PutUint64(key, seq)
	return key
}

// Append stores the action and assigns its sequence number
// Bucket sequence монотонно растет, поэтому порядок ключей = порядок добавления
func (s *Storage) Append(ctx context.Context, action *models.OfflineAction) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketActions)
		if bucket == nil {
			return fmt.Errorf("actions bucket not found")
		}

		seq, err := bucket.NextSequence()
		if err != nil {
			return fmt.Errorf("failed to get next sequence: %w", err)
		}
		action.Seq = seq

		data, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}

		if err := bucket.Put(actionKey(seq), data); err != nil {
			return fmt.Errorf("failed to append action: %w", err)
		}

		return nil
	})
}

// ListPending returns pending actions in append order
// Поврежденный журнал сбрасывается в пустой с однократным предупреждением:
// потеря данных лучше, чем мертвая очередь, блокирующая все будущие записи
func (s *Storage) ListPending(ctx context.Context) ([]*models.OfflineAction, error) {
	actions, err := s.listActions(func(a *models.OfflineAction) bool {
		return a.Status == models.ActionPending
	})
	if err != nil {
		s.logger.Warn("offline queue corrupted, resetting to empty",
			"error", err)
		if resetErr := s.Reset(ctx); resetErr != nil {
			return nil, fmt.Errorf("failed to reset corrupted queue: %w", resetErr)
		}
		return []*models.OfflineAction{}, nil
	}

	return actions, nil
}

// ListAll returns all actions (pending and failed) in append order
func (s *Storage) ListAll(ctx context.Context) ([]*models.OfflineAction, error) {
	return s.listActions(func(a *models.OfflineAction) bool { return true })
}

// listActions итерируется по журналу в порядке ключей (FIFO)
func (s *Storage) listActions(keep func(*models.OfflineAction) bool) ([]*models.OfflineAction, error) {
	var actions []*models.OfflineAction

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketActions)
		if bucket == nil {
			return fmt.Errorf("actions bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			action := &models.OfflineAction{}
			if err := json.Unmarshal(v, action); err != nil {
				return fmt.Errorf("failed to unmarshal action: %w", err)
			}

			if keep(action) {
				actions = append(actions, action)
			}

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return actions, nil
}

// Delete removes a confirmed action from the journal
func (s *Storage) Delete(ctx context.Context, seq uint64) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketActions)
		if bucket == nil {
			return fmt.Errorf("actions bucket not found")
		}

		if err := bucket.Delete(actionKey(seq)); err != nil {
			return fmt.Errorf("failed to delete action: %w", err)
		}

		return nil
	})
}

// MarkFailed marks the action as permanently rejected by the server
func (s *Storage) MarkFailed(ctx context.Context, seq uint64, reason string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketActions)
		if bucket == nil {
			return fmt.Errorf("actions bucket not found")
		}

		data := bucket.Get(actionKey(seq))
		if data == nil {
			return storage.ErrActionNotFound
		}

		action := &models.OfflineAction{}
		if err := json.Unmarshal(data, action); err != nil {
			return fmt.Errorf("failed to unmarshal action: %w", err)
		}

		action.Status = models.ActionFailed
		action.LastError = reason

		updated, err := json.Marshal(action)
		if err != nil {
			return fmt.Errorf("failed to marshal action: %w", err)
		}

		if err := bucket.Put(actionKey(seq), updated); err != nil {
			return fmt.Errorf("failed to update action: %w", err)
		}

		return nil
	})
}

// PendingCount returns the number of pending actions
func (s *Storage) PendingCount(ctx context.Context) (int, error) {
	actions, err := s.ListPending(ctx)
	if err != nil {
		return 0, err
	}
	return len(actions), nil
}

// Reset removes all actions from the journal
func (s *Storage) Reset(ctx context.Context) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketActions); err != nil {
			return fmt.Errorf("failed to delete actions bucket: %w", err)
		}

		if _, err := tx.CreateBucket(bucketActions); err != nil {
			return fmt.Errorf("failed to recreate actions bucket: %w", err)
		}

		return nil
	})
}
