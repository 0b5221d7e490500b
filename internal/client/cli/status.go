package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/iudanet/patrolkeeper/internal/client/storage"
	"github.com/iudanet/patrolkeeper/internal/models"
)

func (c *Cli) runStatus(ctx context.Context) error {
	active, err := c.controller.Active(ctx, c.guardID)
	if err != nil && !errors.Is(err, storage.ErrNoActiveRound) {
		return fmt.Errorf("failed to look up active round: %w", err)
	}

	if active == nil {
		fmt.Printf("Guard %s has no active round\n", c.guardID)
	} else {
		fmt.Printf("Round %s (%s), started %s\n", active.ID, active.Status, active.StartedAt.Format("2006-01-02 15:04:05"))

		progress, err := c.controller.Progress(ctx, active.ID, nil)
		if err != nil {
			return err
		}
		fmt.Printf("Progress: %d of %d checkpoints (%.0f%%)\n", progress.Verified, progress.Total, progress.CompletionRate*100)
		if progress.Next != nil {
			fmt.Printf("Next: %s (%s)\n", progress.Next.Name, progress.Next.ID)
		}
	}

	pending, err := c.queue.PendingCount(ctx)
	if err != nil {
		return fmt.Errorf("failed to count pending actions: %w", err)
	}
	fmt.Printf("Offline queue: %d pending action(s)\n", pending)
	return nil
}

func (c *Cli) runComplete(ctx context.Context) error {
	active, err := c.activeRound(ctx)
	if err != nil {
		return err
	}

	completed, err := c.controller.Complete(ctx, active.ID)
	if err != nil {
		return err
	}

	fmt.Printf("Round %s completed at %s\n", completed.ID, completed.CompletedAt.Format("2006-01-02 15:04:05"))
	fmt.Println("Run 'patrolkeeper sync' to push the result to the server.")
	return nil
}

func (c *Cli) runPending(ctx context.Context) error {
	actions, err := c.queue.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list actions: %w", err)
	}

	if len(actions) == 0 {
		fmt.Println("Offline queue is empty")
		return nil
	}

	fmt.Printf("%d queued action(s):\n", len(actions))
	for _, action := range actions {
		line := fmt.Sprintf("  #%d %s %s %s (%s)",
			action.Seq, action.EntityType, action.Operation, action.ID,
			action.EnqueuedAt.Format("2006-01-02 15:04:05"))
		if action.Status == models.ActionFailed {
			line += " FAILED: " + action.LastError
		}
		fmt.Println(line)
	}
	return nil
}
