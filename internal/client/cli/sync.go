package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"time"
)

func (c *Cli) runSync(ctx context.Context) error {
	// Одноразовый drain считает клиента онлайн до первого отказа
	c.queue.SetOnline(true)

	result, err := c.reconciler.Drain(ctx)
	if err != nil {
		return fmt.Errorf("sync failed: %w", err)
	}

	if result.Submitted == 0 {
		fmt.Println("Nothing to sync, offline queue is empty")
		return nil
	}

	fmt.Printf("Synced %d of %d action(s)\n", result.Synced, result.Submitted)
	if result.Failed > 0 {
		fmt.Printf("%d action(s) rejected permanently, see 'patrolkeeper pending'\n", result.Failed)
	}
	if result.Remaining > 0 {
		fmt.Printf("%d action(s) still pending\n", result.Remaining)
	}
	return nil
}

func (c *Cli) runWatch(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	interval := fs.Duration("interval", 30*time.Second, "Connectivity probe interval")
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Printf("Watching offline queue, probing connectivity every %s (Ctrl+C to stop)\n", *interval)
	if err := c.reconciler.Run(ctx, *interval); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
