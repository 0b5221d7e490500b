package cli

import (
	"context"
	"flag"
	"fmt"
)

func (c *Cli) runStart(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("start", flag.ContinueOnError)
	routePath := fs.String("route", "", "Path to route snapshot JSON file")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *routePath == "" {
		return fmt.Errorf("missing --route. Usage: patrolkeeper start --route FILE")
	}

	route, err := loadRoute(*routePath)
	if err != nil {
		return err
	}

	started, err := c.controller.Start(ctx, route, c.guardID)
	if err != nil {
		return err
	}

	fmt.Printf("Round %s started\n", started.ID)
	fmt.Printf("Route: %s (%d checkpoints)\n", route.Name, len(route.Checkpoints))
	fmt.Println("Actions are queued locally; run 'patrolkeeper sync' when online.")
	return nil
}
