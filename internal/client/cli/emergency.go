package cli

import (
	"context"
	"flag"
	"fmt"
)

func (c *Cli) runEmergency(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("emergency", flag.ContinueOnError)
	reason := fs.String("reason", "", "Why the round is being finished early")
	confirm := fs.Bool("confirm", false, "Confirm the emergency finish")
	lat := fs.Float64("lat", 0, "Current latitude")
	lon := fs.Float64("lon", 0, "Current longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	location, err := parseLocation(fs, lat, lon)
	if err != nil {
		return err
	}

	active, err := c.activeRound(ctx)
	if err != nil {
		return err
	}

	// Происшествие встает в очередь раньше перехода обхода,
	// чтобы на сервере причина появилась не позже результата
	occ, err := c.occurrences.RaiseEmergencyFinish(ctx, active, *reason, location, *confirm)
	if err != nil {
		return err
	}

	finished, err := c.controller.EmergencyFinish(ctx, active.ID, occ)
	if err != nil {
		return err
	}

	fmt.Printf("Round %s emergency-finished, completion %.0f%%\n", finished.ID, finished.CompletionRate*100)
	fmt.Printf("Occurrence %s recorded: %s\n", occ.ID, occ.Description)
	fmt.Println("Run 'patrolkeeper sync' to push the result to the server.")
	return nil
}

func (c *Cli) runPanic(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("panic", flag.ContinueOnError)
	reason := fs.String("reason", "", "Optional description of the emergency")
	lat := fs.Float64("lat", 0, "Current latitude")
	lon := fs.Float64("lon", 0, "Current longitude")
	if err := fs.Parse(args); err != nil {
		return err
	}

	location, err := parseLocation(fs, lat, lon)
	if err != nil {
		return err
	}

	occ, err := c.occurrences.Panic(ctx, *reason, location)
	if err != nil {
		return err
	}

	fmt.Printf("Emergency occurrence %s queued: %s\n", occ.ID, occ.Description)
	fmt.Println("Run 'patrolkeeper sync' to push it to the server.")
	return nil
}
