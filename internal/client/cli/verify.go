package cli

import (
	"context"
	"flag"
	"fmt"

	"github.com/iudanet/patrolkeeper/internal/client/round"
	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/internal/validation"
)

// parseLocation собирает координаты из флагов -lat/-lon.
// Возвращает nil, если ни один из них не был указан.
func parseLocation(fs *flag.FlagSet, lat, lon *float64) (*models.Coordinates, error) {
	latSet, lonSet := false, false
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "lat":
			latSet = true
		case "lon":
			lonSet = true
		}
	})

	if !latSet && !lonSet {
		return nil, nil
	}
	if latSet != lonSet {
		return nil, fmt.Errorf("--lat and --lon must be provided together")
	}
	// Диапазон проверяется здесь, синхронно: невалидные координаты
	// не должны попадать в офлайн-очередь
	if err := validation.ValidateCoordinates(*lat, *lon); err != nil {
		return nil, err
	}
	return &models.Coordinates{Latitude: *lat, Longitude: *lon}, nil
}

func (c *Cli) runVerify(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("verify", flag.ContinueOnError)
	checkpointID := fs.String("checkpoint", "", "Checkpoint ID to verify")
	code := fs.String("code", "", "Scanned code (qrcode checkpoints)")
	photoRef := fs.String("photo", "", "Photo reference (photo checkpoints)")
	lat := fs.Float64("lat", 0, "Current latitude (geolocation checkpoints)")
	lon := fs.Float64("lon", 0, "Current longitude (geolocation checkpoints)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *checkpointID == "" {
		return fmt.Errorf("missing --checkpoint. Usage: patrolkeeper verify --checkpoint ID [--code CODE | --photo REF | --lat N --lon N]")
	}

	location, err := parseLocation(fs, lat, lon)
	if err != nil {
		return err
	}

	active, err := c.activeRound(ctx)
	if err != nil {
		return err
	}

	verification, err := c.controller.Verify(ctx, active.ID, *checkpointID, round.Evidence{
		Code:     *code,
		PhotoRef: *photoRef,
		Location: location,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Checkpoint %s verified (%s)\n", verification.CheckpointID, verification.Method)
	if verification.DistanceMeters != nil {
		fmt.Printf("Distance from expected position: %.0f m\n", *verification.DistanceMeters)
	}

	progress, err := c.controller.Progress(ctx, active.ID, location)
	if err != nil {
		return err
	}
	fmt.Printf("Progress: %d of %d checkpoints\n", progress.Verified, progress.Total)
	if progress.Next != nil {
		fmt.Printf("Next: %s (%s)\n", progress.Next.Name, progress.Next.ID)
	}
	return nil
}

func (c *Cli) runNext(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("next", flag.ContinueOnError)
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

	progress, err := c.controller.Progress(ctx, active.ID, location)
	if err != nil {
		return err
	}

	if progress.Next == nil {
		fmt.Println("All checkpoints verified; run 'patrolkeeper complete'.")
		return nil
	}

	fmt.Printf("Next checkpoint: %s (%s), method %s\n", progress.Next.Name, progress.Next.ID, progress.Next.Method)
	if progress.DistanceMeters != nil {
		fmt.Printf("Distance: %.0f m, bearing %.0f°\n", *progress.DistanceMeters, *progress.BearingDegrees)
	}
	return nil
}
