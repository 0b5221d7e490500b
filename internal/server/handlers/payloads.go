package handlers

import (
	"errors"
	"fmt"

	"github.com/iudanet/patrolkeeper/internal/models"
	"github.com/iudanet/patrolkeeper/internal/validation"
	"github.com/iudanet/patrolkeeper/pkg/api"
)

// roundFromPayload валидирует и конвертирует payload обхода
func roundFromPayload(p *api.RoundPayload) (*models.Round, error) {
	if p.ID == "" {
		return nil, errors.New("round id is required")
	}
	if p.RouteID == "" {
		return nil, errors.New("route id is required")
	}
	if p.GuardID == "" {
		return nil, errors.New("guard id is required")
	}

	status := models.RoundStatus(p.Status)
	if !status.Valid() {
		return nil, fmt.Errorf("unknown round status %q", p.Status)
	}

	mode := models.RoundMode(p.Mode)
	if mode == "" {
		mode = models.ModeNormal
	}
	if mode != models.ModeNormal && mode != models.ModeEmergency {
		return nil, fmt.Errorf("unknown round mode %q", p.Mode)
	}

	if p.CompletionRate < 0 || p.CompletionRate > 1 {
		return nil, fmt.Errorf("completion rate %v out of range [0, 1]", p.CompletionRate)
	}

	return &models.Round{
		ID:             p.ID,
		RouteID:        p.RouteID,
		GuardID:        p.GuardID,
		Status:         status,
		Mode:           mode,
		StartedAt:      p.StartedAt,
		CompletedAt:    p.CompletedAt,
		CompletionRate: p.CompletionRate,
	}, nil
}

func roundToPayload(r *models.Round) api.RoundPayload {
	return api.RoundPayload{
		ID:             r.ID,
		RouteID:        r.RouteID,
		GuardID:        r.GuardID,
		Status:         string(r.Status),
		Mode:           string(r.Mode),
		StartedAt:      r.StartedAt,
		CompletedAt:    r.CompletedAt,
		CompletionRate: r.CompletionRate,
	}
}

// verificationFromPayload валидирует и конвертирует payload отметки
func verificationFromPayload(p *api.VerificationPayload) (*models.CheckpointVerification, error) {
	if p.RoundID == "" {
		return nil, errors.New("round id is required")
	}
	if p.CheckpointID == "" {
		return nil, errors.New("checkpoint id is required")
	}

	method := models.VerificationMethod(p.Method)
	if !method.Valid() {
		return nil, fmt.Errorf("unknown verification method %q", p.Method)
	}

	location, err := locationFromPayload(p.Location)
	if err != nil {
		return nil, err
	}

	return &models.CheckpointVerification{
		RoundID:        p.RoundID,
		CheckpointID:   p.CheckpointID,
		Method:         method,
		VerifiedAt:     p.Timestamp,
		Evidence:       p.Evidence,
		Location:       location,
		DistanceMeters: p.DistanceMeters,
	}, nil
}

func verificationToPayload(v *models.CheckpointVerification) api.VerificationPayload {
	return api.VerificationPayload{
		RoundID:        v.RoundID,
		CheckpointID:   v.CheckpointID,
		Method:         string(v.Method),
		Timestamp:      v.VerifiedAt,
		Evidence:       v.Evidence,
		Location:       locationToPayload(v.Location),
		DistanceMeters: v.DistanceMeters,
	}
}

// occurrenceFromPayload валидирует и конвертирует payload происшествия
func occurrenceFromPayload(p *api.OccurrencePayload) (*models.Occurrence, error) {
	if p.ID == "" {
		return nil, errors.New("occurrence id is required")
	}
	if err := validation.ValidateDescription(p.Description); err != nil {
		return nil, err
	}

	severity := models.Severity(p.Severity)
	if !severity.Valid() {
		return nil, fmt.Errorf("unknown severity %q", p.Severity)
	}

	status := models.OccurrenceStatus(p.Status)
	if status == "" {
		status = models.OccurrenceOpen
	}
	switch status {
	case models.OccurrenceOpen, models.OccurrenceInProgress, models.OccurrenceResolved:
	default:
		return nil, fmt.Errorf("unknown occurrence status %q", p.Status)
	}

	location, err := locationFromPayload(p.Location)
	if err != nil {
		return nil, err
	}

	return &models.Occurrence{
		ID:          p.ID,
		RoundID:     p.RoundID,
		Severity:    severity,
		Description: p.Description,
		Status:      status,
		CreatedAt:   p.Timestamp,
		Location:    location,
	}, nil
}

func occurrenceToPayload(occ *models.Occurrence) api.OccurrencePayload {
	return api.OccurrencePayload{
		ID:          occ.ID,
		RoundID:     occ.RoundID,
		Severity:    string(occ.Severity),
		Description: occ.Description,
		Status:      string(occ.Status),
		Timestamp:   occ.CreatedAt,
		Location:    locationToPayload(occ.Location),
	}
}

func locationFromPayload(loc *api.Location) (*models.Coordinates, error) {
	if loc == nil {
		return nil, nil
	}
	if err := validation.ValidateCoordinates(loc.Latitude, loc.Longitude); err != nil {
		return nil, err
	}
	return &models.Coordinates{Latitude: loc.Latitude, Longitude: loc.Longitude}, nil
}

func locationToPayload(c *models.Coordinates) *api.Location {
	if c == nil {
		return nil
	}
	return &api.Location{Latitude: c.Latitude, Longitude: c.Longitude}
}
