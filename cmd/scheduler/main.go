package main

import (
	"fmt"
	"os"

	"github.com/codingconcepts/env"
	"github.com/joho/godotenv"

	"github.com/smcana/liveplanner"
	"github.com/smcana/liveplanner/internal/catalog"
	"github.com/smcana/liveplanner/internal/config"
	"github.com/smcana/liveplanner/internal/engine"
	"github.com/smcana/liveplanner/internal/entry"
	"github.com/smcana/liveplanner/internal/studio"
	"github.com/smcana/liveplanner/internal/ytapi"
)

func main() {
	app, ctx := entry.NewApplication("liveplanner")
	defer app.Stop()

	// Parse config from environment variables
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		app.Fail("Failed to load .env file", err)
	}
	cfg := config.Config{}
	if err := env.Set(&cfg); err != nil {
		app.Fail("Failed to load config", err)
	}
	cfg.Normalize()

	definitions, err := cfg.Definitions()
	if err != nil {
		app.Fail("Failed to assemble slot definitions", err)
	}

	// Initialize the Data API client. Both creation modes read the channel
	// catalog through it; only the api mode also writes through it
	tokenSource := ytapi.NewTokenSource(ctx, cfg.ClientId, cfg.ClientSecret, cfg.RefreshToken)
	client := ytapi.NewClient(ctx, tokenSource, ytapi.WithRequestsPerSecond(cfg.RequestsPerSecond))
	cat := catalog.NewCatalog(client, app.Log())

	// Select the creation backend; each mode contributes its own scheduling
	// horizon ceiling
	var backend liveplanner.CreationBackend
	var horizonCap int
	switch cfg.CreationMode {
	case config.ModeAPI:
		retry := ytapi.NewRetryer(cfg.RateLimitRetryLimit, cfg.RetryBase(), cfg.RetryMax(), app.Log())
		backend = ytapi.NewBackend(client, retry, app.Log())
		horizonCap = ytapi.CreationHorizonDays
	case config.ModeStudio:
		state, err := studio.LoadStorageState(cfg.StudioStorageStatePath)
		if err != nil {
			app.Fail("Failed to load studio storage state", err)
		}
		backend = studio.NewBackend(studio.NewClient(cfg.StudioURL, cfg.StudioTimeout()), state, app.Log())
		horizonCap = studio.CreationHorizonDays
	default:
		app.Fail("Failed to select creation backend", fmt.Errorf("unsupported creation mode %q", cfg.CreationMode))
	}

	// Run a single reconciliation pass; the engine logs the run summary on
	// every outcome
	eng := engine.New(cat, backend, engine.Config{
		Definitions:     definitions,
		Timezone:        cfg.Timezone,
		PrivacyStatus:   cfg.DefaultPrivacyStatus,
		StartOffsetDays: cfg.StartOffsetDays,
		MaxDaysAhead:    cfg.MaxDaysAhead,
		HorizonCapDays:  horizonCap,
		StopOnLimit:     cfg.StopOnCreateLimit,
		CreatePause:     cfg.CreatePause(),
	}, app.Log())
	if _, err := eng.Run(ctx); err != nil {
		app.Fail("Run aborted", err)
	}
}
