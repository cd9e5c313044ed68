// Command geocode fills in missing Lat/Lon values of the aid-location CSV using
// the Mapbox forward geocoding API.
//
//	geocode -in aid.csv -out aid_geocoded.csv
//
// MAPBOX_ACCESS_TOKEN must be exported or present in .env.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/FACorreiaa/aid-map/internal/app/domain/geocode"
	"github.com/FACorreiaa/aid-map/internal/pkg/config"
	"github.com/FACorreiaa/aid-map/internal/pkg/csvtable"
	"github.com/FACorreiaa/aid-map/internal/pkg/env"
	"github.com/FACorreiaa/aid-map/pkg/logger"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	fs := flag.NewFlagSet("geocode", flag.ContinueOnError)
	in := fs.String("in", "aid.csv", "input CSV with an \"Approx. Address\", \"Lat\" and \"Lon\" column")
	out := fs.String("out", "aid_geocoded.csv", "output CSV")
	workers := fs.Int("workers", cfg.Geocode.Workers, "concurrent geocoding requests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	cfg.Geocode.Workers = *workers
	if err := cfg.Validate(); err != nil {
		return err
	}

	if err := logger.Init(logger.ParseLevel(cfg.LogLevel), zap.String("service", "geocode")); err != nil {
		return err
	}
	defer func() { _ = logger.Log.Sync() }()

	token := env.GetOrDefault(env.OS{}, "MAPBOX_ACCESS_TOKEN", "")
	if token == "" {
		return fmt.Errorf("missing MAPBOX_ACCESS_TOKEN environment variable; create a .env file with MAPBOX_ACCESS_TOKEN=... or export it in your shell")
	}

	table, err := csvtable.ReadFile(*in)
	if err != nil {
		return err
	}

	client, err := geocode.NewClient(geocode.ClientConfig{
		BaseURL:     cfg.Geocode.BaseURL,
		AccessToken: token,
		Country:     cfg.Geocode.Country,
		Timeout:     cfg.Geocode.Timeout,
		MaxAttempts: cfg.Geocode.MaxAttempts,
	}, logger.Log)
	if err != nil {
		return err
	}
	svc := geocode.NewService(client, geocode.ServiceConfig{
		Workers:  cfg.Geocode.Workers,
		Interval: cfg.Geocode.Interval,
	}, logger.Log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	stats, err := svc.GeocodeTable(ctx, table)
	if err != nil {
		return err
	}

	if err := table.WriteFile(*out); err != nil {
		return err
	}

	_, _ = fmt.Fprintf(stdout, "Processed %d rows. Attempted geocoding %d, updated %d, failed %d.\nWrote: %s\n",
		stats.Total, stats.Attempted, stats.Updated, stats.Failed, *out)
	return nil
}
