// Package app wires the pieces the server and the CLI both need: connecting
// to Postgres, loading the transit layer, and building the static fare-data
// cache. Kept separate from cmd/transitfare so its serve and plan
// subcommands share one bootstrap path instead of drifting.
package app

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	"github.com/antigravity/transitfare/internal/faredata"
	"github.com/antigravity/transitfare/internal/transit"
	"github.com/antigravity/transitfare/internal/transitstore"
)

// Connect opens a pgx pool and verifies it with a ping.
func Connect(ctx context.Context, dbURL string) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return nil, errors.Wrap(err, "parsing database URL")
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, errors.Wrap(err, "creating connection pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, "pinging database")
	}

	return pool, nil
}

// LoadLayer reads the full transit layer from db via transitstore.
func LoadLayer(ctx context.Context, pool *pgxpool.Pool) (*transit.Layer, error) {
	loader := transitstore.NewLoader(pool)
	layer, err := loader.Load(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "loading transit layer")
	}
	return layer, nil
}

// NewFareCache builds the process-wide static fare-data cache, backed by
// the packaged CSV defaults (spec.md §5, §4.4). A deployment that needs
// per-feed fare tables instead of the packaged defaults would replace this
// builder with one that reads from the layer's own source, not change the
// cache's lazy-init contract.
func NewFareCache() *faredata.Cache {
	return faredata.NewCache(func(layer *transit.Layer) (*faredata.Bundle, error) {
		zoneFares, err := faredata.LoadDefaultZoneFareTable(0)
		if err != nil {
			return nil, errors.Wrap(err, "loading zone fare table")
		}

		connected, err := faredata.LoadDefaultConnectedPairs()
		if err != nil {
			return nil, errors.Wrap(err, "loading station connections")
		}

		faresV2, err := faredata.LoadDefaultFaresV2Tables()
		if err != nil {
			return nil, errors.Wrap(err, "loading fares-v2 tables")
		}

		return &faredata.Bundle{
			ZoneFares:     zoneFares,
			Connected:     connected,
			FaresV2Tables: faresV2,
		}, nil
	})
}

// Calculators lists the in_routing_fare_calculator.type values the service
// understands, for CLI help text and request validation.
var Calculators = []string{"simple", "bogota", "boston", "chicago-rta", "mixed-system", "nyc", "fares-v2"}
