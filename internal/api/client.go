// Package api implements the REST client for the remote Krawl service:
// trail/gem reads, the six mutation operations consumed by the sync queue,
// and a reachability ping.
package api

import (
	"context"
	"encoding/json"

	"github.com/krawl-app/krawl-offline/internal/models"
)

// Client is the remote API surface the engine depends on. Mutation success is
// a successful HTTP-level acknowledgment; response bodies are not interpreted
// beyond pass/fail.
type Client interface {
	// GetTrail fetches the full trail payload including its version stamp.
	GetTrail(ctx context.Context, id string) (*models.TrailDetail, error)

	// GetGem fetches the full gem payload.
	GetGem(ctx context.Context, id string) (*models.GemDetail, error)

	CreateGem(ctx context.Context, data json.RawMessage) error
	CreateTrail(ctx context.Context, data json.RawMessage) error
	UpdateGem(ctx context.Context, id string, data json.RawMessage) error
	UpdateTrail(ctx context.Context, id string, data json.RawMessage) error
	DeleteGem(ctx context.Context, id string) error
	DeleteTrail(ctx context.Context, id string) error

	// Ping reports server reachability.
	Ping(ctx context.Context) error
}
