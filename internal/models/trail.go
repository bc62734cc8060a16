// Package models defines the record types persisted by the local store and
// the remote payload types they snapshot.
package models

import "time"

// TrailGemRef is one ordered gem reference inside a trail snapshot. The
// remote payload may inline photo URLs; local snapshots keep only the
// reference fields.
type TrailGemRef struct {
	ID     string   `json:"id"`
	GemID  string   `json:"gemId"`
	Note   string   `json:"creatorNote,omitempty"`
	Secret string   `json:"lokalSecret,omitempty"`
	Order  int      `json:"order"`
	Photos []string `json:"photos,omitempty"`
}

// Route is optional trail geometry.
type Route struct {
	Coordinates [][]float64 `json:"coordinates"`
	Polyline    string      `json:"polyline,omitempty"`
}

// Creator identifies the author of a trail or gem.
type Creator struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Avatar string `json:"avatar,omitempty"`
}

// TrailDetail is the full remote trail payload. UpdatedAt doubles as the
// opaque version stamp used for staleness checks.
type TrailDetail struct {
	ID                       string        `json:"id"`
	Name                     string        `json:"name"`
	Description              string        `json:"description,omitempty"`
	FullDescription          string        `json:"fullDescription,omitempty"`
	Category                 string        `json:"category,omitempty"`
	Difficulty               string        `json:"difficulty,omitempty"`
	CoverImage               string        `json:"coverImage,omitempty"`
	Gems                     []TrailGemRef `json:"gems"`
	Rating                   float64       `json:"rating,omitempty"`
	EstimatedDurationMinutes int           `json:"estimatedDurationMinutes,omitempty"`
	EstimatedDistanceKm      float64       `json:"estimatedDistanceKm,omitempty"`
	CreatedAt                string        `json:"createdAt"`
	UpdatedAt                string        `json:"updatedAt"`
	CreatedBy                *Creator      `json:"createdBy,omitempty"`
	Tags                     []string      `json:"tags,omitempty"`
	Route                    *Route        `json:"route,omitempty"`
}

// TrailRecord is the locally persisted, denormalized trail snapshot.
// It is created or overwritten only by the download orchestrator.
type TrailRecord struct {
	// ID is the trail id (primary key).
	ID string

	// Data is the snapshot taken at download time. Its gem refs are
	// sequence-ordered with no gaps.
	Data TrailDetail

	// Version equals the server's stamp at the last successful full download.
	Version string

	DownloadedAt time.Time
	SizeBytes    int64
}
