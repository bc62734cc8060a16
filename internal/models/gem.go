package models

import "time"

// GemDetail is the full remote gem (point of interest) payload.
// Coordinates are [longitude, latitude].
type GemDetail struct {
	ID                   string     `json:"id"`
	Name                 string     `json:"name"`
	Description          string     `json:"description,omitempty"`
	Category             string     `json:"category,omitempty"`
	Coordinates          [2]float64 `json:"coordinates"`
	Address              string     `json:"address,omitempty"`
	District             string     `json:"district,omitempty"`
	Photos               []string   `json:"photos,omitempty"`
	CulturalSignificance string     `json:"culturalSignificance,omitempty"`
	CreatedAt            string     `json:"createdAt"`
	UpdatedAt            string     `json:"updatedAt"`
	CreatedBy            *Creator   `json:"createdBy,omitempty"`
	Tags                 []string   `json:"tags,omitempty"`
}

// GemRecord is a locally persisted gem. TrailID is empty only for
// trail-independent gems; in this engine every gem is downloaded per-trail,
// so deleting a trail cascades over the trailId index.
type GemRecord struct {
	ID           string
	TrailID      string
	Data         GemDetail
	DownloadedAt time.Time
}
