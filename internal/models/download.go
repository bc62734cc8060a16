package models

import "time"

// DownloadStatus is the durable state of a trail download.
type DownloadStatus string

const (
	DownloadPending     DownloadStatus = "pending"
	DownloadDownloading DownloadStatus = "downloading"
	DownloadCompleted   DownloadStatus = "completed"
	DownloadFailed      DownloadStatus = "failed"
	DownloadPaused      DownloadStatus = "paused"
)

// DownloadRecord is the durable progress checkpoint for one trail download.
// Exactly one record per trail id exists at a time; it is the source of truth
// for "is this trail already downloaded or downloading".
type DownloadRecord struct {
	// ID is the trail id (primary key).
	ID string

	Status DownloadStatus

	// Progress is 0-100 and monotonically non-decreasing while downloading.
	Progress int

	// CurrentStep is a human-readable phase label.
	CurrentStep string

	StartedAt   time.Time
	CompletedAt *time.Time
	Error       string

	DownloadedBytes int64

	// TotalBytes is an estimate; zero means unknown.
	TotalBytes int64
}
