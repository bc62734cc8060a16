// Package common defines shared constants and sentinel errors used across the
// offline engine. Callers should use errors.Is to match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrNotFound = errors.New("not found")

	// ErrStoreUnavailable means local persistence is inaccessible for the
	// session. Callers must degrade to network-only behavior.
	ErrStoreUnavailable = errors.New("local store unavailable")

	// Download admission / usage errors.
	ErrInsufficientStorage = errors.New("not enough storage space available")
	ErrAlreadyInProgress   = errors.New("download already in progress")
	ErrAlreadyDownloaded   = errors.New("trail already downloaded")

	// Remote API errors.
	ErrServerUnavailable = errors.New("server unavailable")
)
