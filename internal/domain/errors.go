package domain

import "errors"

// Sentinel errors used throughout the application.
// The API layer translates these to HTTP status codes via a single mapError
// function; workers use them to decide between skip, retry and abort.
var (
	ErrNotFound          = errors.New("not found")
	ErrConflict          = errors.New("conflict: identifier already exists")
	ErrInvalidEntityType = errors.New("invalid entity type: must be video, channel, or playlist")
	ErrInvalidLocator    = errors.New("locator must not be empty")
	ErrInvalidStatus     = errors.New("invalid status: must be pending or ignore")
	ErrEmptyRequest      = errors.New("request must contain at least one entry")

	// Intake rejections, non-fatal per item.
	ErrNoMetadata         = errors.New("no metadata returned for identifier")
	ErrIdentifierMismatch = errors.New("returned identifier does not match requested one")
	ErrLiveBroadcast      = errors.New("item is upcoming or currently live")

	// Refresh cycle errors.
	ErrCredentialInvalid  = errors.New("credential invalid, refusing to start refresh cycle")
	ErrPathDrift          = errors.New("media file missing at expected on-disk location")
	ErrPathUnrecoverable  = errors.New("stale media path does not exist, cannot repair")
	ErrPathAlreadyCorrect = errors.New("stale and fresh media folders match, failure has a different cause")
)
