package domain

// LocatorType classifies an inbound ingest locator.
type LocatorType string

const (
	LocatorVideo    LocatorType = "video"
	LocatorChannel  LocatorType = "channel"
	LocatorPlaylist LocatorType = "playlist"
)

func (t LocatorType) IsValid() bool {
	switch t {
	case LocatorVideo, LocatorChannel, LocatorPlaylist:
		return true
	}
	return false
}

// IngestEntry is one heterogeneous request: a single video identifier or a
// channel/playlist whose members should all be queued.
type IngestEntry struct {
	Type    LocatorType `json:"type"`
	Locator string      `json:"locator"`
}

// IngestRequest is the inbound payload for adding work to the pending queue.
type IngestRequest struct {
	Entries []IngestEntry  `json:"entries"`
	Status  WorkItemStatus `json:"status,omitempty"`
}

func (r *IngestRequest) Validate() error {
	if len(r.Entries) == 0 {
		return ErrEmptyRequest
	}
	for _, e := range r.Entries {
		if !e.Type.IsValid() {
			return ErrInvalidEntityType
		}
		if e.Locator == "" {
			return ErrInvalidLocator
		}
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if !r.Status.IsValid() {
		return ErrInvalidStatus
	}
	return nil
}

// ManualRefreshRequest maps entity types to explicit id lists.
// Cascade additionally enqueues every video attributed to each listed
// channel or playlist.
type ManualRefreshRequest struct {
	IDs     map[EntityType][]string `json:"ids"`
	Cascade bool                    `json:"cascade,omitempty"`
}

func (r *ManualRefreshRequest) Validate() error {
	if len(r.IDs) == 0 {
		return ErrEmptyRequest
	}
	for t := range r.IDs {
		if !t.IsValid() {
			return ErrInvalidEntityType
		}
	}
	return nil
}
