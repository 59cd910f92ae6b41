// Package assets loads level files in the background and reports each
// completed load as a one-shot Event.
package assets

import "fmt"

// Handle names a level asset. The zero Handle refers to nothing.
type Handle struct {
	ID   uint64 `json:"id"`
	Path string `json:"path"`
}

func (h Handle) Valid() bool {
	return h.ID != 0
}

func (h Handle) String() string {
	if !h.Valid() {
		return "none"
	}
	return fmt.Sprintf("%s#%d", h.Path, h.ID)
}

type EventKind int

const (
	EventCreated EventKind = iota + 1
	EventModified
	EventFailed
)

func (k EventKind) String() string {
	switch k {
	case EventCreated:
		return "created"
	case EventModified:
		return "modified"
	case EventFailed:
		return "failed"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// Event reports the outcome of one load. Version counts the successful
// loads of the handle and is unchanged by a failure.
type Event struct {
	Handle  Handle
	Kind    EventKind
	Version uint64
	Err     error
}

// ContentAvailable reports whether the event carries new parsed content.
func (e Event) ContentAvailable() bool {
	return e.Err == nil && (e.Kind == EventCreated || e.Kind == EventModified)
}
