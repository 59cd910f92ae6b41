package component

// ReloadRequest is a marker component used to ask the level system to
// re-read the current level file from disk. Input code creates a short-lived
// entity with this component; the level system destroys it.
type ReloadRequest struct{}

var ReloadRequestComponent = NewComponent[ReloadRequest]()
