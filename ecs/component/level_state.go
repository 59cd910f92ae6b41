package component

import "github.com/milk9111/spherefall/assets"

// LevelState holds the level the menu wants loaded. A zero handle means no
// level. It lives on a single entity and only the menu writes it.
type LevelState struct {
	Handle assets.Handle
}

// Current returns the desired handle, if any.
func (s LevelState) Current() (assets.Handle, bool) {
	return s.Handle, s.Handle.Valid()
}

var LevelStateComponent = NewComponent[LevelState]()
