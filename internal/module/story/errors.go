package story

import "errors"

// Module errors.
var (
	ErrStoryNotFound = errors.New("story not found")
	ErrMusicNotFound = errors.New("background music not found")
)
