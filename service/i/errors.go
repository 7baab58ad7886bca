package i

import "errors"

var (
	ErrTraceNotFound = errors.New("trace not found")
	ErrPlaybackOwned = errors.New("playback is owned by another driver")
)
