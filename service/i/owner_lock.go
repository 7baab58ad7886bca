package i

import "context"

// OwnerLock grants exclusive ownership of the authoritative playback cursor.
type OwnerLock interface {
	// Acquire takes ownership or fails with ErrPlaybackOwned (wrapped) when another
	// driver holds it. The returned function releases ownership.
	Acquire(ctx context.Context) (release func(), err error)
}
