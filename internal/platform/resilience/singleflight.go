package resilience

import "golang.org/x/sync/singleflight"

// SingleFlight deduplicates concurrent calls for the same key. Every caller
// waiting on a key gets the one result.
type SingleFlight[T any] struct {
	group singleflight.Group
}

func (g *SingleFlight[T]) Do(key string, fn func() (T, error)) (T, error, bool) {
	out, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	value, _ := out.(T)
	return value, err, shared
}
