// Package sf provides a typed single-flight group: concurrent calls for the
// same key share one execution and its result.
//
//	var g sf.Group[*Conn]
//	conn, shared, err := g.Do("db", dial)
//
// It is used where at most one initialization per key may run at a time,
// e.g. starting a singleton service on first lookup. Callers that need the
// result memoized beyond the in-flight window must store it themselves and
// re-check the store inside fn.
package sf

import "golang.org/x/sync/singleflight"

// Group deduplicates concurrent calls with the same key. The zero value is
// ready to use.
type Group[V any] struct {
	group singleflight.Group
}

// Do executes fn for key unless a call for key is already in flight, in which
// case it waits for that call and returns its result. shared reports whether
// the result was handed to more than one caller.
func (g *Group[V]) Do(key string, fn func() (V, error)) (v V, shared bool, err error) {
	res, err, shared := g.group.Do(key, func() (any, error) {
		return fn()
	})
	if res != nil {
		v = res.(V)
	}
	return v, shared, err
}

// Forget makes the next Do for key execute fn even if a call is in flight.
func (g *Group[V]) Forget(key string) {
	g.group.Forget(key)
}
