package hybridcache

// CacheValue is the result of every read. HasValue is the only signal of absence:
// a stored zero value (or nil pointer) comes back with HasValue=true.
type CacheValue[V any] struct {
	HasValue bool
	Value    V
}

// Found wraps a present value.
func Found[V any](v V) CacheValue[V] {
	return CacheValue[V]{HasValue: true, Value: v}
}

// Missing returns the "nothing cached" result; Value is V's zero value.
func Missing[V any]() CacheValue[V] {
	return CacheValue[V]{}
}

// Get returns the value and whether it was present, comma-ok style.
func (cv CacheValue[V]) Get() (V, bool) {
	return cv.Value, cv.HasValue
}

// Or returns the cached value or def when nothing was cached.
func (cv CacheValue[V]) Or(def V) V {
	if !cv.HasValue {
		return def
	}
	return cv.Value
}
