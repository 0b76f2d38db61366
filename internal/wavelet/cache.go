package wavelet

// cached holds a lazily derived value. The zero value is empty.
type cached[T any] struct {
	v  T
	ok bool
}

func (c *cached[T]) get() (T, bool) { return c.v, c.ok }

func (c *cached[T]) set(v T) {
	c.v = v
	c.ok = true
}

func (c *cached[T]) clear() {
	var zero T
	c.v = zero
	c.ok = false
}
