package computeds

// ReadonlySignal is a lazily cached derived value. It is a subscriber of
// everything its getter reads and a dependency of everything that reads it.
type ReadonlySignal[T comparable] struct {
	dep Dependency
	sub Subscriber

	rs     *ReactiveSystem
	value  T
	getter func(oldValue T) T
}

func (c *ReadonlySignal[T]) isSignalAware() {}

func Computed[T comparable](rs *ReactiveSystem, getter func(oldValue T) T) *ReadonlySignal[T] {
	c := &ReadonlySignal[T]{
		rs:     rs,
		getter: getter,
	}
	c.dep.Sub = &c.sub
	c.dep.Update = c.update
	c.dep.OnUnsubscribed = c.detach
	c.sub.Dep = &c.dep
	c.sub.versionOrDirty = dirty
	return c
}

func (c *ReadonlySignal[T]) Value() T {
	if c.sub.detached {
		c.rs.RelinkDeps(&c.sub)
	}
	switch c.sub.versionOrDirty {
	case maybeDirty:
		c.rs.ResolveMaybeDirty(&c.sub)
		if c.sub.versionOrDirty == dirty {
			c.update()
		}
	case dirty:
		c.update()
	}
	c.rs.Link(&c.dep, false)
	return c.value
}

// update recomputes under a fresh tracking session. The version bumps only
// when the value actually changed, which is what keeps an unchanged
// intermediate from dirtying its descendants.
func (c *ReadonlySignal[T]) update() {
	prev := c.rs.StartTrack(&c.sub)
	defer c.rs.EndTrack(&c.sub, prev)

	oldValue := c.value
	c.value = c.getter(oldValue)
	if c.value != oldValue {
		c.dep.version++
	}
}

// detach runs when the last subscriber goes away. Only list membership is
// released; see ReactiveSystem.DetachDeps.
func (c *ReadonlySignal[T]) detach() {
	c.rs.DetachDeps(&c.sub)
}
