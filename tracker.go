package computeds

import "weak"

// Tracker is a manually driven consumer: Track brackets a function so its
// reads become dependencies, and Dirty reports whether any of them has
// changed since, revalidating lazily. Callers decide when to re-run; an
// optional onDirty callback goes through the effect queue, so under a batch
// it fires once, after the batch ends.
type Tracker struct {
	sub Subscriber
	rs  *ReactiveSystem
}

func (t *Tracker) isSignalAware() {}

func NewTracker(rs *ReactiveSystem, onDirty func()) *Tracker {
	t := &Tracker{rs: rs}
	if onDirty != nil {
		t.sub.Notify = onDirty
	}
	t.sub.versionOrDirty = dirty
	return t
}

// Track runs fn under the tracker's tracking session and returns its result.
func Track[T any](t *Tracker, fn func() T) T {
	prev := t.rs.StartTrack(&t.sub)
	defer t.rs.EndTrack(&t.sub, prev)
	return fn()
}

// Dirty reports whether the tracked function's inputs changed since the last
// Track. A maybe-dirty tracker resolves first, so an upstream write whose
// derived values settled unchanged reports false.
func (t *Tracker) Dirty() bool {
	if t.sub.versionOrDirty == maybeDirty {
		t.rs.ResolveMaybeDirty(&t.sub)
	}
	return t.sub.versionOrDirty == dirty
}

// Stop releases every edge the tracker holds.
func (t *Tracker) Stop() {
	t.rs.ClearTrack(&t.sub)
	t.sub.versionOrDirty = dirty
}

// Handle is a non-owning reference to a Tracker, comparable and usable as a
// map key for externally stored per-consumer bookkeeping. It never extends
// the tracker's lifetime; Tracker returns nil once the referent is gone.
type Handle struct {
	p weak.Pointer[Tracker]
}

func (t *Tracker) Handle() Handle {
	return Handle{p: weak.Make(t)}
}

func (h Handle) Tracker() *Tracker {
	return h.p.Value()
}
