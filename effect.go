package computeds

type ErrFn func() error

// EffectRunner is a pure-sink subscriber wrapping a user body. Its dep half
// exists only so an enclosing effect or scope can subscribe to it for
// teardown: when the owner trims that edge the runner stops itself.
type EffectRunner struct {
	dep Dependency
	sub Subscriber

	rs      *ReactiveSystem
	fn      ErrFn
	stopped bool
}

func (e *EffectRunner) isSignalAware() {}

// Effect runs fn immediately under tracking and re-runs it whenever one of
// the dependencies it read changes. The returned function stops it.
func Effect(rs *ReactiveSystem, fn ErrFn) ErrFn {
	e := &EffectRunner{rs: rs, fn: fn}
	e.sub.Notify = e.notify
	e.dep.OnUnsubscribed = e.stop

	rs.Link(&e.dep, true)
	e.run()

	return func() error {
		e.stop()
		return nil
	}
}

// EffectScope groups the effects created inside scopedFn without tracking
// plain reads itself. Stopping the scope stops every effect in it.
func EffectScope(rs *ReactiveSystem, scopedFn ErrFn) (stopScope ErrFn) {
	e := &EffectRunner{rs: rs, fn: scopedFn}
	e.sub.scope = true
	e.dep.OnUnsubscribed = e.stop

	rs.Link(&e.dep, true)
	e.run()

	return func() error {
		e.stop()
		return nil
	}
}

func (e *EffectRunner) run() {
	prev := e.rs.StartTrack(&e.sub)
	defer e.rs.EndTrack(&e.sub, prev)
	if err := e.fn(); err != nil && e.rs.onError != nil {
		e.rs.onError(e, err)
	}
}

// notify is the queued entry point: a maybe-dirty runner lazily revalidates
// first, so a write whose derived consequences turned out unchanged does not
// re-run the body.
func (e *EffectRunner) notify() {
	if e.stopped {
		return
	}
	if e.sub.versionOrDirty == maybeDirty {
		e.rs.ResolveMaybeDirty(&e.sub)
	}
	if e.sub.versionOrDirty == dirty {
		e.run()
	}
}

func (e *EffectRunner) stop() {
	if e.stopped {
		return
	}
	e.stopped = true
	e.rs.ClearTrack(&e.sub)
}
