package computeds

// OnErrorFunc receives errors returned by user bodies run inside the system
// (effects, scopes, tracker callbacks).
type OnErrorFunc func(from SignalAware, err error)

// SignalAware is implemented by every node type the system hands back to
// callers, so error hooks can identify the origin.
type SignalAware interface {
	isSignalAware()
}

// ReactiveSystem is the tracking context every graph operation runs against:
// the active subscriber, the batch counter, the global session version
// counter, the link pool and the queued-effect FIFO. It is single-threaded
// by contract; nothing in it is synchronized.
type ReactiveSystem struct {
	batchDepth        int
	activeSub         *Subscriber
	pauseStack        []*Subscriber
	version           int
	queuedEffects     *Subscriber
	queuedEffectsTail *Subscriber

	linkPool   *Link
	linkAllocs int

	onError OnErrorFunc
}

func CreateReactiveSystem(onError OnErrorFunc) *ReactiveSystem {
	return &ReactiveSystem{
		version: initialVersion,
		onError: onError,
	}
}

func (rs *ReactiveSystem) StartBatch() {
	rs.batchDepth++
}

func (rs *ReactiveSystem) EndBatch() {
	rs.batchDepth--
	if rs.batchDepth == 0 {
		rs.drainEffects()
	}
}

func (rs *ReactiveSystem) Batch(cb func()) {
	rs.StartBatch()
	defer rs.EndBatch()
	cb()
}

// PauseTracking opens an untracked window: reads until ResumeTracking create
// no edges. Windows nest LIFO.
func (rs *ReactiveSystem) PauseTracking() {
	rs.pauseStack = append(rs.pauseStack, rs.activeSub)
	rs.activeSub = nil
}

func (rs *ReactiveSystem) ResumeTracking() {
	lastIdx := len(rs.pauseStack) - 1
	rs.activeSub = rs.pauseStack[lastIdx]
	rs.pauseStack = rs.pauseStack[:lastIdx]
}

func (rs *ReactiveSystem) enqueueEffect(sub *Subscriber) {
	if rs.queuedEffectsTail != nil {
		rs.queuedEffectsTail.queuedNext = sub
	} else {
		rs.queuedEffects = sub
	}
	rs.queuedEffectsTail = sub
}

// drainEffects pops and notifies queued effects strictly in enqueue order.
// A notification may append further effects; the loop re-checks the head so
// those still run before the drain returns.
func (rs *ReactiveSystem) drainEffects() {
	for rs.queuedEffects != nil {
		sub := rs.queuedEffects
		rs.queuedEffects = sub.queuedNext
		if rs.queuedEffects == nil {
			rs.queuedEffectsTail = nil
		}
		sub.queuedNext = nil
		sub.Notify()
	}
}
