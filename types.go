package computeds

// Dirty levels held in Subscriber.versionOrDirty while a subscriber is idle.
// During the subscriber's own tracking run the same field holds the session
// version stamp instead; stamps start at initialVersion so they always compare
// greater than any dirty level.
const (
	notDirty = iota
	maybeDirty
	dirty

	initialVersion = 4
)

// Link is the sole edge type: one record joining one Dependency to one
// Subscriber, present in the dependency's subscriber list and the
// subscriber's dependency list at the same time. Links are pooled; nextFree
// chains the free list and is meaningless while the link is installed.
type Link struct {
	dep *Dependency
	sub *Subscriber

	// depVersion is the dependency's version at link time. A later mismatch
	// against dep.version proves the input actually changed.
	depVersion int

	prevSub *Link // dependency's subscriber list
	nextSub *Link
	nextDep *Link // subscriber's dependency list, forward only

	nextFree *Link
}

// Dependency is a reactive source: anything whose changes other nodes can
// subscribe to. A derived node fills in Sub and Update; a plain state cell
// leaves them nil. The engine never allocates Dependencies, only the Links
// between them.
type Dependency struct {
	subs     *Link
	subsTail *Link

	// version increments on every actual state change.
	version int

	// lastTrackedBy holds the session stamp of the subscriber that most
	// recently linked this dependency, deduplicating repeated reads within
	// one tracking run.
	lastTrackedBy int

	// Sub is the subscriber half of a derived node, nil for plain sources.
	Sub *Subscriber

	// Update recomputes a derived node's value and bumps version if it
	// changed. Nil for plain sources.
	Update func()

	// OnUnsubscribed fires synchronously when the subscriber list becomes
	// empty. It must not perform tracked reads or writes; wrappers use it
	// to release upstream resources.
	OnUnsubscribed func()
}

// Subscriber is a reactive consumer: a derived node (Dep set) or a pure
// effect (Notify set). depsTail doubles as the reconciliation cursor while a
// tracking session is active.
type Subscriber struct {
	deps     *Link
	depsTail *Link

	versionOrDirty int

	// scope suppresses edge creation for plain reads performed under this
	// subscriber; effects still link in.
	scope bool

	// detached means the dependency chain is retained but off the
	// dependencies' subscriber lists; see DetachDeps/RelinkDeps.
	detached bool

	// Dep is the dependency half of a derived node, nil for pure sinks.
	Dep *Dependency

	// Notify runs a queued pure effect; queuedNext chains the system's
	// effect FIFO.
	Notify     func()
	queuedNext *Subscriber
}
