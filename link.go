package computeds

// acquire takes a link from the pool, or allocates one if the pool is empty,
// and installs the endpoints. The recorded depVersion snapshots the
// dependency's version at link time.
func (rs *ReactiveSystem) acquire(dep *Dependency, sub *Subscriber) *Link {
	l := rs.linkPool
	if l != nil {
		rs.linkPool = l.nextFree
		l.nextFree = nil
		l.dep = dep
		l.sub = sub
		l.depVersion = dep.version
		return l
	}
	rs.linkAllocs++
	return &Link{dep: dep, sub: sub, depVersion: dep.version}
}

// release detaches a link from its dependency's subscriber list, fires the
// dependency's OnUnsubscribed if that list just became empty, clears the
// endpoints and pushes the link onto the free list. The subscriber-side
// chain is the caller's responsibility: the dependency list is forward-only,
// so only the caller knows the predecessor slot.
func (rs *ReactiveSystem) release(l *Link) {
	dep := l.dep
	nextSub := l.nextSub
	prevSub := l.prevSub

	if nextSub != nil {
		nextSub.prevSub = prevSub
	} else {
		dep.subsTail = prevSub
	}
	if prevSub != nil {
		prevSub.nextSub = nextSub
	} else {
		dep.subs = nextSub
	}

	if dep.subs == nil && dep.OnUnsubscribed != nil {
		dep.OnUnsubscribed()
	}

	l.dep = nil
	l.sub = nil
	l.prevSub = nil
	l.nextSub = nil
	l.nextDep = nil
	l.nextFree = rs.linkPool
	rs.linkPool = l
}

// Link records a read of dep by the active subscriber, if any. Every
// primitive read operation calls this while a tracking session may be open;
// with no session active it is a no-op, and under a scope subscriber plain
// reads are suppressed unless allowScope is set.
//
// Repeated reads of the same dependency within one run are deduplicated by
// the session stamp. Otherwise the read is reconciled against the next
// unconsumed slot of the subscriber's previous dependency list: a matching
// slot is reused in place, a mismatched one is spliced out and a fresh link
// inserted at the cursor. Stable read order therefore costs no edge churn.
func (rs *ReactiveSystem) Link(dep *Dependency, allowScope bool) {
	sub := rs.activeSub
	if sub == nil || (sub.scope && !allowScope) {
		return
	}
	if dep.lastTrackedBy == sub.versionOrDirty {
		return
	}
	dep.lastTrackedBy = sub.versionOrDirty

	current := sub.depsTail
	var next *Link
	if current != nil {
		next = current.nextDep
	} else {
		next = sub.deps
	}
	if next != nil && next.dep == dep {
		next.depVersion = dep.version
		sub.depsTail = next
		return
	}
	if next != nil {
		// The slot reads a different dependency now; drop it before
		// inserting the replacement.
		staleNext := next.nextDep
		rs.release(next)
		next = staleNext
	}
	rs.linkNewDep(dep, sub, next, current)
}

// linkNewDep inserts a fresh link at the subscriber's cursor position and at
// the tail of the dependency's subscriber list, then advances the cursor.
func (rs *ReactiveSystem) linkNewDep(dep *Dependency, sub *Subscriber, nextDep, depsTail *Link) {
	l := rs.acquire(dep, sub)
	l.nextDep = nextDep

	if depsTail == nil {
		sub.deps = l
	} else {
		depsTail.nextDep = l
	}

	if dep.subs == nil {
		dep.subs = l
	} else {
		oldTail := dep.subsTail
		l.prevSub = oldTail
		oldTail.nextSub = l
	}

	sub.depsTail = l
	dep.subsTail = l
}
