package computeds

// StartTrack opens a tracking session for sub and returns the previously
// active subscriber, which the matching EndTrack must receive back. Sessions
// nest through this save/restore; callers must guarantee EndTrack runs on
// every exit path or the active-subscriber stack is corrupted for good.
//
// The session stamp comes from the global counter, so it is unique per run
// and always numerically above every dirty level.
func (rs *ReactiveSystem) StartTrack(sub *Subscriber) *Subscriber {
	prev := rs.activeSub
	rs.activeSub = sub
	sub.versionOrDirty = rs.version
	rs.version++
	sub.depsTail = nil
	return prev
}

// EndTrack closes the session: every dependency slot past the final cursor
// position was read on a previous run but not this one and is released.
// The subscriber leaves the session with a clean cached value.
func (rs *ReactiveSystem) EndTrack(sub *Subscriber, prev *Subscriber) {
	rs.activeSub = prev

	depsTail := sub.depsTail
	if depsTail != nil {
		if depsTail.nextDep != nil {
			rs.clearDeps(depsTail.nextDep)
			depsTail.nextDep = nil
		}
	} else if sub.deps != nil {
		rs.clearDeps(sub.deps)
		sub.deps = nil
	}

	sub.versionOrDirty = notDirty
}

// ClearTrack fully detaches a subscriber by running an empty session: no
// reads happen between the brackets, so every previous edge is trimmed.
func (rs *ReactiveSystem) ClearTrack(sub *Subscriber) {
	prev := rs.StartTrack(sub)
	rs.EndTrack(sub, prev)
}

// clearDeps releases every link in a dependency chain.
func (rs *ReactiveSystem) clearDeps(l *Link) {
	for l != nil {
		next := l.nextDep
		rs.release(l)
		l = next
	}
}

// DetachDeps removes sub's links from their dependencies' subscriber lists
// without giving up the links themselves: the subscriber keeps its dependency
// chain and the recorded versions, ready for RelinkDeps. Dependencies whose
// subscriber list empties get their OnUnsubscribed fired, which cascades
// detachment up a chain of derived nodes. A detached subscriber must be
// relinked before any further tracking operation touches its chain.
func (rs *ReactiveSystem) DetachDeps(sub *Subscriber) {
	if sub.detached {
		return
	}
	sub.detached = true
	for l := sub.deps; l != nil; l = l.nextDep {
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
		l.prevSub = nil
		l.nextSub = nil

		if dep.subs == nil && dep.OnUnsubscribed != nil {
			dep.OnUnsubscribed()
		}
	}
}

// RelinkDeps is the structural counterpart of ResolveMaybeDirty: it splices
// a detached subscriber's retained dependency chain back into each
// dependency's subscriber list, keeping both directions of the edge lists
// consistent. A derived dependency that is itself detached gets its chain
// reattached too, descending via an explicit resume stack rather than
// recursion.
//
// Relinked subscribers come back at least maybe-dirty; a recorded version
// that no longer matches proves a change and upgrades them to dirty. Lazy
// resolution settles the rest on the next read.
func (rs *ReactiveSystem) RelinkDeps(sub *Subscriber) {
	if !sub.detached {
		return
	}
	sub.detached = false
	if sub.versionOrDirty == notDirty {
		sub.versionOrDirty = maybeDirty
	}

	var stack []*Link
	link := sub.deps
	for {
		for link != nil {
			dep := link.dep

			if dep.subs == nil {
				dep.subs = link
			} else {
				oldTail := dep.subsTail
				link.prevSub = oldTail
				oldTail.nextSub = link
			}
			dep.subsTail = link

			if dep.version != link.depVersion && link.sub.versionOrDirty < dirty {
				link.sub.versionOrDirty = dirty
			}

			if ds := dep.Sub; ds != nil && ds.detached {
				ds.detached = false
				if ds.versionOrDirty == notDirty {
					ds.versionOrDirty = maybeDirty
				}
				if ds.deps != nil {
					stack = append(stack, link)
					link = ds.deps
					continue
				}
			}
			link = link.nextDep
		}
		if len(stack) == 0 {
			return
		}
		link = stack[len(stack)-1].nextDep
		stack = stack[:len(stack)-1]
	}
}
