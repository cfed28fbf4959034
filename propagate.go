package computeds

// Propagate marks every subscriber transitively reachable from dep after
// dep's underlying value actually changed. Direct subscribers become dirty;
// anything deeper becomes maybe-dirty, because whether it is really affected
// depends on intermediate derived values that have not been recomputed yet.
// Pure effects are appended to the system's queue the moment they transition
// out of the clean state, so one pass never queues an effect twice.
//
// The walk is iterative: descending into a derived subscriber's own list
// pushes the current edge onto a resume stack instead of recursing, so depth
// is bounded by the heap, not the goroutine stack. Revisits via another path
// only ever upgrade a level; a subscriber that is mid-tracking carries a
// session stamp above every level and is left alone.
func (rs *ReactiveSystem) Propagate(dep *Dependency) {
	dep.version++
	if dep.subs == nil {
		return
	}

	var stack []*Link
	level := dirty
	link := dep.subs
	for {
		for link != nil {
			sub := link.sub
			had := sub.versionOrDirty
			if had < level {
				sub.versionOrDirty = level
			}
			if had == notDirty {
				if d := sub.Dep; d != nil && d.subs != nil {
					stack = append(stack, link)
					link = d.subs
					level = maybeDirty
					continue
				}
				if sub.Notify != nil {
					rs.enqueueEffect(sub)
				}
			}
			link = link.nextSub
		}
		if len(stack) == 0 {
			return
		}
		link = stack[len(stack)-1].nextSub
		stack = stack[:len(stack)-1]
		if len(stack) == 0 {
			level = dirty
		} else {
			level = maybeDirty
		}
	}
}
