package computeds

// ResolveMaybeDirty answers whether a maybe-dirty subscriber is actually
// stale, recomputing upstream derived values only where provably necessary.
//
// The walk visits each dependency in order. A derived dependency that is
// itself maybe-dirty is resolved first (descending via an explicit resume
// stack, then re-examining the same edge); one that is dirty is recomputed
// through its Update capability. After either step the dependency's version
// is compared against the version recorded on the edge: a mismatch proves
// the input changed and upgrades the subscriber to dirty. If the walk ends
// with no proven change the subscriber drops to clean — a source write whose
// derived consequences turned out unchanged never forces recomputation
// further down.
func (rs *ReactiveSystem) ResolveMaybeDirty(sub *Subscriber) {
	var stack []*Link
	link := sub.deps
	for {
		wasDirty := false
		for link != nil {
			dep := link.dep
			if ds := dep.Sub; ds != nil {
				if ds.versionOrDirty == maybeDirty {
					stack = append(stack, link)
					sub = ds
					link = ds.deps
					continue
				}
				if ds.versionOrDirty == dirty {
					dep.Update()
				}
			}
			if dep.version != link.depVersion {
				wasDirty = true
				break
			}
			link = link.nextDep
		}

		if wasDirty {
			sub.versionOrDirty = dirty
		} else {
			sub.versionOrDirty = notDirty
		}

		if len(stack) == 0 {
			return
		}
		// Resume at the edge whose dependency was just settled; it is no
		// longer maybe-dirty, so the re-examination cannot descend again.
		link = stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		sub = link.sub
	}
}
