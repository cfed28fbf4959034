package computeds

// WriteableSignal is a plain reactive state cell.
type WriteableSignal[T comparable] struct {
	dep   Dependency
	rs    *ReactiveSystem
	value T
}

func (s *WriteableSignal[T]) isSignalAware() {}

func Signal[T comparable](rs *ReactiveSystem, initialValue T) *WriteableSignal[T] {
	return &WriteableSignal[T]{
		rs:    rs,
		value: initialValue,
	}
}

func (s *WriteableSignal[T]) Value() T {
	s.rs.Link(&s.dep, false)
	return s.value
}

func (s *WriteableSignal[T]) SetValue(v T) {
	if s.value == v {
		return
	}
	s.value = v
	s.rs.Propagate(&s.dep)
	if s.rs.batchDepth == 0 {
		s.rs.drainEffects()
	}
}
