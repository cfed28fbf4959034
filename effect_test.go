package computeds_test

import (
	"testing"

	computeds "github.com/johnsoncodehk/computeds"
	"github.com/stretchr/testify/assert"
)

// should clear subscriptions when untracked by all subscribers
func TestEffectClearSubsWhenUntracked(t *testing.T) {
	bRunTimes := 0

	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := computeds.Signal(rs, 1)
	b := computeds.Computed(rs, func(oldValue int) int {
		bRunTimes++
		return a.Value() * 2
	})
	stopEffect := computeds.Effect(rs, func() error {
		b.Value()
		return nil
	})

	assert.Equal(t, 1, bRunTimes)
	a.SetValue(2)
	assert.Equal(t, 2, bRunTimes)
	stopEffect()
	a.SetValue(3)
	assert.Equal(t, 2, bRunTimes)
}

// should not run untracked inner effect
func TestShouldNotRunUntrackedInnerEffect(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := computeds.Signal(rs, 3)
	b := computeds.Computed(rs, func(oldValue bool) bool {
		return a.Value() > 0
	})

	computeds.Effect(rs, func() error {
		if b.Value() {
			computeds.Effect(rs, func() error {
				if a.Value() == 0 {
					assert.Fail(t, "bad")
				}
				return nil
			})
		}
		return nil
	})

	decrement := func() {
		a.SetValue(a.Value() - 1)
	}
	decrement()
	decrement()
	decrement()
}

// should run outer effect first
func TestShouldRunOuterEffectFirst(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := computeds.Signal(rs, 1)
	b := computeds.Signal(rs, 1)

	computeds.Effect(rs, func() error {
		if a.Value() != 0 {
			computeds.Effect(rs, func() error {
				b.Value()
				if a.Value() == 0 {
					assert.Fail(t, "inner effect ran after being untracked")
				}
				return nil
			})
		}
		return nil
	})

	rs.Batch(func() {
		a.SetValue(0)
		b.SetValue(0)
	})
}

// should not trigger inner effect when resolve maybe dirty
func TestShouldNotTriggerInnerEffectWhenResolveMaybeDirty(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := computeds.Signal(rs, 0)
	b := computeds.Computed(rs, func(oldValue bool) bool {
		return a.Value()%2 == 0
	})

	innerTriggerTimes := 0

	computeds.Effect(rs, func() error {
		computeds.Effect(rs, func() error {
			b.Value()
			innerTriggerTimes++
			if innerTriggerTimes >= 2 {
				assert.Fail(t, "bad")
			}
			return nil
		})
		return nil
	})

	a.SetValue(2)
}

// should trigger inner effects in sequence
func TestShouldTriggerInnerEffectsInSequence(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := computeds.Signal(rs, 0)
	b := computeds.Signal(rs, 0)
	c := computeds.Computed(rs, func(oldValue int) int {
		return a.Value() - b.Value()
	})
	order := []string{}

	computeds.Effect(rs, func() error {
		c.Value()

		computeds.Effect(rs, func() error {
			order = append(order, "first inner")
			a.Value()
			return nil
		})

		computeds.Effect(rs, func() error {
			order = append(order, "last inner")
			a.Value()
			b.Value()
			return nil
		})

		return nil
	})

	order = order[:0]
	rs.StartBatch()
	a.SetValue(1)
	b.SetValue(1)
	rs.EndBatch()

	assert.Equal(t, []string{"first inner", "last inner"}, order)
}

// should trigger inner effects in sequence in effect scope
func TestShouldTriggerInnerEffectsInSequenceInEffectScope(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})
	a := computeds.Signal(rs, 0)
	b := computeds.Signal(rs, 0)
	order := []string{}

	computeds.EffectScope(rs, func() error {
		computeds.Effect(rs, func() error {
			order = append(order, "first inner")
			a.Value()
			return nil
		})

		computeds.Effect(rs, func() error {
			order = append(order, "last inner")
			a.Value()
			b.Value()
			return nil
		})

		return nil
	})

	order = order[:0]
	rs.StartBatch()
	a.SetValue(1)
	b.SetValue(1)
	rs.EndBatch()

	assert.Equal(t, []string{"first inner", "last inner"}, order)
}

// should custom effect support batch
func TestShouldCustomEffectSupportBatch(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	batchEffect := func(fn func() error) computeds.ErrFn {
		return computeds.Effect(rs, func() error {
			rs.StartBatch()
			defer rs.EndBatch()
			return fn()
		})
	}

	logs := []string{}
	a := computeds.Signal(rs, 0)
	b := computeds.Signal(rs, 0)

	aa := computeds.Computed(rs, func(oldValue int) int {
		logs = append(logs, "aa-0")
		if a.Value() == 0 {
			b.SetValue(1)
		}
		logs = append(logs, "aa-1")
		return 0
	})

	bb := computeds.Computed(rs, func(oldValue int) int {
		logs = append(logs, "bb")
		return b.Value()
	})

	batchEffect(func() error {
		bb.Value()
		return nil
	})

	batchEffect(func() error {
		aa.Value()
		return nil
	})

	assert.Equal(t, []string{"bb", "aa-0", "aa-1", "bb"}, logs)
}

// should not trigger after stop
func TestShouldNotTriggerAfterStop(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	count := computeds.Signal(rs, 0)

	triggers := 0

	stopScope := computeds.EffectScope(rs, func() error {
		computeds.Effect(rs, func() error {
			triggers++
			count.Value()
			return nil
		})
		return nil
	})

	assert.Equal(t, 1, triggers)
	count.SetValue(2)
	assert.Equal(t, 2, triggers)
	stopScope()
	count.SetValue(3)
	assert.Equal(t, 2, triggers)
}

// scope reads are not tracked by the scope itself
func TestEffectScopeDoesNotTrackPlainReads(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	count := computeds.Signal(rs, 1)
	scopeRuns := 0

	computeds.EffectScope(rs, func() error {
		scopeRuns++
		count.Value()
		return nil
	})

	assert.Equal(t, 1, scopeRuns)
	count.SetValue(2)
	assert.Equal(t, 1, scopeRuns)
}

// two batched writes feeding one effect coalesce into one notification
func TestBatchCoalescesNotifications(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	a := computeds.Signal(rs, 1)
	b := computeds.Signal(rs, 10)

	runs := 0
	sum := 0
	computeds.Effect(rs, func() error {
		runs++
		sum = a.Value() + b.Value()
		return nil
	})
	assert.Equal(t, 1, runs)

	rs.Batch(func() {
		a.SetValue(2)
		b.SetValue(20)
		assert.Equal(t, 1, runs) // nothing runs inside the batch
	})

	assert.Equal(t, 2, runs)
	assert.Equal(t, 22, sum)
}

// a write from inside a draining effect is handled before the drain returns
func TestReentrantWriteDuringDrain(t *testing.T) {
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		assert.FailNow(t, err.Error())
	})

	a := computeds.Signal(rs, 0)
	b := computeds.Signal(rs, 0)

	var got []int
	computeds.Effect(rs, func() error {
		v := a.Value()
		if v == 1 {
			b.SetValue(1)
		}
		return nil
	})
	computeds.Effect(rs, func() error {
		got = append(got, b.Value())
		return nil
	})

	got = got[:0]
	a.SetValue(1)
	assert.Equal(t, []int{1}, got)
}

// user errors surface through the system error hook
func TestEffectErrorRoutesToOnError(t *testing.T) {
	var fromErr error
	rs := computeds.CreateReactiveSystem(func(from computeds.SignalAware, err error) {
		fromErr = err
	})

	a := computeds.Signal(rs, 0)
	computeds.Effect(rs, func() error {
		if a.Value() > 0 {
			return assert.AnError
		}
		return nil
	})

	assert.NoError(t, fromErr)
	a.SetValue(1)
	assert.ErrorIs(t, fromErr, assert.AnError)

	// the run still ended cleanly: further writes keep notifying
	fromErr = nil
	a.SetValue(2)
	assert.ErrorIs(t, fromErr, assert.AnError)
}
