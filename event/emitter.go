// Package event provides the in-process event bus: listeners are
// invoked in registration order, one at a time, and the emitting
// call observes the first failure. Every subsystem owns its own
// Emitter; there is no global registry.
package event

import (
	"bvnet/util"

	"reflect"
	"sync"
)

// Reserved event names. Emitting "error" with no listeners is an
// error by itself; "newListener" and "removeListener" are published
// by the Emitter on every registration change.
const (
	ErrorEvent = "error"
	NewListenerEvent = "newListener"
	RemoveListenerEvent = "removeListener"
)

// Listener receives the full ordered argument list of the emit call.
type Listener func(args ...interface{}) error

type _Registration struct {
	fn Listener
	once bool
}

// Emitter dispatches named events sequentially to its listeners.
//
// The listener lists may be mutated while a dispatch is running;
// the active dispatch cursors are adjusted so that no listener is
// skipped or run twice. The mutex is released around every listener
// call, so listeners may freely re-enter the Emitter; two emits of
// the same event from different goroutines may interleave.
type Emitter struct {
	mtx sync.Mutex
	events map[string][]*_Registration
	cursors map[string][]*int
}

func NewEmitter() *Emitter {
	return &Emitter{
		events: make(map[string][]*_Registration),
		cursors: make(map[string][]*int),
	}
}

// AddListener appends fn to the listeners of the named event.
func (em *Emitter) AddListener(name string, fn Listener) {
	em.addListener(name, fn, false, false)
}

// PrependListener inserts fn before the existing listeners.
func (em *Emitter) PrependListener(name string, fn Listener) {
	em.addListener(name, fn, false, true)
}

// AddOnceListener appends fn; it is deregistered right before its
// first invocation.
func (em *Emitter) AddOnceListener(name string, fn Listener) {
	em.addListener(name, fn, true, false)
}

// PrependOnceListener is the prepending variant of AddOnceListener.
func (em *Emitter) PrependOnceListener(name string, fn Listener) {
	em.addListener(name, fn, true, true)
}

func (em *Emitter) addListener(name string, fn Listener, once bool, prepend bool) {
	util.Assert(fn != nil)

	// announced before the listener is added, so the notification
	// never sees it in the list
	em.TryEmit(NewListenerEvent, name, fn)

	em.mtx.Lock()
	defer em.mtx.Unlock()

	reg := &_Registration{fn: fn, once: once}
	if prepend {
		em.events[name] = append([]*_Registration{reg}, em.events[name]...)
		// a cursor that has already run the old head must not
		// run it again at its shifted position
		for _, c := range em.cursors[name] {
			if *c > 0 {
				*c++
			}
		}
	} else {
		em.events[name] = append(em.events[name], reg)
	}
}

// RemoveListener removes the first registration whose function
// matches fn and reports whether one was found.
//
// NOTE: Go closures built from the same function literal share one
// code pointer and are indistinguishable here; the earliest of them
// is the one removed.
func (em *Emitter) RemoveListener(name string, fn Listener) bool {
	util.Assert(fn != nil)
	ptr := reflect.ValueOf(fn).Pointer()

	em.mtx.Lock()
	idx := -1
	for i, reg := range em.events[name] {
		if reflect.ValueOf(reg.fn).Pointer() == ptr {
			idx = i
			break
		}
	}
	if idx < 0 {
		em.mtx.Unlock()
		return false
	}
	removed := em.removeAt(name, idx)
	em.mtx.Unlock()

	em.TryEmit(RemoveListenerEvent, name, removed)
	return true
}

// RemoveAllListeners drops every registration of the named events,
// or of all events when called without arguments. Registrations of
// "removeListener" go last, so they still observe the other
// removals.
func (em *Emitter) RemoveAllListeners(names ...string) {
	if len(names) == 0 {
		em.mtx.Lock()
		hasRemove := false
		for name := range em.events {
			if name == RemoveListenerEvent {
				hasRemove = true
				continue
			}
			names = append(names, name)
		}
		em.mtx.Unlock()
		if hasRemove {
			names = append(names, RemoveListenerEvent)
		}
	}

	for _, name := range names {
		em.clearEvent(name)
	}
}

func (em *Emitter) clearEvent(name string) {
	for {
		em.mtx.Lock()
		if len(em.events[name]) == 0 {
			em.mtx.Unlock()
			return
		}
		removed := em.removeAt(name, len(em.events[name])-1)
		em.mtx.Unlock()

		em.TryEmit(RemoveListenerEvent, name, removed)
	}
}

// removeAt must be called with the mutex held.
func (em *Emitter) removeAt(name string, idx int) Listener {
	list := em.events[name]
	fn := list[idx].fn

	copy(list[idx:], list[idx+1:])
	list = list[:len(list)-1]
	if len(list) == 0 {
		delete(em.events, name)
	} else {
		em.events[name] = list
	}

	for _, c := range em.cursors[name] {
		if *c > idx {
			*c--
		}
	}
	return fn
}

// Emit invokes the listeners of the named event in order, passing
// args to each, and waits for every one of them. The first listener
// error aborts the rest and is returned as is.
//
// Emitting "error" with no listeners fails: with args[0] itself if
// it is an error, else with ErrUnhandledErrorEvent. Any other event
// without listeners is a no-op.
func (em *Emitter) Emit(name string, args ...interface{}) error {
	em.mtx.Lock()

	if len(em.events[name]) == 0 {
		em.mtx.Unlock()
		return unhandled(name, args)
	}

	cursor := 0
	em.cursors[name] = append(em.cursors[name], &cursor)
	defer func() {
		if r := recover(); r != nil {
			// a listener panicked with the mutex released
			em.mtx.Lock()
			em.dropCursor(name, &cursor)
			em.mtx.Unlock()
			panic(r)
		}
		em.dropCursor(name, &cursor)
		em.mtx.Unlock()
	}()

	for cursor < len(em.events[name]) {
		reg := em.events[name][cursor]
		cursor++
		if reg.once {
			em.removeAt(name, cursor-1)
		}

		em.mtx.Unlock()
		err := reg.fn(args...)
		em.mtx.Lock()

		if err != nil {
			return err
		}
	}
	return nil
}

// TryEmit is Emit with every failure swallowed, including the
// unhandled "error" escalation. It is the right call for
// notifications that must never propagate an error.
func (em *Emitter) TryEmit(name string, args ...interface{}) {
	_ = em.Emit(name, args...)
}

// dropCursor must be called with the mutex held.
func (em *Emitter) dropCursor(name string, c *int) {
	cs := em.cursors[name]
	for i := range cs {
		if cs[i] == c {
			em.cursors[name] = append(cs[:i], cs[i+1:]...)
			break
		}
	}
	if len(em.cursors[name]) == 0 {
		delete(em.cursors, name)
	}
}

func unhandled(name string, args []interface{}) error {
	if name != ErrorEvent {
		return nil
	}
	if len(args) > 0 {
		if err, ok := args[0].(error); ok {
			return err
		}
		return ErrUnhandledErrorEvent{args[0]}
	}
	return ErrUnhandledErrorEvent{nil}
}

// Listeners returns the ordered functions registered for the named
// event.
func (em *Emitter) Listeners(name string) []Listener {
	em.mtx.Lock()
	defer em.mtx.Unlock()

	list := em.events[name]
	fns := make([]Listener, len(list))
	for i, reg := range list {
		fns[i] = reg.fn
	}
	return fns
}

// ListenerCount returns the number of listeners of the named event.
func (em *Emitter) ListenerCount(name string) int {
	em.mtx.Lock()
	defer em.mtx.Unlock()
	return len(em.events[name])
}
