// Package viewmodel implements the reactive query layer: one view model per
// entity family, each owning a single live subscription on its collection and
// publishing (state, data) to observers. Fetches begin in LOADING and settle
// in exactly one of SUCCESS, EMPTY or ERROR per snapshot delivery.
package viewmodel

import (
	"encoding/json"
	"sync"
)

type StateKind int

const (
	KindLoading StateKind = iota
	KindSuccess
	KindEmpty
	KindError
)

func (k StateKind) String() string {
	switch k {
	case KindLoading:
		return "LOADING"
	case KindSuccess:
		return "SUCCESS"
	case KindEmpty:
		return "EMPTY"
	case KindError:
		return "ERROR"
	}
	return "UNKNOWN"
}

func (k StateKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// State is the published fetch state. Message is set only for ERROR.
type State struct {
	Kind    StateKind `json:"state"`
	Message string    `json:"message,omitempty"`
}

func StateLoading() State          { return State{Kind: KindLoading} }
func StateSuccess() State          { return State{Kind: KindSuccess} }
func StateEmpty() State            { return State{Kind: KindEmpty} }
func StateError(msg string) State  { return State{Kind: KindError, Message: msg} }

// Live is an observable value. New observers receive the current value
// immediately; publications are serialized so observers see updates in the
// order they were set.
type Live[T any] struct {
	mu         sync.Mutex
	dispatchMu sync.Mutex
	value      T
	observers  map[int]func(T)
	nextID     int
}

func NewLive[T any](initial T) *Live[T] {
	return &Live[T]{value: initial, observers: map[int]func(T){}}
}

func (l *Live[T]) Get() T {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.value
}

// Set stores the value and notifies every observer.
func (l *Live[T]) Set(v T) {
	l.mu.Lock()
	l.value = v
	fns := make([]func(T), 0, len(l.observers))
	for _, fn := range l.observers {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	l.dispatchMu.Lock()
	defer l.dispatchMu.Unlock()
	for _, fn := range fns {
		fn(v)
	}
}

// Observe registers fn, delivers the current value to it, and returns a
// function removing the registration.
func (l *Live[T]) Observe(fn func(T)) func() {
	l.mu.Lock()
	id := l.nextID
	l.nextID++
	l.observers[id] = fn
	current := l.value
	l.mu.Unlock()

	l.dispatchMu.Lock()
	fn(current)
	l.dispatchMu.Unlock()

	return func() {
		l.mu.Lock()
		delete(l.observers, id)
		l.mu.Unlock()
	}
}
