// Package store wraps a hierarchical keyed document store behind a uniform
// access surface: push-key generation, whole-subtree reads and writes, live
// snapshot subscriptions and optimistic transactions. Paths are slash-joined
// segments, e.g. "orders/<uid>/<key>".
package store

import (
	"context"
	"encoding/json"
	"errors"
)

// ErrNotFound reports that a path (or a record resolved by a business key)
// does not exist. Callers distinguish it from transport errors: a missing
// record is a normal outcome, not a failure.
var ErrNotFound = errors.New("store: not found")

// ErrAborted is returned from a RunAtomic update function to abandon the
// transaction, and surfaced to the caller when the transaction did not commit.
var ErrAborted = errors.New("store: transaction aborted")

// Snapshot is the full current value of a path at one point in time.
// A subtree is represented as a JSON object whose keys are the child names.
type Snapshot struct {
	Path  string
	Value json.RawMessage // nil when the path does not exist
}

func (s Snapshot) Exists() bool {
	return len(s.Value) > 0 && string(s.Value) != "null"
}

// Decode unmarshals the snapshot value into v.
func (s Snapshot) Decode(v interface{}) error {
	if !s.Exists() {
		return ErrNotFound
	}
	return json.Unmarshal(s.Value, v)
}

// Children splits an object-valued snapshot into its immediate children,
// keyed by child name. A missing path yields an empty map.
func (s Snapshot) Children() map[string]json.RawMessage {
	children := map[string]json.RawMessage{}
	if !s.Exists() {
		return children
	}
	// Non-object values (a leaf record) simply have no children.
	_ = json.Unmarshal(s.Value, &children)
	return children
}

// Subscription is a live listener registration. It keeps delivering snapshots
// until Unsubscribe is called or a terminal error is reported; failing to
// unsubscribe leaks the listener for the lifetime of the store.
type Subscription interface {
	Unsubscribe()
}

// UpdateFunc is the body of an optimistic transaction. It receives the current
// value at the path (nil raw message when the path does not exist) and returns
// the replacement value. Returning ErrAborted abandons the transaction; any
// other error also aborts and is passed through to the caller.
type UpdateFunc func(current json.RawMessage) (interface{}, error)

// Store is the remote store adapter. All operations except GenerateKey can
// fail with a transport error; Subscribe reports failures through onError
// at most once, after which the subscription is dead and must be
// re-established by the caller.
type Store interface {
	// GenerateKey returns a new unique child key under parent. Keys sort
	// roughly by creation time. It never fails.
	GenerateKey(parent string) string

	// Write replaces the entire subtree at path with value.
	Write(ctx context.Context, path string, value interface{}) error

	// Delete removes the subtree at path. Deleting a missing path is a no-op.
	Delete(ctx context.Context, path string) error

	// Read fetches the full current value of path once. A missing path is
	// returned as a non-existing snapshot, not an error.
	Read(ctx context.Context, path string) (Snapshot, error)

	// Subscribe registers a continuous listener on path. The listener fires
	// with the full current value immediately and again after every committed
	// change, in commit order. onError fires at most once, terminally.
	Subscribe(path string, onSnapshot func(Snapshot), onError func(error)) Subscription

	// RunAtomic applies update to the value at path as an optimistic,
	// retryable transaction. The store retries internally when the value
	// changed between read and write.
	RunAtomic(ctx context.Context, path string, update UpdateFunc) error

	// QueryEqual is a one-shot indexed lookup: it returns the children of
	// parent whose decoded value carries field == value. Matching is on the
	// JSON representation of the field.
	QueryEqual(ctx context.Context, parent, field string, value interface{}) (map[string]json.RawMessage, error)
}
