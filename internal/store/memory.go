package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

const maxTxnRetries = 25

// MemoryStore is an in-process Store backed by a flat map of leaf values
// guarded by a versioned compare-and-set. Snapshot delivery to each
// subscription happens on its own goroutine but in commit order, because
// events are enqueued while the store mutex is held.
type MemoryStore struct {
	mu     sync.Mutex
	values map[string]json.RawMessage // leaf values by full path
	revs   map[string]uint64          // per-path revision, for RunAtomic
	subs   map[*memorySubscription]struct{}
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		values: make(map[string]json.RawMessage),
		revs:   make(map[string]uint64),
		subs:   make(map[*memorySubscription]struct{}),
	}
}

func (s *MemoryStore) GenerateKey(parent string) string {
	return PushKey()
}

func (s *MemoryStore) Write(ctx context.Context, path string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode value for %s: %w", path, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(path, raw)
	return nil
}

func (s *MemoryStore) Delete(ctx context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyLocked(path, nil)
	return nil
}

func (s *MemoryStore) Read(ctx context.Context, path string) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Snapshot{Path: path, Value: s.assembleLocked(path)}, nil
}

func (s *MemoryStore) Subscribe(path string, onSnapshot func(Snapshot), onError func(error)) Subscription {
	sub := &memorySubscription{
		store:      s,
		path:       path,
		onSnapshot: onSnapshot,
		onError:    onError,
	}
	sub.cond = sync.NewCond(&sub.mu)
	go sub.loop()

	s.mu.Lock()
	s.subs[sub] = struct{}{}
	// Listeners fire immediately with the current value of the path.
	sub.enqueue(event{snap: Snapshot{Path: path, Value: s.assembleLocked(path)}})
	s.mu.Unlock()
	return sub
}

func (s *MemoryStore) RunAtomic(ctx context.Context, path string, update UpdateFunc) error {
	for attempt := 0; attempt < maxTxnRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		s.mu.Lock()
		if _, ok := s.revs[path]; !ok {
			s.revs[path] = 0
		}
		current := s.assembleLocked(path)
		rev := s.revs[path]
		s.mu.Unlock()

		next, err := update(current)
		if err != nil {
			return err
		}
		raw, err := json.Marshal(next)
		if err != nil {
			return fmt.Errorf("encode value for %s: %w", path, err)
		}

		s.mu.Lock()
		if s.revs[path] != rev {
			s.mu.Unlock()
			continue // value changed underneath us, retry
		}
		s.applyLocked(path, raw)
		s.mu.Unlock()
		return nil
	}
	return fmt.Errorf("store: too much contention on %s", path)
}

func (s *MemoryStore) QueryEqual(ctx context.Context, parent, field string, value interface{}) (map[string]json.RawMessage, error) {
	want, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	snap := Snapshot{Path: parent, Value: s.assembleLocked(parent)}
	s.mu.Unlock()

	matches := map[string]json.RawMessage{}
	for key, child := range snap.Children() {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(child, &fields); err != nil {
			continue
		}
		if got, ok := fields[field]; ok && bytes.Equal(compactJSON(got), compactJSON(want)) {
			matches[key] = child
		}
	}
	return matches, nil
}

// Fail injects a terminal transport error into every subscription watching a
// path related to the given one. The affected subscriptions are dead
// afterwards. Used by tests and by backends to surface connection loss.
func (s *MemoryStore) Fail(path, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sub := range s.subs {
		if pathsRelated(sub.path, path) {
			sub.enqueue(event{err: fmt.Errorf("%s", message)})
			delete(s.subs, sub)
		}
	}
}

// applyLocked replaces the subtree at path (nil raw deletes it), bumps the
// revisions of every related path and fans the new snapshots out to the
// affected subscriptions. Caller holds s.mu.
func (s *MemoryStore) applyLocked(path string, raw json.RawMessage) {
	delete(s.values, path)
	prefix := path + "/"
	for p := range s.values {
		if strings.HasPrefix(p, prefix) {
			delete(s.values, p)
		}
	}
	if raw != nil {
		flatten(path, raw, s.values)
	}

	if _, ok := s.revs[path]; !ok {
		s.revs[path] = 0
	}
	for p := range s.revs {
		if pathsRelated(p, path) {
			s.revs[p]++
		}
	}

	for sub := range s.subs {
		if pathsRelated(sub.path, path) {
			sub.enqueue(event{snap: Snapshot{Path: sub.path, Value: s.assembleLocked(sub.path)}})
		}
	}
}

// assembleLocked reconstructs the full value at path from the stored leaves.
// Returns nil when the path does not exist. Caller holds s.mu.
func (s *MemoryStore) assembleLocked(path string) json.RawMessage {
	return assembleTree(path, s.values)
}

// assembleTree rebuilds the JSON value at path from a flat map of leaf
// values. An exact leaf wins; otherwise descendants nest into an object.
func assembleTree(path string, leaves map[string]json.RawMessage) json.RawMessage {
	if v, ok := leaves[path]; ok {
		return v
	}
	prefix := path + "/"
	tree := map[string]interface{}{}
	for p, v := range leaves {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		segments := strings.Split(strings.TrimPrefix(p, prefix), "/")
		cur := tree
		for i, seg := range segments {
			if i == len(segments)-1 {
				cur[seg] = v
				break
			}
			next, ok := cur[seg].(map[string]interface{})
			if !ok {
				next = map[string]interface{}{}
				cur[seg] = next
			}
			cur = next
		}
	}
	if len(tree) == 0 {
		return nil
	}
	raw, _ := json.Marshal(tree)
	return raw
}

// flatten decomposes object values into one leaf per field so that reads of
// any interior path reassemble correctly. Arrays and scalars stay leaves.
func flatten(path string, raw json.RawMessage, out map[string]json.RawMessage) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		out[path] = raw
		return
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil || len(fields) == 0 {
		out[path] = raw
		return
	}
	for k, v := range fields {
		flatten(path+"/"+k, v, out)
	}
}

func pathsRelated(a, b string) bool {
	return a == b || strings.HasPrefix(b, a+"/") || strings.HasPrefix(a, b+"/")
}

func compactJSON(raw json.RawMessage) []byte {
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}

type event struct {
	snap Snapshot
	err  error
}

type memorySubscription struct {
	store      *MemoryStore
	path       string
	onSnapshot func(Snapshot)
	onError    func(error)

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []event
	closed bool

	// deliverMu is held around every callback invocation. Unsubscribe
	// acquires it after marking the subscription closed, so once it returns
	// no callback is running and none will run again.
	deliverMu sync.Mutex
}

func (sub *memorySubscription) enqueue(ev event) {
	sub.mu.Lock()
	if !sub.closed {
		sub.queue = append(sub.queue, ev)
		sub.cond.Signal()
	}
	sub.mu.Unlock()
}

func (sub *memorySubscription) loop() {
	for {
		sub.mu.Lock()
		for len(sub.queue) == 0 && !sub.closed {
			sub.cond.Wait()
		}
		if sub.closed {
			sub.mu.Unlock()
			return
		}
		ev := sub.queue[0]
		sub.queue = sub.queue[1:]
		sub.mu.Unlock()

		// An event dequeued just before Unsubscribe must not reach the
		// callback: re-check closed under the delivery lock.
		sub.deliverMu.Lock()
		sub.mu.Lock()
		closed := sub.closed
		sub.mu.Unlock()
		if closed {
			sub.deliverMu.Unlock()
			return
		}

		if ev.err != nil {
			// Terminal: one error, then the subscription is dead.
			sub.detach()
			if sub.onError != nil {
				sub.onError(ev.err)
			}
			sub.deliverMu.Unlock()
			return
		}
		sub.onSnapshot(ev.snap)
		sub.deliverMu.Unlock()
	}
}

func (sub *memorySubscription) detach() {
	sub.store.mu.Lock()
	delete(sub.store.subs, sub)
	sub.store.mu.Unlock()

	sub.mu.Lock()
	sub.closed = true
	sub.queue = nil
	sub.cond.Signal()
	sub.mu.Unlock()
}

// Unsubscribe stops delivery. It waits for an in-flight callback, so after
// it returns neither onSnapshot nor onError fires again.
func (sub *memorySubscription) Unsubscribe() {
	sub.detach()
	sub.deliverMu.Lock()
	sub.deliverMu.Unlock()
}
