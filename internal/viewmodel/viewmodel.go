package viewmodel

import (
	"encoding/json"
	"sort"
	"sync"

	"farm-coop-api-server/internal/store"

	"github.com/prometheus/client_golang/prometheus"
)

// droppedRecords counts children that failed to decode and were silently
// dropped from a published list. The lenient-parsing policy stands, but the
// loss is observable.
var droppedRecords = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "viewmodel_dropped_records_total",
		Help: "Collection children dropped because they failed to decode.",
	},
	[]string{"collection"},
)

func init() {
	prometheus.MustRegister(droppedRecords)
}

// Record pairs a decoded entity with its store key relative to the watched
// path (for nested collections the key is "<child>/<grandchild>").
type Record[T any] struct {
	Key   string
	Value T
}

// listVM is the shared core of every entity view model: one live subscription
// in a single slot, a (state, data) pair, and the decode/filter/publish cycle
// run on every snapshot.
type listVM[T any] struct {
	Store store.Store
	State *Live[State]
	Data  *Live[[]T]

	collection string           // label for the dropped-record counter
	valid      func(T) bool     // discriminates real records from containers
	fields     func(T) []string // searchable string fields for the keyword filter

	mu  sync.Mutex
	sub store.Subscription
}

func newListVM[T any](s store.Store, collection string, valid func(T) bool, fields func(T) []string) *listVM[T] {
	return &listVM[T]{
		Store:      s,
		State:      NewLive(StateLoading()),
		Data:       NewLive([]T{}),
		collection: collection,
		valid:      valid,
		fields:     fields,
	}
}

// fetch moves the view model to LOADING, replaces any previous subscription
// with one on path, and republishes on every snapshot. nested walks two
// levels of children instead of one. keep is the AND-combined typed
// constraint; nil keeps everything.
func (vm *listVM[T]) fetch(path string, nested bool, keywords []string, keep func(T) bool) {
	vm.State.Set(StateLoading())

	vm.mu.Lock()
	if vm.sub != nil {
		vm.sub.Unsubscribe()
		vm.sub = nil
	}
	vm.sub = vm.Store.Subscribe(path,
		func(snap store.Snapshot) {
			records := decodeRecords(snap, nested, vm.collection, vm.valid)
			list := make([]T, 0, len(records))
			for _, r := range records {
				if !matchAny(vm.fields(r.Value), keywords) {
					continue
				}
				if keep != nil && !keep(r.Value) {
					continue
				}
				list = append(list, r.Value)
			}
			vm.Data.Set(list)
			if len(list) == 0 {
				vm.State.Set(StateEmpty())
			} else {
				vm.State.Set(StateSuccess())
			}
		},
		func(err error) {
			// Last good data stays published; only the state flips.
			vm.State.Set(StateError(err.Error()))
		},
	)
	vm.mu.Unlock()
}

// Close tears down the active subscription. The view model can be reused by
// calling a fetch again.
func (vm *listVM[T]) Close() {
	vm.mu.Lock()
	if vm.sub != nil {
		vm.sub.Unsubscribe()
		vm.sub = nil
	}
	vm.mu.Unlock()
}

// decodeRecords decodes the snapshot's children (or grandchildren when
// nested) into entities, dropping children that fail to decode. Results are
// ordered by store key, which for push keys is creation order.
func decodeRecords[T any](snap store.Snapshot, nested bool, collection string, valid func(T) bool) []Record[T] {
	out := []Record[T]{}
	for key, raw := range snap.Children() {
		if !nested {
			if v, ok := decodeOne[T](raw, collection, valid); ok {
				out = append(out, Record[T]{Key: key, Value: v})
			}
			continue
		}
		var grandchildren map[string]json.RawMessage
		if err := json.Unmarshal(raw, &grandchildren); err != nil {
			droppedRecords.WithLabelValues(collection).Inc()
			continue
		}
		for sub, subRaw := range grandchildren {
			if v, ok := decodeOne[T](subRaw, collection, valid); ok {
				out = append(out, Record[T]{Key: key + "/" + sub, Value: v})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

func decodeOne[T any](raw json.RawMessage, collection string, valid func(T) bool) (T, bool) {
	var v T
	if err := json.Unmarshal(raw, &v); err != nil || (valid != nil && !valid(v)) {
		droppedRecords.WithLabelValues(collection).Inc()
		var zero T
		return zero, false
	}
	return v, true
}
