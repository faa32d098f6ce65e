package mot

import (
	"iter"
	"slices"
)

// Objects is identity -> tracked object storage which iterates in insertion (registration) order
type Objects struct {
	ids     []int
	objects map[int]*TrackedObject
}

func newObjects() *Objects {
	return &Objects{
		ids:     make([]int, 0),
		objects: make(map[int]*TrackedObject),
	}
}

// Len returns number of live objects
func (storage *Objects) Len() int {
	return len(storage.ids)
}

// Get returns object by its identity
func (storage *Objects) Get(id int) (*TrackedObject, bool) {
	object, ok := storage.objects[id]
	return object, ok
}

// IDs returns copy of live identities in registration order
func (storage *Objects) IDs() []int {
	return slices.Clone(storage.ids)
}

// All iterates over live objects in registration order
func (storage *Objects) All() iter.Seq2[int, *TrackedObject] {
	return func(yield func(int, *TrackedObject) bool) {
		for _, id := range storage.ids {
			if !yield(id, storage.objects[id]) {
				return
			}
		}
	}
}

func (storage *Objects) insert(id int, object *TrackedObject) {
	if _, ok := storage.objects[id]; !ok {
		storage.ids = append(storage.ids, id)
	}
	storage.objects[id] = object
}

func (storage *Objects) remove(id int) bool {
	if _, ok := storage.objects[id]; !ok {
		return false
	}
	delete(storage.objects, id)
	idx := slices.Index(storage.ids, id)
	storage.ids = slices.Delete(storage.ids, idx, idx+1)
	return true
}
