package mot

import (
	"testing"
)

func TestObjectsOrder(t *testing.T) {
	storage := newObjects()
	for _, id := range []int{0, 1, 2, 3, 4} {
		storage.insert(id, NewTrackedObject(Centroid{X: id, Y: id}, nil))
	}
	if !storage.remove(2) {
		t.Fatal("Object 2 should be removed")
	}
	if storage.remove(2) {
		t.Error("Object 2 should not be removed twice")
	}
	expected := []int{0, 1, 3, 4}
	ids := storage.IDs()
	if len(ids) != len(expected) {
		t.Fatalf("IDs %v, expected %v", ids, expected)
	}
	for i := range ids {
		if ids[i] != expected[i] {
			t.Fatalf("IDs %v, expected %v", ids, expected)
		}
	}
	visited := make([]int, 0)
	for id, object := range storage.All() {
		if object.Centroid().X != id {
			t.Errorf("Object %d has wrong centroid %v", id, object.Centroid())
		}
		visited = append(visited, id)
		if id == 3 {
			break
		}
	}
	if len(visited) != 3 {
		t.Errorf("Iteration should stop after break, visited %v", visited)
	}
	if _, ok := storage.Get(2); ok {
		t.Error("Removed object should not be found")
	}
	if storage.Len() != 4 {
		t.Errorf("Len %d, expected 4", storage.Len())
	}
}
