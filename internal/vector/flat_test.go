package vector

import "testing"

func TestFlat_SearchOrdersByDistance(t *testing.T) {
	f := NewFlat()
	err := f.Add([][]float32{
		{1, 0, 0},
		{0, 1, 0},
		{0.9, 0.1, 0},
	})
	if err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	neighbors, err := f.Search([]float32{1, 0, 0}, 3)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}

	if len(neighbors) != 3 {
		t.Fatalf("expected 3 neighbors, got %d", len(neighbors))
	}
	if neighbors[0].Position != 0 {
		t.Errorf("expected position 0 first, got %d", neighbors[0].Position)
	}
	if neighbors[1].Position != 2 {
		t.Errorf("expected position 2 second, got %d", neighbors[1].Position)
	}
	for i := 1; i < len(neighbors); i++ {
		if neighbors[i].Distance < neighbors[i-1].Distance {
			t.Errorf("distances not ascending at %d", i)
		}
	}
}

func TestFlat_EmptyIndex(t *testing.T) {
	f := NewFlat()
	neighbors, err := f.Search([]float32{1, 2, 3}, 5)
	if err != nil {
		t.Fatalf("Search on empty index errored: %v", err)
	}
	if len(neighbors) != 0 {
		t.Errorf("expected no neighbors, got %d", len(neighbors))
	}
}

func TestFlat_FewerThanK(t *testing.T) {
	f := NewFlat()
	f.Add([][]float32{{1, 0}, {0, 1}})

	neighbors, err := f.Search([]float32{1, 0}, 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(neighbors) != 2 {
		t.Errorf("expected 2 neighbors, got %d", len(neighbors))
	}
}

func TestFlat_DimensionMismatch(t *testing.T) {
	f := NewFlat()
	if err := f.Add([][]float32{{1, 0, 0}}); err != nil {
		t.Fatalf("Add failed: %v", err)
	}

	if err := f.Add([][]float32{{1, 0}}); err == nil {
		t.Error("expected error adding mismatched vector")
	}
	if _, err := f.Search([]float32{1, 0}, 1); err == nil {
		t.Error("expected error searching with mismatched query")
	}
}
