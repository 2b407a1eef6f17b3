package vector

import (
	"fmt"
	"sort"

	"caregate/internal/mathutil"
)

// Neighbor is a nearest-neighbor match by index position.
type Neighbor struct {
	Position int
	Distance float32
}

// Flat is an exact nearest-neighbor index over squared L2 distance.
// Vectors are stored densely; position is the insertion order and is
// the key into the caller's parallel metadata.
type Flat struct {
	dims    int
	vectors [][]float32
}

// NewFlat creates an empty flat index. Dimensionality is fixed by the
// first vector added.
func NewFlat() *Flat {
	return &Flat{}
}

// Add appends vectors to the index.
func (f *Flat) Add(vectors [][]float32) error {
	for _, v := range vectors {
		if f.dims == 0 {
			f.dims = len(v)
		}
		if len(v) != f.dims {
			return fmt.Errorf("flat: dimension mismatch: got %d, want %d", len(v), f.dims)
		}
		f.vectors = append(f.vectors, v)
	}
	return nil
}

// Search scans all vectors and returns up to k neighbors ordered by
// ascending distance. An empty index yields an empty result, never an
// error.
func (f *Flat) Search(query []float32, k int) ([]Neighbor, error) {
	if len(f.vectors) == 0 || k <= 0 {
		return nil, nil
	}
	if len(query) != f.dims {
		return nil, fmt.Errorf("flat: query dimension mismatch: got %d, want %d", len(query), f.dims)
	}

	neighbors := make([]Neighbor, len(f.vectors))
	for i, v := range f.vectors {
		neighbors[i] = Neighbor{Position: i, Distance: mathutil.SquaredL2(query, v)}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		if neighbors[i].Distance != neighbors[j].Distance {
			return neighbors[i].Distance < neighbors[j].Distance
		}
		return neighbors[i].Position < neighbors[j].Position
	})

	if len(neighbors) > k {
		neighbors = neighbors[:k]
	}
	return neighbors, nil
}

// Len returns the number of stored vectors.
func (f *Flat) Len() int {
	return len(f.vectors)
}

// Dims returns the fixed dimensionality, 0 if empty.
func (f *Flat) Dims() int {
	return f.dims
}
