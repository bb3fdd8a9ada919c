// Package io persists pipeline arrays as numpy .npy files, raw float64
// binaries and CSV, so results round-trip with the Python plotting side.
package io

import (
	"fmt"

	"github.com/gonum/matrix/mat64"
	"github.com/kshedden/gonpy"
)

// WriteMat writes a dense matrix to a numpy .npy file.
func WriteMat(path string, m *mat64.Dense) error {
	rows, cols := m.Dims()
	raw := m.RawMatrix()

	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("io: create %s: %w", path, err)
	}
	w.Shape = []int{rows, cols}
	w.Version = 2
	if err := w.WriteFloat64(raw.Data); err != nil {
		return fmt.Errorf("io: write %s: %w", path, err)
	}
	return nil
}

// ReadMat reads a 2-D numpy .npy file into a dense matrix.
func ReadMat(path string) (*mat64.Dense, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("io: open %s: %w", path, err)
	}
	if len(r.Shape) != 2 {
		return nil, fmt.Errorf("io: %s is %d-dimensional, want 2", path, len(r.Shape))
	}

	rows, cols := r.Shape[0], r.Shape[1]
	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("io: read %s: %w", path, err)
	}

	if r.ColumnMajor {
		m := mat64.NewDense(rows, cols, nil)
		for j := 0; j < cols; j++ {
			for i := 0; i < rows; i++ {
				m.Set(i, j, data[j*rows+i])
			}
		}
		return m, nil
	}
	return mat64.NewDense(rows, cols, data), nil
}

// WriteVec writes a float64 slice to a 1-D numpy .npy file.
func WriteVec(path string, v []float64) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("io: create %s: %w", path, err)
	}
	w.Shape = []int{len(v)}
	w.Version = 2
	if err := w.WriteFloat64(v); err != nil {
		return fmt.Errorf("io: write %s: %w", path, err)
	}
	return nil
}

// ReadVec reads a 1-D numpy .npy file as a float64 slice.
func ReadVec(path string) ([]float64, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("io: open %s: %w", path, err)
	}
	if len(r.Shape) != 1 {
		return nil, fmt.Errorf("io: %s is %d-dimensional, want 1", path, len(r.Shape))
	}
	data, err := r.GetFloat64()
	if err != nil {
		return nil, fmt.Errorf("io: read %s: %w", path, err)
	}
	return data, nil
}

// WriteInts writes an int slice to a 1-D int64 .npy file.
func WriteInts(path string, v []int) error {
	w, err := gonpy.NewFileWriter(path)
	if err != nil {
		return fmt.Errorf("io: create %s: %w", path, err)
	}
	w.Shape = []int{len(v)}
	w.Version = 2

	buf := make([]int64, len(v))
	for i, x := range v {
		buf[i] = int64(x)
	}
	if err := w.WriteInt64(buf); err != nil {
		return fmt.Errorf("io: write %s: %w", path, err)
	}
	return nil
}

// ReadInts reads a 1-D int64 .npy file as an int slice.
func ReadInts(path string) ([]int, error) {
	r, err := gonpy.NewFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("io: open %s: %w", path, err)
	}
	if len(r.Shape) != 1 {
		return nil, fmt.Errorf("io: %s is %d-dimensional, want 1", path, len(r.Shape))
	}
	data, err := r.GetInt64()
	if err != nil {
		return nil, fmt.Errorf("io: read %s: %w", path, err)
	}

	out := make([]int, len(data))
	for i, x := range data {
		out[i] = int(x)
	}
	return out, nil
}
