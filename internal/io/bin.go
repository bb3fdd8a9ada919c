package io

import (
	"encoding/binary"
	"fmt"
	"os"
)

// WriteF64 writes a float64 slice to a raw little-endian binary file,
// the layout movie.OpenFile reads back in slabs.
func WriteF64(path string, slice []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("io: create %s: %w", path, err)
	}
	defer file.Close()

	if err := binary.Write(file, binary.LittleEndian, slice); err != nil {
		return fmt.Errorf("io: write %s: %w", path, err)
	}
	return nil
}

// ReadF64 reads a raw little-endian float64 binary file whole.
func ReadF64(path string, n int) ([]float64, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("io: open %s: %w", path, err)
	}
	defer file.Close()

	out := make([]float64, n)
	if err := binary.Read(file, binary.LittleEndian, out); err != nil {
		return nil, fmt.Errorf("io: read %s: %w", path, err)
	}
	return out, nil
}
