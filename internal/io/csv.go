package io

import (
	"encoding/csv"
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"
	"sync"

	"github.com/gonum/matrix/mat64"
)

// WriteCSV saves a dense matrix as CSV. Rows are formatted in parallel,
// one stride of rows at a time, and written in order.
func WriteCSV(path string, m *mat64.Dense) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("io: create %s: %w", path, err)
	}
	defer f.Close()

	rows, _ := m.Dims()
	stride := runtime.NumCPU()
	parsed := make([]string, stride)

	for row := 0; row < rows; row += stride {
		jobMark := stride
		if row+stride >= rows {
			jobMark = rows - row
		}

		var wg sync.WaitGroup
		wg.Add(jobMark)
		for offset := 0; offset < jobMark; offset++ {
			go formatLine(m, parsed, offset, row, &wg)
		}
		wg.Wait()

		for i := 0; i < jobMark; i++ {
			if _, err := fmt.Fprintf(f, "%s\n", parsed[i]); err != nil {
				return fmt.Errorf("io: write %s: %w", path, err)
			}
		}
	}
	return nil
}

func formatLine(m *mat64.Dense, parsed []string, offset, row int, wg *sync.WaitGroup) {
	defer wg.Done()

	_, cols := m.Dims()
	fields := make([]string, cols)
	for i := 0; i < cols; i++ {
		fields[i] = strconv.FormatFloat(m.At(row+offset, i), 'g', -1, 64)
	}
	parsed[offset] = strings.Join(fields, ", ")
}

// ReadCSV parses a CSV file into an already-sized dense matrix.
func ReadCSV(path string, m *mat64.Dense) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("io: open %s: %w", path, err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return fmt.Errorf("io: parse %s: %w", path, err)
	}

	rows, cols := m.Dims()
	if len(records) != rows {
		return fmt.Errorf("io: %s has %d rows, want %d", path, len(records), rows)
	}
	for i, record := range records {
		if len(record) != cols {
			return fmt.Errorf("io: %s row %d has %d fields, want %d", path, i, len(record), cols)
		}
		for j, field := range record {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return fmt.Errorf("io: %s row %d field %d: %w", path, i, j, err)
			}
			m.Set(i, j, v)
		}
	}
	return nil
}
