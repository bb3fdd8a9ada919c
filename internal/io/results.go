package io

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gonum/matrix/mat64"

	"github.com/Eric-H-Chang/calcium-imaging/internal/sparse"
)

// Results is everything the plotting side needs from one recording: the
// normalized and raw traces, the spatial footprints, the baselines and
// the curated accept/reject index sets.
type Results struct {
	Cdf      *mat64.Dense
	C        *mat64.Dense
	A        *sparse.CSC
	Bl       []float64
	Accepted []int
	Rejected []int
}

// SaveResults writes one .npy file per array into dir, creating it if
// needed. The sparse footprints are stored in compressed-column pieces
// (data, indices, indptr, shape), the layout scipy reassembles directly.
func SaveResults(dir string, res *Results) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("io: create %s: %w", dir, err)
	}

	if err := WriteMat(filepath.Join(dir, "C_df.npy"), res.Cdf); err != nil {
		return err
	}
	if err := WriteMat(filepath.Join(dir, "C.npy"), res.C); err != nil {
		return err
	}
	if err := WriteVec(filepath.Join(dir, "bl.npy"), res.Bl); err != nil {
		return err
	}

	rows, cols := res.A.Dims()
	indptr, indices, data := res.A.Raw()
	if err := WriteVec(filepath.Join(dir, "A_data.npy"), data); err != nil {
		return err
	}
	if err := WriteInts(filepath.Join(dir, "A_indices.npy"), indices); err != nil {
		return err
	}
	if err := WriteInts(filepath.Join(dir, "A_indptr.npy"), indptr); err != nil {
		return err
	}
	if err := WriteInts(filepath.Join(dir, "A_shape.npy"), []int{rows, cols}); err != nil {
		return err
	}

	if err := WriteInts(filepath.Join(dir, "idx_accepted.npy"), res.Accepted); err != nil {
		return err
	}
	return WriteInts(filepath.Join(dir, "idx_rejected.npy"), res.Rejected)
}

// LoadResults reads back a directory written by SaveResults.
func LoadResults(dir string) (*Results, error) {
	cdf, err := ReadMat(filepath.Join(dir, "C_df.npy"))
	if err != nil {
		return nil, err
	}
	c, err := ReadMat(filepath.Join(dir, "C.npy"))
	if err != nil {
		return nil, err
	}
	bl, err := ReadVec(filepath.Join(dir, "bl.npy"))
	if err != nil {
		return nil, err
	}

	data, err := ReadVec(filepath.Join(dir, "A_data.npy"))
	if err != nil {
		return nil, err
	}
	indices, err := ReadInts(filepath.Join(dir, "A_indices.npy"))
	if err != nil {
		return nil, err
	}
	indptr, err := ReadInts(filepath.Join(dir, "A_indptr.npy"))
	if err != nil {
		return nil, err
	}
	shape, err := ReadInts(filepath.Join(dir, "A_shape.npy"))
	if err != nil {
		return nil, err
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("io: A_shape has %d entries, want 2", len(shape))
	}
	a, err := sparse.New(shape[0], shape[1], indptr, indices, data)
	if err != nil {
		return nil, fmt.Errorf("io: footprints in %s: %w", dir, err)
	}

	accepted, err := ReadInts(filepath.Join(dir, "idx_accepted.npy"))
	if err != nil {
		return nil, err
	}
	rejected, err := ReadInts(filepath.Join(dir, "idx_rejected.npy"))
	if err != nil {
		return nil, err
	}

	return &Results{Cdf: cdf, C: c, A: a, Bl: bl, Accepted: accepted, Rejected: rejected}, nil
}
