// Command nii2mov flattens a motion-corrected 4-D NIfTI recording into
// the raw pixel × time movie file read by the pipeline. Voxels are
// flattened x-fastest; frames become columns.
package main

import (
	"flag"
	"log"

	"github.com/KyungWonPark/nifti"

	"github.com/Eric-H-Chang/calcium-imaging/internal/calc"
	"github.com/Eric-H-Chang/calcium-imaging/internal/io"
)

func main() {
	inPath := flag.String("in", "", "input .nii recording")
	outPath := flag.String("out", "movie.dat", "output raw movie file")
	nx := flag.Int("nx", 0, "x extent in voxels")
	ny := flag.Int("ny", 0, "y extent in voxels")
	nz := flag.Int("nz", 1, "z extent in voxels")
	nt := flag.Int("nt", 0, "number of frames")
	workers := flag.Int("workers", 0, "worker pool size, 0 for one per CPU")
	flag.Parse()

	if *inPath == "" || *nx <= 0 || *ny <= 0 || *nz <= 0 || *nt <= 0 {
		log.Fatal("Usage: nii2mov -in rec.nii -out movie.dat -nx X -ny Y -nz Z -nt T")
	}

	var img nifti.Nifti1Image
	img.LoadImage(*inPath, true)

	pixels := *nx * *ny * *nz
	data := make([]float64, pixels**nt)

	// One job per frame: all pixels of frame t land in column t.
	pl := calc.New(*workers)
	pl.Rows(*nt, func(t int) {
		p := 0
		for z := 0; z < *nz; z++ {
			for y := 0; y < *ny; y++ {
				for x := 0; x < *nx; x++ {
					data[p**nt+t] = float64(img.GetAt(uint32(x), uint32(y), uint32(z), uint32(t)))
					p++
				}
			}
		}
	})

	if err := io.WriteF64(*outPath, data); err != nil {
		log.Fatalf("Failed to write movie: %v", err)
	}
	log.Printf("Wrote %d pixels by %d frames to %s", pixels, *nt, *outPath)
}
