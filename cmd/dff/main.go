// Command dff runs the trace-normalization stage of the recording
// pipeline: it loads the registered movie and the extracted components,
// computes ΔF/F traces, splits components by trace SNR, applies manual
// curation lists and writes the result directory consumed by the
// plotting scripts.
//
// Inputs under $DATA (or -data): movie.dat (raw pixel × time float64),
// A.npy (pixels × components footprints), C.npy (components × frames
// traces), bl.npy (per-component baselines). Results go to $RESULT
// (or -result).
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Eric-H-Chang/calcium-imaging/internal/calc"
	"github.com/Eric-H-Chang/calcium-imaging/internal/dff"
	"github.com/Eric-H-Chang/calcium-imaging/internal/io"
	"github.com/Eric-H-Chang/calcium-imaging/internal/movie"
	"github.com/Eric-H-Chang/calcium-imaging/internal/quality"
	"github.com/Eric-H-Chang/calcium-imaging/internal/sparse"
)

func main() {
	dataDir := flag.String("data", os.Getenv("DATA"), "input directory")
	resultDir := flag.String("result", os.Getenv("RESULT"), "output directory")
	quantile := flag.Float64("quantile", 8, "baseline percentile in [0, 100]")
	window := flag.Int("window", 0, "sliding percentile window in frames, 0 for global")
	blockSize := flag.Int("blocksize", 400, "pixel rows per movie slab")
	workers := flag.Int("workers", 0, "worker pool size, 0 for one per CPU")
	minSNR := flag.Float64("minsnr", 2.5, "accept threshold on trace SNR")
	exclude := flag.String("exclude", "", "comma-separated components to reject manually")
	include := flag.String("include", "", "comma-separated components to accept manually")
	flag.Parse()

	if *dataDir == "" || *resultDir == "" {
		log.Fatal("Set DATA and RESULT (or -data/-result).")
	}

	aDense, err := io.ReadMat(filepath.Join(*dataDir, "A.npy"))
	if err != nil {
		log.Fatalf("Failed to load footprints: %v", err)
	}
	A := sparse.FromDense(aDense)

	C, err := io.ReadMat(filepath.Join(*dataDir, "C.npy"))
	if err != nil {
		log.Fatalf("Failed to load traces: %v", err)
	}
	bl, err := io.ReadVec(filepath.Join(*dataDir, "bl.npy"))
	if err != nil {
		log.Fatalf("Failed to load baselines: %v", err)
	}

	pixels, _ := A.Dims()
	_, frames := C.Dims()

	Yr, err := movie.OpenFile(filepath.Join(*dataDir, "movie.dat"), pixels, frames)
	if err != nil {
		log.Fatalf("Failed to open movie: %v", err)
	}
	defer Yr.Close()

	opts := dff.Options{
		QuantileMin:  *quantile,
		FramesWindow: *window,
		BlockSize:    *blockSize,
		Pipe:         calc.New(*workers),
	}

	Cdf, err := dff.Extract(Yr, A, C, bl, opts)
	if err != nil {
		log.Fatalf("ΔF/F extraction failed: %v", err)
	}

	accepted, rejected := quality.Evaluate(Cdf, *minSNR)
	accepted, rejected = quality.Curate(accepted, rejected, parseList(*exclude), parseList(*include))
	log.Printf("Components: %d accepted, %d rejected", len(accepted), len(rejected))

	res := &io.Results{Cdf: Cdf, C: C, A: A, Bl: bl, Accepted: accepted, Rejected: rejected}
	if err := io.SaveResults(*resultDir, res); err != nil {
		log.Fatalf("Failed to save results: %v", err)
	}
	log.Printf("Results written to %s", *resultDir)
}

func parseList(s string) []int {
	if s == "" {
		return nil
	}
	var out []int
	for _, field := range strings.Split(s, ",") {
		v, err := strconv.Atoi(strings.TrimSpace(field))
		if err != nil {
			log.Fatalf("Bad component index %q: %v", field, err)
		}
		out = append(out, v)
	}
	return out
}
