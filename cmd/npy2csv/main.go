// Command npy2csv dumps a 2-D .npy array (traces, footprints, ΔF/F
// output) as CSV for spreadsheet inspection.
package main

import (
	"log"
	"os"

	"github.com/Eric-H-Chang/calcium-imaging/internal/io"
)

func main() {
	if len(os.Args) != 2 {
		log.Fatal("Usage: npy2csv file.npy")
	}
	fileName := os.Args[1]

	m, err := io.ReadMat(fileName)
	if err != nil {
		log.Fatalf("Failed to read %s: %v", fileName, err)
	}

	if err := io.WriteCSV(fileName+".csv", m); err != nil {
		log.Fatalf("Failed to write CSV: %v", err)
	}
}
