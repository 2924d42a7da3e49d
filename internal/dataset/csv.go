// Package dataset reads and writes the CSV files that carry feature
// vectors and one-hot targets. Train and test sets are separate, pre-split
// files; no splitting happens here.
package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"

	"github.com/signlab/pjmsign/internal/features"
)

// LoadMatrix reads a CSV file of float rows. Every row must have the given
// width; width 0 accepts the first row's width and enforces it afterwards.
func LoadMatrix(path string, width int) ([][]float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	reader := csv.NewReader(f)
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("dataset: %s is empty", path)
	}

	if width == 0 {
		width = len(records[0])
	}

	out := make([][]float64, 0, len(records))
	for i, rec := range records {
		if len(rec) != width {
			return nil, fmt.Errorf("dataset: %s row %d: %w", path, i+1,
				&features.DimensionMismatchError{Want: width, Got: len(rec)})
		}
		row := make([]float64, width)
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("dataset: %s row %d col %d: %w", path, i+1, j+1, err)
			}
			row[j] = v
		}
		out = append(out, row)
	}
	return out, nil
}

// LoadSplit reads a feature file and its matching one-hot target file and
// validates that they pair up row for row.
func LoadSplit(featurePath, targetPath string, featureWidth, numClasses int) (x, y [][]float64, err error) {
	x, err = LoadMatrix(featurePath, featureWidth)
	if err != nil {
		return nil, nil, err
	}
	y, err = LoadMatrix(targetPath, numClasses)
	if err != nil {
		return nil, nil, err
	}
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("dataset: %s has %d rows but %s has %d",
			featurePath, len(x), targetPath, len(y))
	}
	return x, y, nil
}

// SaveMatrix writes float rows as CSV.
func SaveMatrix(path string, rows [][]float64) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	for _, row := range rows {
		rec := make([]string, len(row))
		for j, v := range row {
			rec[j] = strconv.FormatFloat(v, 'g', -1, 64)
		}
		if err := w.Write(rec); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flush %s: %w", path, err)
	}
	return nil
}
