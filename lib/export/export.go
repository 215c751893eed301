// Package export writes recorded samples to tabular files. One row per
// sample, in sample order; measurements the run skipped simply have no
// row.
package export

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gotmc/magnadc/lib/sink"
)

// headers shared by every writer, matching the columns the analysis
// spreadsheets expect.
var headers = []string{"Elapsed Time (h)", "Measured Voltage (V)", "Measured Current (A)"}

// WriteFile writes samples to path. The extension picks the format:
// .xlsx for an Excel workbook, .csv for a comma-separated file.
func WriteFile(path string, samples []sink.Sample) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return writeXLSX(path, samples)
	case ".csv":
		return writeCSV(path, samples)
	default:
		return fmt.Errorf("export %s: unsupported extension (want .csv or .xlsx)", path)
	}
}
