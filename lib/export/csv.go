package export

import (
	"encoding/csv"
	"os"
	"strconv"

	"github.com/gotmc/magnadc/lib/sink"
	"go.uber.org/multierr"
)

func writeCSV(path string, samples []sink.Sample) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	w := csv.NewWriter(f)
	if err := w.Write(headers); err != nil {
		return err
	}
	for _, s := range samples {
		rec := []string{
			formatNum(s.Elapsed.Hours()),
			formatNum(s.Voltage),
			formatNum(s.Current),
		}
		if err := w.Write(rec); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func formatNum(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
