package export

import (
	"github.com/gotmc/magnadc/lib/sink"
	"github.com/xuri/excelize/v2"
	"go.uber.org/multierr"
)

const sheet = "Sheet1"

func writeXLSX(path string, samples []sink.Sample) (err error) {
	f := excelize.NewFile()
	defer func() {
		err = multierr.Append(err, f.Close())
	}()

	for col, h := range headers {
		cell, cerr := excelize.CoordinatesToCellName(col+1, 1)
		if cerr != nil {
			return cerr
		}
		if err := f.SetCellValue(sheet, cell, h); err != nil {
			return err
		}
	}
	for row, s := range samples {
		for col, v := range []float64{s.Elapsed.Hours(), s.Voltage, s.Current} {
			cell, cerr := excelize.CoordinatesToCellName(col+1, row+2)
			if cerr != nil {
				return cerr
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}
