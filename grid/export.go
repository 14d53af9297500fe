package grid

import (
	"io"

	"github.com/pkg/errors"
	"github.com/xuri/excelize/v2"
)

const exportSheet = "Sheet1"

// WriteXLSX writes the displayed rows, as rendered, to a spreadsheet.
func (h *Handle[R]) WriteXLSX(w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, title := range h.Titles() {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, title); err != nil {
			return err
		}
	}

	for r, line := range h.Cells() {
		for c, value := range line {
			cell, err := excelize.CoordinatesToCellName(c+1, r+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(exportSheet, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return errors.Wrapf(err, "export grid %s", h.cfg.Name)
	}
	return nil
}
