package sheet

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	keyColumnWidth  = 40
	textColumnWidth = 60
)

// readXLSX returns the rows of the active worksheet.
func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()

	name := f.GetSheetName(f.GetActiveSheetIndex())
	if name == "" {
		list := f.GetSheetList()
		if len(list) == 0 {
			return nil, nil
		}
		name = list[0]
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q of %s: %w", name, path, err)
	}
	return rows, nil
}

// writeXLSX writes t to the first worksheet of a new workbook. The header
// row is bold and frozen.
func writeXLSX(path string, t *Table) error {
	f := excelize.NewFile()
	defer f.Close()

	name := f.GetSheetName(0)

	if err := f.SetSheetRow(name, "A1", &t.Header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	for i, row := range t.Rows {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		r := row
		if err := f.SetSheetRow(name, addr, &r); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}
	if err := f.SetRowStyle(name, 1, 1, bold); err != nil {
		return err
	}
	if err := f.SetPanes(name, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return err
	}

	if err := f.SetColWidth(name, "A", "A", keyColumnWidth); err != nil {
		return err
	}
	if len(t.Header) > 1 {
		last, err := excelize.ColumnNumberToName(len(t.Header))
		if err != nil {
			return err
		}
		if err := f.SetColWidth(name, "B", last, textColumnWidth); err != nil {
			return err
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving %s: %w", path, err)
	}
	return nil
}
