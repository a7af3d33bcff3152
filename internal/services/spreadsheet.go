package services

import (
	"fmt"
	"io"

	"invoicing_backend/internal/models"

	"github.com/xuri/excelize/v2"
)

// ItemColumns is the header row used for item import and export.
var ItemColumns = []string{"sn", "product", "category", "brand", "cp", "wholesale", "sp", "uom", "opening_quantity"}

// ReadSpreadsheet decodes the first sheet of an xlsx document. The first row
// is the header; names are trimmed and lower-cased. Each following row becomes
// a column -> cell map, with short rows padded by empty cells.
func ReadSpreadsheet(r io.Reader) ([]string, []map[string]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return nil, nil, fmt.Errorf("workbook has no sheets")
	}
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read sheet %s: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil, fmt.Errorf("sheet %s is empty", sheet)
	}

	headers := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		headers[i] = normalizeColumn(h)
	}

	records := make([]map[string]string, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]string, len(headers))
		for i, h := range headers {
			if h == "" {
				continue
			}
			if i < len(row) {
				record[h] = row[i]
			} else {
				record[h] = ""
			}
		}
		records = append(records, record)
	}
	return headers, records, nil
}

// WriteItemsSpreadsheet writes items in the import layout plus current_quantity,
// so an export can be edited and imported again.
func WriteItemsSpreadsheet(w io.Writer, items []models.Item) error {
	f := excelize.NewFile()
	defer f.Close()
	sheetName := "Sheet1"

	header := make([]interface{}, 0, len(ItemColumns)+1)
	for _, c := range ItemColumns {
		header = append(header, c)
	}
	header = append(header, "current_quantity")
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header row: %w", err)
	}

	for i, item := range items {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{
			item.SN, item.Product, item.Category, item.Brand,
			item.CP.InexactFloat64(), item.Wholesale.InexactFloat64(), item.SP.InexactFloat64(),
			item.UOM, item.OpeningQuantity.InexactFloat64(), item.CurrentQuantity.InexactFloat64(),
		}
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
