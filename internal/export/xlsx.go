// Package export writes the lead journal to an XLSX workbook.
package export

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/leadsync/internal/model"
)

// leadHeader is the header row of the exported workbook.
var leadHeader = []string{
	"Date", "Name", "Phone", "Email", "Product", "Status", "Message ID", "Run",
}

// WriteXLSX writes the leads to an XLSX file at path, one sheet, newest
// ordering preserved from the input.
func WriteXLSX(path, sheetName string, leads []model.Lead) error {
	if sheetName == "" {
		sheetName = "Leads"
	}

	f := xlsx.NewFile()
	sheet, err := f.AddSheet(sheetName)
	if err != nil {
		return eris.Wrapf(err, "export: add sheet %q", sheetName)
	}

	header := sheet.AddRow()
	for _, h := range leadHeader {
		header.AddCell().SetString(h)
	}

	for _, l := range leads {
		row := sheet.AddRow()
		row.AddCell().SetString(l.ProcessedAt.Format("2006-01-02 15:04:05"))
		row.AddCell().SetString(l.Name)
		row.AddCell().SetString(l.Phone)
		row.AddCell().SetString(l.Email)
		row.AddCell().SetString(l.Product)
		row.AddCell().SetString(l.Status)
		row.AddCell().SetString(l.UID)
		row.AddCell().SetString(l.RunID)
	}

	if err := f.Save(path); err != nil {
		return eris.Wrapf(err, "export: save %s", path)
	}
	return nil
}
