package loader

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"ragpipe/internal/domain"
)

// SpreadsheetLoader flattens every sheet of a workbook into lines of
// tab-separated cells, each sheet introduced by its name.
type SpreadsheetLoader struct {
	extLoader
}

func NewSpreadsheetLoader() *SpreadsheetLoader {
	return &SpreadsheetLoader{extLoader{exts: []string{".xlsx"}}}
}

func (l *SpreadsheetLoader) Load(path string) (domain.Document, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return domain.Document{}, fmt.Errorf("%w: open workbook %s: %v", domain.ErrLoad, path, err)
	}
	defer f.Close()

	var lines []string
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return domain.Document{}, fmt.Errorf("%w: sheet %s of %s: %v", domain.ErrLoad, sheet, path, err)
		}
		lines = append(lines, sheet)
		for _, row := range rows {
			if len(row) == 0 {
				continue
			}
			lines = append(lines, strings.Join(row, "\t"))
		}
	}
	return newDocument(path, strings.Join(lines, "\n")), nil
}
