package parser

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
)

// preferredSheets are sheet names likely to hold the financial table, in
// lookup order. When none matches, the first sheet is used.
var preferredSheets = []string{"dados", "financeiro", "resultados", "data", "sheet1"}

// ParseExcel reads an .xlsx/.xls workbook into tabular rows. The first
// non-empty row of the chosen sheet is the header.
func ParseExcel(r io.Reader) ([]TabularRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	sheet := pickSheet(f.GetSheetList())
	if sheet == "" {
		return nil, fmt.Errorf("workbook has no sheets")
	}

	cells, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	var headers []string
	var rows []TabularRow
	for _, line := range cells {
		if emptyLine(line) {
			continue
		}
		if headers == nil {
			headers = make([]string, len(line))
			for i, c := range line {
				headers[i] = strings.TrimSpace(c)
			}
			continue
		}
		row := NewTabularRow()
		for i, h := range headers {
			value := ""
			if i < len(line) {
				value = strings.TrimSpace(line[i])
			}
			row.Set(h, value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func pickSheet(sheets []string) string {
	if len(sheets) == 0 {
		return ""
	}
	for _, want := range preferredSheets {
		for _, s := range sheets {
			if strings.EqualFold(strings.TrimSpace(s), want) {
				return s
			}
		}
	}
	return sheets[0]
}

func emptyLine(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
