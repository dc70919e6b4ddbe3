package parser

import "strings"

// ParseCSV parses comma-delimited text into tabular rows. The first
// non-blank line is the header; every later non-blank line becomes a row.
// Cells are trimmed and rows shorter than the header are padded with "".
// Text with no data rows yields nil, which the extractor treats as empty.
func ParseCSV(text string) []TabularRow {
	lines := strings.Split(stripUTF8BOM(text), "\n")

	var headers []string
	var rows []TabularRow
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		cells := splitTrimmed(line)
		if headers == nil {
			headers = cells
			continue
		}
		row := NewTabularRow()
		for i, h := range headers {
			value := ""
			if i < len(cells) {
				value = cells[i]
			}
			row.Set(h, value)
		}
		rows = append(rows, row)
	}
	return rows
}

func splitTrimmed(line string) []string {
	parts := strings.Split(line, ",")
	for i, p := range parts {
		parts[i] = strings.TrimSpace(p)
	}
	return parts
}

func stripUTF8BOM(s string) string {
	return strings.TrimPrefix(s, "\ufeff")
}
