// Package parser turns uploaded document bytes (CSV, Excel, PDF) into
// ordered tabular rows that the analysis extractor understands.
package parser

// TabularRow is a single data row keyed by header name. Header order is
// preserved as it appeared in the source, because downstream classification
// resolves conflicting columns by source position.
type TabularRow struct {
	headers []string
	cells   map[string]string
}

// NewTabularRow returns an empty row.
func NewTabularRow() TabularRow {
	return TabularRow{cells: make(map[string]string)}
}

// Set stores a cell value. A header seen for the first time is appended to
// the ordered header list; setting it again overwrites the value in place.
func (r *TabularRow) Set(header, value string) {
	if _, ok := r.cells[header]; !ok {
		r.headers = append(r.headers, header)
	}
	r.cells[header] = value
}

// Get returns the cell under header, or "" when the row has no such column.
func (r TabularRow) Get(header string) string {
	return r.cells[header]
}

// Headers returns the column names in source order.
func (r TabularRow) Headers() []string {
	return r.headers
}

// Len reports the number of columns in the row.
func (r TabularRow) Len() int {
	return len(r.headers)
}
