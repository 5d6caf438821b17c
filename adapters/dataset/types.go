package dataset

// RawRowData represents one data row as header -> cell text
type RawRowData map[string]string

// Table is a parsed tabular data file
type Table struct {
	Headers []string
	Rows    []RawRowData
}
