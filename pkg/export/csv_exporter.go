package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVOption customises a CSVExporter.
type CSVOption func(*CSVExporter)

// WithDelimiter switches the field separator, e.g. ';' for spreadsheets set
// to a pt-BR locale.
func WithDelimiter(r rune) CSVOption {
	return func(e *CSVExporter) { e.delimiter = r }
}

// WithBOM prefixes the output with a UTF-8 byte order mark so Excel detects
// the encoding of accented names.
func WithBOM() CSVOption {
	return func(e *CSVExporter) { e.bom = true }
}

// CSVExporter renders a Dataset as RFC 4180 CSV.
type CSVExporter struct {
	delimiter rune
	bom       bool
}

// NewCSVExporter builds a comma separated exporter without BOM.
func NewCSVExporter(opts ...CSVOption) *CSVExporter {
	e := &CSVExporter{delimiter: ','}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ContentType reports the MIME type of the rendered output.
func (e *CSVExporter) ContentType() string { return "text/csv" }

// Render writes the header row then every data row. Cells that a spreadsheet
// would evaluate as a formula are prefixed with a single quote.
func (e *CSVExporter) Render(data Dataset) ([]byte, error) {
	if err := data.validate("csv"); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if e.bom {
		buf.Write(utf8BOM)
	}
	w := csv.NewWriter(&buf)
	w.Comma = e.delimiter

	if err := w.Write(data.Headers); err != nil {
		return nil, fmt.Errorf("write csv headers: %w", err)
	}
	for i, row := range data.Rows {
		if err := w.Write(neutralize(row)); err != nil {
			return nil, fmt.Errorf("write csv row %d: %w", i+1, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func neutralize(row []string) []string {
	out := row
	for i, cell := range row {
		if cell == "" || !strings.ContainsRune("=+-@", rune(cell[0])) {
			continue
		}
		if &out[0] == &row[0] {
			out = append([]string(nil), row...)
		}
		out[i] = "'" + cell
	}
	return out
}
