package exchange

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// Formatos soportados.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

const (
	utf8BOM   = "\uFEFF"
	sheetName = "Products"
)

// DetectFormat deduce el formato por extensión o, si no la hay, por el contenido (xlsx es un zip).
func DetectFormat(filename string, data []byte) string {
	switch {
	case strings.HasSuffix(strings.ToLower(filename), ".xlsx"):
		return FormatXLSX
	case strings.HasSuffix(strings.ToLower(filename), ".csv"):
		return FormatCSV
	case bytes.HasPrefix(data, []byte("PK\x03\x04")):
		return FormatXLSX
	default:
		return FormatCSV
	}
}

// writeCSV separado por ';' con BOM para que Excel muestre bien los acentos.
func writeCSV(rows [][]any) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(utf8BOM)
	w := csv.NewWriter(&buf)
	w.Comma = ';'
	w.UseCRLF = true
	record := make([]string, 0, len(Columns))
	for _, row := range rows {
		record = record[:0]
		for _, v := range row {
			record = append(record, formatText(v))
		}
		if err := w.Write(record); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeXLSX una hoja con cabecera y filas; decimales como números.
func writeXLSX(rows [][]any) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), sheetName); err != nil {
		return nil, err
	}
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = xlsxValue(v)
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
			return nil, err
		}
	}
	if len(rows) > 0 {
		if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
			return nil, err
		}
	}
	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func xlsxValue(v any) any {
	switch x := v.(type) {
	case string, int:
		return x
	case decimal.Decimal:
		return x.Round(2).InexactFloat64()
	default:
		return formatText(v)
	}
}

// readRows devuelve todas las filas (cabecera incluida) del fichero.
func readRows(format string, data []byte) ([][]string, error) {
	switch format {
	case FormatXLSX:
		return readXLSX(data)
	case FormatCSV:
		return readCSV(data)
	default:
		return nil, fmt.Errorf("%w: formato %q no soportado", domain.ErrInvalidInput, format)
	}
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: no es un xlsx válido: %v", domain.ErrInvalidInput, err)
	}
	defer func() { _ = f.Close() }()

	sheet := f.GetSheetName(f.GetActiveSheetIndex())
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: leer hoja %s: %v", domain.ErrInvalidInput, sheet, err)
	}
	return rows, nil
}

// readCSV acepta UTF-8 (con o sin BOM) o Windows-1250, y ',' o ';' como separador.
func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte(utf8BOM))
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.Windows1250.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("%w: codificación no reconocida: %v", domain.ErrInvalidInput, err)
		}
		data = decoded
	}
	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = sniffDelimiter(data)
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", domain.ErrInvalidInput, err)
	}
	return rows, nil
}

// sniffDelimiter ',' si la primera línea tiene más comas que puntos y coma; si no ';'.
func sniffDelimiter(data []byte) rune {
	first := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		first = data[:i]
	}
	if bytes.Count(first, []byte(",")) > bytes.Count(first, []byte(";")) {
		return ','
	}
	return ';'
}
