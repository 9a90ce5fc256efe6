// Package export serializa tablas del ledger a CSV.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/emanueliriarte-arch/mi-app-inventario/internal/application/report"
)

// Charsets soportados.
const (
	CharsetUTF8        = "utf-8"
	CharsetWindows1252 = "windows-1252"
)

var _ report.TableWriter = (*CSVWriter)(nil)

// CSVWriter escribe CSV separado por comas. En windows-1252 (hojas de cálculo en español) los
// caracteres sin equivalente se reemplazan en lugar de fallar.
type CSVWriter struct {
	encoder *encoding.Encoder // nil = UTF-8
	comma   rune
}

// NewCSVWriter construye el writer para el charset indicado.
func NewCSVWriter(charset string) (*CSVWriter, error) {
	w := &CSVWriter{comma: ','}
	switch strings.ToLower(strings.TrimSpace(charset)) {
	case "", CharsetUTF8, "utf8":
	case CharsetWindows1252, "cp1252":
		w.encoder = encoding.ReplaceUnsupported(charmap.Windows1252.NewEncoder())
		// Excel en configuración regional española espera ';'.
		w.comma = ';'
	default:
		return nil, fmt.Errorf("charset CSV no soportado: %q", charset)
	}
	return w, nil
}

// ContentType valor de la cabecera HTTP para este writer.
func (w *CSVWriter) ContentType() string {
	if w.encoder != nil {
		return "text/csv; charset=windows-1252"
	}
	return "text/csv; charset=utf-8"
}

// WriteTable implementa report.TableWriter.
func (w *CSVWriter) WriteTable(out io.Writer, header []string, records [][]string) error {
	var tw *transform.Writer
	if w.encoder != nil {
		tw = transform.NewWriter(out, w.encoder)
		out = tw
	}
	cw := csv.NewWriter(out)
	cw.Comma = w.comma
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("csv: cabecera: %w", err)
	}
	if err := cw.WriteAll(records); err != nil {
		return fmt.Errorf("csv: registros: %w", err)
	}
	if tw != nil {
		if err := tw.Close(); err != nil {
			return fmt.Errorf("csv: codificar: %w", err)
		}
	}
	return nil
}
