package records

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gabrielslopes/labelcheck/internal/server/models"
)

// utf8BOM is prepended to exports so spreadsheet tools detect the encoding.
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var csvHeader = []string{
	"timestamp", "user", "screen", "transport", "order",
	"divergent", "authorized_by", "reason",
}

const exportTimeLayout = "2006-01-02 15:04:05"

// WriteCSV writes the entries as a UTF-8 CSV with a BOM prefix.
func WriteCSV(w io.Writer, entries []models.RecordEntry) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	for i := range entries {
		e := &entries[i]
		divergent := "0"
		if e.Divergent {
			divergent = "1"
		}
		row := []string{
			e.RecordedAt.Format(exportTimeLayout),
			e.UserLogin,
			string(e.Screen),
			e.TransportCode,
			e.OrderCode,
			divergent,
			e.AuthorizedBy,
			e.Reason,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// ExportFileName builds the download name for an export covering the given
// range and filters, e.g. leituras_20260101_20260131_varios_divergencias.csv.
func ExportFileName(from, to time.Time, screen models.Screen, divergentOnly bool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "leituras_%s_%s", from.Format("20060102"), to.Format("20060102"))
	if screen.Valid() {
		fmt.Fprintf(&b, "_%s", strings.ToLower(string(screen)))
	}
	if divergentOnly {
		b.WriteString("_divergencias")
	}
	b.WriteString(".csv")
	return b.String()
}
