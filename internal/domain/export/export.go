// Package export serializes filtered payment lists for download.
package export

import (
	"strconv"
	"strings"
	"time"

	"gritgym/internal/domain/payment"
	"gritgym/internal/domain/timestamp"
)

// Format constants for export file format.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// NotAvailable is written for absent or unparsable dates.
const NotAvailable = "N/A"

// Columns is the fixed header row.
var Columns = []string{
	"Full Name", "Email", "Contact", "Reference", "Amount",
	"Plan", "Status", "Created At", "Expires At",
}

// DateFormatter renders a normalized instant for a cell.
type DateFormatter func(timestamp.Instant) string

// LayoutFormatter returns a DateFormatter using layout in loc, "N/A" when unknown.
func LayoutFormatter(layout string, loc *time.Location) DateFormatter {
	return func(i timestamp.Instant) string {
		return i.Format(layout, loc, NotAvailable)
	}
}

// Row returns the cells for one payment in column order.
func Row(p payment.Payment, formatDate DateFormatter) []string {
	return []string{
		p.FullName,
		p.Email,
		p.ContactNumber,
		p.ReferenceNumber,
		FormatAmount(p.Amount),
		p.Plan,
		string(p.Status),
		formatDate(p.Created()),
		formatDate(p.Expires()),
	}
}

// FormatAmount renders an amount without trailing zeros (500, 99.5).
func FormatAmount(amount float64) string {
	return strconv.FormatFloat(amount, 'f', -1, 64)
}

// ToCSV renders payments as CSV text, one header row then one row per payment.
// PRE: payments are already filtered and ordered by the caller
// POST: Every field is wrapped in double quotes; rows joined by "\n"
// INVARIANT: Embedded double quotes are not escaped (a quote inside a field corrupts that row)
func ToCSV(payments []payment.Payment, formatDate DateFormatter) string {
	var b strings.Builder
	writeQuoted(&b, Columns)
	for _, p := range payments {
		b.WriteByte('\n')
		writeQuoted(&b, Row(p, formatDate))
	}
	return b.String()
}

func writeQuoted(b *strings.Builder, cells []string) {
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteByte('"')
		b.WriteString(c)
		b.WriteByte('"')
	}
}

// Filename returns the download name, e.g. payments-2025-05-10.csv.
func Filename(now time.Time, format string) string {
	return "payments-" + now.UTC().Format("2006-01-02") + "." + format
}
